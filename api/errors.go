package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/warp/leave-registry/directory"
	"github.com/warp/leave-registry/leave"
	"go.uber.org/zap"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// apiError is how an error is presented: status, stable code and a
// localized message.
type apiError struct {
	status    int
	code      string
	messageID string
	data      map[string]any
}

func classify(err error) apiError {
	var (
		windowErr     *leave.OutOfWindowError
		duplicateErr  *leave.DuplicateRequestError
		quotaErr      *leave.QuotaExceededError
		validationErr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validationErr):
		return apiError{http.StatusBadRequest, "VALIDATION_FAILED", "error.validation", nil}
	case errors.Is(err, errBadRequest):
		return apiError{http.StatusBadRequest, "BAD_REQUEST", "error.bad_request", nil}
	case errors.Is(err, ErrInvalidToken):
		return apiError{http.StatusUnauthorized, "UNAUTHORIZED", "error.unauthorized", nil}
	case errors.Is(err, directory.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "error.invalid_credentials", nil}
	case errors.Is(err, leave.ErrForbidden):
		return apiError{http.StatusForbidden, "FORBIDDEN", "error.forbidden", nil}
	case leave.IsNotFound(err):
		return apiError{http.StatusNotFound, "RECORD_NOT_FOUND", "error.not_found", nil}

	case errors.As(err, &windowErr):
		return apiError{http.StatusUnprocessableEntity, "OUT_OF_WINDOW", "error.out_of_window", map[string]any{
			"Start": windowErr.Window.Start.String(),
			"End":   windowErr.Window.End.String(),
		}}
	case errors.As(err, &duplicateErr):
		return apiError{http.StatusConflict, "DUPLICATE_REQUEST", "error.duplicate", map[string]any{
			"Kind": duplicateErr.Kind.Label(),
			"Date": duplicateErr.Date.String(),
		}}
	case errors.As(err, &quotaErr):
		return apiError{http.StatusUnprocessableEntity, "QUOTA_EXCEEDED", "error.quota_exceeded", map[string]any{
			"Period": quotaErr.Period.String(),
			"Max":    quotaErr.Max,
		}}
	case errors.Is(err, leave.ErrAlreadyCancelled):
		return apiError{http.StatusConflict, "ALREADY_CANCELLED", "error.already_cancelled", nil}
	case errors.Is(err, leave.ErrAlreadyDecided):
		return apiError{http.StatusConflict, "ALREADY_DECIDED", "error.already_decided", nil}
	case errors.Is(err, leave.ErrInvalidLeaveKind):
		return apiError{http.StatusBadRequest, "INVALID_LEAVE_KIND", "error.invalid_kind", nil}
	case errors.Is(err, leave.ErrInvalidDate):
		return apiError{http.StatusBadRequest, "INVALID_DATE", "error.invalid_date", nil}
	case leave.IsRetryable(err):
		return apiError{http.StatusConflict, "CONCURRENT_MODIFICATION", "error.conflict", nil}

	case errors.Is(err, leave.ErrStoreReadFailed), errors.Is(err, leave.ErrStoreWriteFailed):
		return apiError{http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "error.store_unavailable", nil}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL", "error.internal", nil}
	}
}

// writeError renders err as an ErrorResponse. Server-side failures are
// logged and their details are not sent to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	resp := ErrorResponse{
		Code:  e.code,
		Error: h.messages.T(r.Context(), e.messageID, e.data),
	}
	if e.status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", zap.String("code", e.code), zap.Error(err))
	} else {
		resp.Details = err.Error()
	}
	writeJSON(w, e.status, resp)
}
