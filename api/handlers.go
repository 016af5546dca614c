/*
handlers.go - HTTP API handlers for the leave book

PURPOSE:
  Exposes leave.Service over JSON. Handlers parse and validate input,
  take the session from the request context, call one service method and
  serialize the result. Policy decisions are never made here.

ENDPOINTS:
  Session:
    POST   /api/login                      Account + password -> token
    GET    /api/me                         Current profile
    GET    /api/leave-kinds                Leave kinds and labels

  Employee:
    GET    /api/leaves?from&to             All active leaves in range
    GET    /api/leaves/mine                Own leaves, cancelled included
    POST   /api/leaves                     Register a leave
    GET    /api/leaves/cancellable         Own cancellable leaves + quota
    POST   /api/leaves/{row}/cancel        Cancel an own leave (quota)
    GET    /api/quota                      Remaining cancellations
    GET    /api/usage?year&half&employee   Days taken per half-year

  Administrator:
    GET    /api/admin/pending?from&to      Leaves awaiting a decision
    GET    /api/admin/approved?employee    Approved leaves
    GET    /api/admin/employees            Employee names
    POST   /api/admin/leaves/{row}/approve
    POST   /api/admin/leaves/{row}/reject
    POST   /api/admin/leaves/{row}/cancel  Cancel any leave (no quota)

ERROR HANDLING:
  See errors.go. Bodies are ErrorResponse with a localized message.

SEE ALSO:
  - dto.go: Request/response data structures
  - session.go: Tokens and session middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/warp/leave-registry/directory"
	"github.com/warp/leave-registry/leave"
	"github.com/warp/leave-registry/logctx"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	service   *leave.Service
	directory *directory.Directory
	tokens    *Tokens
	messages  *Messages
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewHandler(service *leave.Service, dir *directory.Directory, tokens *Tokens, messages *Messages, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:   service,
		directory: dir,
		tokens:    tokens,
		messages:  messages,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sess, err := h.directory.Authenticate(r.Context(), req.Account, req.Password)
	if err != nil {
		h.log(r).Info("login failed", zap.String("account", req.Account), zap.Error(err))
		h.writeError(w, r, err)
		return
	}

	token, expires, err := h.tokens.Issue(sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log(r).Info("login", zap.String("employee_id", sess.EmployeeID), zap.String("role", string(sess.Role)))
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires, Profile: toProfileDTO(sess)})
}

// Me handles GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, toProfileDTO(sess))
}

// ListLeaveKinds handles GET /api/leave-kinds
func (h *Handler) ListLeaveKinds(w http.ResponseWriter, r *http.Request) {
	kinds := make([]LeaveKindDTO, 0, len(leave.LeaveKinds))
	for _, k := range leave.LeaveKinds {
		kinds = append(kinds, LeaveKindDTO{
			Code:     string(k),
			Label:    k.Label(),
			Category: string(k.Category()),
			Days:     k.Days(),
		})
	}
	writeJSON(w, http.StatusOK, kinds)
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListLeaves handles GET /api/leaves?from=&to=
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	period, err := h.parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.service.ListActive(r.Context(), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveListResponse{
		From:   period.Start.String(),
		To:     period.End.String(),
		Leaves: toLeaveDTOs(records),
	})
}

// ListMyLeaves handles GET /api/leaves/mine
func (h *Handler) ListMyLeaves(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	records, err := h.service.ListMine(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveListResponse{Leaves: toLeaveDTOs(records)})
}

// RegisterLeave handles POST /api/leaves
func (h *Handler) RegisterLeave(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())

	var req RegisterLeaveRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := leave.ParseDay(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	kind, err := leave.ParseLeaveKind(req.Kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.service.Register(r.Context(), sess, date, kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, LeaveActionResponse{
		Message: h.messages.T(r.Context(), "leave.registered", nil),
		Leave:   toLeaveDTO(rec),
	})
}

// ListCancellable handles GET /api/leaves/cancellable
func (h *Handler) ListCancellable(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	c, err := h.service.CancellableFor(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CancellableResponse{
		Quota:  toQuotaDTO(c.Quota),
		Leaves: toLeaveDTOs(c.Records),
	})
}

// CancelLeave handles POST /api/leaves/{row}/cancel
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "leave.cancelled", h.service.Cancel)
}

// GetQuota handles GET /api/quota
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	q, err := h.service.Quota(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTO(q))
}

// GetUsage handles GET /api/usage?year=&half=&employee=
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())

	period := leave.HalfYearOf(leave.DayOf(h.service.Now()))
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1900 || year > 9999 {
			h.writeError(w, r, fmt.Errorf("%w: year %q", errBadRequest, v))
			return
		}
		period.Year = year
	}
	switch v := q.Get("half"); v {
	case "":
	case "1":
		period.Half = leave.FirstHalf
	case "2":
		period.Half = leave.SecondHalf
	default:
		h.writeError(w, r, fmt.Errorf("%w: half %q", errBadRequest, v))
		return
	}

	usage, err := h.service.Usage(r.Context(), sess, period, q.Get("employee"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsageDTOs(usage))
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// ListPending handles GET /api/admin/pending?from=&to=
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	period, err := h.parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.service.ListPending(r.Context(), sess, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveListResponse{
		From:   period.Start.String(),
		To:     period.End.String(),
		Leaves: toLeaveDTOs(records),
	})
}

// ListApproved handles GET /api/admin/approved?employee=
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFrom(r.Context())
	records, err := h.service.ListApproved(r.Context(), sess, r.URL.Query().Get("employee"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveListResponse{Leaves: toLeaveDTOs(records)})
}

// ListEmployees handles GET /api/admin/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	names, err := h.directory.ListNames(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// ApproveLeave handles POST /api/admin/leaves/{row}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "leave.approved", h.service.Approve)
}

// RejectLeave handles POST /api/admin/leaves/{row}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "leave.rejected", h.service.Reject)
}

// AdminCancelLeave handles POST /api/admin/leaves/{row}/cancel
func (h *Handler) AdminCancelLeave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "leave.admin_cancelled", h.service.AdminCancel)
}

// =============================================================================
// HELPERS
// =============================================================================

type rowOperation func(ctx context.Context, sess leave.Session, row int) (leave.Record, error)

// mutate runs a service operation on the {row} of the URL.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, messageID string, op rowOperation) {
	sess, _ := SessionFrom(r.Context())
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		h.writeError(w, r, fmt.Errorf("%w: row %q", errBadRequest, chi.URLParam(r, "row")))
		return
	}

	rec, err := op(r.Context(), sess, row)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaveActionResponse{
		Message: h.messages.T(r.Context(), messageID, nil),
		Leave:   toLeaveDTO(rec),
	})
}

// parseRange reads from/to, defaulting to today through six months ahead.
func (h *Handler) parseRange(r *http.Request) (leave.Period, error) {
	period := leave.DefaultViewRange(h.service.Now())
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := leave.ParseDay(v)
		if err != nil {
			return leave.Period{}, err
		}
		period.Start = d
	}
	if v := q.Get("to"); v != "" {
		d, err := leave.ParseDay(v)
		if err != nil {
			return leave.Period{}, err
		}
		period.End = d
	}
	if period.End.Before(period.Start) {
		return leave.Period{}, fmt.Errorf("%w: range ends before it starts", errBadRequest)
	}
	return period, nil
}

func (h *Handler) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return h.validate.Struct(dst)
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	return logctx.Logger(r.Context(), h.logger)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
