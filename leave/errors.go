/*
errors.go - Error types for the leave lifecycle

PURPOSE:
  All errors the leave package returns, in one place. Every error is
  recoverable at the presentation boundary: it is shown to the user, who
  decides whether to resubmit. Nothing is retried automatically.

ERROR CATEGORIES:
  1. Policy errors - Registration window, duplicates, quota, state
  2. Access errors - Missing records, foreign records, non-admin callers
  3. Store errors - Read/write failures and lost compare-and-swap races

USAGE:
  Store failures are wrapped so both the category and the cause survive:

    if errors.Is(err, leave.ErrStoreWriteFailed) { ... }

SEE ALSO:
  - registration.go, quota.go, approval.go: Produce policy errors
  - book.go: Produces store errors
  - api/errors.go: Maps errors to HTTP status codes
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOutOfWindow is returned when the requested date is outside the open
	// registration window.
	ErrOutOfWindow = errors.New("requested date is outside the registration window")

	// ErrDuplicateRequest is returned when an active record with the same
	// employee, date and kind already exists.
	ErrDuplicateRequest = errors.New("duplicate leave request")

	ErrQuotaExceeded    = errors.New("cancellation quota exceeded")
	ErrAlreadyCancelled = errors.New("leave record already cancelled")
	ErrAlreadyDecided   = errors.New("leave record already approved or rejected")

	ErrRecordNotFound   = errors.New("leave record not found")
	ErrForbidden        = errors.New("operation not permitted for this session")
	ErrInvalidLeaveKind = errors.New("invalid leave kind")
	ErrInvalidDate      = errors.New("invalid date")

	// ErrStoreReadFailed and ErrStoreWriteFailed wrap row store failures.
	ErrStoreReadFailed  = errors.New("leave store read failed")
	ErrStoreWriteFailed = errors.New("leave store write failed")

	// ErrConcurrentModification is returned when a cell changed between the
	// read and the write of the same operation.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OutOfWindowError reports the window that was open at submission time.
type OutOfWindowError struct {
	Requested Day
	Window    Period
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("requested date %s is outside the registration window %s", e.Requested, e.Window)
}

func (e *OutOfWindowError) Unwrap() error { return ErrOutOfWindow }

// DuplicateRequestError points at the active record that blocks registration.
type DuplicateRequestError struct {
	EmployeeID  string
	Date        Day
	Kind        LeaveKind
	ExistingRow int
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("leave %s on %s already registered for %s (row %d)",
		e.Kind, e.Date, e.EmployeeID, e.ExistingRow)
}

func (e *DuplicateRequestError) Unwrap() error { return ErrDuplicateRequest }

// QuotaExceededError reports the exhausted period.
type QuotaExceededError struct {
	EmployeeID string
	Period     HalfYear
	Used       int
	Max        int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("cancellation quota exceeded for %s in %s: %d of %d used",
		e.EmployeeID, e.Period, e.Used, e.Max)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOutOfWindow) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrAlreadyDecided) ||
		errors.Is(err, ErrInvalidLeaveKind) ||
		errors.Is(err, ErrInvalidDate)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
