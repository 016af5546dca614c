/*
service.go - Leave operations for a session

PURPOSE:
  Service is the only entry point the presentation layer uses. Each call
  receives the acting Session explicitly, reads the book, applies the pure
  policy functions of this package and performs at most one targeted write.

MUTATION SEQUENCE:
  1. Lock the record owner's key (lock.Locker)
  2. Load the book
  3. Check policy (registration / quota / decision)
  4. Append or update cells with a compare-and-swap precondition

  Steps 2-4 run under the lock so that two submissions of the same
  employee cannot both pass the duplicate or quota check.
*/
package leave

import (
	"context"
	"time"

	"github.com/warp/leave-registry/lock"
	"github.com/warp/leave-registry/logctx"
	"go.uber.org/zap"
)

// Service runs leave operations on a Book.
type Service struct {
	book   *Book
	locker lock.Locker
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Service)

// WithLocker replaces the default in-process locker.
func WithLocker(l lock.Locker) Option { return func(s *Service) { s.locker = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func NewService(book *Book, opts ...Option) *Service {
	s := &Service{
		book:   book,
		locker: lock.NewKeyed(),
		now:    time.Now,
		logger: zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock in ICT.
func (s *Service) Now() time.Time { return s.now().In(ICT) }

// =============================================================================
// EMPLOYEE OPERATIONS
// =============================================================================

// Register records a new leave request for the session's employee.
func (s *Service) Register(ctx context.Context, sess Session, date Day, kind LeaveKind) (Record, error) {
	l := s.log(ctx).With(zap.String("employee_id", sess.EmployeeID))

	unlock, err := s.locker.Lock(ctx, lock.EmployeeKey(sess.EmployeeID))
	if err != nil {
		return Record{}, err
	}
	defer unlock()

	snap, err := s.book.Load(ctx)
	if err != nil {
		l.Error("failed to load leave book", zap.Error(err))
		return Record{}, err
	}

	now := s.Now()
	req := Request{
		EmployeeID:    sess.EmployeeID,
		EmployeeName:  sess.EmployeeName,
		RequestedDate: date,
		Kind:          kind,
	}
	if err := CheckRegistration(req, snap.Records, now); err != nil {
		l.Info("registration rejected", zap.String("date", date.String()), zap.Error(err))
		return Record{}, err
	}

	rec, err := s.book.Append(ctx, snap.Header, NewRecord(req, now))
	if err != nil {
		l.Error("failed to append leave record", zap.Error(err))
		return Record{}, err
	}

	l.Info("leave registered",
		zap.Int("row", rec.Row),
		zap.String("date", rec.RequestedDate.String()),
		zap.String("kind", string(rec.Kind)),
	)
	return rec, nil
}

// Cancel cancels one of the session employee's own records, within the
// half-year quota.
func (s *Service) Cancel(ctx context.Context, sess Session, row int) (Record, error) {
	l := s.log(ctx).With(zap.String("employee_id", sess.EmployeeID), zap.Int("row", row))

	unlock, err := s.locker.Lock(ctx, lock.EmployeeKey(sess.EmployeeID))
	if err != nil {
		return Record{}, err
	}
	defer unlock()

	snap, err := s.book.Load(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, ok := FindRow(snap.Records, row)
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	if rec.EmployeeID != sess.EmployeeID {
		return Record{}, ErrForbidden
	}

	if err := CheckCancel(rec, sess.EmployeeID, snap.Records); err != nil {
		l.Info("cancellation rejected", zap.Error(err))
		return Record{}, err
	}

	if err := s.book.MarkCancelled(ctx, rec, sess.EmployeeID); err != nil {
		l.Error("failed to cancel leave record", zap.Error(err))
		return Record{}, err
	}

	rec.Cancellation = &Cancellation{CancelledBy: sess.EmployeeID}
	l.Info("leave cancelled")
	return rec, nil
}

// =============================================================================
// ADMINISTRATOR OPERATIONS
// =============================================================================

// AdminCancel cancels any active record. It is not limited by the quota.
func (s *Service) AdminCancel(ctx context.Context, sess Session, row int) (Record, error) {
	if !sess.IsAdmin() {
		return Record{}, ErrForbidden
	}
	l := s.log(ctx).With(zap.String("admin_id", sess.EmployeeID), zap.Int("row", row))

	var cancelled Record
	err := s.withRecordLock(ctx, row, func(rec Record) error {
		if !rec.IsActive() {
			return ErrAlreadyCancelled
		}
		if err := s.book.MarkCancelled(ctx, rec, sess.EmployeeID); err != nil {
			return err
		}
		rec.Cancellation = &Cancellation{CancelledBy: sess.EmployeeID}
		cancelled = rec
		return nil
	})
	if err != nil {
		l.Info("admin cancellation failed", zap.Error(err))
		return Record{}, err
	}

	l.Info("leave cancelled by administrator", zap.String("employee_id", cancelled.EmployeeID))
	return cancelled, nil
}

// Approve marks a pending record approved.
func (s *Service) Approve(ctx context.Context, sess Session, row int) (Record, error) {
	return s.decide(ctx, sess, row, Approved)
}

// Reject marks a pending record rejected.
func (s *Service) Reject(ctx context.Context, sess Session, row int) (Record, error) {
	return s.decide(ctx, sess, row, Rejected)
}

func (s *Service) decide(ctx context.Context, sess Session, row int, state ApprovalState) (Record, error) {
	if !sess.IsAdmin() {
		return Record{}, ErrForbidden
	}
	l := s.log(ctx).With(zap.String("admin_id", sess.EmployeeID), zap.Int("row", row), zap.String("decision", string(state)))

	var decided Record
	err := s.withRecordLock(ctx, row, func(rec Record) error {
		if err := CheckDecision(rec); err != nil {
			return err
		}
		if err := s.book.SetApproval(ctx, rec, state); err != nil {
			return err
		}
		rec.Approval = state
		decided = rec
		return nil
	})
	if err != nil {
		l.Info("decision failed", zap.Error(err))
		return Record{}, err
	}

	l.Info("leave decided", zap.String("employee_id", decided.EmployeeID))
	return decided, nil
}

// withRecordLock finds the owner of row, takes the owner's lock and runs fn
// on a fresh read of the record.
func (s *Service) withRecordLock(ctx context.Context, row int, fn func(Record) error) error {
	snap, err := s.book.Load(ctx)
	if err != nil {
		return err
	}
	rec, ok := FindRow(snap.Records, row)
	if !ok {
		return ErrRecordNotFound
	}

	unlock, err := s.locker.Lock(ctx, lock.EmployeeKey(rec.EmployeeID))
	if err != nil {
		return err
	}
	defer unlock()

	snap, err = s.book.Load(ctx)
	if err != nil {
		return err
	}
	if rec, ok = FindRow(snap.Records, row); !ok {
		return ErrRecordNotFound
	}
	return fn(rec)
}

// =============================================================================
// VIEWS
// =============================================================================

// ListActive returns all employees' active records in period.
func (s *Service) ListActive(ctx context.Context, period Period) ([]Record, error) {
	snap, err := s.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ActiveInRange(snap.Records, period), nil
}

// ListMine returns every record of the session's employee.
func (s *Service) ListMine(ctx context.Context, sess Session) ([]Record, error) {
	snap, err := s.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	return OwnedBy(snap.Records, sess.EmployeeID), nil
}

// ListPending returns the records awaiting a decision in period.
func (s *Service) ListPending(ctx context.Context, sess Session, period Period) ([]Record, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	snap, err := s.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	return PendingInRange(snap.Records, period), nil
}

// ListApproved returns approved active records, optionally for one
// employee name.
func (s *Service) ListApproved(ctx context.Context, sess Session, employeeName string) ([]Record, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	snap, err := s.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ApprovedActive(snap.Records, employeeName), nil
}

// Cancellable is what the cancellation page shows.
type Cancellable struct {
	Records []Record
	Quota   QuotaSummary
}

// CancellableFor returns the session employee's records that can still be
// cancelled, with the remaining quota of the current year.
func (s *Service) CancellableFor(ctx context.Context, sess Session) (Cancellable, error) {
	snap, err := s.book.Load(ctx)
	if err != nil {
		return Cancellable{}, err
	}
	records := EligibleToCancel(sess.EmployeeID, snap.Records)
	sortByDate(records)
	return Cancellable{
		Records: records,
		Quota:   RemainingQuota(sess.EmployeeID, snap.Records, DayOf(s.Now())),
	}, nil
}

// Quota returns the session employee's remaining quota for the current year.
func (s *Service) Quota(ctx context.Context, sess Session) (QuotaSummary, error) {
	snap, err := s.book.Load(ctx)
	if err != nil {
		return QuotaSummary{}, err
	}
	return RemainingQuota(sess.EmployeeID, snap.Records, DayOf(s.Now())), nil
}

// Usage summarizes leave taken in period. Employees only see their own
// usage; administrators see everyone's, or one employee's if employeeID is
// set.
func (s *Service) Usage(ctx context.Context, sess Session, period HalfYear, employeeID string) ([]Usage, error) {
	if !sess.IsAdmin() {
		if employeeID != "" && employeeID != sess.EmployeeID {
			return nil, ErrForbidden
		}
		employeeID = sess.EmployeeID
	}
	snap, err := s.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(snap.Records, period, employeeID), nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logctx.Logger(ctx, s.logger)
}
