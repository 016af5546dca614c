package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func record(row int, employee string, d leave.Day, kind leave.LeaveKind) leave.Record {
	return leave.Record{
		Row:           row,
		EmployeeID:    employee,
		EmployeeName:  "Name " + employee,
		RequestedDate: d,
		Kind:          kind,
		Approval:      leave.Pending,
	}
}

func cancelled(r leave.Record, by string) leave.Record {
	r.Cancellation = &leave.Cancellation{CancelledBy: by}
	return r
}

func approved(r leave.Record) leave.Record {
	r.Approval = leave.Approved
	return r
}

func rejected(r leave.Record) leave.Record {
	r.Approval = leave.Rejected
	return r
}

// =============================================================================
// LEAVE KINDS
// =============================================================================

func TestParseLeaveKind(t *testing.T) {
	for input, want := range map[string]leave.LeaveKind{
		"morning_comp":    leave.MorningComp,
		"Phép buổi chiều": leave.AfternoonLeave,
		"Bù cả ngày":      leave.FullDayComp,
		"Phép":            leave.FullDayLeave, // first schema
		"Bù":              leave.FullDayComp,
	} {
		got, err := leave.ParseLeaveKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := leave.ParseLeaveKind("Nghỉ ốm")
	assert.ErrorIs(t, err, leave.ErrInvalidLeaveKind)
}

func TestLeaveKind_WeightAndCategory(t *testing.T) {
	assert.True(t, leave.FullDayLeave.Days().Equal(decimal.NewFromInt(1)))
	assert.True(t, leave.MorningComp.Days().Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, leave.CategoryComp, leave.AfternoonComp.Category())
	assert.Equal(t, leave.CategoryLeave, leave.MorningLeave.Category())
}

func TestRecordPredicates(t *testing.T) {
	r := record(0, "E1", date(2025, time.March, 10), leave.FullDayLeave)
	assert.True(t, r.IsActive())
	assert.True(t, r.IsPending())

	a := approved(r)
	assert.True(t, a.IsApproved())
	assert.False(t, a.IsPending())

	// Cancellation overrides every approval state.
	c := cancelled(a, "E1")
	assert.False(t, c.IsActive())
	assert.False(t, c.IsApproved())
	assert.Equal(t, "E1", c.CancelledBy())
	assert.False(t, cancelled(rejected(r), "E1").IsRejected())
}

// =============================================================================
// REGISTRATION POLICY
// =============================================================================

func TestCheckRegistration_InsideWindowSucceeds(t *testing.T) {
	req := leave.Request{EmployeeID: "E1", RequestedDate: date(2025, time.March, 10), Kind: leave.FullDayLeave}
	assert.NoError(t, leave.CheckRegistration(req, nil, ict(2025, time.March, 1)))
}

func TestCheckRegistration_OutOfWindow(t *testing.T) {
	req := leave.Request{EmployeeID: "E1", RequestedDate: date(2025, time.August, 15), Kind: leave.FullDayLeave}

	err := leave.CheckRegistration(req, nil, ict(2025, time.March, 1))

	require.ErrorIs(t, err, leave.ErrOutOfWindow)
	var windowErr *leave.OutOfWindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, "2025-07-31", windowErr.Window.End.String())
}

func TestCheckRegistration_Duplicate(t *testing.T) {
	d := date(2025, time.March, 10)
	records := []leave.Record{record(4, "E1", d, leave.FullDayLeave)}
	req := leave.Request{EmployeeID: "E1", RequestedDate: d, Kind: leave.FullDayLeave}

	err := leave.CheckRegistration(req, records, ict(2025, time.March, 1))
	require.ErrorIs(t, err, leave.ErrDuplicateRequest)
	var dupErr *leave.DuplicateRequestError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 4, dupErr.ExistingRow)

	// Another kind, another employee or a cancelled twin do not collide.
	other := req
	other.Kind = leave.MorningLeave
	assert.NoError(t, leave.CheckRegistration(other, records, ict(2025, time.March, 1)))

	other = req
	other.EmployeeID = "E2"
	assert.NoError(t, leave.CheckRegistration(other, records, ict(2025, time.March, 1)))

	records[0] = cancelled(records[0], "E1")
	assert.NoError(t, leave.CheckRegistration(req, records, ict(2025, time.March, 1)))
}

func TestCheckRegistration_InvalidInput(t *testing.T) {
	now := ict(2025, time.March, 1)
	err := leave.CheckRegistration(leave.Request{EmployeeID: "E1", Kind: leave.FullDayLeave}, nil, now)
	assert.ErrorIs(t, err, leave.ErrInvalidDate)

	err = leave.CheckRegistration(leave.Request{EmployeeID: "E1", RequestedDate: date(2025, time.March, 10), Kind: "nap"}, nil, now)
	assert.ErrorIs(t, err, leave.ErrInvalidLeaveKind)
}

func TestNewRecord_StartsPendingInICT(t *testing.T) {
	now := time.Date(2025, time.March, 1, 2, 3, 4, 500, time.UTC)
	rec := leave.NewRecord(leave.Request{EmployeeID: " E1 ", EmployeeName: "An", RequestedDate: date(2025, time.March, 10), Kind: leave.MorningLeave}, now)

	assert.Equal(t, "E1", rec.EmployeeID)
	assert.Equal(t, leave.Pending, rec.Approval)
	assert.True(t, rec.IsActive())
	assert.Equal(t, leave.ICT, rec.RegisteredAt.Location())
	assert.Equal(t, 9, rec.RegisteredAt.Hour())
}

// =============================================================================
// CANCELLATION QUOTA
// =============================================================================

func TestQuota_CountsCancellationsByActorAndPeriod(t *testing.T) {
	// GIVEN: E1 cancelled two H1 records, one of them an admin's record
	//        the admin cancelled one H1 record of E1
	records := []leave.Record{
		cancelled(record(0, "E1", date(2025, time.February, 3), leave.FullDayLeave), "E1"),
		cancelled(record(1, "E1", date(2025, time.March, 3), leave.FullDayLeave), "E1"),
		cancelled(record(2, "E1", date(2025, time.April, 3), leave.FullDayLeave), "ADMIN"),
		record(3, "E1", date(2025, time.May, 3), leave.FullDayLeave),
		record(4, "E1", date(2025, time.August, 3), leave.FullDayLeave),
	}

	// THEN: E1 has nothing left in H1, everything in H2
	q := leave.RemainingQuota("E1", records, date(2025, time.March, 1))
	assert.Equal(t, leave.QuotaSummary{Year: 2025, FirstHalfRemaining: 0, SecondHalfRemaining: 2}, q)

	// AND: the admin's cancellation counts for the admin, not for E1
	assert.Equal(t, 1, leave.UsedCancellations("ADMIN", records, leave.HalfYear{Year: 2025, Half: leave.FirstHalf}))

	// AND: only the H2 record is still eligible
	eligible := leave.EligibleToCancel("E1", records)
	require.Len(t, eligible, 1)
	assert.Equal(t, 4, eligible[0].Row)

	err := leave.CheckCancel(records[3], "E1", records)
	require.ErrorIs(t, err, leave.ErrQuotaExceeded)
	var quotaErr *leave.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 2, quotaErr.Used)
	assert.Equal(t, "2025-H1", quotaErr.Period.String())

	assert.NoError(t, leave.CheckCancel(records[4], "E1", records))
}

func TestQuota_PreviousYearDoesNotCount(t *testing.T) {
	records := []leave.Record{
		cancelled(record(0, "E1", date(2024, time.February, 3), leave.FullDayLeave), "E1"),
		cancelled(record(1, "E1", date(2024, time.March, 3), leave.FullDayLeave), "E1"),
		record(2, "E1", date(2025, time.March, 3), leave.FullDayLeave),
	}
	assert.NoError(t, leave.CheckCancel(records[2], "E1", records))
}

func TestCheckCancel_AlreadyCancelled(t *testing.T) {
	r := cancelled(record(0, "E1", date(2025, time.March, 3), leave.FullDayLeave), "E1")
	assert.ErrorIs(t, leave.CheckCancel(r, "E1", []leave.Record{r}), leave.ErrAlreadyCancelled)
}

func TestCheckCancel_UndatedRecordIsRefused(t *testing.T) {
	r := record(0, "E1", leave.Day{}, leave.FullDayLeave)
	assert.ErrorIs(t, leave.CheckCancel(r, "E1", []leave.Record{r}), leave.ErrInvalidDate)
	assert.Empty(t, leave.EligibleToCancel("E1", []leave.Record{r}))
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestCheckDecision(t *testing.T) {
	r := record(0, "E1", date(2025, time.March, 3), leave.FullDayLeave)
	assert.NoError(t, leave.CheckDecision(r))
	assert.ErrorIs(t, leave.CheckDecision(approved(r)), leave.ErrAlreadyDecided)
	assert.ErrorIs(t, leave.CheckDecision(rejected(r)), leave.ErrAlreadyDecided)
	assert.ErrorIs(t, leave.CheckDecision(cancelled(r, "E1")), leave.ErrAlreadyCancelled)
}

// =============================================================================
// VIEWS AND USAGE
// =============================================================================

func TestViews(t *testing.T) {
	records := []leave.Record{
		record(0, "E1", date(2025, time.May, 3), leave.FullDayLeave),
		approved(record(1, "E2", date(2025, time.March, 3), leave.FullDayLeave)),
		cancelled(record(2, "E1", date(2025, time.April, 3), leave.FullDayLeave), "E1"),
		record(3, "E1", date(2025, time.December, 3), leave.FullDayLeave),
		{Row: 4, EmployeeID: "E3"}, // undecodable date
	}
	period := leave.Period{Start: date(2025, time.March, 1), End: date(2025, time.September, 1)}

	active := leave.ActiveInRange(records, period)
	require.Len(t, active, 2)
	assert.Equal(t, []int{1, 0}, []int{active[0].Row, active[1].Row})

	pending := leave.PendingInRange(records, period)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].Row)

	assert.Len(t, leave.ApprovedActive(records, ""), 1)
	assert.Len(t, leave.ApprovedActive(records, "name e2"), 1)
	assert.Empty(t, leave.ApprovedActive(records, "Name E1"))

	mine := leave.OwnedBy(records, "E1")
	assert.Equal(t, 3, len(mine))
}

func TestSummarize(t *testing.T) {
	h1 := leave.HalfYear{Year: 2025, Half: leave.FirstHalf}
	records := []leave.Record{
		approved(record(0, "E1", date(2025, time.March, 3), leave.FullDayLeave)),
		record(1, "E1", date(2025, time.March, 4), leave.MorningLeave),
		approved(record(2, "E1", date(2025, time.March, 5), leave.AfternoonComp)),
		rejected(record(3, "E1", date(2025, time.March, 6), leave.FullDayLeave)),
		cancelled(record(4, "E1", date(2025, time.March, 7), leave.FullDayLeave), "E1"),
		record(5, "E1", date(2025, time.August, 7), leave.FullDayLeave),
		record(6, "E2", date(2025, time.March, 7), leave.FullDayComp),
	}

	all := leave.Summarize(records, h1, "")
	require.Len(t, all, 2)

	e1 := all[0]
	assert.Equal(t, "E1", e1.EmployeeID)
	assert.Equal(t, "1", e1.LeaveApproved.String())
	assert.Equal(t, "0.5", e1.LeavePending.String())
	assert.Equal(t, "0.5", e1.CompApproved.String())
	assert.True(t, e1.CompPending.IsZero())
	assert.Equal(t, "1.5", e1.TotalLeave().String())

	only := leave.Summarize(records, h1, "E2")
	require.Len(t, only, 1)
	assert.Equal(t, "1", only[0].TotalComp().String())
}
