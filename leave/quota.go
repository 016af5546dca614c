/*
quota.go - Cancellation quota per employee and half-year

RULES:
  - The year splits into H1 [Jan 1, Jun 30] and H2 [Jul 1, Dec 31].
  - A cancellation counts against the half-year of the cancelled record's
    requested date, attributed to whoever cancelled it (nguoiHuy).
  - Each employee has MaxCancellationsPerPeriod cancellations per half-year.
  - Counting runs over all records: the cancelled ones are exactly the
    events being counted.

  Administrator cancellations go through AdminCancel and skip the quota,
  but they are still attributed to the administrator's id.

SEE ALSO:
  - service.go: Cancel / AdminCancel
*/
package leave

// MaxCancellationsPerPeriod is how many records an employee may cancel per
// half-year.
const MaxCancellationsPerPeriod = 2

// UsedCancellations counts the cancellations employeeID performed on
// records requested within period.
func UsedCancellations(employeeID string, records []Record, period HalfYear) int {
	used := 0
	for _, r := range records {
		if r.Cancellation != nil &&
			r.Cancellation.CancelledBy == employeeID &&
			!r.RequestedDate.IsZero() &&
			period.Contains(r.RequestedDate) {
			used++
		}
	}
	return used
}

// RemainingIn returns the cancellations employeeID has left in period.
func RemainingIn(employeeID string, records []Record, period HalfYear) int {
	return max(0, MaxCancellationsPerPeriod-UsedCancellations(employeeID, records, period))
}

// QuotaSummary is the remaining quota of both halves of one year.
type QuotaSummary struct {
	Year                int
	FirstHalfRemaining  int
	SecondHalfRemaining int
}

// RemainingQuota returns the quota employeeID has left in both halves of
// today's year.
func RemainingQuota(employeeID string, records []Record, today Day) QuotaSummary {
	year := today.Year()
	return QuotaSummary{
		Year:                year,
		FirstHalfRemaining:  RemainingIn(employeeID, records, HalfYear{Year: year, Half: FirstHalf}),
		SecondHalfRemaining: RemainingIn(employeeID, records, HalfYear{Year: year, Half: SecondHalf}),
	}
}

// EligibleToCancel returns the active records of employeeID whose
// half-year still has quota left for them.
func EligibleToCancel(employeeID string, records []Record) []Record {
	remaining := make(map[HalfYear]int)
	var eligible []Record
	for _, r := range records {
		if !r.IsActive() || r.EmployeeID != employeeID || r.RequestedDate.IsZero() {
			continue
		}
		period := HalfYearOf(r.RequestedDate)
		left, ok := remaining[period]
		if !ok {
			left = RemainingIn(employeeID, records, period)
			remaining[period] = left
		}
		if left > 0 {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

// CheckCancel decides whether actingEmployeeID may cancel rec under the
// quota rules.
func CheckCancel(rec Record, actingEmployeeID string, records []Record) error {
	if !rec.IsActive() {
		return ErrAlreadyCancelled
	}
	// Without a date there is no period to charge.
	if rec.RequestedDate.IsZero() {
		return ErrInvalidDate
	}
	period := HalfYearOf(rec.RequestedDate)
	used := UsedCancellations(actingEmployeeID, records, period)
	if used >= MaxCancellationsPerPeriod {
		return &QuotaExceededError{
			EmployeeID: actingEmployeeID,
			Period:     period,
			Used:       used,
			Max:        MaxCancellationsPerPeriod,
		}
	}
	return nil
}
