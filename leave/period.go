package leave

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - An inclusive range of days
// =============================================================================

// Period is the closed range [Start, End].
type Period struct {
	Start Day
	End   Day
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// HALF-YEAR - The unit cancellation quotas are counted in
// =============================================================================

type Half int

const (
	FirstHalf  Half = 1 // Jan 1 - Jun 30
	SecondHalf Half = 2 // Jul 1 - Dec 31
)

// HalfYear identifies one of the two fixed halves of a calendar year.
type HalfYear struct {
	Year int
	Half Half
}

// HalfYearOf returns the half-year containing d.
func HalfYearOf(d Day) HalfYear {
	if d.Month() < time.July {
		return HalfYear{Year: d.Year(), Half: FirstHalf}
	}
	return HalfYear{Year: d.Year(), Half: SecondHalf}
}

// Period returns the days of the half-year.
func (h HalfYear) Period() Period {
	if h.Half == FirstHalf {
		return Period{Start: NewDay(h.Year, time.January, 1), End: NewDay(h.Year, time.June, 30)}
	}
	return Period{Start: NewDay(h.Year, time.July, 1), End: NewDay(h.Year, time.December, 31)}
}

func (h HalfYear) Contains(d Day) bool { return HalfYearOf(d) == h }

func (h HalfYear) String() string { return fmt.Sprintf("%d-H%d", h.Year, h.Half) }

// =============================================================================
// REGISTRATION WINDOW
// =============================================================================

// RegistrationWindow returns the range of days that may be requested on the
// ICT calendar date of now. Before July 1 the window is Feb 1 - Jul 31 of the
// same year; from July 1 it is Jul 1 - Jan 31 of the following year.
func RegistrationWindow(now time.Time) Period {
	today := DayOf(now)
	year := today.Year()
	if today.Before(NewDay(year, time.July, 1)) {
		return Period{Start: NewDay(year, time.February, 1), End: NewDay(year, time.July, 31)}
	}
	return Period{Start: NewDay(year, time.July, 1), End: NewDay(year+1, time.January, 31)}
}

// DefaultViewRange is the range the leave lists open with: today through
// six months from today.
func DefaultViewRange(now time.Time) Period {
	today := DayOf(now)
	return Period{Start: today, End: today.AddMonths(6)}
}
