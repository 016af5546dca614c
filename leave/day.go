package leave

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LOCAL TIME - The department works on Indochina Time
// =============================================================================

// ICT is Indochina Time (UTC+7, no daylight saving).
var ICT = time.FixedZone("ICT", 7*60*60)

// TimestampLayout is how registeredAt is written to the sheet.
const TimestampLayout = "2006-01-02 15:04:05"

// DayLayout is how requested dates are written to the sheet.
const DayLayout = "2006-01-02"

// =============================================================================
// DAY - A calendar date without time of day
// =============================================================================

// Day is a calendar date. The wrapped time is always midnight UTC so that
// comparisons never depend on the zone a value came from.
type Day struct {
	Time time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the ICT calendar date of an instant.
func DayOf(t time.Time) Day {
	local := t.In(ICT)
	return NewDay(local.Year(), local.Month(), local.Day())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic
func (d Day) AddDays(n int) Day   { return Day{Time: d.Time.AddDate(0, 0, n)} }
func (d Day) AddMonths(n int) Day { return Day{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DayLayout)
}

// =============================================================================
// PARSING - Sheet cells were typed by hand over several schema versions
// =============================================================================

var dayLayouts = []string{
	DayLayout,
	TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006", // day-first, as typed in Vietnam
	"2/1/2006",
}

// ParseDay reads a requested date cell. Besides the canonical layout it
// accepts the formats earlier sheet versions used and Excel date serials.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, ErrInvalidDate
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDay(t.Year(), t.Month(), t.Day()), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return NewDay(t.Year(), t.Month(), t.Day()), nil
		}
	}

	return Day{}, ErrInvalidDate
}

// ParseTimestamp reads a registeredAt cell as ICT wall time. Excel
// serials are accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(TimestampLayout, s, ICT); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			t = t.Round(time.Second)
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, ICT), nil
		}
	}
	return time.Parse(time.RFC3339, s)
}

// FormatTimestamp writes an instant as ICT wall time.
func FormatTimestamp(t time.Time) string {
	return t.In(ICT).Format(TimestampLayout)
}
