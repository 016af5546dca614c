package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-registry/leave"
)

func ict(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, leave.ICT)
}

func TestRegistrationWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart leave.Day
		wantEnd   leave.Day
	}{
		{"early year", ict(2025, time.January, 5), date(2025, time.February, 1), date(2025, time.July, 31)},
		{"day before boundary", ict(2025, time.June, 30), date(2025, time.February, 1), date(2025, time.July, 31)},
		{"on boundary", ict(2025, time.July, 1), date(2025, time.July, 1), date(2026, time.January, 31)},
		{"year end", ict(2025, time.December, 31), date(2025, time.July, 1), date(2026, time.January, 31)},
		{"boundary reached in ICT only", time.Date(2025, time.June, 30, 18, 0, 0, 0, time.UTC), date(2025, time.July, 1), date(2026, time.January, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := leave.RegistrationWindow(tt.now)
			assert.Equal(t, tt.wantStart.String(), w.Start.String())
			assert.Equal(t, tt.wantEnd.String(), w.End.String())
		})
	}
}

func TestHalfYearOf(t *testing.T) {
	assert.Equal(t, leave.HalfYear{Year: 2025, Half: leave.FirstHalf}, leave.HalfYearOf(date(2025, time.June, 30)))
	assert.Equal(t, leave.HalfYear{Year: 2025, Half: leave.SecondHalf}, leave.HalfYearOf(date(2025, time.July, 1)))
	assert.Equal(t, "2025-H2", leave.HalfYearOf(date(2025, time.December, 31)).String())

	h1 := leave.HalfYear{Year: 2025, Half: leave.FirstHalf}.Period()
	assert.Equal(t, "[2025-01-01, 2025-06-30]", h1.String())
	assert.False(t, h1.Contains(date(2024, time.June, 1)))
}

func TestDefaultViewRange(t *testing.T) {
	r := leave.DefaultViewRange(ict(2025, time.March, 15))
	assert.Equal(t, "2025-03-15", r.Start.String())
	assert.Equal(t, "2025-09-15", r.End.String())
}
