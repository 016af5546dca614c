package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/leave"
)

func date(year int, month time.Month, day int) leave.Day {
	return leave.NewDay(year, month, day)
}

func TestParseDay_AcceptsSheetFormats(t *testing.T) {
	want := date(2025, time.March, 10)
	for _, input := range []string{
		"2025-03-10",
		" 2025-03-10 ",
		"2025-03-10 08:15:00",
		"2025-03-10T08:15:00+07:00",
		"2025/03/10",
		"10/03/2025",
		"10/3/2025",
		"45726", // Excel serial
	} {
		t.Run(input, func(t *testing.T) {
			got, err := leave.ParseDay(input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDay_RejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "2025-13-40", "-3"} {
		_, err := leave.ParseDay(input)
		assert.ErrorIs(t, err, leave.ErrInvalidDate, input)
	}
}

func TestDayOf_UsesIndochinaTime(t *testing.T) {
	// 17:30 UTC on June 30 is already July 1 in ICT.
	instant := time.Date(2025, time.June, 30, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-01", leave.DayOf(instant).String())
}

func TestTimestamp_RoundTripsInICT(t *testing.T) {
	instant := time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC)
	formatted := leave.FormatTimestamp(instant)
	assert.Equal(t, "2025-03-01 09:00:00", formatted)

	parsed, err := leave.ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, instant.Equal(parsed))

	// Typed in Excel: 2025-03-10 09:00 as a serial, read as ICT wall time.
	parsed, err = leave.ParseTimestamp("45726.375")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10 09:00:00", leave.FormatTimestamp(parsed))
}
