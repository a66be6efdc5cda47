package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIDate_RoundTrip(t *testing.T) {
	for _, s := range []string{"2025/01/01", "2024/02/29", "2025/12/31", "1999/07/04"} {
		d, err := domain.ParseAPIDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, domain.FormatAPIDate(d))
		assert.Equal(t, time.UTC, d.Location())
	}
}

func TestFormatParseAPIDate_KeepsCalendarDayAcrossOffsets(t *testing.T) {
	for _, offsetHours := range []int{-12, -9, -5, -1, 0, 1, 5, 9, 14} {
		zone := time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
		for _, hour := range []int{0, 1, 12, 23} {
			in := time.Date(2025, time.March, 1, hour, 30, 0, 0, zone)
			t.Run(fmt.Sprintf("%s_%02dh", zone.String(), hour), func(t *testing.T) {
				out, err := domain.ParseAPIDate(domain.FormatAPIDate(in))
				require.NoError(t, err)
				assert.True(t, domain.CalendarDay(in).Equal(out), "got %s", out)
				assert.Equal(t, "2025/03/01", domain.FormatAPIDate(out))
			})
		}
	}
}

func TestParseAPIDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "  ", "2025-01-01", "2025/13/01", "2025/02/30", "01/02/2025"} {
		_, err := domain.ParseAPIDate(s)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", s)
	}
}

func TestDaysBetween_IgnoresTimeOfDayAndZone(t *testing.T) {
	plus9 := time.FixedZone("UTC+9", 9*3600)
	from := time.Date(2025, time.March, 29, 23, 30, 0, 0, plus9)
	to := time.Date(2025, time.March, 31, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 2, domain.DaysBetween(from, to))
	assert.Equal(t, -2, domain.DaysBetween(to, from))
}

func TestAddDaysAndWeeks(t *testing.T) {
	d := date(2024, time.February, 27)
	assert.Equal(t, date(2024, time.March, 1), domain.AddDays(d, 3))
	assert.Equal(t, date(2024, time.February, 20), domain.AddDays(d, -7))
	assert.Equal(t, date(2024, time.March, 12), domain.AddWeeks(d, 2))
}

func TestIsAfterTodayAndIsToday(t *testing.T) {
	clock := domain.FixedClock{T: time.Date(2025, time.June, 1, 22, 0, 0, 0, time.UTC)}

	assert.True(t, domain.IsToday(date(2025, time.June, 1), clock))
	assert.False(t, domain.IsAfterToday(date(2025, time.June, 1), clock))
	assert.True(t, domain.IsAfterToday(date(2025, time.June, 2), clock))
	assert.False(t, domain.IsToday(date(2025, time.May, 31), clock))
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "Mar 7, 2025", domain.FormatDisplayDate(date(2025, time.March, 7)))
}
