package domain_test

import (
	"testing"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineWindow_LowerClamp(t *testing.T) {
	tl, err := domain.TimelineWindow(1, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, tl.Weeks)
	assert.Equal(t, 2.5, tl.ProgressPercent)
	assert.Equal(t, 1, tl.SelectedWeek)
	assert.Equal(t, 40, tl.TotalWeeks)
}

func TestTimelineWindow_UpperClamp(t *testing.T) {
	tl, err := domain.TimelineWindow(40, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{36, 37, 38, 39, 40}, tl.Weeks)
	assert.Equal(t, 100.0, tl.ProgressPercent)
}

func TestTimelineWindow_Middle(t *testing.T) {
	tl, err := domain.TimelineWindow(20, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{16, 17, 18, 19, 20, 21, 22, 23, 24, 25}, tl.Weeks)
	assert.Equal(t, 50.0, tl.ProgressPercent)
}

func TestTimelineWindow_AlwaysContainsSelectedWeek(t *testing.T) {
	for total := 1; total <= 42; total++ {
		for radius := 0; radius <= 6; radius++ {
			for sel := 1; sel <= total; sel++ {
				tl, err := domain.TimelineWindow(sel, total, radius)
				require.NoError(t, err)
				assert.Contains(t, tl.Weeks, sel)
				assert.GreaterOrEqual(t, tl.Weeks[0], 1)
				assert.LessOrEqual(t, tl.Weeks[len(tl.Weeks)-1], total)
				assert.LessOrEqual(t, tl.ProgressPercent, 100.0)
			}
		}
	}
}

func TestTimelineWindow_ZeroRadius(t *testing.T) {
	tl, err := domain.TimelineWindow(10, 40, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, tl.Weeks)
}

func TestTimelineWindow_Errors(t *testing.T) {
	_, err := domain.TimelineWindow(0, 40, 4)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	_, err = domain.TimelineWindow(41, 40, 4)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	_, err = domain.TimelineWindow(1, 0, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = domain.TimelineWindow(1, 40, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
