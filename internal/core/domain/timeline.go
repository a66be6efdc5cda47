package domain

import "fmt"

// Timeline defaults used by the mobile week scroller
const (
	DefaultTimelineTotal  = TotalWeeks
	DefaultTimelineRadius = 4
)

// Timeline is the visible slice of week markers plus the progress bar value
type Timeline struct {
	SelectedWeek    int     `json:"selected_week"`
	TotalWeeks      int     `json:"total_weeks"`
	Weeks           []int   `json:"weeks"`
	ProgressPercent float64 `json:"progress_percent"`
}

// TimelineWindow computes the week markers around selectedWeek:
// max(selected-radius, 1) through min(selected+radius+1, total), inclusive.
// A selected week outside [1, total] is an error; it is never clamped.
func TimelineWindow(selectedWeek, totalWeeks, radius int) (Timeline, error) {
	if totalWeeks < 1 {
		return Timeline{}, fmt.Errorf("%w: total weeks must be at least 1", ErrInvalidInput)
	}
	if radius < 0 {
		return Timeline{}, fmt.Errorf("%w: radius must not be negative", ErrInvalidInput)
	}
	if selectedWeek < 1 || selectedWeek > totalWeeks {
		return Timeline{}, fmt.Errorf("%w: week %d is outside 1..%d", ErrOutOfRange, selectedWeek, totalWeeks)
	}

	first := max(selectedWeek-radius, 1)
	last := min(selectedWeek+radius+1, totalWeeks)

	weeks := make([]int, 0, last-first+1)
	for w := first; w <= last; w++ {
		weeks = append(weeks, w)
	}

	progress := min(float64(selectedWeek)/float64(totalWeeks)*100, 100)

	return Timeline{
		SelectedWeek:    selectedWeek,
		TotalWeeks:      totalWeeks,
		Weeks:           weeks,
		ProgressPercent: progress,
	}, nil
}
