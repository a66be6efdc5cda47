package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

func TestComputeGestationalAge_WeeksAndDays(t *testing.T) {
	lmp := date(2025, time.January, 1)
	asOf := date(2025, time.February, 20).Add(15 * time.Hour)

	age, err := domain.ComputeGestationalAge(lmp, asOf)
	require.NoError(t, err)

	// 50 days
	assert.Equal(t, 7, age.Weeks)
	assert.Equal(t, 1, age.Days)
	assert.Equal(t, domain.TrimesterFirst, age.Trimester)
	assert.Equal(t, date(2025, time.October, 8), age.DueDate)
	assert.Equal(t, 230, age.DaysUntilDue)
	assert.InDelta(t, 50.0/280*100, age.ProgressPercent, 1e-9)
}

func TestComputeGestationalAge_DueDateIsLMPPlus280Days(t *testing.T) {
	asOf := date(2026, time.March, 1)
	for lmp := date(2025, time.March, 1); !lmp.After(asOf); lmp = lmp.AddDate(0, 0, 13) {
		age, err := domain.ComputeGestationalAge(lmp, asOf)
		require.NoError(t, err)
		assert.Equal(t, 280, domain.DaysBetween(lmp, age.DueDate), "lmp %s", domain.FormatAPIDate(lmp))
	}
}

func TestComputeGestationalAge_SameDay(t *testing.T) {
	lmp := date(2025, time.May, 10)
	age, err := domain.ComputeGestationalAge(lmp, lmp.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, age.Weeks)
	assert.Equal(t, 0, age.Days)
	assert.Equal(t, 280, age.DaysUntilDue)
}

func TestComputeGestationalAge_FutureLMP(t *testing.T) {
	_, err := domain.ComputeGestationalAge(date(2025, time.June, 2), date(2025, time.June, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeGestationalAge_ZeroLMP(t *testing.T) {
	_, err := domain.ComputeGestationalAge(time.Time{}, date(2025, time.June, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeGestationalAge_Overdue(t *testing.T) {
	lmp := date(2025, time.January, 1)
	age, err := domain.ComputeGestationalAge(lmp, lmp.AddDate(0, 0, 290))
	require.NoError(t, err)
	assert.Equal(t, 41, age.Weeks)
	assert.Equal(t, -10, age.DaysUntilDue)
	assert.Equal(t, 100.0, age.ProgressPercent)
}

func TestTrimesterForWeek_Boundaries(t *testing.T) {
	cases := map[int]domain.Trimester{
		0:  domain.TrimesterFirst,
		13: domain.TrimesterFirst,
		14: domain.TrimesterSecond,
		27: domain.TrimesterSecond,
		28: domain.TrimesterThird,
		42: domain.TrimesterThird,
	}
	for week, want := range cases {
		assert.Equal(t, want, domain.TrimesterForWeek(week), "week %d", week)
	}
}

func TestPregnancyProfile_CurrentWeek(t *testing.T) {
	p := &domain.PregnancyProfile{LastMenstrualPeriod: date(2025, time.January, 1)}

	assert.Equal(t, 0, p.CurrentWeek(date(2024, time.December, 1)))
	assert.Equal(t, 2, p.CurrentWeek(date(2025, time.January, 20)))
	assert.Equal(t, domain.MaxGestationalWeek, p.CurrentWeek(date(2026, time.January, 1)))
}

func TestPregnancyProfile_PrePregnancySnapshot(t *testing.T) {
	p := &domain.PregnancyProfile{PreWeightKg: 45, PreHeightCm: ptr(160)}

	findings := domain.ClassifyBiometrics(p.PrePregnancySnapshot())
	require.Len(t, findings, 1)
	assert.Equal(t, domain.ConditionUnderweight, findings[0].Condition)

	noHeight := &domain.PregnancyProfile{PreWeightKg: 45}
	assert.Empty(t, domain.ClassifyBiometrics(noHeight.PrePregnancySnapshot()))
}

func TestPregnancyProfile_MarshalJSON_UsesAPIDates(t *testing.T) {
	p := domain.PregnancyProfile{LastMenstrualPeriod: date(2025, time.March, 7), PreWeightKg: 60}

	body, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "2025/03/07", out["last_menstrual_period"])
	assert.Equal(t, "2025/12/12", out["estimated_due_date"])
	assert.Equal(t, 60.0, out["pre_weight"])
	assert.NotContains(t, out, "pre_height")
}

func TestGestationalAge_MarshalJSON_UsesAPIDate(t *testing.T) {
	age, err := domain.ComputeGestationalAge(date(2025, time.March, 7), date(2025, time.June, 1))
	require.NoError(t, err)

	body, err := json.Marshal(age)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "2025/12/12", out["due_date"])
	assert.Equal(t, float64(12), out["weeks"])
	assert.Equal(t, float64(2), out["days"])
	assert.Equal(t, float64(1), out["trimester"])
}

func TestValidateLMP_And_PreBiometrics(t *testing.T) {
	clock := domain.FixedClock{T: date(2025, time.June, 1)}

	assert.NoError(t, domain.ValidateLMP(date(2024, time.August, 10), clock))
	assert.ErrorIs(t, domain.ValidateLMP(date(2024, time.June, 1), clock), domain.ErrInvalidInput)
	assert.ErrorIs(t, domain.ValidateLMP(date(2025, time.June, 2), clock), domain.ErrInvalidInput)

	assert.NoError(t, domain.ValidatePreBiometrics(62, nil))
	assert.ErrorIs(t, domain.ValidatePreBiometrics(301, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, domain.ValidatePreBiometrics(62, ptr(260)), domain.ErrInvalidInput)
}

func TestValidateProfileInput(t *testing.T) {
	clock := domain.FixedClock{T: date(2025, time.June, 1).Add(9 * time.Hour)}

	tests := []struct {
		name    string
		lmp     time.Time
		weight  float64
		height  *float64
		wantErr bool
	}{
		{"valid", date(2025, time.March, 1), 62, ptr(168), false},
		{"lmp today", date(2025, time.June, 1), 62, nil, false},
		{"lmp tomorrow", date(2025, time.June, 2), 62, nil, true},
		{"lmp missing", time.Time{}, 62, nil, true},
		{"lmp too old", date(2024, time.May, 1), 62, nil, true},
		{"weight zero", date(2025, time.March, 1), 0, nil, true},
		{"height too small", date(2025, time.March, 1), 62, ptr(50), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateProfileInput(tt.lmp, tt.weight, tt.height, clock)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
