package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gestation constants
const (
	GestationDays      = 280 // fixed 40-week term, no ultrasound correction
	TotalWeeks         = 40
	MaxGestationalWeek = 42
	LastJournalWeek    = 40
)

// Trimester is one of the three pregnancy phases
type Trimester int

const (
	TrimesterFirst  Trimester = 1 // weeks 0-13
	TrimesterSecond Trimester = 2 // weeks 14-27
	TrimesterThird  Trimester = 3 // weeks 28+
)

// TrimesterForWeek returns the trimester a gestational week belongs to.
// The lower edge of each band is inclusive: week 13 is first, week 14 is second.
func TrimesterForWeek(week int) Trimester {
	switch {
	case week <= 13:
		return TrimesterFirst
	case week <= 27:
		return TrimesterSecond
	default:
		return TrimesterThird
	}
}

// GestationalAge is the result of a gestational computation
type GestationalAge struct {
	Weeks           int       `json:"weeks"`
	Days            int       `json:"days"` // remaining days within the current week, 0-6
	DueDate         time.Time `json:"due_date"`
	Trimester       Trimester `json:"trimester"`
	DaysUntilDue    int       `json:"days_until_due"` // negative once overdue
	ProgressPercent float64   `json:"progress_percent"`
}

// ComputeGestationalAge derives gestational age, due date and trimester from
// an LMP date as of a given instant. Both are compared as calendar days.
// An LMP after asOf is rejected rather than clamped.
func ComputeGestationalAge(lmp, asOf time.Time) (GestationalAge, error) {
	if lmp.IsZero() {
		return GestationalAge{}, fmt.Errorf("%w: last menstrual period is required", ErrInvalidInput)
	}

	elapsed := DaysBetween(lmp, asOf)
	if elapsed < 0 {
		return GestationalAge{}, fmt.Errorf("%w: last menstrual period %s is in the future",
			ErrInvalidInput, FormatAPIDate(CalendarDay(lmp)))
	}

	weeks := elapsed / 7
	progress := float64(elapsed) / GestationDays * 100
	if progress > 100 {
		progress = 100
	}

	return GestationalAge{
		Weeks:           weeks,
		Days:            elapsed % 7,
		DueDate:         EstimatedDueDate(lmp),
		Trimester:       TrimesterForWeek(weeks),
		DaysUntilDue:    GestationDays - elapsed,
		ProgressPercent: progress,
	}, nil
}

// MarshalJSON writes the due date in the API date layout
func (g GestationalAge) MarshalJSON() ([]byte, error) {
	type gestationJSON GestationalAge
	return json.Marshal(struct {
		gestationJSON
		DueDate string `json:"due_date"`
	}{
		gestationJSON: gestationJSON(g),
		DueDate:       FormatAPIDate(g.DueDate),
	})
}

// EstimatedDueDate returns LMP + 280 days
func EstimatedDueDate(lmp time.Time) time.Time {
	return AddDays(lmp, GestationDays)
}

// PregnancyProfile is created once per user when tracking starts
type PregnancyProfile struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"` // From Identity Service JWT
	LastMenstrualPeriod time.Time `json:"last_menstrual_period"`
	PreWeightKg         float64   `json:"pre_weight"`
	PreHeightCm         *float64  `json:"pre_height,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MarshalJSON writes LMP and due date in the API date layout
func (p PregnancyProfile) MarshalJSON() ([]byte, error) {
	type profileJSON PregnancyProfile
	return json.Marshal(struct {
		profileJSON
		LastMenstrualPeriod string `json:"last_menstrual_period"`
		EstimatedDueDate    string `json:"estimated_due_date"`
	}{
		profileJSON:         profileJSON(p),
		LastMenstrualPeriod: FormatAPIDate(p.LastMenstrualPeriod),
		EstimatedDueDate:    FormatAPIDate(p.EstimatedDueDate()),
	})
}

// EstimatedDueDate returns the profile's due date
func (p *PregnancyProfile) EstimatedDueDate() time.Time {
	return EstimatedDueDate(p.LastMenstrualPeriod)
}

// CurrentWeek returns whole weeks since LMP, clamped to [0, 42]
func (p *PregnancyProfile) CurrentWeek(asOf time.Time) int {
	weeks := DaysBetween(p.LastMenstrualPeriod, asOf) / 7
	if weeks < 0 {
		return 0
	}
	if weeks > MaxGestationalWeek {
		return MaxGestationalWeek
	}
	return weeks
}

// PrePregnancySnapshot returns the pre-pregnancy weight/height as a snapshot
// so the BMI rules can be applied to it
func (p *PregnancyProfile) PrePregnancySnapshot() BiometricSnapshot {
	snapshot := BiometricSnapshot{}
	if p.PreWeightKg > 0 {
		w := p.PreWeightKg
		snapshot.WeightKg = &w
	}
	if p.PreHeightCm != nil {
		h := *p.PreHeightCm
		snapshot.HeightCm = &h
	}
	return snapshot
}

// ValidateProfileInput checks the values a profile is created with
func ValidateProfileInput(lmp time.Time, preWeightKg float64, preHeightCm *float64, clock Clock) error {
	if err := ValidateLMP(lmp, clock); err != nil {
		return err
	}
	return ValidatePreBiometrics(preWeightKg, preHeightCm)
}

// ValidateLMP checks a newly supplied LMP: not in the future and at most
// 42 weeks back
func ValidateLMP(lmp time.Time, clock Clock) error {
	if lmp.IsZero() {
		return fmt.Errorf("%w: last_menstrual_period is required", ErrInvalidInput)
	}
	if IsAfterToday(lmp, clock) {
		return fmt.Errorf("%w: last_menstrual_period cannot be in the future", ErrInvalidInput)
	}
	if DaysBetween(lmp, clock.Now())/7 > MaxGestationalWeek {
		return fmt.Errorf("%w: last_menstrual_period is more than %d weeks ago", ErrInvalidInput, MaxGestationalWeek)
	}
	return nil
}

// ValidatePreBiometrics checks pre-pregnancy weight and the optional height
func ValidatePreBiometrics(preWeightKg float64, preHeightCm *float64) error {
	if preWeightKg <= 0 || preWeightKg > 300 {
		return fmt.Errorf("%w: pre_weight must be between 0 and 300 kg", ErrInvalidInput)
	}
	if preHeightCm != nil && (*preHeightCm < 100 || *preHeightCm > 250) {
		return fmt.Errorf("%w: pre_height must be between 100 and 250 cm", ErrInvalidInput)
	}
	return nil
}
