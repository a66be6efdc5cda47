package services

import (
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
)

// InsightService serves the stateless calculators
type InsightService struct {
	clock domain.Clock
}

func NewInsightService(clock domain.Clock) *InsightService {
	return &InsightService{clock: clock}
}

// Classify validates a snapshot and returns its abnormal findings
func (s *InsightService) Classify(snapshot domain.BiometricSnapshot) ([]domain.AbnormalFinding, error) {
	if err := domain.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return domain.ClassifyBiometrics(snapshot), nil
}

func (s *InsightService) Development(week int) (domain.WeekDevelopmentFact, error) {
	return domain.LookupWeekDevelopment(week)
}

func (s *InsightService) Timeline(selectedWeek, totalWeeks, radius int) (domain.Timeline, error) {
	return domain.TimelineWindow(selectedWeek, totalWeeks, radius)
}

// Gestation computes gestational age for an LMP as of today
func (s *InsightService) Gestation(lmp time.Time) (domain.GestationalAge, error) {
	return domain.ComputeGestationalAge(lmp, s.clock.Now())
}
