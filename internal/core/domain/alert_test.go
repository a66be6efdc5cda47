package domain_test

import (
	"testing"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFindingAlert(t *testing.T) {
	entry := &domain.JournalEntry{
		ID:           uuid.New(),
		GrowthDataID: uuid.New(),
		UserID:       uuid.New(),
		CurrentWeek:  24,
		Biometrics:   domain.BiometricSnapshot{SystolicBP: ptr(170), DiastolicBP: ptr(100), HeartRateBPM: ptr(120)},
	}
	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	alert, ok := domain.NewFindingAlert(entry, entry.RefreshFindings(), at)
	require.True(t, ok)
	assert.Equal(t, entry.ID, alert.EntryID)
	assert.Equal(t, entry.GrowthDataID, alert.ProfileID)
	assert.Equal(t, entry.UserID, alert.UserID)
	assert.Equal(t, 24, alert.Week)
	assert.Len(t, alert.Findings, 2)
	assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
	assert.Equal(t, time.UTC, alert.Timestamp.Location())
	assert.True(t, alert.Timestamp.Equal(at))
}

func TestNewFindingAlert_WarningWithoutSevereFinding(t *testing.T) {
	entry := &domain.JournalEntry{ID: uuid.New(), Biometrics: domain.BiometricSnapshot{BloodSugarLevelMgDl: ptr(110)}}

	alert, ok := domain.NewFindingAlert(entry, entry.RefreshFindings(), time.Now())
	require.True(t, ok)
	assert.Equal(t, domain.AlertSeverityWarning, alert.Severity)
}

func TestNewFindingAlert_NoFindings(t *testing.T) {
	alert, ok := domain.NewFindingAlert(&domain.JournalEntry{}, nil, time.Now())
	assert.False(t, ok)
	assert.Nil(t, alert)
}
