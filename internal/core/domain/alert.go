package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity is the severity of a published finding alert
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical" // at least one severe finding
	AlertSeverityWarning  AlertSeverity = "warning"
)

// FindingAlert is published when a journal entry carries abnormal findings
type FindingAlert struct {
	ProfileID uuid.UUID         `json:"profile_id"`
	EntryID   uuid.UUID         `json:"entry_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Week      int               `json:"week"`
	Findings  []AbnormalFinding `json:"findings"`
	Severity  AlertSeverity     `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewFindingAlert builds the alert for an entry. ok is false when the entry
// has no abnormal findings and nothing should be published.
func NewFindingAlert(entry *JournalEntry, findings []AbnormalFinding, at time.Time) (*FindingAlert, bool) {
	if len(findings) == 0 {
		return nil, false
	}
	severity := AlertSeverityWarning
	if HasSevereFinding(findings) {
		severity = AlertSeverityCritical
	}
	return &FindingAlert{
		ProfileID: entry.GrowthDataID,
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Week:      entry.CurrentWeek,
		Findings:  findings,
		Severity:  severity,
		Timestamp: at.UTC(),
	}, true
}
