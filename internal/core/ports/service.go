package ports

import (
	"context"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
)

// ProfileService defines the business logic interface for pregnancy profiles
type ProfileService interface {
	// CreateProfile creates the caller's profile
	// Only the owner can create it; ADMIN has read-only access
	CreateProfile(ctx context.Context, req CreateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error)

	// GetProfile retrieves a profile by ID
	// Enforces ownership: ADMIN can access any, USER only their own
	GetProfile(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error)

	// ListProfiles retrieves profiles based on role
	ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error)

	// UpdateProfile edits LMP and pre-pregnancy biometrics (owner only)
	UpdateProfile(ctx context.Context, profileID uuid.UUID, req UpdateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error)

	// GetStatus computes the current pregnancy status of a profile
	GetStatus(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*PregnancyStatus, error)
}

// JournalService defines the business logic interface for journal entries
type JournalService interface {
	// CreateEntry creates the entry for one week
	// Rejects documented weeks (ErrDuplicateWeek) and weeks past the current week (ErrOutOfRange)
	// Publishes an alert when the biometrics carry abnormal findings
	CreateEntry(ctx context.Context, profileID uuid.UUID, req JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error)

	// ListEntries retrieves all entries of a profile
	ListEntries(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) ([]*domain.JournalEntry, error)

	// GetEntry retrieves a specific entry
	GetEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error)

	// UpdateEntry edits the content of an entry (owner only)
	UpdateEntry(ctx context.Context, entryID uuid.UUID, req JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error)

	// DeleteEntry deletes an entry (owner only), freeing its week
	DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) error

	// UndocumentedWeeks lists the weeks still open for an entry together with their form gates
	UndocumentedWeeks(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*UndocumentedWeeksReport, error)
}

// SymptomService defines the business logic interface for the symptom catalog
type SymptomService interface {
	ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error)
	CreateSymptom(ctx context.Context, name string, userID uuid.UUID, isAdmin bool) (*domain.SymptomRef, error)
}

// InsightService exposes the pure calculators without any storage
type InsightService interface {
	Classify(snapshot domain.BiometricSnapshot) ([]domain.AbnormalFinding, error)
	Development(week int) (domain.WeekDevelopmentFact, error)
	Timeline(selectedWeek, totalWeeks, radius int) (domain.Timeline, error)
	Gestation(lmp time.Time) (domain.GestationalAge, error)
}

// CreateProfileRequest represents the input for creating a profile
type CreateProfileRequest struct {
	LastMenstrualPeriod string   `json:"last_menstrual_period"` // yyyy/MM/dd
	PreWeightKg         float64  `json:"pre_weight"`
	PreHeightCm         *float64 `json:"pre_height,omitempty"`
}

// UpdateProfileRequest represents a partial profile edit; nil fields are kept
type UpdateProfileRequest struct {
	LastMenstrualPeriod *string  `json:"last_menstrual_period,omitempty"` // yyyy/MM/dd
	PreWeightKg         *float64 `json:"pre_weight,omitempty"`
	PreHeightCm         *float64 `json:"pre_height,omitempty"`
}

// JournalEntryRequest represents the input for creating or updating an entry
type JournalEntryRequest struct {
	CurrentWeek      int                      `json:"current_week"`
	Note             string                   `json:"note"`
	Biometrics       domain.BiometricSnapshot `json:"biometrics"`
	Mood             *domain.Mood             `json:"mood,omitempty"`
	SymptomIDs       []uuid.UUID              `json:"symptom_ids,omitempty"`
	RelatedImages    []string                 `json:"related_images,omitempty"`
	UltrasoundImages []string                 `json:"ultrasound_images,omitempty"`
}

// PregnancyStatus is the computed view of a profile as of "now".
// Gestation.Weeks is the raw elapsed count; CurrentWeek is that count clamped
// to 0..42 and is the week development, form fields and journaling refer to.
type PregnancyStatus struct {
	Profile              *domain.PregnancyProfile    `json:"profile"`
	CurrentWeek          int                         `json:"current_week"`
	Gestation            domain.GestationalAge       `json:"gestation"`
	DueDateDisplay       string                      `json:"due_date_display"`
	Development          *domain.WeekDevelopmentFact `json:"development,omitempty"` // nil past week 40
	Timeline             domain.Timeline             `json:"timeline"`
	PrePregnancyFindings []domain.AbnormalFinding    `json:"pre_pregnancy_findings"`
	FormFields           domain.FormFields           `json:"form_fields"`
}

// UndocumentedWeeksReport lists the weeks still open for a journal entry
type UndocumentedWeeksReport struct {
	ProfileID   uuid.UUID           `json:"profile_id"`
	CurrentWeek int                 `json:"current_week"`
	Weeks       []domain.FormFields `json:"weeks"`
}
