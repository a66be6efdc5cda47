package ports

import (
	"context"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
)

// ProfileRepository defines the interface for pregnancy profile persistence
type ProfileRepository interface {
	// CreateProfile stores a new profile
	// Returns domain.ErrDuplicateProfile if the user already has one
	CreateProfile(ctx context.Context, profile *domain.PregnancyProfile) error

	// GetProfileByID retrieves a profile by ID
	// Returns domain.ErrNotFound if it doesn't exist
	GetProfileByID(ctx context.Context, profileID uuid.UUID) (*domain.PregnancyProfile, error)

	// GetProfileByUserID retrieves the profile owned by a user
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.PregnancyProfile, error)

	// ListProfiles retrieves profiles based on role:
	// ADMIN: all profiles
	// USER: only the profile where user_id matches
	ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error)

	// UpdateProfile persists the LMP and pre-pregnancy biometrics of a profile
	UpdateProfile(ctx context.Context, profile *domain.PregnancyProfile) error
}

// JournalRepository defines the interface for journal entry persistence
type JournalRepository interface {
	// CreateEntry stores a new entry
	// Returns domain.ErrDuplicateWeek if the profile already has an entry for the week
	CreateEntry(ctx context.Context, entry *domain.JournalEntry) error

	// GetEntryByID retrieves a specific entry
	GetEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error)

	// ListEntries retrieves all entries of a profile ordered by week
	ListEntries(ctx context.Context, profileID uuid.UUID) ([]*domain.JournalEntry, error)

	// DocumentedWeeks returns the weeks that already have an entry
	DocumentedWeeks(ctx context.Context, profileID uuid.UUID) ([]int, error)

	// UpdateEntry replaces the content of an entry; the week never changes
	UpdateEntry(ctx context.Context, entry *domain.JournalEntry) error

	// DeleteEntry deletes an entry
	// Validates that the entry belongs to the specified user before deletion
	DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID) error
}

// SymptomRepository defines the interface for the symptom catalog
type SymptomRepository interface {
	// ListSymptoms returns the template catalog plus the user's custom symptoms
	ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error)

	// GetSymptomsByIDs resolves symptom IDs visible to the user.
	// Unknown or foreign IDs are omitted from the result.
	GetSymptomsByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]domain.SymptomRef, error)

	// CreateSymptom stores a custom symptom
	CreateSymptom(ctx context.Context, symptom *domain.SymptomRef) error
}

// AlertPublisher defines the interface for publishing alerts to RabbitMQ
type AlertPublisher interface {
	// PublishFindingAlert publishes an alert event for abnormal findings
	PublishFindingAlert(ctx context.Context, alert *domain.FindingAlert) error
}

// AlertBroadcaster pushes consumed alerts to connected clinicians
type AlertBroadcaster interface {
	BroadcastAlert(alert *domain.FindingAlert)
}
