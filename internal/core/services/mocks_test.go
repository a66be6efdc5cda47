package services_test

import (
	"context"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock implementation of ports.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) CreateProfile(ctx context.Context, profile *domain.PregnancyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfileByID(ctx context.Context, profileID uuid.UUID) (*domain.PregnancyProfile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.PregnancyProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileRepository) ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error) {
	args := m.Called(ctx, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileRepository) UpdateProfile(ctx context.Context, profile *domain.PregnancyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockJournalRepository is a mock implementation of ports.JournalRepository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) GetEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, profileID uuid.UUID) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) DocumentedWeeks(ctx context.Context, profileID uuid.UUID) ([]int, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockJournalRepository) UpdateEntry(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, entryID, userID)
	return args.Error(0)
}

// MockSymptomRepository is a mock implementation of ports.SymptomRepository
type MockSymptomRepository struct {
	mock.Mock
}

func (m *MockSymptomRepository) ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SymptomRef), args.Error(1)
}

func (m *MockSymptomRepository) GetSymptomsByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]domain.SymptomRef, error) {
	args := m.Called(ctx, ids, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SymptomRef), args.Error(1)
}

func (m *MockSymptomRepository) CreateSymptom(ctx context.Context, symptom *domain.SymptomRef) error {
	args := m.Called(ctx, symptom)
	return args.Error(0)
}

// MockAlertPublisher is a mock implementation of ports.AlertPublisher
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishFindingAlert(ctx context.Context, alert *domain.FindingAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
