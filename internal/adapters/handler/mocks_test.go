package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/adapters/middleware"
	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProfileService is a mock implementation of ports.ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) CreateProfile(ctx context.Context, req ports.CreateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	args := m.Called(ctx, req, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileService) GetProfile(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	args := m.Called(ctx, profileID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileService) ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error) {
	args := m.Called(ctx, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, profileID uuid.UUID, req ports.UpdateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	args := m.Called(ctx, profileID, req, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PregnancyProfile), args.Error(1)
}

func (m *MockProfileService) GetStatus(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*ports.PregnancyStatus, error) {
	args := m.Called(ctx, profileID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PregnancyStatus), args.Error(1)
}

// MockJournalService is a mock implementation of ports.JournalService
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) CreateEntry(ctx context.Context, profileID uuid.UUID, req ports.JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	args := m.Called(ctx, profileID, req, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, profileID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) UpdateEntry(ctx context.Context, entryID uuid.UUID, req ports.JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) error {
	args := m.Called(ctx, entryID, userID, isAdmin)
	return args.Error(0)
}

func (m *MockJournalService) UndocumentedWeeks(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*ports.UndocumentedWeeksReport, error) {
	args := m.Called(ctx, profileID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.UndocumentedWeeksReport), args.Error(1)
}

// MockSymptomService is a mock implementation of ports.SymptomService
type MockSymptomService struct {
	mock.Mock
}

func (m *MockSymptomService) ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SymptomRef), args.Error(1)
}

func (m *MockSymptomService) CreateSymptom(ctx context.Context, name string, userID uuid.UUID, isAdmin bool) (*domain.SymptomRef, error) {
	args := m.Called(ctx, name, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SymptomRef), args.Error(1)
}

// MockInsightService is a mock implementation of ports.InsightService
type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) Classify(snapshot domain.BiometricSnapshot) ([]domain.AbnormalFinding, error) {
	args := m.Called(snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AbnormalFinding), args.Error(1)
}

func (m *MockInsightService) Development(week int) (domain.WeekDevelopmentFact, error) {
	args := m.Called(week)
	return args.Get(0).(domain.WeekDevelopmentFact), args.Error(1)
}

func (m *MockInsightService) Timeline(selectedWeek, totalWeeks, radius int) (domain.Timeline, error) {
	args := m.Called(selectedWeek, totalWeeks, radius)
	return args.Get(0).(domain.Timeline), args.Error(1)
}

func (m *MockInsightService) Gestation(lmp time.Time) (domain.GestationalAge, error) {
	args := m.Called(lmp)
	return args.Get(0).(domain.GestationalAge), args.Error(1)
}

// withIdentity attaches an authenticated caller to the request
func withIdentity(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return req.WithContext(ctx)
}

func fptr(v float64) *float64 { return &v }
