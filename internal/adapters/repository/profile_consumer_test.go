package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
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

func TestProfileConsumer_HandleMessage(t *testing.T) {
	userID := uuid.New()
	height := 168.0
	body := fmt.Sprintf(`{"user_id":%q,"last_menstrual_period":"2025/03/01","pre_weight":62.5,"pre_height":168}`, userID)
	expectedReq := ports.CreateProfileRequest{LastMenstrualPeriod: "2025/03/01", PreWeightKg: 62.5, PreHeightCm: &height}

	tests := []struct {
		name    string
		err     error
		outcome deliveryOutcome
	}{
		{"created", nil, outcomeAck},
		{"already exists", fmt.Errorf("%w: %s", domain.ErrDuplicateProfile, userID), outcomeAck},
		{"invalid lmp", fmt.Errorf("%w: lmp in future", domain.ErrInvalidInput), outcomeReject},
		{"database down", assert.AnError, outcomeRequeue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProfileService)
			consumer := &ProfileConsumer{profileService: mockService, logger: zerolog.Nop()}

			if tt.err == nil {
				mockService.On("CreateProfile", mock.Anything, expectedReq, userID, false).
					Return(&domain.PregnancyProfile{ID: uuid.New(), UserID: userID}, nil)
			} else {
				mockService.On("CreateProfile", mock.Anything, expectedReq, userID, false).Return(nil, tt.err)
			}

			assert.Equal(t, tt.outcome, consumer.handleMessage(context.Background(), []byte(body)))
			mockService.AssertExpectations(t)
		})
	}
}

func TestProfileConsumer_HandleMessage_Malformed(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"user_id":"not-a-uuid","last_menstrual_period":"2025/03/01","pre_weight":60}`,
		`{"user_id":"00000000-0000-0000-0000-000000000000","last_menstrual_period":"2025/03/01","pre_weight":60}`,
	} {
		mockService := new(MockProfileService)
		consumer := &ProfileConsumer{profileService: mockService, logger: zerolog.Nop()}

		assert.Equal(t, outcomeReject, consumer.handleMessage(context.Background(), []byte(body)), "body %s", body)
		mockService.AssertNotCalled(t, "CreateProfile")
	}
}
