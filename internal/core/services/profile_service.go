package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileService implements business logic for pregnancy profiles
// Enforces RBAC and ownership rules
type ProfileService struct {
	profileRepo ports.ProfileRepository
	clock       domain.Clock
	logger      zerolog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ports.ProfileRepository, clock domain.Clock, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		clock:       clock,
		logger:      logger.With().Str("component", "profile_service").Logger(),
	}
}

// CreateProfile creates the caller's pregnancy profile
// ADMIN cannot create profiles (read-only access); a user has at most one
func (s *ProfileService) CreateProfile(ctx context.Context, req ports.CreateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	if isAdmin {
		return nil, fmt.Errorf("%w: only the expecting user can create a profile", domain.ErrForbidden)
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	lmp, err := domain.ParseAPIDate(req.LastMenstrualPeriod)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateProfileInput(lmp, req.PreWeightKg, req.PreHeightCm, s.clock); err != nil {
		return nil, err
	}

	// The unique index on user_id is the final guard; this gives a clean error first
	existing, err := s.profileRepo.GetProfileByUserID(ctx, userID)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateProfile, userID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	now := s.clock.Now().UTC()
	profile := &domain.PregnancyProfile{
		ID:                  uuid.New(),
		UserID:              userID,
		LastMenstrualPeriod: lmp,
		PreWeightKg:         req.PreWeightKg,
		PreHeightCm:         req.PreHeightCm,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.profileRepo.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info().
		Str("event", "profile_created").
		Str("profile_id", profile.ID.String()).
		Str("user_id", userID.String()).
		Str("lmp", domain.FormatAPIDate(lmp)).
		Msg("pregnancy profile created")

	return profile, nil
}

// GetProfile retrieves a profile by ID
// Enforces ownership: ADMIN can access any, USER only their own
func (s *ProfileService) GetProfile(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	return s.authorizedProfile(ctx, profileID, userID, isAdmin)
}

// ListProfiles retrieves profiles based on role
// ADMIN: all profiles, USER: only their own
func (s *ProfileService) ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error) {
	ownerID := userID
	if isAdmin {
		ownerID = uuid.Nil
	}

	profiles, err := s.profileRepo.ListProfiles(ctx, ownerID, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if profiles == nil {
		profiles = []*domain.PregnancyProfile{}
	}
	return profiles, nil
}

// UpdateProfile edits LMP and pre-pregnancy biometrics
// Only the owner can edit; omitted fields keep their value
func (s *ProfileService) UpdateProfile(ctx context.Context, profileID uuid.UUID, req ports.UpdateProfileRequest, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	if isAdmin {
		return nil, fmt.Errorf("%w: only the owner can edit a profile", domain.ErrForbidden)
	}

	profile, err := s.authorizedProfile(ctx, profileID, userID, false)
	if err != nil {
		return nil, err
	}

	updated := *profile
	if req.LastMenstrualPeriod != nil {
		lmp, err := domain.ParseAPIDate(*req.LastMenstrualPeriod)
		if err != nil {
			return nil, err
		}
		if err := domain.ValidateLMP(lmp, s.clock); err != nil {
			return nil, err
		}
		updated.LastMenstrualPeriod = lmp
	}
	if req.PreWeightKg != nil {
		updated.PreWeightKg = *req.PreWeightKg
	}
	if req.PreHeightCm != nil {
		updated.PreHeightCm = req.PreHeightCm
	}

	if err := domain.ValidatePreBiometrics(updated.PreWeightKg, updated.PreHeightCm); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.clock.Now().UTC()

	if err := s.profileRepo.UpdateProfile(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().
		Str("event", "profile_updated").
		Str("profile_id", updated.ID.String()).
		Str("lmp", domain.FormatAPIDate(updated.LastMenstrualPeriod)).
		Msg("pregnancy profile updated")

	return &updated, nil
}

// GetStatus computes gestational age, development, timeline and
// pre-pregnancy BMI findings for a profile as of now
func (s *ProfileService) GetStatus(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*ports.PregnancyStatus, error) {
	profile, err := s.authorizedProfile(ctx, profileID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	gestation, err := domain.ComputeGestationalAge(profile.LastMenstrualPeriod, now)
	if err != nil {
		return nil, err
	}

	status := &ports.PregnancyStatus{
		Profile:              profile,
		Gestation:            gestation,
		DueDateDisplay:       domain.FormatDisplayDate(gestation.DueDate),
		PrePregnancyFindings: domain.ClassifyBiometrics(profile.PrePregnancySnapshot()),
	}

	week := profile.CurrentWeek(now)
	status.CurrentWeek = week
	fact, err := domain.LookupWeekDevelopment(week)
	switch {
	case err == nil:
		status.Development = &fact
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	// the week scroller always shows a week in 1..40
	selected := min(max(week, 1), domain.TotalWeeks)
	timeline, err := domain.TimelineWindow(selected, domain.DefaultTimelineTotal, domain.DefaultTimelineRadius)
	if err != nil {
		return nil, err
	}
	status.Timeline = timeline
	status.FormFields = domain.FormFieldsForWeek(week)

	return status, nil
}

// authorizedProfile loads a profile and hides it from non-owners
func (s *ProfileService) authorizedProfile(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %s", domain.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Don't leak ownership info - return generic not found
	if !isAdmin && profile.UserID != userID {
		return nil, fmt.Errorf("%w: profile %s", domain.ErrNotFound, profileID)
	}

	return profile, nil
}
