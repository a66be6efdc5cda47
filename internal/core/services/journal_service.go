package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JournalService implements business logic for weekly journal entries
// Enforces RBAC, ownership and the one-entry-per-week rule, publishes
// alerts for abnormal findings
type JournalService struct {
	journalRepo    ports.JournalRepository
	profileRepo    ports.ProfileRepository
	symptomRepo    ports.SymptomRepository
	alertPublisher ports.AlertPublisher
	clock          domain.Clock
	logger         zerolog.Logger

	// publishAsync is swapped in tests to publish synchronously
	publishAsync func(func())
}

// NewJournalService creates a new journal service
func NewJournalService(
	journalRepo ports.JournalRepository,
	profileRepo ports.ProfileRepository,
	symptomRepo ports.SymptomRepository,
	alertPublisher ports.AlertPublisher,
	clock domain.Clock,
	logger zerolog.Logger,
) *JournalService {
	return &JournalService{
		journalRepo:    journalRepo,
		profileRepo:    profileRepo,
		symptomRepo:    symptomRepo,
		alertPublisher: alertPublisher,
		clock:          clock,
		logger:         logger.With().Str("component", "journal_service").Logger(),
		publishAsync:   func(f func()) { go f() },
	}
}

// CreateEntry creates the journal entry for one week
// Only the owner can create entries; ADMIN is read-only
func (s *JournalService) CreateEntry(ctx context.Context, profileID uuid.UUID, req ports.JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	if isAdmin {
		return nil, fmt.Errorf("%w: only the owner can create journal entries", domain.ErrForbidden)
	}

	if err := domain.ValidateEntryContent(req.Note, req.Mood, req.Biometrics, req.RelatedImages, req.UltrasoundImages); err != nil {
		return nil, err
	}

	profile, err := s.ownedProfile(ctx, profileID, userID, false)
	if err != nil {
		return nil, err
	}

	documented, err := s.journalRepo.DocumentedWeeks(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documented weeks: %w", err)
	}

	currentWeek := profile.CurrentWeek(s.clock.Now())
	if err := domain.CheckWeekAvailable(req.CurrentWeek, currentWeek, domain.NewWeekSet(documented...)); err != nil {
		return nil, err
	}

	symptoms, err := s.resolveSymptoms(ctx, req.SymptomIDs, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	entry := &domain.JournalEntry{
		ID:               uuid.New(),
		GrowthDataID:     profileID,
		UserID:           userID,
		CurrentWeek:      req.CurrentWeek,
		Note:             strings.TrimSpace(req.Note),
		Biometrics:       req.Biometrics,
		Mood:             req.Mood,
		Symptoms:         symptoms,
		RelatedImages:    nonNilStrings(req.RelatedImages),
		UltrasoundImages: nonNilStrings(req.UltrasoundImages),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// A concurrent create for the same week loses on the unique constraint
	// and surfaces as ErrDuplicateWeek from the repository
	if err := s.journalRepo.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateWeek) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	findings := entry.RefreshFindings()
	journalEntriesTotal.WithLabelValues("create").Inc()
	s.logEntry(entry, "journal_entry_created")
	s.publishFindings(entry, findings)

	return entry, nil
}

// ListEntries retrieves all entries of a profile
// Enforces ownership: ADMIN can access any, USER only their own
func (s *JournalService) ListEntries(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) ([]*domain.JournalEntry, error) {
	if _, err := s.ownedProfile(ctx, profileID, userID, isAdmin); err != nil {
		return nil, err
	}

	entries, err := s.journalRepo.ListEntries(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	for _, e := range entries {
		e.RefreshFindings()
	}
	return entries, nil
}

// GetEntry retrieves a specific entry
// Enforces ownership: ADMIN can access any, USER only their own
func (s *JournalService) GetEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	entry, err := s.ownedEntry(ctx, entryID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	entry.RefreshFindings()
	return entry, nil
}

// UpdateEntry replaces the content of an entry
// The week of an entry cannot change; delete and recreate instead
func (s *JournalService) UpdateEntry(ctx context.Context, entryID uuid.UUID, req ports.JournalEntryRequest, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	if isAdmin {
		return nil, fmt.Errorf("%w: only the owner can edit journal entries", domain.ErrForbidden)
	}

	if err := domain.ValidateEntryContent(req.Note, req.Mood, req.Biometrics, req.RelatedImages, req.UltrasoundImages); err != nil {
		return nil, err
	}

	entry, err := s.ownedEntry(ctx, entryID, userID, false)
	if err != nil {
		return nil, err
	}
	if req.CurrentWeek != 0 && req.CurrentWeek != entry.CurrentWeek {
		return nil, fmt.Errorf("%w: current_week of an entry cannot be changed", domain.ErrInvalidInput)
	}

	symptoms, err := s.resolveSymptoms(ctx, req.SymptomIDs, userID)
	if err != nil {
		return nil, err
	}

	entry.Note = strings.TrimSpace(req.Note)
	entry.Biometrics = req.Biometrics
	entry.Mood = req.Mood
	entry.Symptoms = symptoms
	entry.RelatedImages = nonNilStrings(req.RelatedImages)
	entry.UltrasoundImages = nonNilStrings(req.UltrasoundImages)
	entry.UpdatedAt = s.clock.Now().UTC()

	if err := s.journalRepo.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	findings := entry.RefreshFindings()
	journalEntriesTotal.WithLabelValues("update").Inc()
	s.logEntry(entry, "journal_entry_updated")
	s.publishFindings(entry, findings)

	return entry, nil
}

// DeleteEntry deletes an entry, making its week available again
// Only the owner can delete; ADMIN is read-only
func (s *JournalService) DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) error {
	if isAdmin {
		return fmt.Errorf("%w: only the owner can delete journal entries", domain.ErrForbidden)
	}

	entry, err := s.ownedEntry(ctx, entryID, userID, false)
	if err != nil {
		return err
	}

	if err := s.journalRepo.DeleteEntry(ctx, entry.ID, userID); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	journalEntriesTotal.WithLabelValues("delete").Inc()
	s.logEntry(entry, "journal_entry_deleted")
	return nil
}

// UndocumentedWeeks lists the weeks up to the current one that have no entry yet
func (s *JournalService) UndocumentedWeeks(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*ports.UndocumentedWeeksReport, error) {
	profile, err := s.ownedProfile(ctx, profileID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	documented, err := s.journalRepo.DocumentedWeeks(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documented weeks: %w", err)
	}

	currentWeek := profile.CurrentWeek(s.clock.Now())
	weeks := domain.UndocumentedWeeks(currentWeek, domain.NewWeekSet(documented...))

	report := &ports.UndocumentedWeeksReport{
		ProfileID:   profileID,
		CurrentWeek: currentWeek,
		Weeks:       make([]domain.FormFields, 0, len(weeks)),
	}
	for _, w := range weeks {
		report.Weeks = append(report.Weeks, domain.FormFieldsForWeek(w))
	}
	return report, nil
}

// publishFindings publishes an alert without blocking the response
func (s *JournalService) publishFindings(entry *domain.JournalEntry, findings []domain.AbnormalFinding) {
	for _, f := range findings {
		abnormalFindingsTotal.WithLabelValues(string(f.Field), string(f.Severity)).Inc()
	}

	alert, ok := domain.NewFindingAlert(entry, findings, s.clock.Now())
	if !ok {
		return
	}

	s.publishAsync(func() {
		// Use background context to avoid cancellation with the request
		if err := s.alertPublisher.PublishFindingAlert(context.Background(), alert); err != nil {
			alertPublishFailuresTotal.Inc()
			s.logger.Error().Err(err).
				Str("entry_id", alert.EntryID.String()).
				Str("severity", string(alert.Severity)).
				Msg("failed to publish finding alert")
			return
		}
		s.logEntry(entry, "alert_published")
	})
}

// resolveSymptoms maps requested IDs to symptoms visible to the user
func (s *JournalService) resolveSymptoms(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]domain.SymptomRef, error) {
	if len(ids) == 0 {
		return []domain.SymptomRef{}, nil
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	symptoms, err := s.symptomRepo.GetSymptomsByIDs(ctx, unique, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve symptoms: %w", err)
	}
	if len(symptoms) != len(unique) {
		return nil, fmt.Errorf("%w: unknown symptom in symptom_ids", domain.ErrInvalidInput)
	}
	return symptoms, nil
}

func (s *JournalService) ownedProfile(ctx context.Context, profileID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.PregnancyProfile, error) {
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

func (s *JournalService) ownedEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID, isAdmin bool) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.GetEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: journal entry %s", domain.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	if !isAdmin && entry.UserID != userID {
		return nil, fmt.Errorf("%w: journal entry %s", domain.ErrNotFound, entryID)
	}
	return entry, nil
}

func (s *JournalService) logEntry(e *domain.JournalEntry, event string) {
	evt := s.logger.Info().
		Str("event", event).
		Str("entry_id", e.ID.String()).
		Str("profile_id", e.GrowthDataID.String()).
		Int("week", e.CurrentWeek).
		Int("findings", len(e.Findings)).
		Int("symptoms", len(e.Symptoms))
	if e.Mood != nil {
		evt = evt.Str("mood", string(*e.Mood))
	}
	evt.Msg("journal entry event")
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
