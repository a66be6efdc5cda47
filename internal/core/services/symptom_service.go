package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
)

const maxSymptomNameLength = 100

// SymptomService implements the symptom catalog: shared templates plus
// custom symptoms scoped to their creator
type SymptomService struct {
	symptomRepo ports.SymptomRepository
}

// NewSymptomService creates a new symptom service
func NewSymptomService(symptomRepo ports.SymptomRepository) *SymptomService {
	return &SymptomService{symptomRepo: symptomRepo}
}

// ListSymptoms returns templates and the caller's custom symptoms
func (s *SymptomService) ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error) {
	symptoms, err := s.symptomRepo.ListSymptoms(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symptoms: %w", err)
	}
	if symptoms == nil {
		symptoms = []domain.SymptomRef{}
	}
	return symptoms, nil
}

// CreateSymptom adds a custom symptom for the caller
func (s *SymptomService) CreateSymptom(ctx context.Context, name string, userID uuid.UUID, isAdmin bool) (*domain.SymptomRef, error) {
	if isAdmin {
		return nil, fmt.Errorf("%w: ADMIN cannot create custom symptoms", domain.ErrForbidden)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: symptom name cannot be empty", domain.ErrInvalidInput)
	}
	if len(name) > maxSymptomNameLength {
		return nil, fmt.Errorf("%w: symptom name must be at most %d characters", domain.ErrInvalidInput, maxSymptomNameLength)
	}

	owner := userID
	symptom := &domain.SymptomRef{
		ID:         uuid.New(),
		Name:       name,
		IsTemplate: false,
		UserID:     &owner,
	}
	if err := s.symptomRepo.CreateSymptom(ctx, symptom); err != nil {
		return nil, fmt.Errorf("failed to create symptom: %w", err)
	}
	return symptom, nil
}
