package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Constraint names created by config.InitDatabase
const (
	ConstraintProfileUser = "pregnancy_profiles_user_id_key"
	ConstraintEntryWeek   = "journal_entries_growth_data_id_current_week_key"
)

const uniqueViolation = pq.ErrorCode("23505")

// BreakerConfig tunes the circuit breakers around each aggregate
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// SQLRepository implements ProfileRepository, JournalRepository and
// SymptomRepository using PostgreSQL
// Includes retry logic and circuit breaker for resilience
type SQLRepository struct {
	db         *sql.DB
	profileCB  *gobreaker.CircuitBreaker
	journalCB  *gobreaker.CircuitBreaker
	symptomCB  *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewSQLRepository creates a new PostgreSQL repository with circuit breakers
func NewSQLRepository(db *sql.DB, cfg BreakerConfig, logger zerolog.Logger) *SQLRepository {
	r := &SQLRepository{
		db:         db,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		logger:     logger.With().Str("component", "sql_repository").Logger(),
	}
	r.profileCB = r.newBreaker("profiles", cfg)
	r.journalCB = r.newBreaker("journal_entries", cfg)
	r.symptomCB = r.newBreaker("symptoms", cfg)
	return r
}

func (r *SQLRepository) newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 5
	}
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Not-found and constraint violations say nothing about database health
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// executeWithRetry executes a database operation with retry logic
// Permanent errors (not found, unique violations) are returned immediately
func (r *SQLRepository) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lastErr = err
		if i < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", r.maxRetries, lastErr)
}

func isPermanent(err error) bool {
	return errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicateWeek) ||
		errors.Is(err, domain.ErrDuplicateProfile) ||
		errors.Is(err, context.Canceled)
}

// MapPQError translates unique violations on known constraints into domain errors
func MapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case ConstraintEntryWeek:
		return fmt.Errorf("%w (%s)", domain.ErrDuplicateWeek, pqErr.Detail)
	case ConstraintProfileUser:
		return fmt.Errorf("%w (%s)", domain.ErrDuplicateProfile, pqErr.Detail)
	}
	return err
}

// notFound converts sql.ErrNoRows into domain.ErrNotFound
func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return err
}

// ProfileRepository implementation

const profileColumns = `id, user_id, last_menstrual_period, pre_weight_kg, pre_height_cm, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.PregnancyProfile, error) {
	var p domain.PregnancyProfile
	if err := row.Scan(&p.ID, &p.UserID, &p.LastMenstrualPeriod, &p.PreWeightKg, &p.PreHeightCm, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.LastMenstrualPeriod = domain.CalendarDay(p.LastMenstrualPeriod)
	return &p, nil
}

func (r *SQLRepository) CreateProfile(ctx context.Context, profile *domain.PregnancyProfile) error {
	_, err := r.profileCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO pregnancy_profiles (` + profileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
			_, err := r.db.ExecContext(ctx, query,
				profile.ID, profile.UserID, profile.LastMenstrualPeriod, profile.PreWeightKg,
				profile.PreHeightCm, profile.CreatedAt, profile.UpdatedAt)
			return MapPQError(err)
		})
	})
	return err
}

func (r *SQLRepository) GetProfileByID(ctx context.Context, profileID uuid.UUID) (*domain.PregnancyProfile, error) {
	result, err := r.profileCB.Execute(func() (interface{}, error) {
		var profile *domain.PregnancyProfile
		err := r.executeWithRetry(ctx, func() error {
			var err error
			query := `SELECT ` + profileColumns + ` FROM pregnancy_profiles WHERE id = $1`
			profile, err = scanProfile(r.db.QueryRowContext(ctx, query, profileID))
			return err
		})
		if err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return nil, notFound(err, "profile", profileID)
	}
	return result.(*domain.PregnancyProfile), nil
}

func (r *SQLRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*domain.PregnancyProfile, error) {
	result, err := r.profileCB.Execute(func() (interface{}, error) {
		var profile *domain.PregnancyProfile
		err := r.executeWithRetry(ctx, func() error {
			var err error
			query := `SELECT ` + profileColumns + ` FROM pregnancy_profiles WHERE user_id = $1`
			profile, err = scanProfile(r.db.QueryRowContext(ctx, query, userID))
			return err
		})
		if err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return nil, notFound(err, "profile for user", userID)
	}
	return result.(*domain.PregnancyProfile), nil
}

func (r *SQLRepository) ListProfiles(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*domain.PregnancyProfile, error) {
	result, err := r.profileCB.Execute(func() (interface{}, error) {
		var profiles []*domain.PregnancyProfile
		err := r.executeWithRetry(ctx, func() error {
			profiles = nil
			var rows *sql.Rows
			var queryErr error

			if isAdmin {
				// ADMIN can see all profiles
				rows, queryErr = r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM pregnancy_profiles ORDER BY created_at DESC`)
			} else {
				rows, queryErr = r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM pregnancy_profiles WHERE user_id = $1 ORDER BY created_at DESC`, userID)
			}
			if queryErr != nil {
				return queryErr
			}
			defer rows.Close()

			for rows.Next() {
				p, err := scanProfile(rows)
				if err != nil {
					return err
				}
				profiles = append(profiles, p)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return profiles, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.PregnancyProfile), nil
}

func (r *SQLRepository) UpdateProfile(ctx context.Context, profile *domain.PregnancyProfile) error {
	_, err := r.profileCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `UPDATE pregnancy_profiles
				SET last_menstrual_period = $2, pre_weight_kg = $3, pre_height_cm = $4, updated_at = $5
				WHERE id = $1`
			res, err := r.db.ExecContext(ctx, query,
				profile.ID, profile.LastMenstrualPeriod, profile.PreWeightKg, profile.PreHeightCm, profile.UpdatedAt)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: profile %s", domain.ErrNotFound, profile.ID)
			}
			return nil
		})
	})
	return err
}

// Ensure SQLRepository implements the interfaces
var (
	_ ports.ProfileRepository = (*SQLRepository)(nil)
	_ ports.JournalRepository = (*SQLRepository)(nil)
	_ ports.SymptomRepository = (*SQLRepository)(nil)
)
