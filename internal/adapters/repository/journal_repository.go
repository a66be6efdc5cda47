package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const entryColumns = `id, growth_data_id, user_id, current_week, note,
	systolic_bp, diastolic_bp, heart_rate_bpm, blood_sugar_mg_dl, weight_kg, height_cm,
	mood, symptoms, related_images, ultrasound_images, created_at, updated_at`

func scanEntry(row rowScanner) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var mood sql.NullString
	var symptoms []byte

	err := row.Scan(
		&e.ID, &e.GrowthDataID, &e.UserID, &e.CurrentWeek, &e.Note,
		&e.Biometrics.SystolicBP, &e.Biometrics.DiastolicBP, &e.Biometrics.HeartRateBPM,
		&e.Biometrics.BloodSugarLevelMgDl, &e.Biometrics.WeightKg, &e.Biometrics.HeightCm,
		&mood, &symptoms, pq.Array(&e.RelatedImages), pq.Array(&e.UltrasoundImages),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mood.Valid {
		m := domain.Mood(mood.String)
		e.Mood = &m
	}
	e.Symptoms = []domain.SymptomRef{}
	if len(symptoms) > 0 {
		if err := json.Unmarshal(symptoms, &e.Symptoms); err != nil {
			return nil, fmt.Errorf("failed to decode symptoms of entry %s: %w", e.ID, err)
		}
	}
	if e.RelatedImages == nil {
		e.RelatedImages = []string{}
	}
	if e.UltrasoundImages == nil {
		e.UltrasoundImages = []string{}
	}
	return &e, nil
}

// entryArgs returns the mutable columns in entryColumns order after the keys
func entryArgs(e *domain.JournalEntry) ([]any, error) {
	symptoms := e.Symptoms
	if symptoms == nil {
		symptoms = []domain.SymptomRef{}
	}
	symptomsJSON, err := json.Marshal(symptoms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode symptoms: %w", err)
	}

	var mood any
	if e.Mood != nil {
		mood = string(*e.Mood)
	}

	return []any{
		e.Note,
		e.Biometrics.SystolicBP, e.Biometrics.DiastolicBP, e.Biometrics.HeartRateBPM,
		e.Biometrics.BloodSugarLevelMgDl, e.Biometrics.WeightKg, e.Biometrics.HeightCm,
		mood, symptomsJSON, pq.Array(e.RelatedImages), pq.Array(e.UltrasoundImages),
	}, nil
}

// JournalRepository implementation

func (r *SQLRepository) CreateEntry(ctx context.Context, entry *domain.JournalEntry) error {
	fields, err := entryArgs(entry)
	if err != nil {
		return err
	}
	args := append([]any{entry.ID, entry.GrowthDataID, entry.UserID, entry.CurrentWeek}, fields...)
	args = append(args, entry.CreatedAt, entry.UpdatedAt)

	_, err = r.journalCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO journal_entries (` + entryColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
			_, err := r.db.ExecContext(ctx, query, args...)
			return MapPQError(err)
		})
	})
	return err
}

func (r *SQLRepository) GetEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error) {
	result, err := r.journalCB.Execute(func() (interface{}, error) {
		var entry *domain.JournalEntry
		err := r.executeWithRetry(ctx, func() error {
			var err error
			query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`
			entry, err = scanEntry(r.db.QueryRowContext(ctx, query, entryID))
			return err
		})
		if err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		return nil, notFound(err, "journal entry", entryID)
	}
	return result.(*domain.JournalEntry), nil
}

func (r *SQLRepository) ListEntries(ctx context.Context, profileID uuid.UUID) ([]*domain.JournalEntry, error) {
	result, err := r.journalCB.Execute(func() (interface{}, error) {
		var entries []*domain.JournalEntry
		err := r.executeWithRetry(ctx, func() error {
			entries = nil
			query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE growth_data_id = $1 ORDER BY current_week`
			rows, err := r.db.QueryContext(ctx, query, profileID)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				e, err := scanEntry(rows)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.JournalEntry), nil
}

func (r *SQLRepository) DocumentedWeeks(ctx context.Context, profileID uuid.UUID) ([]int, error) {
	result, err := r.journalCB.Execute(func() (interface{}, error) {
		weeks := []int{}
		err := r.executeWithRetry(ctx, func() error {
			weeks = weeks[:0]
			rows, err := r.db.QueryContext(ctx,
				`SELECT current_week FROM journal_entries WHERE growth_data_id = $1 ORDER BY current_week`, profileID)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var w int
				if err := rows.Scan(&w); err != nil {
					return err
				}
				weeks = append(weeks, w)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return weeks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]int), nil
}

func (r *SQLRepository) UpdateEntry(ctx context.Context, entry *domain.JournalEntry) error {
	fields, err := entryArgs(entry)
	if err != nil {
		return err
	}
	args := append([]any{entry.ID}, fields...)
	args = append(args, entry.UpdatedAt)

	_, err = r.journalCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `UPDATE journal_entries SET
				note = $2, systolic_bp = $3, diastolic_bp = $4, heart_rate_bpm = $5,
				blood_sugar_mg_dl = $6, weight_kg = $7, height_cm = $8, mood = $9,
				symptoms = $10, related_images = $11, ultrasound_images = $12, updated_at = $13
				WHERE id = $1`
			res, err := r.db.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: journal entry %s", domain.ErrNotFound, entry.ID)
			}
			return nil
		})
	})
	return err
}

// DeleteEntry deletes an entry owned by userID
func (r *SQLRepository) DeleteEntry(ctx context.Context, entryID uuid.UUID, userID uuid.UUID) error {
	_, err := r.journalCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: journal entry %s", domain.ErrNotFound, entryID)
			}
			return nil
		})
	})
	return err
}
