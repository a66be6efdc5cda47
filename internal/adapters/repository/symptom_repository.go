package repository

import (
	"context"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func scanSymptom(row rowScanner) (domain.SymptomRef, error) {
	var s domain.SymptomRef
	var owner uuid.NullUUID
	if err := row.Scan(&s.ID, &s.Name, &s.IsTemplate, &owner); err != nil {
		return domain.SymptomRef{}, err
	}
	if owner.Valid {
		id := owner.UUID
		s.UserID = &id
	}
	return s, nil
}

func (r *SQLRepository) querySymptoms(ctx context.Context, query string, args ...any) ([]domain.SymptomRef, error) {
	result, err := r.symptomCB.Execute(func() (interface{}, error) {
		symptoms := []domain.SymptomRef{}
		err := r.executeWithRetry(ctx, func() error {
			symptoms = symptoms[:0]
			rows, err := r.db.QueryContext(ctx, query, args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				s, err := scanSymptom(rows)
				if err != nil {
					return err
				}
				symptoms = append(symptoms, s)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return symptoms, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.SymptomRef), nil
}

// ListSymptoms returns templates first, then the user's custom symptoms
func (r *SQLRepository) ListSymptoms(ctx context.Context, userID uuid.UUID) ([]domain.SymptomRef, error) {
	return r.querySymptoms(ctx,
		`SELECT id, name, is_template, user_id FROM symptoms
		WHERE is_template OR user_id = $1
		ORDER BY is_template DESC, name`, userID)
}

func (r *SQLRepository) GetSymptomsByIDs(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) ([]domain.SymptomRef, error) {
	if len(ids) == 0 {
		return []domain.SymptomRef{}, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	return r.querySymptoms(ctx,
		`SELECT id, name, is_template, user_id FROM symptoms
		WHERE id = ANY($1::uuid[]) AND (is_template OR user_id = $2)
		ORDER BY name`, pq.Array(strIDs), userID)
}

func (r *SQLRepository) CreateSymptom(ctx context.Context, symptom *domain.SymptomRef) error {
	_, err := r.symptomCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO symptoms (id, name, is_template, user_id) VALUES ($1, $2, $3, $4)`,
				symptom.ID, symptom.Name, symptom.IsTemplate, symptom.UserID)
			return err
		})
	})
	return err
}
