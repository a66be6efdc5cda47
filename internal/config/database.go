package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// TemplateSymptoms is the shared symptom catalog seeded on migration
var TemplateSymptoms = []string{
	"Nausea",
	"Vomiting",
	"Fatigue",
	"Headache",
	"Back pain",
	"Heartburn",
	"Constipation",
	"Swelling",
	"Cramps",
	"Dizziness",
	"Breast tenderness",
	"Frequent urination",
	"Insomnia",
	"Mood swings",
	"Shortness of breath",
	"Braxton Hicks contractions",
}

var schema = []struct {
	name string
	sql  string
}{
	{"pregnancy_profiles", `
	CREATE TABLE IF NOT EXISTS pregnancy_profiles (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		last_menstrual_period DATE NOT NULL,
		pre_weight_kg DOUBLE PRECISION NOT NULL,
		pre_height_cm DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT pregnancy_profiles_user_id_key UNIQUE (user_id),
		CONSTRAINT chk_pre_weight CHECK (pre_weight_kg > 0 AND pre_weight_kg <= 300)
	);`},
	{"symptoms", `
	CREATE TABLE IF NOT EXISTS symptoms (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		is_template BOOLEAN NOT NULL DEFAULT false,
		user_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		-- templates are shared, custom symptoms always have an owner
		CONSTRAINT chk_symptom_owner CHECK (is_template = (user_id IS NULL))
	);`},
	{"journal_entries", `
	CREATE TABLE IF NOT EXISTS journal_entries (
		id UUID PRIMARY KEY,
		growth_data_id UUID NOT NULL REFERENCES pregnancy_profiles(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		current_week INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		systolic_bp DOUBLE PRECISION,
		diastolic_bp DOUBLE PRECISION,
		heart_rate_bpm DOUBLE PRECISION,
		blood_sugar_mg_dl DOUBLE PRECISION,
		weight_kg DOUBLE PRECISION,
		height_cm DOUBLE PRECISION,
		mood TEXT,
		symptoms JSONB NOT NULL DEFAULT '[]'::jsonb,
		related_images TEXT[] NOT NULL DEFAULT '{}',
		ultrasound_images TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		-- one entry per profile and week, enforced atomically for concurrent writers
		CONSTRAINT journal_entries_growth_data_id_current_week_key UNIQUE (growth_data_id, current_week),
		CONSTRAINT chk_current_week CHECK (current_week BETWEEN 1 AND 40),
		CONSTRAINT chk_related_images CHECK (cardinality(related_images) <= 2),
		CONSTRAINT chk_ultrasound_images CHECK (cardinality(ultrasound_images) <= 2)
	);`},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_journal_entries_user_id ON journal_entries(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_symptoms_user_id ON symptoms(user_id)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_symptoms_template_name ON symptoms(name) WHERE is_template",
}

// InitDatabase creates the schema if missing and seeds template symptoms
// With reset set, existing tables are dropped first
func InitDatabase(ctx context.Context, db *sql.DB, reset bool, logger zerolog.Logger) error {
	if reset {
		logger.Warn().Msg("dropping existing tables (DROP_TABLES_ON_STARTUP=true)")
		for _, table := range []string{"journal_entries", "symptoms", "pregnancy_profiles"} {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
				logger.Warn().Err(err).Str("table", table).Msg("failed to drop table")
			}
		}
	}

	for _, t := range schema {
		logger.Info().Str("table", t.name).Msg("creating table")
		if _, err := db.ExecContext(ctx, t.sql); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			logger.Warn().Err(err).Str("index", indexSQL).Msg("failed to create index")
		}
	}

	if err := seedTemplateSymptoms(ctx, db); err != nil {
		return err
	}

	logger.Info().Msg("database schema initialized successfully")
	return nil
}

func seedTemplateSymptoms(ctx context.Context, db *sql.DB) error {
	for _, name := range TemplateSymptoms {
		_, err := db.ExecContext(ctx,
			`INSERT INTO symptoms (id, name, is_template, user_id) VALUES ($1, $2, true, NULL)
			ON CONFLICT (name) WHERE is_template DO NOTHING`,
			uuid.New(), name)
		if err != nil {
			return fmt.Errorf("failed to seed symptom %q: %w", name, err)
		}
	}
	return nil
}

// ConnectDatabase establishes a connection to PostgreSQL with retry logic
func ConnectDatabase(databaseURL string, maxRetries int, retryDelay time.Duration, logger zerolog.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("failed to open database connection")
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
		}

		// Test the connection
		if err = db.Ping(); err != nil {
			logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("failed to ping database")
			db.Close()
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to ping database after %d attempts: %w", maxRetries, err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		logger.Info().Msg("database connection established")
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}
