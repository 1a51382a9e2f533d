package healthprofiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const returningColumns = `user_key, age, gender, activity_level, outdoor_exposure, conditions,
		sensitivity, is_complete, created_at, updated_at`

func scanHealthProfile(row *sql.Row) (*models.HealthProfile, error) {
	hp := &models.HealthProfile{}
	err := row.Scan(&hp.UserKey, &hp.Age, &hp.Gender, &hp.ActivityLevel, &hp.OutdoorExposure,
		&hp.Conditions, &hp.Sensitivity, &hp.IsComplete, &hp.CreatedAt, &hp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if hp.Conditions == nil {
		hp.Conditions = pq.StringArray{}
	}
	return hp, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userKey string) (*models.HealthProfile, error) {
	query := `SELECT ` + returningColumns + `
		FROM health_profiles
		WHERE user_key = $1`
	return scanHealthProfile(r.db.QueryRowContext(ctx, query, userKey))
}

func (r *PostgresRepository) Upsert(ctx context.Context, hp *models.HealthProfile) (*models.HealthProfile, error) {
	query := `
		INSERT INTO health_profiles (user_key, age, gender, activity_level, outdoor_exposure, conditions, sensitivity, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_key) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			outdoor_exposure = EXCLUDED.outdoor_exposure,
			conditions = EXCLUDED.conditions,
			sensitivity = EXCLUDED.sensitivity,
			is_complete = EXCLUDED.is_complete,
			updated_at = now()
		RETURNING ` + returningColumns

	conditions := hp.Conditions
	if conditions == nil {
		conditions = pq.StringArray{}
	}
	return scanHealthProfile(r.db.QueryRowContext(ctx, query,
		hp.UserKey, hp.Age, hp.Gender, hp.ActivityLevel, hp.OutdoorExposure, conditions, hp.Sensitivity, hp.IsComplete))
}

func (r *PostgresRepository) UpdateConditions(ctx context.Context, userKey string, conditions pq.StringArray, sensitivity string) (*models.HealthProfile, error) {
	query := `
		UPDATE health_profiles
		SET conditions = $2,
			sensitivity = COALESCE(NULLIF($3, ''), sensitivity),
			updated_at = now()
		WHERE user_key = $1
		RETURNING ` + returningColumns

	if conditions == nil {
		conditions = pq.StringArray{}
	}
	return scanHealthProfile(r.db.QueryRowContext(ctx, query, userKey, conditions, sensitivity))
}

func (r *PostgresRepository) Delete(ctx context.Context, userKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM health_profiles WHERE user_key = $1`, userKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
