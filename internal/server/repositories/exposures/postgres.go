// Package exposures provides PostgreSQL-backed storage for logged exposures.
package exposures

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/models"
)

// PostgresRepository implements exposure storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts e and fills its ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, e *models.Exposure) (*models.Exposure, error) {
	query := `
		INSERT INTO exposures (profile_id, lat, lon, location_name, ts, pm25, no2, co, mode, risk_level, tips, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ProfileID, e.Lat, e.Lon, e.LocationName, e.Timestamp, e.PM25, e.NO2, e.CO,
		e.Mode, e.RiskLevel, e.Tips, e.Score,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByProfile(ctx context.Context, profileID string, limit int) ([]*models.Exposure, error) {
	query := `
		SELECT id, profile_id, lat, lon, location_name, ts, pm25, no2, co, mode, risk_level, tips, score, created_at
		FROM exposures
		WHERE profile_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select exposures: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Exposure, 0, limit)
	for rows.Next() {
		var item models.Exposure
		if err := rows.Scan(
			&item.ID, &item.ProfileID, &item.Lat, &item.Lon, &item.LocationName, &item.Timestamp,
			&item.PM25, &item.NO2, &item.CO, &item.Mode, &item.RiskLevel, &item.Tips, &item.Score, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) RecentScores(ctx context.Context, profileID string, limit int) ([]int, error) {
	query := `
		SELECT score FROM exposures
		WHERE profile_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
