package airquality

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rd *models.AirQualityReading) (*models.AirQualityReading, error) {
	query := `
		INSERT INTO air_quality_history
			(user_key, lat, lng, location_name, aqi, pm25, pm10, no2, o3, co, so2, source, risk_level, ts, day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rd.UserKey, rd.Lat, rd.Lng, rd.LocationName, rd.AQI,
		rd.PM25, rd.PM10, rd.NO2, rd.O3, rd.CO, rd.SO2,
		rd.Source, rd.RiskLevel, rd.Timestamp, rd.Date,
	).Scan(&rd.ID, &rd.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rd, nil
}

func (r *PostgresRepository) List(ctx context.Context, userKey string, f Filter) ([]*models.AirQualityReading, error) {
	query := `
		SELECT id, user_key, lat, lng, location_name, aqi, pm25, pm10, no2, o3, co, so2,
			source, risk_level, ts, day, created_at
		FROM air_quality_history
		WHERE user_key = $1
			AND ($2::text = '' OR day >= $2)
			AND ($3::text = '' OR day <= $3)
		ORDER BY ts DESC
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, query, userKey, f.From, f.To, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AirQualityReading, 0)
	for rows.Next() {
		var item models.AirQualityReading
		if err := rows.Scan(
			&item.ID, &item.UserKey, &item.Lat, &item.Lng, &item.LocationName, &item.AQI,
			&item.PM25, &item.PM10, &item.NO2, &item.O3, &item.CO, &item.SO2,
			&item.Source, &item.RiskLevel, &item.Timestamp, &item.Date, &item.CreatedAt,
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

func (r *PostgresRepository) DailySummary(ctx context.Context, userKey, fromDay string) ([]models.DaySummary, error) {
	query := `
		SELECT day, ROUND(AVG(aqi))::INTEGER, MAX(aqi), COUNT(*)
		FROM air_quality_history
		WHERE user_key = $1 AND day >= $2
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userKey, fromDay)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise history: %w", err)
	}
	defer rows.Close()

	result := make([]models.DaySummary, 0)
	for rows.Next() {
		var d models.DaySummary
		if err := rows.Scan(&d.Date, &d.AverageAQI, &d.MaxAQI, &d.Samples); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByUserKey(ctx context.Context, userKey string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM air_quality_history WHERE user_key = $1`, userKey)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
