package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectProfile = `
	SELECT id, user_key, user_id, nickname, home_city, points, streak, best_streak,
		last_active_date, created_at, updated_at
	FROM profiles
	WHERE user_key = $1`

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, p *models.Profile) (bool, error) {
	query := `
		INSERT INTO profiles (user_key, user_id, nickname, home_city)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_key) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, p.UserKey, p.UserID, p.Nickname, p.HomeCity)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) GetByUserKey(ctx context.Context, userKey string) (*models.Profile, error) {
	return r.get(ctx, selectProfile, userKey)
}

func (r *PostgresRepository) GetByUserKeyForUpdate(ctx context.Context, userKey string) (*models.Profile, error) {
	return r.get(ctx, selectProfile+"\n\tFOR UPDATE", userKey)
}

func (r *PostgresRepository) get(ctx context.Context, query, userKey string) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userKey).Scan(
		&p.ID, &p.UserKey, &p.UserID, &p.Nickname, &p.HomeCity, &p.Points, &p.Streak, &p.BestStreak,
		&p.LastActiveDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET user_id = $2, nickname = $3, home_city = $4, points = $5, streak = $6,
			best_streak = $7, last_active_date = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Nickname, p.HomeCity, p.Points, p.Streak, p.BestStreak, p.LastActiveDate,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
