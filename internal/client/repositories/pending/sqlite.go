package pending

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, p *models.PendingExposure) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_exposures (id, user_key, payload, timestamp)
		VALUES (?, ?, ?, ?)`,
		p.ID, p.UserKey, p.Payload, p.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to queue exposure: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userKey string) ([]*models.PendingExposure, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_key, payload, timestamp, attempts, last_error, created_at
		FROM pending_exposures
		WHERE user_key = ?
		ORDER BY timestamp, id`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending exposures: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingExposure
	for rows.Next() {
		p := &models.PendingExposure{}
		if err := rows.Scan(&p.ID, &p.UserKey, &p.Payload, &p.Timestamp, &p.Attempts, &p.LastError, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending exposure: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, userKey string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_exposures WHERE user_key = ?`, userKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending exposures: %w", err)
	}
	return n, nil
}

// MarkFailed bumps the attempt counter and records why the last replay failed.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pending_exposures SET attempts = attempts + 1, last_error = ?
		WHERE id = ?`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to update pending exposure: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_exposures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending exposure: %w", err)
	}
	return nil
}
