package exports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/models"
)

// PostgresRepository implements export bookkeeping over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.HistoryExport) (*models.HistoryExport, error) {
	query := `
		INSERT INTO history_exports (user_key, storage_key, row_count, upload_status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, upload_status, created_at
	`
	err := r.db.QueryRowContext(ctx, query, e.UserKey, e.StorageKey, e.Rows).
		Scan(&e.ID, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `update history_exports set upload_status='completed' where id=$1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history_exports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.HistoryExport, error) {
	query := `
		SELECT id, user_key, storage_key, row_count, upload_status, created_at
		FROM history_exports
		WHERE id = $1
	`
	e := &models.HistoryExport{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&e.ID, &e.UserKey, &e.StorageKey, &e.Rows, &e.Status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByUserKey(ctx context.Context, userKey string, limit int) ([]*models.HistoryExport, error) {
	query := `
		SELECT id, user_key, storage_key, row_count, upload_status, created_at
		FROM history_exports
		WHERE user_key = $1 AND upload_status = 'completed'
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select exports: %w", err)
	}
	defer rows.Close()

	result := make([]*models.HistoryExport, 0)
	for rows.Next() {
		var item models.HistoryExport
		if err := rows.Scan(&item.ID, &item.UserKey, &item.StorageKey, &item.Rows, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
