// Package exports keeps track of history exports uploaded to object storage.
package exports

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type Repository interface {
	// Create records a pending export and fills its ID and CreatedAt.
	Create(ctx context.Context, e *models.HistoryExport) (*models.HistoryExport, error)
	// MarkUploaded flips an export to completed. Exactly one row must change.
	MarkUploaded(ctx context.Context, id string) error
	// Delete removes an export row. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	// GetByID returns common.ErrorNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.HistoryExport, error)
	// ListByUserKey returns completed exports, newest first.
	ListByUserKey(ctx context.Context, userKey string, limit int) ([]*models.HistoryExport, error)
}
