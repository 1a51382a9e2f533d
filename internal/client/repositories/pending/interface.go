// Package pending is the offline queue of exposures the CLI could not send.
package pending

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/client/models"
)

type Repository interface {
	Add(ctx context.Context, p *models.PendingExposure) error
	// List returns queued exposures oldest first (by timestamp, then id).
	List(ctx context.Context, userKey string) ([]*models.PendingExposure, error)
	Count(ctx context.Context, userKey string) (int, error)
	MarkFailed(ctx context.Context, id string, reason string) error
	Delete(ctx context.Context, id string) error
}
