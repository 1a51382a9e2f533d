package exposures

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Exposure) (*models.Exposure, error)
	// ListByProfile returns up to limit exposures, newest timestamp first.
	ListByProfile(ctx context.Context, profileID string, limit int) ([]*models.Exposure, error)
	// RecentScores returns the scores of up to limit exposures, newest first.
	RecentScores(ctx context.Context, profileID string, limit int) ([]int, error)
}
