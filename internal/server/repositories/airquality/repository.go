// Package airquality stores the raw air-quality reading history of each userKey.
package airquality

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

// Filter narrows a history query. From and To are inclusive "YYYY-MM-DD"
// days; empty means unbounded. Limit must be positive.
type Filter struct {
	From  string
	To    string
	Limit int
}

type Repository interface {
	Create(ctx context.Context, r *models.AirQualityReading) (*models.AirQualityReading, error)
	// List returns readings newest first.
	List(ctx context.Context, userKey string, f Filter) ([]*models.AirQualityReading, error)
	// DailySummary aggregates readings from the given day onwards, oldest day first.
	DailySummary(ctx context.Context, userKey, fromDay string) ([]models.DaySummary, error)
	DeleteByUserKey(ctx context.Context, userKey string) (int64, error)
}
