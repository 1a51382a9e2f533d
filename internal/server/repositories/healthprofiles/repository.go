// Package healthprofiles stores the self-reported health context keyed by userKey.
package healthprofiles

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/lib/pq"
)

type Repository interface {
	Get(ctx context.Context, userKey string) (*models.HealthProfile, error)
	// Upsert inserts or fully replaces the profile for hp.UserKey.
	Upsert(ctx context.Context, hp *models.HealthProfile) (*models.HealthProfile, error)
	// UpdateConditions replaces conditions and, when non-empty, sensitivity.
	// A missing profile yields common.ErrorNotFound.
	UpdateConditions(ctx context.Context, userKey string, conditions pq.StringArray, sensitivity string) (*models.HealthProfile, error)
	Delete(ctx context.Context, userKey string) error
}
