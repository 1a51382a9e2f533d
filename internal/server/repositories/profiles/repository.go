// Package profiles stores passport profiles, one per userKey.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type Repository interface {
	// CreateIfAbsent inserts p unless a profile with the same userKey exists.
	// It reports whether a row was inserted. Concurrent callers for one
	// userKey never produce two profiles.
	CreateIfAbsent(ctx context.Context, p *models.Profile) (bool, error)

	GetByUserKey(ctx context.Context, userKey string) (*models.Profile, error)

	// GetByUserKeyForUpdate is GetByUserKey that also row-locks the profile
	// until the surrounding transaction ends.
	GetByUserKeyForUpdate(ctx context.Context, userKey string) (*models.Profile, error)

	// Update writes the mutable fields of p and refreshes UpdatedAt.
	Update(ctx context.Context, p *models.Profile) error
}
