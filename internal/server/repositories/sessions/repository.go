// Package sessions declares the server-side repository contract for login
// sessions and its PostgreSQL implementation.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking sessions.
type Repository interface {
	// Create stores a session and fills its ID and CreatedAt.
	Create(ctx context.Context, session *models.Session) (*models.Session, error)

	// GetByToken returns common.ErrorNotFound when the token is unknown.
	// Expired sessions are returned as-is; callers decide.
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	// DeleteByToken removes a session. Deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes the user's sessions that expired before now and
	// returns how many were removed. Live sessions are kept.
	DeleteExpired(ctx context.Context, userID string, now time.Time) (int64, error)
}
