// Package metadata stores small key/value settings of the CLI, such as the
// session token and the signed-in userKey.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken     = "session_token"
	KeyUserKey   = "user_key"
	KeyEmail     = "email"
	KeyExpiresAt = "session_expires_at"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
