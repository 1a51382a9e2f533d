// Package services contains application services for the AirPass CLI.
// This file defines the session service: signup, login, logout and the
// locally remembered identity used while offline.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/logging"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

// Identity is the signed-in user as remembered by the CLI.
type Identity struct {
	Email     string
	UserKey   string
	Token     string
	ExpiresAt time.Time
	// Verified is true when the server confirmed the session just now.
	Verified bool
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup / Login: authenticate against the server and persist the session locally.
//   - Restore: load a stored session into the API client at startup.
//   - WhoAmI: report the current identity, checking it with the server when reachable.
//   - Logout: end the session on the server (best effort) and forget it locally.
//   - Ping: check server liveness.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, error)
	Restore(ctx context.Context) (*Identity, error)
	WhoAmI(ctx context.Context) (*Identity, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(c client.Client, db *sql.DB, logger logging.Logger) AuthService {
	return &authService{client: c, db: db, logger: logger, now: time.Now}
}

func (a *authService) Signup(ctx context.Context, email, password, name string) (*Identity, error) {
	res, err := a.client.Signup(ctx, email, password, name)
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return a.remember(ctx, email, res)
}

func (a *authService) Login(ctx context.Context, email, password string) (*Identity, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.remember(ctx, email, res)
}

// remember stores the session in one transaction and hands the token to the client.
func (a *authService) remember(ctx context.Context, email string, res *sm.AuthResult) (*Identity, error) {
	if res.User != nil && res.User.Email != "" {
		email = res.User.Email
	}
	id := &Identity{Email: email, UserKey: res.UserKey, Token: res.Token, ExpiresAt: res.ExpiresAt, Verified: true}

	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			metadata.KeyToken:     id.Token,
			metadata.KeyUserKey:   id.UserKey,
			metadata.KeyEmail:     id.Email,
			metadata.KeyExpiresAt: id.ExpiresAt.UTC().Format(time.RFC3339),
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.client.SetToken(id.Token)
	a.logger.Debug(ctx, "session stored", "user_key", id.UserKey)
	return id, nil
}

// Restore returns client.ErrNotSignedIn when nothing usable is stored. An
// expired local session is forgotten.
func (a *authService) Restore(ctx context.Context) (*Identity, error) {
	id, err := a.stored(ctx)
	if err != nil {
		return nil, err
	}
	if !id.ExpiresAt.IsZero() && !a.now().Before(id.ExpiresAt) {
		if err := a.forget(ctx); err != nil {
			return nil, err
		}
		return nil, client.ErrNotSignedIn
	}
	a.client.SetToken(id.Token)
	return id, nil
}

func (a *authService) WhoAmI(ctx context.Context) (*Identity, error) {
	id, err := a.Restore(ctx)
	if err != nil {
		return nil, err
	}

	info, err := a.client.Session(ctx)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return id, nil
	case err != nil:
		return nil, fmt.Errorf("session check error: %w", err)
	case info == nil:
		a.logger.Info(ctx, "server no longer knows the session; signing out locally")
		if err := a.forget(ctx); err != nil {
			return nil, err
		}
		return nil, client.ErrNotSignedIn
	}

	id.Verified = true
	id.ExpiresAt = info.ExpiresAt
	if info.User != nil {
		id.Email = info.User.Email
	}
	return id, nil
}

// Logout always clears the local session, even when the server is unreachable.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		if !errors.Is(err, client.ErrUnavailable) {
			return fmt.Errorf("logout error: %w", err)
		}
		a.logger.Warn(ctx, "server unreachable; logging out locally only")
	}
	return a.forget(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) stored(ctx context.Context) (*Identity, error) {
	m, err := metadata.NewSQLiteRepository(a.db).List(ctx)
	if err != nil {
		return nil, err
	}
	token := string(m[metadata.KeyToken])
	userKey := string(m[metadata.KeyUserKey])
	if token == "" || userKey == "" {
		return nil, client.ErrNotSignedIn
	}

	id := &Identity{Email: string(m[metadata.KeyEmail]), UserKey: userKey, Token: token}
	if raw := string(m[metadata.KeyExpiresAt]); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			id.ExpiresAt = t
		}
	}
	return id, nil
}

func (a *authService) forget(ctx context.Context) error {
	a.client.SetToken("")
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{metadata.KeyToken, metadata.KeyUserKey, metadata.KeyEmail, metadata.KeyExpiresAt} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// currentUserKey is shared by the services that act on the signed-in user.
func currentUserKey(ctx context.Context, db *sql.DB) (string, error) {
	v, err := metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeyUserKey)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", client.ErrNotSignedIn
	}
	return string(v), nil
}
