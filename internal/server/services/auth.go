package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/auth"
	"github.com/dmitrijs2005/airpass/internal/server/config"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/repomanager"
)

// AuthService provides account and session operations:
//   - Signup: create a user and its first session
//   - Login: verify a password, sweep the user's expired sessions, open a new one
//   - Session: resolve a token to its live session
//   - Logout: revoke a token
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	secret      []byte
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		logger:      logger,
		secret:      []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

// NormalizeEmail trims and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	return nil
}

// Signup creates the user and its first session in one transaction.
// A taken email yields common.ErrorAlreadyExists.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*models.AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var result *models.AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		result, err = s.issueSession(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", result.User.ID)
	return result, nil
}

// Login fails with common.ErrorNotFound for an unknown email and
// common.ErrorInvalidCredentials for a wrong password. Only the user's
// expired sessions are removed; live sessions on other devices survive.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	var result *models.AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Sessions(tx).DeleteExpired(ctx, u.ID, s.now())
		if err != nil {
			return fmt.Errorf("error sweeping sessions: %w", err)
		}
		if n > 0 {
			s.logger.Debug(ctx, "expired sessions swept", "user_id", u.ID, "count", n)
		}

		result, err = s.issueSession(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Session returns nil, nil for an empty, unknown, forged or expired token.
// It never deletes anything.
func (s *AuthService) Session(ctx context.Context, token string) (*models.SessionInfo, error) {
	if token == "" {
		return nil, nil
	}
	now := s.now()

	userID, err := auth.GetUserIDFromToken(token, s.secret, now)
	if err != nil {
		return nil, nil
	}

	sess, err := s.repomanager.Sessions(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if sess.ExpiresAt.Before(now) || sess.UserID != userID {
		return nil, nil
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &models.SessionInfo{
		User:      u,
		UserKey:   common.UserKeyFor(u.ID),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout deletes the session for token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, tx dbx.DBTX, u *models.User) (*models.AuthResult, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	token, err := auth.GenerateToken(u.ID, s.secret, now, expiresAt)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if _, err := s.repomanager.Sessions(tx).Create(ctx, &models.Session{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &models.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserKey:   common.UserKeyFor(u.ID),
		User:      u,
	}, nil
}
