package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/config"
	"github.com/dmitrijs2005/airpass/internal/client/services"
	"github.com/dmitrijs2005/airpass/internal/filex"
	"github.com/dmitrijs2005/airpass/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	auth     services.AuthService
	passport services.PassportService
	health   services.HealthService
	history  services.HistoryService
	reader   *bufio.Reader
	out      io.Writer

	mu       sync.RWMutex
	identity *services.Identity
	mode     Mode
}

// NewApp prepares the data directory, the local store and the API client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	dir, err := filex.EnsureSubDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, c.DBFile))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := client.NewRepositories(db)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		auth:     services.NewAuthService(apiClient, db, logger),
		passport: services.NewPassportService(apiClient, db, repos.Pending, logger),
		health:   services.NewHealthService(apiClient, db),
		history:  services.NewHistoryService(apiClient, db, filepath.Join(dir, "exports"), logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		mode:     ModeOffline,
	}, nil
}

// Run restores a stored session, starts the connectivity watcher and blocks
// in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to AirPass CLI (type 'help' for commands)")

	id, err := a.auth.Restore(ctx)
	switch {
	case err == nil:
		a.setIdentity(id)
		fmt.Fprintf(a.out, "Signed in as %s\n", displayName(id))
	case !errors.Is(err, client.ErrNotSignedIn):
		a.logger.Warn(ctx, "cannot restore session", "error", err)
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity != nil
}

func (a *App) setIdentity(id *services.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = id
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
	return changed
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := string(a.mode)
	if a.identity != nil {
		s = displayName(a.identity) + " " + s
	}
	return "(" + s + ")"
}

// checkOnline pings the server once. On the offline-to-online edge a signed-in
// user's queued exposures are replayed.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	if a.setMode(ctx, ModeOnline) && a.isLoggedIn() {
		res, err := a.passport.Sync(ctx)
		if err != nil {
			a.logger.Warn(ctx, "background sync failed", "error", err)
			return
		}
		if res.Sent > 0 {
			a.logger.Info(ctx, "background sync", "sent", res.Sent, "remaining", res.Remaining)
		}
	}
}

// StartOnlineStatusWatcher probes the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func displayName(id *services.Identity) string {
	if id.Email != "" {
		return id.Email
	}
	return id.UserKey
}
