// Package httpapi exposes the AirPass services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/config"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/services"
	"golang.org/x/time/rate"
)

type PassportService interface {
	EnsureProfile(ctx context.Context, userKey, nickname, homeCity string) (*models.Profile, error)
	LogExposure(ctx context.Context, in services.ExposureInput) (*models.ExposureSummary, error)
	GetPassport(ctx context.Context, userKey string, limit int) (*models.PassportView, error)
}

type InsightsService interface {
	Insights(ctx context.Context, userKey string) (*models.InsightsView, error)
}

type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Session(ctx context.Context, token string) (*models.SessionInfo, error)
	Logout(ctx context.Context, token string) error
}

type HealthService interface {
	Get(ctx context.Context, userKey string) (*models.HealthProfile, error)
	Save(ctx context.Context, userKey string, in services.HealthProfileInput) (*models.HealthProfile, error)
	UpdateConditions(ctx context.Context, userKey string, conditions []string, sensitivity string) (*models.HealthProfile, error)
	Delete(ctx context.Context, userKey string) error
}

type HistoryService interface {
	Record(ctx context.Context, r *models.AirQualityReading) (*models.AirQualityReading, error)
	History(ctx context.Context, userKey string, limit int, from, to string) ([]*models.AirQualityReading, error)
	DailySummary(ctx context.Context, userKey string, days int) ([]models.DaySummary, error)
	Delete(ctx context.Context, userKey string) (int64, error)
	Export(ctx context.Context, userKey string) (*models.HistoryExport, error)
	ListExports(ctx context.Context, userKey string, limit int) ([]*models.HistoryExport, error)
}

// Services bundles the business logic the API serves.
type Services struct {
	Passport PassportService
	Insights InsightsService
	Auth     AuthService
	Health   HealthService
	History  HistoryService
}

type HTTPServer struct {
	address         string
	logger          logging.Logger
	svc             Services
	authLimiter     *ipLimiter
	shutdownTimeout time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, svc Services) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "http_server"),
		svc:             svc,
		authLimiter:     newIPLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst),
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
