package client

import (
	"context"

	"github.com/dmitrijs2005/airpass/internal/client/models"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

// Client is the AirPass API as seen by the CLI. Calls made after SetToken
// carry the session token; the server then resolves an empty userKey to the
// signed-in user.
type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error

	Signup(ctx context.Context, email, password, name string) (*sm.AuthResult, error)
	Login(ctx context.Context, email, password string) (*sm.AuthResult, error)
	Session(ctx context.Context) (*sm.SessionInfo, error)
	Logout(ctx context.Context) error

	EnsureProfile(ctx context.Context, nickname, homeCity string) (*sm.Profile, error)
	LogExposure(ctx context.Context, payload []byte) (*sm.ExposureSummary, error)
	Passport(ctx context.Context, limit int) (*sm.PassportView, error)
	Insights(ctx context.Context) (*sm.InsightsView, error)

	HealthProfile(ctx context.Context, userKey string) (*sm.HealthProfile, error)
	SaveHealthProfile(ctx context.Context, userKey string, in models.HealthProfileRequest) (*sm.HealthProfile, error)
	UpdateConditions(ctx context.Context, userKey string, conditions []string, sensitivity string) (*sm.HealthProfile, error)
	DeleteHealthProfile(ctx context.Context, userKey string) error

	RecordReading(ctx context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error)
	History(ctx context.Context, limit int, from, to string) ([]*sm.AirQualityReading, error)
	DailySummary(ctx context.Context, days int) ([]sm.DaySummary, error)
	DeleteHistory(ctx context.Context) (int64, error)
	Export(ctx context.Context) (*sm.HistoryExport, error)
	Exports(ctx context.Context, limit int) ([]*sm.HistoryExport, error)
}
