package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/config"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/services"
)

type fakePassport struct {
	ensure func(userKey, nickname, homeCity string) (*models.Profile, error)
	log    func(in services.ExposureInput) (*models.ExposureSummary, error)
	get    func(userKey string, limit int) (*models.PassportView, error)
}

func (f *fakePassport) EnsureProfile(_ context.Context, userKey, nickname, homeCity string) (*models.Profile, error) {
	return f.ensure(userKey, nickname, homeCity)
}
func (f *fakePassport) LogExposure(_ context.Context, in services.ExposureInput) (*models.ExposureSummary, error) {
	return f.log(in)
}
func (f *fakePassport) GetPassport(_ context.Context, userKey string, limit int) (*models.PassportView, error) {
	return f.get(userKey, limit)
}

type fakeInsights struct {
	insights func(userKey string) (*models.InsightsView, error)
}

func (f *fakeInsights) Insights(_ context.Context, userKey string) (*models.InsightsView, error) {
	return f.insights(userKey)
}

// fakeAuth knows exactly one live token.
type fakeAuth struct {
	liveToken string
	info      *models.SessionInfo

	signup     func(email, password, name string) (*models.AuthResult, error)
	login      func(email, password string) (*models.AuthResult, error)
	loggedOut  []string
	sessionErr error
}

func (f *fakeAuth) Signup(_ context.Context, email, password, name string) (*models.AuthResult, error) {
	return f.signup(email, password, name)
}
func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.AuthResult, error) {
	return f.login(email, password)
}
func (f *fakeAuth) Session(_ context.Context, token string) (*models.SessionInfo, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if token != "" && token == f.liveToken {
		return f.info, nil
	}
	return nil, nil
}
func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	if token == f.liveToken {
		f.liveToken = ""
	}
	return nil
}

type fakeHealth struct {
	store map[string]*models.HealthProfile
	err   error
}

func (f *fakeHealth) Get(_ context.Context, userKey string) (*models.HealthProfile, error) {
	return f.store[userKey], f.err
}
func (f *fakeHealth) Save(_ context.Context, userKey string, in services.HealthProfileInput) (*models.HealthProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	hp := &models.HealthProfile{UserKey: userKey, Age: in.Age, ActivityLevel: in.ActivityLevel, OutdoorExposure: in.OutdoorExposure, Conditions: in.Conditions}
	hp.IsComplete = hp.Complete()
	f.store[userKey] = hp
	return hp, nil
}
func (f *fakeHealth) UpdateConditions(_ context.Context, userKey string, conditions []string, sensitivity string) (*models.HealthProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	hp := f.store[userKey]
	hp.Conditions = conditions
	return hp, nil
}
func (f *fakeHealth) Delete(_ context.Context, userKey string) error {
	delete(f.store, userKey)
	return f.err
}

type fakeHistory struct {
	recorded []*models.AirQualityReading
	lastKey  string
	lastArgs []any
	err      error
}

func (f *fakeHistory) Record(_ context.Context, r *models.AirQualityReading) (*models.AirQualityReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	r.ID = "r1"
	f.recorded = append(f.recorded, r)
	return r, nil
}
func (f *fakeHistory) History(_ context.Context, userKey string, limit int, from, to string) ([]*models.AirQualityReading, error) {
	f.lastKey, f.lastArgs = userKey, []any{limit, from, to}
	return []*models.AirQualityReading{}, f.err
}
func (f *fakeHistory) DailySummary(_ context.Context, userKey string, days int) ([]models.DaySummary, error) {
	f.lastKey, f.lastArgs = userKey, []any{days}
	return []models.DaySummary{{Date: "2024-01-01", AverageAQI: 10, MaxAQI: 12, Samples: 2}}, f.err
}
func (f *fakeHistory) Delete(_ context.Context, userKey string) (int64, error) {
	f.lastKey = userKey
	return 3, f.err
}
func (f *fakeHistory) Export(_ context.Context, userKey string) (*models.HistoryExport, error) {
	f.lastKey = userKey
	if f.err != nil {
		return nil, f.err
	}
	return &models.HistoryExport{ID: "x1", UserKey: userKey, StorageKey: "exports/k.csv", URL: "https://signed", Status: models.ExportCompleted}, nil
}
func (f *fakeHistory) ListExports(_ context.Context, userKey string, limit int) ([]*models.HistoryExport, error) {
	f.lastKey, f.lastArgs = userKey, []any{limit}
	return []*models.HistoryExport{}, f.err
}

type testEnv struct {
	srv      *HTTPServer
	handler  http.Handler
	passport *fakePassport
	insights *fakeInsights
	auth     *fakeAuth
	health   *fakeHealth
	history  *fakeHistory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		passport: &fakePassport{},
		insights: &fakeInsights{},
		auth: &fakeAuth{
			liveToken: "live-token",
			info: &models.SessionInfo{
				User:      &models.User{ID: "u-1", Email: "me@example.com", Name: "Me"},
				UserKey:   "user-u-1",
				ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		health:  &fakeHealth{store: map[string]*models.HealthProfile{}},
		history: &fakeHistory{},
	}
	cfg := &config.Config{
		EndpointAddrHTTP: "127.0.0.1:0",
		AuthRateLimit:    1000,
		AuthRateBurst:    1000,
		ShutdownTimeout:  time.Second,
	}
	env.srv = NewHTTPServer(cfg, logging.Discard(), Services{
		Passport: env.passport,
		Insights: env.insights,
		Auth:     env.auth,
		Health:   env.health,
		History:  env.history,
	})
	env.handler = env.srv.Routes()
	return env
}

func (e *testEnv) do(method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}
