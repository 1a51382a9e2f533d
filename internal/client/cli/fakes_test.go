package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/client/services"
	"github.com/dmitrijs2005/airpass/internal/logging"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

type fakeAuth struct {
	email, password, name string

	id       *services.Identity
	err      error
	whoErr   error
	pingErr  error
	pings    int
	loggedIn bool
}

func (f *fakeAuth) Signup(_ context.Context, email, password, name string) (*services.Identity, error) {
	f.email, f.password, f.name = email, password, name
	return f.id, f.err
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*services.Identity, error) {
	f.email, f.password = email, password
	return f.id, f.err
}

func (f *fakeAuth) Restore(context.Context) (*services.Identity, error) { return f.id, f.err }

func (f *fakeAuth) WhoAmI(context.Context) (*services.Identity, error) {
	if f.whoErr != nil {
		return nil, f.whoErr
	}
	return f.id, nil
}

func (f *fakeAuth) Logout(context.Context) error { return f.err }

func (f *fakeAuth) Ping(context.Context) error {
	f.pings++
	return f.pingErr
}

type fakePassport struct {
	logReq  *models.ExposureRequest
	logRes  *services.LogResult
	logErr  error
	syncRes *services.SyncResult
	syncErr error
	syncs   int
	view    *sm.PassportView
	pending int
}

func (f *fakePassport) EnsureProfile(_ context.Context, nickname, homeCity string) (*sm.Profile, error) {
	return &sm.Profile{Nickname: nickname, HomeCity: homeCity}, nil
}

func (f *fakePassport) LogExposure(_ context.Context, req models.ExposureRequest) (*services.LogResult, error) {
	f.logReq = &req
	return f.logRes, f.logErr
}

func (f *fakePassport) Sync(context.Context) (*services.SyncResult, error) {
	f.syncs++
	if f.syncRes == nil && f.syncErr == nil {
		return &services.SyncResult{}, nil
	}
	return f.syncRes, f.syncErr
}

func (f *fakePassport) PendingCount(context.Context) (int, error) { return f.pending, nil }

func (f *fakePassport) Passport(context.Context, int) (*sm.PassportView, error) {
	return f.view, nil
}

func (f *fakePassport) Insights(context.Context) (*sm.InsightsView, error) { return nil, nil }

type fakeHealth struct {
	saved      *models.HealthProfileRequest
	conditions []string
	deleted    bool
}

func (f *fakeHealth) Get(context.Context) (*sm.HealthProfile, error) { return nil, nil }

func (f *fakeHealth) Save(_ context.Context, in models.HealthProfileRequest) (*sm.HealthProfile, error) {
	f.saved = &in
	return &sm.HealthProfile{Age: in.Age, Conditions: in.Conditions, IsComplete: true}, nil
}

func (f *fakeHealth) UpdateConditions(_ context.Context, conditions []string, _ string) (*sm.HealthProfile, error) {
	f.conditions = conditions
	return &sm.HealthProfile{Conditions: conditions}, nil
}

func (f *fakeHealth) Delete(context.Context) error {
	f.deleted = true
	return nil
}

type fakeHistory struct {
	download bool
	export   *sm.HistoryExport
	path     string
	err      error
	days     int
}

func (f *fakeHistory) Record(_ context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error) {
	r.RiskLevel = "low"
	return r, nil
}

func (f *fakeHistory) List(context.Context, int, string, string) ([]*sm.AirQualityReading, error) {
	return nil, nil
}

func (f *fakeHistory) Summary(_ context.Context, days int) ([]sm.DaySummary, error) {
	f.days = days
	return []sm.DaySummary{{Date: "2024-05-10", AverageAQI: 40, MaxAQI: 60, Samples: 3}}, nil
}

func (f *fakeHistory) Clear(context.Context) (int64, error) { return 4, nil }

func (f *fakeHistory) Export(_ context.Context, download bool) (*sm.HistoryExport, string, error) {
	f.download = download
	return f.export, f.path, f.err
}

func (f *fakeHistory) Exports(context.Context, int) ([]*sm.HistoryExport, error) { return nil, nil }

type testApp struct {
	*App
	auth     *fakeAuth
	passport *fakePassport
	health   *fakeHealth
	history  *fakeHistory
	out      *bytes.Buffer
	logs     *bytes.Buffer
}

// newTestApp builds an App over fakes whose prompts read from input.
func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	ta := &testApp{
		auth:     &fakeAuth{},
		passport: &fakePassport{},
		health:   &fakeHealth{},
		history:  &fakeHistory{},
		out:      &bytes.Buffer{},
		logs:     &bytes.Buffer{},
	}
	ta.App = &App{
		logger:   logging.NewTextLogger(ta.logs, "debug"),
		auth:     ta.auth,
		passport: ta.passport,
		health:   ta.health,
		history:  ta.history,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      ta.out,
		mode:     ModeOffline,
	}

	origPW := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("secret1"), nil }
	t.Cleanup(func() { getPassword = origPW })
	return ta
}
