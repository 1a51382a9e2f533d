package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/airpass/internal/logging"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func signIn(t *testing.T, db *sql.DB, userKey string) {
	t.Helper()
	repo := metadata.NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, metadata.KeyToken, []byte("tok")))
	require.NoError(t, repo.Set(ctx, metadata.KeyUserKey, []byte(userKey)))
	require.NoError(t, repo.Set(ctx, metadata.KeyEmail, []byte("a@b.c")))
}

func getMeta(t *testing.T, db *sql.DB, k string) string {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).Get(context.Background(), k)
	require.NoError(t, err)
	return string(v)
}

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	token string

	AuthRes   *sm.AuthResult
	AuthErr   error
	SessionIn *sm.SessionInfo
	SessErr   error
	LogoutErr error
	PingErr   error

	// LogErrs is consumed one per LogExposure call; nil entries succeed.
	LogErrs  []error
	Payloads [][]byte

	HealthKey  string
	ExportRes  *sm.HistoryExport
	ExportErr  error
	PassportIn *sm.PassportView
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) SetToken(token string)          { f.token = token }
func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Signup(ctx context.Context, email, password, name string) (*sm.AuthResult, error) {
	return f.AuthRes, f.AuthErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*sm.AuthResult, error) {
	return f.AuthRes, f.AuthErr
}

func (f *fakeClient) Session(ctx context.Context) (*sm.SessionInfo, error) {
	return f.SessionIn, f.SessErr
}

func (f *fakeClient) Logout(ctx context.Context) error { return f.LogoutErr }

func (f *fakeClient) EnsureProfile(ctx context.Context, nickname, homeCity string) (*sm.Profile, error) {
	return &sm.Profile{Nickname: nickname, HomeCity: homeCity}, nil
}

func (f *fakeClient) LogExposure(ctx context.Context, payload []byte) (*sm.ExposureSummary, error) {
	f.Payloads = append(f.Payloads, payload)
	if len(f.LogErrs) > 0 {
		err := f.LogErrs[0]
		f.LogErrs = f.LogErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &sm.ExposureSummary{ExposureID: "e", Points: 20, Score: 84, RiskLevel: "low"}, nil
}

func (f *fakeClient) Passport(ctx context.Context, limit int) (*sm.PassportView, error) {
	return f.PassportIn, nil
}

func (f *fakeClient) Insights(ctx context.Context) (*sm.InsightsView, error) { return nil, nil }

func (f *fakeClient) HealthProfile(ctx context.Context, userKey string) (*sm.HealthProfile, error) {
	f.HealthKey = userKey
	return nil, nil
}

func (f *fakeClient) SaveHealthProfile(ctx context.Context, userKey string, in models.HealthProfileRequest) (*sm.HealthProfile, error) {
	f.HealthKey = userKey
	return &sm.HealthProfile{UserKey: userKey, Age: in.Age}, nil
}

func (f *fakeClient) UpdateConditions(ctx context.Context, userKey string, conditions []string, sensitivity string) (*sm.HealthProfile, error) {
	f.HealthKey = userKey
	return &sm.HealthProfile{UserKey: userKey, Conditions: conditions}, nil
}

func (f *fakeClient) DeleteHealthProfile(ctx context.Context, userKey string) error {
	f.HealthKey = userKey
	return nil
}

func (f *fakeClient) RecordReading(ctx context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error) {
	return r, nil
}

func (f *fakeClient) History(ctx context.Context, limit int, from, to string) ([]*sm.AirQualityReading, error) {
	return nil, nil
}

func (f *fakeClient) DailySummary(ctx context.Context, days int) ([]sm.DaySummary, error) {
	return nil, nil
}

func (f *fakeClient) DeleteHistory(ctx context.Context) (int64, error) { return 2, nil }

func (f *fakeClient) Export(ctx context.Context) (*sm.HistoryExport, error) {
	return f.ExportRes, f.ExportErr
}

func (f *fakeClient) Exports(ctx context.Context, limit int) ([]*sm.HistoryExport, error) {
	return nil, nil
}

func quietLogger() logging.Logger { return logging.Discard() }

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
