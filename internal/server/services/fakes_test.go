package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/airquality"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/exports"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/exposures"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/healthprofiles"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var t0 = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit; the fake
// repositories ignore the handle they are bound to.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() logging.Logger { return logging.Discard() }

// memStore is an in-memory stand-in for the Postgres schema. errs injects a
// failure into the named repository method.
type memStore struct {
	mu sync.Mutex

	users     map[string]*models.User
	sessions  map[string]*models.Session
	profiles  map[string]*models.Profile
	exposures []*models.Exposure
	health    map[string]*models.HealthProfile
	readings  []*models.AirQualityReading
	exports   map[string]*models.HistoryExport

	errs map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		sessions: map[string]*models.Session{},
		profiles: map[string]*models.Profile{},
		health:   map[string]*models.HealthProfile{},
		exports:  map[string]*models.HistoryExport{},
		errs:     map[string]error{},
	}
}

func (m *memStore) fail(method string) error { return m.errs[method] }

type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository                   { return fakeUsers{f.s} }
func (f *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository             { return fakeSessions{f.s} }
func (f *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository             { return fakeProfiles{f.s} }
func (f *fakeRepoManager) Exposures(dbx.DBTX) exposures.Repository           { return fakeExposures{f.s} }
func (f *fakeRepoManager) HealthProfiles(dbx.DBTX) healthprofiles.Repository { return fakeHealth{f.s} }
func (f *fakeRepoManager) AirQuality(dbx.DBTX) airquality.Repository         { return fakeReadings{f.s} }
func (f *fakeRepoManager) Exports(dbx.DBTX) exports.Repository               { return fakeExports{f.s} }

// --- users ---

type fakeUsers struct{ s *memStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = t0
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

// --- sessions ---

type fakeSessions struct{ s *memStore }

func (r fakeSessions) Create(_ context.Context, sess *models.Session) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sessions.Create"); err != nil {
		return nil, err
	}
	c := *sess
	c.ID = uuid.NewString()
	r.s.sessions[c.Token] = &c
	return &c, nil
}

func (r fakeSessions) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *sess
	return &c, nil
}

func (r fakeSessions) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sessions.DeleteByToken"); err != nil {
		return err
	}
	delete(r.s.sessions, token)
	return nil
}

func (r fakeSessions) DeleteExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sessions.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for token, sess := range r.s.sessions {
		if sess.UserID == userID && sess.ExpiresAt.Before(now) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}

// --- profiles ---

type fakeProfiles struct{ s *memStore }

func (r fakeProfiles) CreateIfAbsent(_ context.Context, p *models.Profile) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.CreateIfAbsent"); err != nil {
		return false, err
	}
	if _, ok := r.s.profiles[p.UserKey]; ok {
		return false, nil
	}
	c := *p
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = t0, t0
	r.s.profiles[c.UserKey] = &c
	return true, nil
}

func (r fakeProfiles) GetByUserKey(_ context.Context, userKey string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.GetByUserKey"); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[userKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r fakeProfiles) GetByUserKeyForUpdate(ctx context.Context, userKey string) (*models.Profile, error) {
	return r.GetByUserKey(ctx, userKey)
}

func (r fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.Update"); err != nil {
		return err
	}
	if _, ok := r.s.profiles[p.UserKey]; !ok {
		return common.ErrorNotFound
	}
	c := *p
	r.s.profiles[p.UserKey] = &c
	return nil
}

// --- exposures ---

type fakeExposures struct{ s *memStore }

func (r fakeExposures) Create(_ context.Context, e *models.Exposure) (*models.Exposure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exposures.Create"); err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	c := *e
	r.s.exposures = append(r.s.exposures, &c)
	return e, nil
}

func (r fakeExposures) byProfile(profileID string, limit int) []*models.Exposure {
	var out []*models.Exposure
	for _, e := range r.s.exposures {
		if e.ProfileID == profileID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r fakeExposures) ListByProfile(_ context.Context, profileID string, limit int) ([]*models.Exposure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exposures.ListByProfile"); err != nil {
		return nil, err
	}
	out := r.byProfile(profileID, limit)
	if out == nil {
		out = []*models.Exposure{}
	}
	return out, nil
}

func (r fakeExposures) RecentScores(_ context.Context, profileID string, limit int) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exposures.RecentScores"); err != nil {
		return nil, err
	}
	var scores []int
	for _, e := range r.byProfile(profileID, limit) {
		scores = append(scores, e.Score)
	}
	return scores, nil
}

// --- health profiles ---

type fakeHealth struct{ s *memStore }

func (r fakeHealth) Get(_ context.Context, userKey string) (*models.HealthProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("health.Get"); err != nil {
		return nil, err
	}
	hp, ok := r.s.health[userKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *hp
	return &c, nil
}

func (r fakeHealth) Upsert(_ context.Context, hp *models.HealthProfile) (*models.HealthProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("health.Upsert"); err != nil {
		return nil, err
	}
	c := *hp
	c.CreatedAt, c.UpdatedAt = t0, t0
	if prev, ok := r.s.health[hp.UserKey]; ok {
		c.CreatedAt = prev.CreatedAt
	}
	r.s.health[hp.UserKey] = &c
	out := c
	return &out, nil
}

func (r fakeHealth) UpdateConditions(_ context.Context, userKey string, conditions pq.StringArray, sensitivity string) (*models.HealthProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	hp, ok := r.s.health[userKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	hp.Conditions = conditions
	if sensitivity != "" {
		hp.Sensitivity = sensitivity
	}
	c := *hp
	return &c, nil
}

func (r fakeHealth) Delete(_ context.Context, userKey string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.health, userKey)
	return nil
}

// --- air quality history ---

type fakeReadings struct{ s *memStore }

func (r fakeReadings) Create(_ context.Context, rd *models.AirQualityReading) (*models.AirQualityReading, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("readings.Create"); err != nil {
		return nil, err
	}
	rd.ID = uuid.NewString()
	c := *rd
	r.s.readings = append(r.s.readings, &c)
	return rd, nil
}

func (r fakeReadings) List(_ context.Context, userKey string, f airquality.Filter) ([]*models.AirQualityReading, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("readings.List"); err != nil {
		return nil, err
	}
	var out []*models.AirQualityReading
	for _, rd := range r.s.readings {
		if rd.UserKey != userKey || (f.From != "" && rd.Date < f.From) || (f.To != "" && rd.Date > f.To) {
			continue
		}
		c := *rd
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r fakeReadings) DailySummary(_ context.Context, userKey, fromDay string) ([]models.DaySummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type acc struct{ sum, max, n int }
	byDay := map[string]*acc{}
	for _, rd := range r.s.readings {
		if rd.UserKey != userKey || rd.Date < fromDay {
			continue
		}
		a, ok := byDay[rd.Date]
		if !ok {
			a = &acc{}
			byDay[rd.Date] = a
		}
		a.sum += rd.AQI
		a.max = max(a.max, rd.AQI)
		a.n++
	}
	var out []models.DaySummary
	for day, a := range byDay {
		out = append(out, models.DaySummary{Date: day, AverageAQI: roundDiv(a.sum, a.n), MaxAQI: a.max, Samples: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r fakeReadings) DeleteByUserKey(_ context.Context, userKey string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	kept := r.s.readings[:0]
	for _, rd := range r.s.readings {
		if rd.UserKey == userKey {
			n++
			continue
		}
		kept = append(kept, rd)
	}
	r.s.readings = kept
	return n, nil
}

// --- exports ---

type fakeExports struct{ s *memStore }

func (r fakeExports) Create(_ context.Context, e *models.HistoryExport) (*models.HistoryExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exports.Create"); err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	e.Status = models.ExportPending
	e.CreatedAt = t0
	c := *e
	r.s.exports[e.ID] = &c
	return e, nil
}

func (r fakeExports) MarkUploaded(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exports[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.Status = models.ExportCompleted
	return nil
}

func (r fakeExports) Delete(_ context.Context, id string) error {
	if err := r.s.fail("exports.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.exports, id)
	return nil
}

func (r fakeExports) GetByID(_ context.Context, id string) (*models.HistoryExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exports[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (r fakeExports) ListByUserKey(_ context.Context, userKey string, limit int) ([]*models.HistoryExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.HistoryExport
	for _, e := range r.s.exports {
		if e.UserKey == userKey && e.Status == models.ExportCompleted {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StorageKey > out[j].StorageKey })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
