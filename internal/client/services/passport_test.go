package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/pending"
	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPassport(t *testing.T, fc *fakeClient) (*passportService, *pending.SQLiteRepository) {
	db := setupDB(t)
	signIn(t, db, "user-1")
	repo := pending.NewSQLiteRepository(db)
	svc := NewPassportService(fc, db, repo, quietLogger()).(*passportService)
	svc.now = fixedClock(t0)
	return svc, repo
}

func decodeReq(t *testing.T, b []byte) models.ExposureRequest {
	t.Helper()
	var r models.ExposureRequest
	require.NoError(t, json.Unmarshal(b, &r))
	return r
}

func TestLogExposure_OnlineStampsTimestamp(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newPassport(t, fc)

	res, err := svc.LogExposure(context.Background(), models.ExposureRequest{Lat: 1, Lon: 2, LocationName: "Park", UserKey: "someone-else"})
	require.NoError(t, err)

	assert.False(t, res.Queued)
	assert.Equal(t, 84, res.Summary.Score)
	require.Len(t, fc.Payloads, 1)
	sent := decodeReq(t, fc.Payloads[0])
	require.NotNil(t, sent.Timestamp)
	assert.Equal(t, t0.UnixMilli(), *sent.Timestamp)
	assert.Empty(t, sent.UserKey, "server resolves the user from the session")
}

func TestLogExposure_OfflineQueues(t *testing.T) {
	fc := &fakeClient{LogErrs: []error{client.ErrUnavailable, client.ErrUnavailable}}
	svc, repo := newPassport(t, fc)
	ctx := context.Background()

	res, err := svc.LogExposure(ctx, models.ExposureRequest{Lat: 1, Lon: 2})
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, 1, res.Pending)

	res, err = svc.LogExposure(ctx, models.ExposureRequest{Lat: 3, Lon: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pending)

	list, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, t0.UnixMilli(), list[0].Timestamp)
}

func TestLogExposure_OtherErrorsNotQueued(t *testing.T) {
	fc := &fakeClient{LogErrs: []error{common.ErrorValidation}}
	svc, _ := newPassport(t, fc)

	_, err := svc.LogExposure(context.Background(), models.ExposureRequest{Lat: 200})
	require.ErrorIs(t, err, common.ErrorValidation)

	n, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogExposure_RequiresSignIn(t *testing.T) {
	db := setupDB(t)
	svc := NewPassportService(&fakeClient{}, db, pending.NewSQLiteRepository(db), quietLogger())

	_, err := svc.LogExposure(context.Background(), models.ExposureRequest{})
	require.ErrorIs(t, err, client.ErrNotSignedIn)
}

func queue(t *testing.T, svc *passportService, fc *fakeClient, timestamps ...int64) {
	t.Helper()
	for _, ts := range timestamps {
		ts := ts
		fc.LogErrs = []error{client.ErrUnavailable}
		_, err := svc.LogExposure(context.Background(), models.ExposureRequest{Lat: 1, Timestamp: &ts})
		require.NoError(t, err)
	}
	fc.LogErrs = nil
	fc.Payloads = nil
}

func TestSync_ReplaysInTimestampOrder(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newPassport(t, fc)
	queue(t, svc, fc, 300, 100, 200)

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Sent)
	assert.Zero(t, res.Remaining)
	require.Len(t, fc.Payloads, 3)
	var got []int64
	for _, p := range fc.Payloads {
		got = append(got, *decodeReq(t, p).Timestamp)
	}
	assert.Equal(t, []int64{100, 200, 300}, got)

	n, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSync_StopsWhenOffline(t *testing.T) {
	fc := &fakeClient{}
	svc, repo := newPassport(t, fc)
	queue(t, svc, fc, 1, 2, 3)

	fc.LogErrs = []error{nil, client.ErrUnavailable}
	res, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.Remaining)
	assert.Len(t, fc.Payloads, 2)

	list, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Attempts)
	assert.Equal(t, int64(2), list[0].Timestamp)
}

func TestSync_DropsRejectedAndFailsOnOtherErrors(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newPassport(t, fc)
	queue(t, svc, fc, 1, 2, 3)

	fc.LogErrs = []error{common.ErrorValidation, nil, common.ErrorInternal}
	res, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrorInternal)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Remaining)
}

func TestReadsRequireSignIn(t *testing.T) {
	db := setupDB(t)
	svc := NewPassportService(&fakeClient{}, db, pending.NewSQLiteRepository(db), quietLogger())
	ctx := context.Background()

	_, err := svc.Passport(ctx, 0)
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
	_, err = svc.Insights(ctx)
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
	_, err = svc.EnsureProfile(ctx, "n", "c")
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
	_, err = svc.Sync(ctx)
	assert.ErrorIs(t, err, client.ErrNotSignedIn)
}
