package airquality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertQ  = `INSERT INTO air_quality_history \(user_key, .*, day\) VALUES \(\$1, .*, \$15\) RETURNING id, created_at`
	listQ    = `SELECT id, user_key, .* FROM air_quality_history WHERE user_key = \$1 AND \(\$2::text = '' OR day >= \$2\) AND \(\$3::text = '' OR day <= \$3\) ORDER BY ts DESC LIMIT \$4`
	summaryQ = `SELECT day, ROUND\(AVG\(aqi\)\)::INTEGER, MAX\(aqi\), COUNT\(\*\) FROM air_quality_history WHERE user_key = \$1 AND day >= \$2 GROUP BY day ORDER BY day ASC`
	deleteQ  = `DELETE FROM air_quality_history WHERE user_key = \$1`
)

var readingColumns = []string{
	"id", "user_key", "lat", "lng", "location_name", "aqi", "pm25", "pm10", "no2", "o3", "co", "so2",
	"source", "risk_level", "ts", "day", "created_at",
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	pm := 12.5

	mock.ExpectQuery(insertQ).
		WithArgs("user-1", 1.5, 2.5, "Quito", 42, 12.5, nil, nil, nil, nil, nil, "manual", "low", int64(1709251200000), "2024-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("r-1", now))

	got, err := repo.Create(context.Background(), &models.AirQualityReading{
		UserKey: "user-1", Lat: 1.5, Lng: 2.5, LocationName: "Quito", AQI: 42, PM25: &pm,
		Source: "manual", RiskLevel: "low", Timestamp: 1709251200000, Date: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))

	_, err := repo.Create(context.Background(), &models.AirQualityReading{UserKey: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(listQ).
		WithArgs("user-1", "2024-03-01", "", 50).
		WillReturnRows(sqlmock.NewRows(readingColumns).
			AddRow("r-2", "user-1", 1.0, 2.0, "B", 120, 55.0, 80.0, nil, nil, nil, nil, "sensor", "high", int64(2000), "2024-03-02", now).
			AddRow("r-1", "user-1", 1.0, 2.0, "A", 30, nil, nil, nil, nil, nil, nil, "manual", "low", int64(1000), "2024-03-01", now))

	got, err := repo.List(context.Background(), "user-1", Filter{From: "2024-03-01", Limit: 50})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-2", got[0].ID)
	require.NotNil(t, got[0].PM10)
	assert.Equal(t, 80.0, *got[0].PM10)
	assert.Nil(t, got[1].PM25)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(listQ).
		WithArgs("nobody", "", "", 10).
		WillReturnRows(sqlmock.NewRows(readingColumns))

	got, err := repo.List(context.Background(), "nobody", Filter{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDailySummary(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(summaryQ).
		WithArgs("user-1", "2024-02-24").
		WillReturnRows(sqlmock.NewRows([]string{"day", "avg", "max", "count"}).
			AddRow("2024-02-29", 40, 61, 3).
			AddRow("2024-03-01", 95, 150, 2))

	got, err := repo.DailySummary(context.Background(), "user-1", "2024-02-24")
	require.NoError(t, err)
	assert.Equal(t, []models.DaySummary{
		{Date: "2024-02-29", AverageAQI: 40, MaxAQI: 61, Samples: 3},
		{Date: "2024-03-01", AverageAQI: 95, MaxAQI: 150, Samples: 2},
	}, got)

	mock.ExpectQuery(summaryQ).WillReturnError(errors.New("boom"))
	_, err = repo.DailySummary(context.Background(), "user-1", "2024-02-24")
	require.Error(t, err)
}

func TestDeleteByUserKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(deleteQ).WithArgs("user-2").WillReturnError(errors.New("boom"))

	n, err := repo.DeleteByUserKey(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = repo.DeleteByUserKey(context.Background(), "user-2")
	require.Error(t, err)
}
