package healthprofiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/lib/pq"
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

var columns = []string{
	"user_key", "age", "gender", "activity_level", "outdoor_exposure", "conditions",
	"sensitivity", "is_complete", "created_at", "updated_at",
}

const (
	getQ       = `SELECT user_key, age, .* FROM health_profiles WHERE user_key = \$1`
	upsertQ    = `INSERT INTO health_profiles .* ON CONFLICT \(user_key\) DO UPDATE SET .* RETURNING user_key, age,`
	conditionQ = `UPDATE health_profiles SET conditions = \$2, sensitivity = COALESCE\(NULLIF\(\$3, ''\), sensitivity\), .* WHERE user_key = \$1 RETURNING`
	deleteQ    = `DELETE FROM health_profiles WHERE user_key = \$1`
)

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(getQ).WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("user-1", 40, "f", "moderate", "daily", "{asthma}", "high", true, now, now))
	mock.ExpectQuery(getQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	hp, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, hp.Age)
	assert.Equal(t, 40, *hp.Age)
	assert.Equal(t, pq.StringArray{"asthma"}, hp.Conditions)
	assert.True(t, hp.IsComplete)

	_, err = repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(upsertQ).
		WithArgs("anon-1", nil, "", "low", "", pq.StringArray{}, "", false).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("anon-1", nil, "", "low", "", nil, "", false, now, now))

	hp, err := repo.Upsert(context.Background(), &models.HealthProfile{UserKey: "anon-1", ActivityLevel: "low"})
	require.NoError(t, err)
	assert.Nil(t, hp.Age)
	assert.NotNil(t, hp.Conditions, "conditions must never be nil")
	assert.Empty(t, hp.Conditions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConditions(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(conditionQ).
		WithArgs("user-1", pq.StringArray{"asthma", "copd"}, "").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("user-1", 60, "", "low", "rare", "{asthma,copd}", "medium", true, now, now))
	mock.ExpectQuery(conditionQ).
		WithArgs("ghost", pq.StringArray{}, "high").
		WillReturnError(sql.ErrNoRows)

	hp, err := repo.UpdateConditions(context.Background(), "user-1", pq.StringArray{"asthma", "copd"}, "")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"asthma", "copd"}, hp.Conditions)
	assert.Equal(t, "medium", hp.Sensitivity)

	_, err = repo.UpdateConditions(context.Background(), "ghost", nil, "high")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("user-2").WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Delete(context.Background(), "user-1"))
	err := repo.Delete(context.Background(), "user-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
