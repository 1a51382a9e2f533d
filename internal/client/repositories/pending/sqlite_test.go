package pending

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/airpass/internal/client/migrations"
	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func add(t *testing.T, r *SQLiteRepository, id, userKey string, ts int64) {
	t.Helper()
	require.NoError(t, r.Add(context.Background(), &models.PendingExposure{
		ID: id, UserKey: userKey, Payload: []byte(`{"lat":1}`), Timestamp: ts,
	}))
}

func TestList_OrderedByTimestamp(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	add(t, r, "c", "u1", 300)
	add(t, r, "a", "u1", 100)
	add(t, r, "b", "u1", 100)
	add(t, r, "z", "u2", 50)

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "c", list[2].ID)
	assert.Equal(t, []byte(`{"lat":1}`), list[0].Payload)
	assert.False(t, list[0].CreatedAt.IsZero())

	n, err := r.Count(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdd_DuplicateID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	add(t, r, "a", "u1", 1)

	err := r.Add(context.Background(), &models.PendingExposure{ID: "a", UserKey: "u1", Payload: []byte("{}"), Timestamp: 2})
	require.ErrorContains(t, err, "failed to queue exposure")
}

func TestMarkFailedAndDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	add(t, r, "a", "u1", 1)

	require.NoError(t, r.MarkFailed(ctx, "a", "boom"))
	require.NoError(t, r.MarkFailed(ctx, "a", "boom again"))
	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Attempts)
	assert.Equal(t, "boom again", list[0].LastError)

	require.ErrorIs(t, r.MarkFailed(ctx, "missing", "x"), common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, "a"))
	n, err := r.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
