package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, Migrate(db.Pool))
}

func TestHasAppliedOnlyCountsSubmissions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	ok, err := HasApplied(ctx, db.Pool, "https://www.linkedin.com/jobs/view/1/")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RecordApplication(ctx, db.Pool, Application{
		Link:   "https://www.linkedin.com/jobs/view/1/",
		Status: StatusFailed,
	}))
	ok, err = HasApplied(ctx, db.Pool, "https://www.linkedin.com/jobs/view/1/")
	require.NoError(t, err)
	assert.False(t, ok, "failed attempts deserve a retry")

	require.NoError(t, RecordApplication(ctx, db.Pool, Application{
		Link:    "https://www.linkedin.com/jobs/view/1/",
		Company: "Acme",
		Status:  StatusApplied,
	}))
	ok, err = HasApplied(ctx, db.Pool, "https://www.linkedin.com/jobs/view/1/")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordApplicationUpsertsByLink(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	link := "https://www.linkedin.com/jobs/view/2/"
	require.NoError(t, RecordApplication(ctx, db.Pool, Application{Link: link, Status: StatusFailed}))
	require.NoError(t, RecordApplication(ctx, db.Pool, Application{Link: link, Status: StatusApplied}))

	var count int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM applications;`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRecordApplicationAllowsEmptyLinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Tiles that failed link extraction still get a history row each;
	// the unique index only guards non-empty links.
	require.NoError(t, RecordApplication(ctx, db.Pool, Application{Status: StatusFailed}))
	require.NoError(t, RecordApplication(ctx, db.Pool, Application{Status: StatusFailed}))

	var count int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM applications WHERE link = '';`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestHasAppliedEmptyLink(t *testing.T) {
	db := testDB(t)
	ok, err := HasApplied(context.Background(), db.Pool, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanupOldFailures(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, RecordApplication(ctx, db.Pool, Application{
		Link:      "https://www.linkedin.com/jobs/view/3/",
		Status:    StatusFailed,
		AppliedAt: "2020-01-01T00:00:00Z",
	}))
	require.NoError(t, RecordApplication(ctx, db.Pool, Application{
		Link:   "https://www.linkedin.com/jobs/view/4/",
		Status: StatusFailed,
	}))

	n, err := CleanupOldFailures(db.Pool)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
