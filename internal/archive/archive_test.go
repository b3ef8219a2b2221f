package archive

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/huellitas-unexpo/rescuebot/internal/report"
	"github.com/huellitas-unexpo/rescuebot/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := migrations.FS.ReadFile("0001_reports.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

func newTestRepository(t *testing.T) *Repository {
	repo := NewRepository(setupTestDB(t))
	ids := []string{"r-1", "r-2", "r-3"}
	repo.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return repo
}

func namedReport() report.Report {
	return report.Report{
		AnimalType:   "gato",
		Location:     "plaza Bolívar",
		HealthStatus: "desnutrido",
		ContactName:  "Ana",
		ContactPhone: "04241112233",
		Description:  "debajo de un banco",
		PhotoRef:     "AgACAgEAAxk",
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	id, err := repo.Save(ctx, Entry{
		Report:      namedReport(),
		Sender:      report.Sender{ID: 42, Username: "ana"},
		ChatID:      42,
		SubmittedAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", id)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.UserID)
	assert.Equal(t, int64(42), rec.ChatID)
	assert.Equal(t, "ana", rec.Username)
	assert.False(t, rec.Anonymous)
	assert.Equal(t, "plaza Bolívar", rec.Location)
	assert.Equal(t, "Ana", rec.ContactName)
	assert.Equal(t, "AgACAgEAAxk", rec.PhotoRef)
	assert.True(t, at.Equal(rec.CreatedAt), "created_at = %s", rec.CreatedAt)
}

func TestSaveAnonymousDropsIdentity(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := namedReport()
	r.ContactName, r.ContactPhone = report.AnonymousName, report.OmittedPhone
	id, err := repo.Save(ctx, Entry{Report: r, Sender: report.Sender{ID: 42, Username: "ana"}, ChatID: 42})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Anonymous)
	assert.Zero(t, rec.UserID)
	assert.Zero(t, rec.ChatID)
	assert.Empty(t, rec.Username)
	assert.Equal(t, report.AnonymousName, rec.ContactName)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAssignsDistinctIDs(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	a, err := repo.Save(ctx, Entry{Report: namedReport()})
	require.NoError(t, err)
	b, err := repo.Save(ctx, Entry{Report: namedReport()})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestPing(t *testing.T) {
	repo := newTestRepository(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
