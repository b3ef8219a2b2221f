package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
}

func TestRunWithDatabase(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Database.Host = "db"
	migrations := fstest.MapFS{"0001_reports.up.sql": {Data: []byte("SELECT 1;")}}

	var steps []string
	res, err := Run(context.Background(), Options{
		Config:     cfg,
		Migrations: migrations,
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return sqlx.Open("sqlite", ":memory:")
		},
		WaitReady: func(context.Context, *sqlx.DB, time.Duration) error {
			steps = append(steps, "ready")
			return nil
		},
		Migrate: func(_ coreconfig.DatabaseConfig, fsys fs.FS) error {
			steps = append(steps, "migrate")
			_, err := fs.Stat(fsys, "0001_reports.up.sql")
			return err
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.DB)
	t.Cleanup(func() { _ = res.DB.Close() })
	assert.Equal(t, []string{"logger", "connect", "ready", "migrate"}, steps)
}

func TestRunFailures(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("bad dir") },
	})
	assert.ErrorContains(t, err, "logger init failed")

	cfg := &coreconfig.Config{}
	cfg.Database.Host = "db"
	_, err = Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return sqlx.Open("sqlite", ":memory:")
		},
		WaitReady: func(context.Context, *sqlx.DB, time.Duration) error { return context.DeadlineExceeded },
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
