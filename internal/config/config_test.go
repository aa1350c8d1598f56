package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_MAX_DUE_BACKDATE_DAYS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 365, cfg.MaxDueBackdateDays)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.DSN())
	assert.Equal(t, 10*time.Minute, cfg.RebuildLockTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "erp")
	t.Setenv("LEDGER_MAX_DUE_BACKDATE_DAYS", "30")
	t.Setenv("LEDGER_REBUILD_LOCK_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.MaxDueBackdateDays)
	assert.Equal(t, 90*time.Second, cfg.RebuildLockTTL)
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "dbname=erp")
}

func TestLoadRejectsNegativeBound(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("LEDGER_MAX_DUE_BACKDATE_DAYS", "-1")

	_, err := Load()
	require.Error(t, err)
}
