package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/notifyhub/internal/config"
)

func TestPostgresConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Host = "db.internal"
	cfg.DB.ConnectTimeout = 3 * time.Second

	got := postgresConfig(cfg)

	assert.Equal(t, "db.internal", got.Host)
	assert.Equal(t, 11001, got.Port)
	assert.Equal(t, "notifications_db", got.DBName)
	assert.Equal(t, "local", got.User)
	assert.Equal(t, "local", got.Password)
	assert.Equal(t, "disable", got.SSLMode)
	assert.Equal(t, int32(10), got.MaxConns)
	assert.Equal(t, 3*time.Second, got.ConnectTimeout)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "notifyhub dev")
}

func TestMigrateDown_StepsFlag(t *testing.T) {
	root := newRootCmd()
	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)

	flag := down.Flags().Lookup("steps")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
}
