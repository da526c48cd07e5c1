package main

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-analyzer/internal/config"
)

func serverConfig(t *testing.T, port int) *config.AppConfig {
	t.Helper()
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "analyses.db"))

	cfg := config.NewConfig().(*config.AppConfig)
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func TestRun_ReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	cfg := serverConfig(t, busy.Addr().(*net.TCPAddr).Port)

	err = run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	cfg := serverConfig(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, run(ctx, cfg))
}
