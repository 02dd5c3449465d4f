package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"admin", "create"},
		{"lists", "create"},
		{"lists", "ls"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRuntimeLoad(t *testing.T) {
	t.Setenv("ML_DATABASE_DSN", "")
	t.Setenv("ML_PORT", "")
	t.Setenv("ML_ENVIRONMENT", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n  environment: development\n"), 0o600))

	rt := &runtimeState{configPath: path, envFile: filepath.Join(dir, "missing.env")}
	require.NoError(t, rt.load())

	assert.Equal(t, "9090", rt.cfg.Server.Port)
	assert.NotNil(t, rt.logger)

	_, err := rt.openPostgres()
	assert.EqualError(t, err, "database.dsn is required")
}
