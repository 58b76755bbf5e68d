package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycamp/internal/config"
	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/progress"
	"github.com/verte-zerg/keycamp/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedProgress(t *testing.T, dbPath string) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	repo := progress.NewRepository(st, "")
	require.NoError(t, repo.Save(ctx, progress.Progress{1: {Stars: 2, WPM: 14, Accuracy: 88, CompletedAt: time.Now()}}))
	_, err = st.InsertAttempt(ctx, model.Attempt{
		ChapterID: 1,
		StartedAt: time.Now().Add(-time.Minute),
		EndedAt:   time.Now(),
		WPM:       14,
		Accuracy:  88,
		Stars:     2,
	}, []model.KeyStats{{Key: "f", Correct: 10, Incorrect: 2}})
	require.NoError(t, err)
}

func TestProgressCommand(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "keycamp.db")

	out, err := run(t, "progress", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Stars: 0/90")
	assert.Contains(t, out, "locked")

	seedProgress(t, db)
	out, err = run(t, "progress", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Stars: 2/90")
}

func TestChaptersCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "chapters", "--backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "Phase 1: Home Row")
	assert.Contains(t, out, "(locked)")
	assert.NotContains(t, out, "\x1b[")
}

func TestStatsCommand(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "keycamp.db")
	seedProgress(t, db)

	out, err := run(t, "stats", "--db", db, "--chapter", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Chapter 1:")
	assert.Contains(t, out, "Attempts: 1")
	assert.Contains(t, out, "Weak keys: f")

	_, err = run(t, "stats", "--backend", "memory")
	assert.ErrorIs(t, err, errNoHistory)

	_, err = run(t, "stats", "--db", db, "--since", "yesterday")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "keycamp.db")
	seedProgress(t, db)
	outPath := filepath.Join(dir, "out", "progress.xlsx")

	_, err := run(t, "export", "--db", db, "--out", outPath)
	require.NoError(t, err)
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = run(t, "export", "--db", db, "--out", filepath.Join(dir, "progress.csv"))
	assert.Error(t, err)
}

func TestResetCommand(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "keycamp.db")
	seedProgress(t, db)

	_, err := run(t, "reset", "--db", db)
	require.Error(t, err)

	_, err = run(t, "reset", "--db", db, "--yes", "--history")
	require.NoError(t, err)

	out, err := run(t, "progress", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Stars: 0/90")

	out, err = run(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No attempts found.")
}

func TestConfigFileOverrides(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "keycamp.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[store]\npath = \""+filepath.ToSlash(db)+"\"\n"), 0o600))

	_, err := run(t, "progress", "--config", cfgPath)
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfgPath, []byte("[store]\nbackend = \"tape\"\n"), 0o600))
	_, err = run(t, "progress", "--config", cfgPath)
	assert.Error(t, err)
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	isolate(t)
	path := config.DefaultConfigPath()
	require.NoError(t, ensureConfigFile(path))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Store.Backend)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[practice]")
	assert.Contains(t, string(data), progress.DefaultKey)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(model.Config{}))
	assert.Error(t, validateConfig(model.Config{Words: -1}))
	assert.Error(t, validateConfig(model.Config{ChapterID: -2}))
}

func TestUnknownBackend(t *testing.T) {
	isolate(t)
	_, err := run(t, "progress", "--backend", "floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
