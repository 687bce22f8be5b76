package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/phonegallery/internal/stats"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func setupEnv(t *testing.T) {
	t.Helper()
	prevNoColor := color.NoColor
	prevLogger := slog.Default()
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		slog.SetDefault(prevLogger)
	})

	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "data", "phones.db"))
	t.Setenv("IMAGE_BACKEND", "local")
	t.Setenv("IMAGE_LOCAL_PATH", filepath.Join(dir, "public"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
}

func TestSeedCommandIsIdempotent(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, runCmd(t, "seed"), "seeded 14 phones")
	assert.Contains(t, runCmd(t, "seed"), "nothing seeded")
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, runCmd(t, "migrate"), "schema version 3")
}

func TestBackfillCommandWithoutImages(t *testing.T) {
	setupEnv(t)

	runCmd(t, "seed")
	assert.Contains(t, runCmd(t, "backfill"), "migrated 0, failed 14")
}

func TestStatsCommand(t *testing.T) {
	setupEnv(t)

	runCmd(t, "seed")
	out := runCmd(t, "stats")
	assert.Contains(t, out, "total      14")
	assert.Contains(t, out, "liked      10")
	assert.Contains(t, out, "disliked   4")
	// Statistics fold over the listing order (current phone first, then most
	// recent), so Apple reaches two likes before Nokia and Google reaches one
	// dislike before Alcatel.
	assert.Contains(t, out, "Most liked:    Apple (2)")
	assert.Contains(t, out, "Most disliked: Google (1)")
}

func TestPrintStatsEmpty(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	printStats(&buf, stats.Compute(nil, 2024))
	assert.Contains(t, buf.String(), "total      0")
	assert.NotContains(t, buf.String(), "Brands")
	assert.NotContains(t, buf.String(), "Most liked")
}

func TestUnknownImageBackend(t *testing.T) {
	setupEnv(t)
	t.Setenv("IMAGE_BACKEND", "ftp")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"seed"})
	assert.Error(t, root.Execute())
}
