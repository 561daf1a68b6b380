package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtest/internal/adapter/memory"
	"adtest/internal/app"
	"adtest/internal/config"
	"adtest/internal/testutil"
)

func setupCLI(t *testing.T) {
	t.Helper()
	kv := memory.NewKVStore()
	orig := openApp
	openApp = func(_ context.Context, cfg config.Config, _ *cobra.Command) (*app.App, error) {
		return app.NewWithStore(cfg, kv, testutil.Logger())
	}
	t.Cleanup(func() { openApp = orig })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeImage(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

var testIDPattern = regexp.MustCompile(`test-[0-9a-f-]{36}`)

func createSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, "create", "Spring Launch",
		writeImage(t, dir, "rect.png", testutil.PNG(t, 300, 250)),
		writeImage(t, dir, "readme.txt", []byte("not an image")),
		writeImage(t, dir, "board.gif", testutil.GIF(t, 728, 90)),
		"--click", "https://example.com/click",
		"--author", "jane",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, `Skipped: File "readme.txt" has an invalid type.`)
	assert.Contains(t, out, "with 2 creatives")
	assert.Contains(t, out, "1: rect.png (300×250 pixels)")

	id := testIDPattern.FindString(out)
	require.NotEmpty(t, id)
	return id
}

func TestCreateListShow(t *testing.T) {
	setupCLI(t)
	id := createSample(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Spring Launch")
	assert.Contains(t, out, "jane")

	out, err = run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:      Spring Launch")
	assert.Contains(t, out, "#2 board.gif")
	assert.Contains(t, out, "728×90 pixels")
	assert.Contains(t, out, "Click URL: https://example.com/click")
	assert.Contains(t, out, "Imp 1:     None")

	out, err = run(t, "show", id, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Spring Launch")
	assert.Contains(t, out, "clickUrl: https://example.com/click")
	assert.NotContains(t, out, "data:image")

	out, err = run(t, "show", id, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"creativeCount": 2`)

	_, err = run(t, "show", id, "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestListEmpty(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tests saved yet.")
}

func TestCreate_NoUsableFiles(t *testing.T) {
	setupCLI(t)
	dir := t.TempDir()

	_, err := run(t, "create", "Broken", writeImage(t, dir, "a.txt", []byte("text")))
	assert.EqualError(t, err, "Please upload at least one creative file")
}

func TestCreate_InvalidTracking(t *testing.T) {
	setupCLI(t)
	dir := t.TempDir()

	_, err := run(t, "create", "Bad", writeImage(t, dir, "a.png", testutil.PNG(t, 1, 1)), "--imp2", "www.example.com")
	assert.EqualError(t, err, "Invalid Impression URL 2 for a.png")
}

func TestExport(t *testing.T) {
	setupCLI(t)
	id := createSample(t)
	outDir := t.TempDir()

	out, err := run(t, "export", id, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "test_spring_launch.html")
	html, err := os.ReadFile(filepath.Join(outDir, "test_spring_launch.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `src="data:image/png;base64,`)

	_, err = run(t, "export", id, "--zip", "-o", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "test_spring_launch.zip"))

	_, err = run(t, "export", "test-missing", "-o", outDir)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	setupCLI(t)
	id := createSample(t)

	origConfirm := confirm
	t.Cleanup(func() { confirm = origConfirm })
	confirm = func(string) (bool, error) { return false, nil }

	out, err := run(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = run(t, "delete", id, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted test 'Spring Launch'.")

	_, err = run(t, "delete", id, "-y")
	assert.ErrorContains(t, err, "test not found")
}

func TestSeed(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded test 'Demo Display Test'")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo Display Test")
}

func TestExport_NameWithPathSeparators(t *testing.T) {
	setupCLI(t)
	img := writeImage(t, t.TempDir(), "a.png", testutil.PNG(t, 2, 2))
	base := t.TempDir()
	outDir := filepath.Join(base, "a", "out")

	for name, want := range map[string]string{
		"Q3/Q4 Launch":    "test_q3_q4_launch.html",
		"x/../../escaped": "test_x_.._.._escaped.html",
	} {
		out, err := run(t, "create", name, img)
		require.NoError(t, err, out)
		id := testIDPattern.FindString(out)
		require.NotEmpty(t, id)

		out, err = run(t, "export", id, "-o", outDir)
		require.NoError(t, err, out)
		assert.FileExists(t, filepath.Join(outDir, want))
	}

	entries, err := os.ReadDir(filepath.Join(base, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out", entries[0].Name())
}

func TestExportPath(t *testing.T) {
	p, err := exportPath("out", `test_a/b\c.zip`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "test_a_b_c.zip"), p)

	_, err = exportPath("out", "..")
	assert.Error(t, err)
}
