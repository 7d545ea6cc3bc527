package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortscope/cmd/sortscope/commands"
	"github.com/Sumatoshi-tech/sortscope/pkg/persist"
)

func renderWith(t *testing.T, args ...string) cmdResult {
	t.Helper()

	args = append([]string{"--config", writeConfig(t, "")}, args...)

	return execute(context.Background(), commands.NewRenderCommand(), args...)
}

func TestRenderCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewRenderCommand()
	assert.Equal(t, "render <history-file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	require.NotNil(t, cmd.Flags().Lookup("output"))
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestRenderCommand_RendersExportedHistory(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"run.json", "run.lz4"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			history := filepath.Join(dir, name)
			page := filepath.Join(dir, "page.html")

			require.NoError(t, runWith(t, "", "--values", "5,3,8,1", "--compact", "-o", history).err)

			res := renderWith(t, history, "-o", page, "--max-frames", "0")
			require.NoError(t, res.err)

			data, err := os.ReadFile(page)
			require.NoError(t, err)

			html := string(data)
			assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
			assert.Contains(t, html, "Merge sort: run")
			assert.Contains(t, html, "Step 1 of 9")
			assert.Contains(t, html, "Step 9 of 9")
		})
	}
}

func TestRenderCommand_SamplesFrames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	history := filepath.Join(dir, "run.gob")
	page := filepath.Join(dir, "page.html")

	require.NoError(t, runWith(t, "", "--count", "20", "--seed", "1", "-o", history).err)
	require.NoError(t, renderWith(t, history, "-o", page, "--max-frames", "4", "--theme", "light").err)

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), `class="echart-box"`))
}

func TestRenderCommand_RequiresOutput(t *testing.T) {
	t.Parallel()

	res := renderWith(t, "history.json")
	require.ErrorIs(t, res.err, commands.ErrNoOutputFile)
}

func TestRenderCommand_RequiresOneArg(t *testing.T) {
	t.Parallel()

	res := renderWith(t, "-o", "page.html")
	require.Error(t, res.err)
}

func TestRenderCommand_SchemaViolation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	history := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(history, []byte(`{"version":1,"kind":"history","snapshots":[{"values":"x"}]}`), 0o600))

	res := renderWith(t, history, "-o", filepath.Join(dir, "page.html"))
	require.ErrorIs(t, res.err, persist.ErrSchemaViolation)
}

func TestRenderCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	history := filepath.Join(dir, "run.txt")
	require.NoError(t, os.WriteFile(history, []byte("x"), 0o600))

	res := renderWith(t, history, "-o", filepath.Join(dir, "page.html"))
	require.ErrorIs(t, res.err, persist.ErrUnknownFormat)
}
