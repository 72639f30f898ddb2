package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SilenceUsage = true
	cmd.SetContext(context.Background())
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-docs")

	out, err := execInit(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "- wadocs.yaml")
	assert.Contains(t, out, "- .gitignore")
	assert.Contains(t, out, "- docs/index.md")
	assert.Contains(t, out, "wadocs project initialized!")

	for _, f := range []string{"wadocs.yaml", ".gitignore", "docs/index.md"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(f)))
	}
	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "_site/")

	// The generated config loads and points at the new docs tree.
	cfg, err := config.LoadConfig(filepath.Join(dir, "wadocs.yaml"), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)
	assert.Equal(t, filepath.Join(dir, "docs"), cfg.DocsDir)

	t.Run("existing config needs force", func(t *testing.T) {
		_, err := execInit(t, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wadocs.yaml already exists")
	})

	t.Run("force keeps going", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "index.md"), []byte("mine"), 0o600))

		_, err := execInit(t, dir, "--force")
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "docs", "index.md"))
		require.NoError(t, err)
		assert.NotEqual(t, "mine", string(data))
	})
}

func TestInitCommand_Example(t *testing.T) {
	dir := t.TempDir()

	out, err := execInit(t, dir, "--example", "cost-optimization")
	require.NoError(t, err)
	assert.Contains(t, out, "- docs/cost-optimization/COST01.md")
	assert.Contains(t, out, "- docs/cost-optimization/index.md")

	for _, f := range []string{"COST01.md", "COST01-BP01.md", "index.md"} {
		assert.FileExists(t, filepath.Join(dir, "docs", "cost-optimization", f))
	}

	t.Run("unknown pillar", func(t *testing.T) {
		_, err := execInit(t, t.TempDir(), "--example", "billing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown pillar "billing"`)
	})
}

func TestRenameSpecialFiles(t *testing.T) {
	assert.Equal(t, "/.gitignore", renameSpecialFiles("/gitignore"))
	assert.Equal(t, "/sub/.gitignore", renameSpecialFiles("/sub/gitignore"))
	assert.Equal(t, "/docs/index.md", renameSpecialFiles("/docs/index.md"))
}
