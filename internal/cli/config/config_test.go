package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/wadocs/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wadocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("docs-dir", "", "")
	flags.String("output-dir", "", "")
	flags.String("state", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "site:\n  title: Docs\n")
	root := filepath.Dir(cfgPath)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "docs"), cfg.DocsDir)
	assert.Equal(t, filepath.Join(root, "_site"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(root, ".wadocs", "state.db"), cfg.StatePath)
	assert.Empty(t, cfg.Catalog)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, "Docs", cfg.Site.Title)
	assert.Equal(t, []string{"default"}, cfg.Site.AllowedLayouts)
	assert.Equal(t, core.LinkStyleRelativeHTML, cfg.LinkStyle())
	assert.Equal(t, DefaultPort, cfg.Serve.Port)
	assert.True(t, cfg.Serve.Watch)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `docs_dir: content
catalog: catalog.yaml
site:
  base_url: https://docs.example.com/wa/
  link_style: relative
  workers: 4
  incremental: true
lint:
  disabled: [CT03]
  severity:
    NS08: warning
  rules:
    NS02:
      allowed_layouts: [default, home]
upstream:
  timeout: 5s
publish:
  bucket: docs-bucket
  prefix: wa
  prune: true
`)
	root := filepath.Dir(cfgPath)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "content"), cfg.DocsDir)
	assert.Equal(t, filepath.Join(root, "catalog.yaml"), cfg.Catalog)
	assert.Equal(t, core.LinkStyleRelative, cfg.LinkStyle())
	assert.Equal(t, 4, cfg.Site.Workers)
	assert.True(t, cfg.Site.Incremental)
	require.NotNil(t, cfg.Lint)
	assert.Equal(t, []string{"CT03"}, cfg.Lint.Disabled)
	assert.Equal(t, "warning", cfg.Lint.Severity["NS08"])
	assert.Equal(t, []any{"default", "home"}, cfg.Lint.Rules["NS02"]["allowed_layouts"])
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "docs-bucket", cfg.Publish.Bucket)
	assert.True(t, cfg.Publish.Prune)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "output: markdown\noutput_dir: from_file\n")

	t.Setenv("WADOCS_OUTPUT", "json")
	t.Setenv("WADOCS_OUTPUT_DIR", "from_env")

	flags := testFlags()
	require.NoError(t, flags.Set("output", "text"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat, "flag overrides env and file")
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "from_env"), cfg.OutputDir, "env overrides file")
}

func TestLoadConfig_NestedEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "publish:\n  bucket: from_file\n")
	t.Setenv("WADOCS_PUBLISH__BUCKET", "from_env")
	t.Setenv("WADOCS_SERVE__PORT", "8080")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Publish.Bucket)
	assert.Equal(t, 8080, cfg.Serve.Port)
}

func TestLoadConfig_PathFlagsResolveFromCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "docs_dir: from_file\n")

	flags := testFlags()
	require.NoError(t, flags.Set("docs-dir", "elsewhere/docs"))
	require.NoError(t, flags.Set("state", ":memory:"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "elsewhere", "docs"), cfg.DocsDir)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "link style", content: "site:\n  link_style: absolute\n", want: "unknown link style"},
		{name: "output", content: "output: yaml\n", want: "output must be auto, text, markdown or json"},
		{name: "port", content: "serve:\n  port: 70000\n", want: "65535"},
		{name: "appendix url", content: "upstream:\n  appendix_url: not-a-url\n", want: "must be an absolute URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "wadocs.yml"), []byte("{}\n"), 0o600))
	nested := filepath.Join(root, "docs", "cost-optimization")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Empty(t, findProjectRootUpward(t.TempDir()))
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("empty docs_dir", func(t *testing.T) {
		cfg := Default()
		cfg.DocsDir = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docs_dir is required")
	})

	t.Run("negative workers", func(t *testing.T) {
		cfg := Default()
		cfg.Site.Workers = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site.workers must not be negative")
	})
}

func TestConfig_ValidateDirectories(t *testing.T) {
	cfg := Default()
	cfg.DocsDir = filepath.Join(t.TempDir(), "nope")
	err := cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--docs-dir")

	cfg.DocsDir = t.TempDir()
	assert.NoError(t, cfg.ValidateDirectories())
}
