package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/stretchr/testify/require"
)

// WriteTree writes files (slash-separated paths to content) under a fresh
// temporary directory and returns it.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

// LoadCorpus writes files to disk and loads them as a corpus.
func LoadCorpus(t testing.TB, files map[string]string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Load(WriteTree(t, files))
	require.NoError(t, err)
	return c
}

// Page renders a Markdown document with the given front matter lines.
func Page(frontMatter, body string) string {
	return "---\n" + frontMatter + "\n---\n\n" + body
}
