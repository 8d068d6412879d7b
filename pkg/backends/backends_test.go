package backends

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap/config"
	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

func writeLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func testRoots(dir string) config.Roots {
	return config.Roots{
		models.BackendClaude: filepath.Join(dir, "claude"),
		models.BackendCodex:  filepath.Join(dir, "codex"),
		models.BackendGemini: filepath.Join(dir, "gemini"),
	}
}

func TestInferFromStorageRoot(t *testing.T) {
	dir := t.TempDir()
	roots := testRoots(dir)

	tests := []struct {
		path    string
		backend models.Backend
	}{
		{filepath.Join(dir, "claude", "proj", "s.jsonl"), models.BackendClaude},
		{filepath.Join(dir, "codex", "2026", "rollout-x.jsonl"), models.BackendCodex},
		{filepath.Join(dir, "gemini", "hash", "chats", "session-1.json"), models.BackendGemini},
	}
	for _, tt := range tests {
		p, err := Infer(tt.path, roots)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.backend, p.Backend())
	}
}

func TestInferOutsideRootsFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Infer(filepath.Join(dir, "elsewhere", "session.jsonl"), testRoots(dir))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBackendInference, errors.GetCode(err))

	// The error names every convention that was tried.
	var recapErr *errors.RecapError
	require.ErrorAs(t, err, &recapErr)
	assert.Contains(t, recapErr.Details, "root.claude")
	assert.Contains(t, recapErr.Details, "root.codex")
	assert.Contains(t, recapErr.Details, "root.gemini")
}

func TestParseFileEmptySession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0644))

	p, err := New(models.BackendClaude, nil)
	require.NoError(t, err)

	_, err = ParseFile(p, path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptySession, errors.GetCode(err))
}

func TestParseFileMissing(t *testing.T) {
	p, err := New(models.BackendCodex, nil)
	require.NoError(t, err)

	_, err = ParseFile(p, filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnreadableFile, errors.GetCode(err))
}

func TestUnderRoot(t *testing.T) {
	assert.True(t, underRoot("/tmp/claude/a/b.jsonl", "/tmp/claude"))
	assert.True(t, underRoot("/tmp/claude", "/tmp/claude"))
	assert.False(t, underRoot("/tmp/claudette/b.jsonl", "/tmp/claude"))
	assert.False(t, underRoot("/tmp/claude/b.jsonl", ""))
}
