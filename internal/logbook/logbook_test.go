package logbook

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	assert.Equal(t, 5, total)
	require.Len(t, lines, 3)
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		assert.Contains(t, lines[idx], want)
	}
}

func TestAppendFormatsLevelTagAndSingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journey.log")
	book, err := New(path)
	require.NoError(t, err)
	book.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	book.WithTag("3f2a9c1e").Error("compile failed:\n%s", "missing artifact")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04T05:06:07Z ERROR [3f2a9c1e] compile failed: missing artifact\n", string(data))
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	lines, total := book.Tail(5)
	assert.Nil(t, lines)
	assert.Zero(t, total)
	assert.Empty(t, book.Path())
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	require.NoError(t, err)
	lines, total := book.Tail(3)
	assert.Empty(t, lines)
	assert.Zero(t, total)
}
