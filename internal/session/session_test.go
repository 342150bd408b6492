package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/resume-builder/internal/outcome"
)

var exts = []string{".tex", ".cls", ".sty"}

func isClass(name string) bool { return strings.HasSuffix(name, ".cls") }

func newResumeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"resume.tex", "altacv.cls"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	return dir
}

func TestScanDerivesDefaults(t *testing.T) {
	dir := newResumeDir(t)
	s := New(dir)
	files, err := s.Scan(dir, exts, isClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"altacv.cls", "resume.tex"}, files)
	assert.Equal(t, "resume.tex", s.MainFile())
	assert.Equal(t, []string{"resume.tex"}, s.Selection())
	assert.Equal(t, filepath.Join(dir, "resume.pdf"), s.ArtifactPath())
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.ShortID(), 8)
}

func TestScanMissingDirectoryClearsState(t *testing.T) {
	dir := newResumeDir(t)
	s := New(dir)
	_, err := s.Scan(dir, exts, isClass)
	require.NoError(t, err)
	s.SetArtifact(filepath.Join(dir, "resume.pdf"))

	missing := filepath.Join(dir, "nope")
	_, err = s.Scan(missing, exts, isClass)
	assert.True(t, errors.Is(err, outcome.ErrDirectoryNotFound))
	assert.Equal(t, missing, s.Dir())
	assert.Empty(t, s.Files())
	assert.Empty(t, s.Selection())
	assert.Empty(t, s.ArtifactPath())
}

func TestToggleAndSetSelectionKeepScanOrder(t *testing.T) {
	dir := newResumeDir(t)
	s := New(dir)
	_, err := s.Scan(dir, exts, isClass)
	require.NoError(t, err)

	s.Toggle("altacv.cls")
	assert.Equal(t, []string{"altacv.cls", "resume.tex"}, s.Selection())
	s.Toggle("resume.tex")
	assert.Equal(t, []string{"altacv.cls"}, s.Selection())
	s.Toggle("unknown.tex")
	assert.Equal(t, []string{"altacv.cls"}, s.Selection())

	s.SetSelection([]string{"resume.tex", "ghost.tex"})
	assert.Equal(t, []string{"resume.tex"}, s.Selection())
	assert.True(t, s.IsSelected("resume.tex"))
	assert.False(t, s.IsSelected("altacv.cls"))
}

func TestSetMainFile(t *testing.T) {
	dir := newResumeDir(t)
	s := New(dir)
	_, err := s.Scan(dir, exts, isClass)
	require.NoError(t, err)
	assert.Error(t, s.SetMainFile("cover.tex"))
	err = s.SetMainFile("altacv.cls")
	assert.True(t, errors.Is(err, outcome.ErrValidation))
	assert.Equal(t, "resume.tex", s.MainFile())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.tex"), nil, 0o644))
	_, err = s.Scan(dir, exts, isClass)
	require.NoError(t, err)
	require.NoError(t, s.SetMainFile("resume.tex"))
	assert.Equal(t, filepath.Join(dir, "resume.pdf"), s.ArtifactPath())
}

func TestScanWithoutTexHasNoMainFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "altacv.cls"), nil, 0o644))
	s := New(dir)
	files, err := s.Scan(dir, exts, isClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"altacv.cls"}, files)
	assert.Empty(t, s.MainFile())
	assert.Empty(t, s.ArtifactPath())
}

func TestBeginAdmitsOneActionAtATime(t *testing.T) {
	s := New(t.TempDir())
	release, err := s.Begin(ActionTailor)
	require.NoError(t, err)
	assert.Equal(t, ActionTailor, s.Active())

	_, err = s.Begin(ActionCompile)
	assert.True(t, errors.Is(err, outcome.ErrBusy))

	release()
	release()
	assert.Equal(t, Action(""), s.Active())
	again, err := s.Begin(ActionCompile)
	require.NoError(t, err)
	again()
}
