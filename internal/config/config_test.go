package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(body)), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvDir, "")
	t.Setenv(EnvAssistant, "")
	t.Setenv(EnvCompiler, "")
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.File.Version)
	assert.Equal(t, "claude", cfg.Assistant().Command)
	assert.Equal(t, 180*time.Second, cfg.Assistant().Timeout)
	assert.Equal(t, 60*time.Second, cfg.CompilerTimeout())
	assert.Equal(t, []string{"Read", "Edit", "Write", "Bash"}, cfg.Assistant().AllowedTools)
}

func TestLoadParsesYaml(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
version: 1
resume_dir: ~/cv
source_extensions: [tex, .CLS]
protected_files: [macros.tex]
assistant:
  command: claude-beta
  timeout: 90s
compiler:
  candidates:
    - ~/texlive/bin/pdflatex
  timeout: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(cfg.HomeDir, "cv"), cfg.ResumeDir())
	assert.Equal(t, []string{".tex", ".cls"}, cfg.SourceExtensions())
	assert.Equal(t, "claude-beta", cfg.Assistant().Command)
	assert.Equal(t, 90*time.Second, cfg.Assistant().Timeout)
	assert.Len(t, cfg.Assistant().AllowedTools, 4, "allowed tools should fall back to defaults")
	assert.Equal(t, 30*time.Second, cfg.CompilerTimeout())
	assert.Equal(t, filepath.Join(cfg.HomeDir, "texlive", "bin", "pdflatex"), cfg.CompilerCandidates()[0],
		"configured candidate should come first")
	assert.True(t, cfg.IsProtected("macros.tex"))
	assert.True(t, cfg.IsProtected("altacv.cls"))
	assert.False(t, cfg.IsProtected("resume.tex"))
}

func TestLoadValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
assistant:
  command: "   "
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant.command")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	t.Setenv(EnvAssistant, "/opt/claude/bin/claude")
	t.Setenv(EnvCompiler, "/opt/tex/pdflatex")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ResumeDir())
	assert.Equal(t, "/opt/claude/bin/claude", cfg.Assistant().Command)
	assert.Equal(t, "/opt/tex/pdflatex", cfg.CompilerCandidates()[0], "env compiler should be checked first")
}

func TestResolveCompilerReturnsFirstExisting(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second")
	third := filepath.Join(dir, "third")
	for _, p := range []string{second, third} {
		require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0755))
	}
	subdir := filepath.Join(dir, "a-directory")
	require.NoError(t, os.Mkdir(subdir, 0755))

	got, ok := ResolveCompiler([]string{filepath.Join(dir, "missing"), subdir, "", second, third})
	assert.True(t, ok)
	assert.Equal(t, second, got)

	_, ok = ResolveCompiler([]string{filepath.Join(dir, "missing")})
	assert.False(t, ok)
}

func TestSetResumeDirExpandsHome(t *testing.T) {
	cfg := &Config{HomeDir: "/home/someone"}
	cfg.SetResumeDir("~/resume")
	assert.Equal(t, "/home/someone/resume", cfg.ResumeDir())
}
