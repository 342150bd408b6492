// internal/config/config.go
//
// This package resolves everything resume-builder needs before it can run:
// the resume directory, which extensions count as source files, how to call
// the assistant and where pdflatex lives.
//
// Sources, lowest precedence first:
// 1. built-in defaults
// 2. <user config dir>/resume-builder/config.yaml (optional, never written)
// 3. environment (a .env file in the current directory is loaded first)
// 4. command-line flags, applied by the caller

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for the config and cache directory names.
	AppName = "resume-builder"

	EnvDir       = "RESUME_BUILDER_DIR"
	EnvAssistant = "RESUME_BUILDER_ASSISTANT"
	EnvCompiler  = "RESUME_BUILDER_COMPILER"

	defaultAssistant        = "claude"
	defaultAssistantTimeout = 180 * time.Second
	defaultCompilerTimeout  = 60 * time.Second
)

var (
	defaultAllowedTools     = []string{"Read", "Edit", "Write", "Bash"}
	defaultSourceExtensions = []string{".tex", ".cls", ".sty"}
	defaultStyleExtensions  = []string{".cls", ".sty"}
	defaultProtectedFiles   = []string{"altacv.cls"}
)

// AssistantConfig describes how the AI assistant CLI is invoked.
type AssistantConfig struct {
	Command      string        `yaml:"command"`
	AllowedTools []string      `yaml:"allowed_tools"`
	Timeout      time.Duration `yaml:"timeout"`
}

// CompilerConfig describes where to look for pdflatex.
type CompilerConfig struct {
	// Candidates are checked before the built-in install locations.
	Candidates []string      `yaml:"candidates,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
}

// FileConfig models config.yaml.
type FileConfig struct {
	Version          int             `yaml:"version"`
	ResumeDir        string          `yaml:"resume_dir"`
	DownloadDir      string          `yaml:"download_dir"`
	SourceExtensions []string        `yaml:"source_extensions"`
	StyleExtensions  []string        `yaml:"style_extensions"`
	ProtectedFiles   []string        `yaml:"protected_files"`
	Assistant        AssistantConfig `yaml:"assistant"`
	Compiler         CompilerConfig  `yaml:"compiler"`
}

// Config holds the resolved runtime configuration.
type Config struct {
	// Path is the config file that was read, if any.
	Path string

	// HomeDir expands "~" in configured paths.
	HomeDir string

	// CacheDir holds the journey log.
	CacheDir string

	File FileConfig
}

// Load resolves configuration. An empty path means the default location under
// os.UserConfigDir; a missing file there is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, AppName, "config.yaml")
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	// Missing .env is the common case.
	_ = godotenv.Load()
	cfg.applyEnv(os.Getenv)

	cfg.File.normalize(cfg.HomeDir)
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	home, _ := os.UserHomeDir()
	cfg := &Config{HomeDir: home, File: defaultFileConfig(home)}
	if cache, err := os.UserCacheDir(); err == nil {
		cfg.CacheDir = filepath.Join(cache, AppName)
	} else {
		cfg.CacheDir = filepath.Join(os.TempDir(), AppName)
	}
	return cfg
}

// ResumeDir returns the configured starting directory.
func (c *Config) ResumeDir() string {
	return c.File.ResumeDir
}

// SetResumeDir overrides the starting directory for this run only.
func (c *Config) SetResumeDir(dir string) {
	c.File.ResumeDir = expandHome(c.HomeDir, strings.TrimSpace(dir))
}

// DownloadDir is where saved copies of the PDF go.
func (c *Config) DownloadDir() string {
	return c.File.DownloadDir
}

// SourceExtensions lists the extensions treated as resume source files.
func (c *Config) SourceExtensions() []string {
	return c.File.SourceExtensions
}

// IsProtected reports whether name is excluded from the default selection.
func (c *Config) IsProtected(name string) bool {
	if contains(c.File.ProtectedFiles, name) {
		return true
	}
	return contains(c.File.StyleExtensions, filepath.Ext(name))
}

// Assistant returns the assistant invocation settings.
func (c *Config) Assistant() AssistantConfig {
	return c.File.Assistant
}

// CompilerTimeout bounds each pdflatex pass.
func (c *Config) CompilerTimeout() time.Duration {
	return c.File.Compiler.Timeout
}

// CompilerCandidates returns the ordered list of pdflatex locations to check.
func (c *Config) CompilerCandidates() []string {
	out := append([]string{}, c.File.Compiler.Candidates...)
	return append(out, defaultCompilerCandidates(c.HomeDir)...)
}

// Compiler resolves pdflatex against CompilerCandidates.
func (c *Config) Compiler() (string, bool) {
	return ResolveCompiler(c.CompilerCandidates())
}

// LogPath is the journey log location.
func (c *Config) LogPath() string {
	return filepath.Join(c.CacheDir, "journey.log")
}

// ResolveCompiler returns the first candidate that exists as a regular file.
func ResolveCompiler(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return candidate, true
	}
	return "", false
}

func defaultCompilerCandidates(home string) []string {
	return []string{
		filepath.Join(home, "Library", "TinyTeX", "bin", "universal-darwin", "pdflatex"),
		"/Library/TeX/texbin/pdflatex",
		"/usr/local/bin/pdflatex",
		filepath.Join(home, ".TinyTeX", "bin", "x86_64-linux", "pdflatex"),
		"/usr/bin/pdflatex",
	}
}

func defaultFileConfig(home string) FileConfig {
	return FileConfig{
		Version:          1,
		ResumeDir:        filepath.Join(home, "Desktop", "resume"),
		DownloadDir:      filepath.Join(home, "Downloads"),
		SourceExtensions: append([]string{}, defaultSourceExtensions...),
		StyleExtensions:  append([]string{}, defaultStyleExtensions...),
		ProtectedFiles:   append([]string{}, defaultProtectedFiles...),
		Assistant: AssistantConfig{
			Command:      defaultAssistant,
			AllowedTools: append([]string{}, defaultAllowedTools...),
			Timeout:      defaultAssistantTimeout,
		},
		Compiler: CompilerConfig{Timeout: defaultCompilerTimeout},
	}
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	parsed := c.File
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults(c.HomeDir)
	c.File = parsed
	c.Path = path
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if dir := strings.TrimSpace(getenv(EnvDir)); dir != "" {
		c.File.ResumeDir = dir
	}
	if cmd := strings.TrimSpace(getenv(EnvAssistant)); cmd != "" {
		c.File.Assistant.Command = cmd
	}
	if compiler := strings.TrimSpace(getenv(EnvCompiler)); compiler != "" {
		c.File.Compiler.Candidates = append([]string{compiler}, c.File.Compiler.Candidates...)
	}
}

func (fc *FileConfig) applyDefaults(home string) {
	def := defaultFileConfig(home)
	if fc.Version == 0 {
		fc.Version = def.Version
	}
	if len(fc.SourceExtensions) == 0 {
		fc.SourceExtensions = def.SourceExtensions
	}
	if fc.StyleExtensions == nil {
		fc.StyleExtensions = def.StyleExtensions
	}
	if fc.Assistant.Command == "" {
		fc.Assistant.Command = def.Assistant.Command
	}
	if len(fc.Assistant.AllowedTools) == 0 {
		fc.Assistant.AllowedTools = def.Assistant.AllowedTools
	}
	if fc.Assistant.Timeout == 0 {
		fc.Assistant.Timeout = def.Assistant.Timeout
	}
	if fc.Compiler.Timeout == 0 {
		fc.Compiler.Timeout = def.Compiler.Timeout
	}
}

func (fc *FileConfig) normalize(home string) {
	fc.ResumeDir = expandHome(home, strings.TrimSpace(fc.ResumeDir))
	fc.DownloadDir = expandHome(home, strings.TrimSpace(fc.DownloadDir))
	fc.SourceExtensions = normalizeExtensions(fc.SourceExtensions)
	fc.StyleExtensions = normalizeExtensions(fc.StyleExtensions)
	fc.Assistant.Command = strings.TrimSpace(fc.Assistant.Command)
	for i, candidate := range fc.Compiler.Candidates {
		fc.Compiler.Candidates[i] = expandHome(home, strings.TrimSpace(candidate))
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if len(fc.SourceExtensions) == 0 {
		return fmt.Errorf("source_extensions must not be empty")
	}
	if fc.Assistant.Command == "" {
		return fmt.Errorf("assistant.command is required")
	}
	if fc.Assistant.Timeout < 0 {
		return fmt.Errorf("assistant.timeout must be positive")
	}
	if fc.Compiler.Timeout < 0 {
		return fmt.Errorf("compiler.timeout must be positive")
	}
	return nil
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func expandHome(home, path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return filepath.Clean(path)
}
