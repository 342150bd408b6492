// Package session holds the little state one user session carries between
// actions: the chosen directory and files, and the last compiled PDF.
package session

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kingrea/resume-builder/internal/latex"
	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/workspace"
)

// Action names a long-running operation.
type Action string

const (
	ActionTailor  Action = "tailor"
	ActionCompile Action = "compile"
)

// Session is scoped to one user. Tailor and Compile never overlap: Begin
// admits a single action at a time.
type Session struct {
	ID string

	mu        sync.Mutex
	dir       string
	files     []string
	mainFile  string
	selection []string
	artifact  string
	active    Action
}

// New starts a session rooted at dir.
func New(dir string) *Session {
	return &Session{ID: uuid.NewString(), dir: dir}
}

// ShortID is the first block of the session id, used to tag log lines.
func (s *Session) ShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// Dir returns the working directory.
func (s *Session) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Scan changes the working directory and re-derives the file list, main file
// and default selection. The previous artifact is forgotten.
func (s *Session) Scan(dir string, exts []string, protected func(string) bool) ([]string, error) {
	files, err := workspace.ListSourceFiles(dir, exts)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
	s.artifact = ""
	if err != nil {
		s.files, s.mainFile, s.selection = nil, "", nil
		return nil, err
	}
	s.files = files
	s.mainFile = workspace.DefaultMainFile(files)
	s.selection = workspace.DefaultSelection(files, protected)
	return append([]string{}, files...), nil
}

// Files returns the last scanned source files.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.files...)
}

// MainFile returns the compile entry point.
func (s *Session) MainFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mainFile
}

// SetMainFile picks the compile entry point among the scanned files.
func (s *Session) SetMainFile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !containsName(s.files, name) {
		return outcome.New("session", outcome.ErrValidation, fmt.Sprintf("main file %q is not in %s", name, s.dir))
	}
	if !workspace.IsMainCandidate(name) {
		return outcome.New("session", outcome.ErrValidation, fmt.Sprintf("main file %q must be a %s file", name, workspace.MainExtension))
	}
	s.mainFile = name
	return nil
}

// Selection returns the files the assistant may modify, in scan order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.selection...)
}

// IsSelected reports whether name is in the selection.
func (s *Session) IsSelected(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsName(s.selection, name)
}

// SetSelection replaces the selection, dropping names that were not scanned.
func (s *Session) SetSelection(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.ordered(func(name string) bool { return containsName(names, name) })
}

// Toggle flips one file in or out of the selection.
func (s *Session) Toggle(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !containsName(s.files, name) {
		return
	}
	was := containsName(s.selection, name)
	s.selection = s.ordered(func(candidate string) bool {
		if candidate == name {
			return !was
		}
		return containsName(s.selection, candidate)
	})
}

// ArtifactPath is the last compiled PDF, or where the main file's PDF would
// be when nothing was compiled in this session.
func (s *Session) ArtifactPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifact != "" {
		return s.artifact
	}
	if s.mainFile == "" || s.dir == "" {
		return ""
	}
	return latex.ArtifactPath(s.dir, s.mainFile)
}

// SetArtifact records a freshly compiled PDF.
func (s *Session) SetArtifact(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = filepath.Clean(path)
}

// Begin claims the session for action. The returned func releases it and is
// safe to call more than once.
func (s *Session) Begin(action Action) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != "" {
		return nil, outcome.New(string(action), outcome.ErrBusy, fmt.Sprintf("%s is still running", s.active))
	}
	s.active = action
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.active = ""
			s.mu.Unlock()
		})
	}, nil
}

// Active returns the running action, or "" when idle.
func (s *Session) Active() Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) ordered(keep func(string) bool) []string {
	out := []string{}
	for _, name := range s.files {
		if keep(name) {
			out = append(out, name)
		}
	}
	return out
}

func containsName(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
