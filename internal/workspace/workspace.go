// Package workspace discovers the resume source files inside a directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/resume-builder/internal/outcome"
)

// MainExtension is the extension of files that can be compiled on their own.
const MainExtension = ".tex"

// Source is the text of one selected file.
type Source struct {
	Name    string
	Content string
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListSourceFiles returns the names directly under dir whose extension is in
// exts, skipping dot-files and directories, in lexicographic order.
func ListSourceFiles(dir string, exts []string) ([]string, error) {
	if !IsDir(dir) {
		return nil, outcome.New("list", outcome.ErrDirectoryNotFound, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("workspace: read %s: %w", dir, err)
	}
	files := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !hasExtension(name, exts) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// DefaultSelection keeps every file that protected does not reject.
func DefaultSelection(files []string, protected func(string) bool) []string {
	out := make([]string, 0, len(files))
	for _, name := range files {
		if protected != nil && protected(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// IsMainCandidate reports whether name can be compiled on its own.
func IsMainCandidate(name string) bool {
	return strings.EqualFold(filepath.Ext(name), MainExtension)
}

// DefaultMainFile picks the first .tex file, or "" when there is none.
func DefaultMainFile(files []string) string {
	for _, name := range files {
		if IsMainCandidate(name) {
			return name
		}
	}
	return ""
}

// ReadSources loads the text of each selected file. Files that vanished since
// the last scan are skipped.
func ReadSources(dir string, selection []string) ([]Source, error) {
	if !IsDir(dir) {
		return nil, outcome.New("read", outcome.ErrDirectoryNotFound, dir)
	}
	var out []Source
	for _, name := range selection {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("workspace: read %s: %w", name, err)
		}
		out = append(out, Source{Name: name, Content: string(data)})
	}
	return out, nil
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range exts {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
