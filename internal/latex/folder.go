package latex

import (
	"runtime"

	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/workspace"
)

var launch = procexec.Start

// OpenInFileManager asks the OS to show dir in its file browser without
// waiting for it.
func OpenInFileManager(dir string) error {
	if !workspace.IsDir(dir) {
		return outcome.New("open", outcome.ErrDirectoryNotFound, dir)
	}
	return launch(procexec.Command{Name: fileManager(), Args: []string{dir}})
}

func fileManager() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
