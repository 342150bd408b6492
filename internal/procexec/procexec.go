// internal/procexec/procexec.go
//
// One way to run an external program. The assistant and the compiler are both
// invoked through a Runner so the orchestrators share timeout handling,
// forced termination and the mapping from process results to a Status.

package procexec

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// Status tags how an invocation ended.
type Status int

const (
	StatusSuccess  Status = iota // exited with status zero
	StatusFailed                 // exited nonzero or could not be started
	StatusTimeout                // exceeded its bound and was killed
	StatusNotFound               // executable does not exist
	StatusCanceled               // caller's context ended first
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusNotFound:
		return "not-found"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// waitDelay bounds how long Wait keeps copying output after the process
// group has been killed.
const waitDelay = 2 * time.Second

// Command describes a single invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string // nil inherits the parent environment
	Timeout time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// Outcome is what a Runner reports for a Command.
type Outcome struct {
	Status   Status
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	Duration time.Duration
}

// Diagnostic returns stderr, falling back to stdout when stderr is empty.
func (o Outcome) Diagnostic() string {
	if msg := strings.TrimSpace(o.Stderr); msg != "" {
		return msg
	}
	return strings.TrimSpace(o.Stdout)
}

// Runner executes commands. Implementations must not return before the
// process has exited or been killed.
type Runner interface {
	Run(ctx context.Context, cmd Command) Outcome
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) Outcome

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) Outcome {
	return f(ctx, cmd)
}

// Exec runs commands as real child processes.
type Exec struct{}

// Run starts c, waits for it and classifies the result. On timeout the child's
// whole process group is killed.
func (Exec) Run(ctx context.Context, c Command) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureCommandProcess(cmd)
	cmd.Cancel = func() error {
		terminateCommandProcess(cmd)
		return nil
	}
	cmd.WaitDelay = waitDelay

	started := time.Now()
	err := cmd.Run()
	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
		Duration: time.Since(started),
	}
	out.Status, out.ExitCode = classify(ctx, runCtx, err)
	return out
}

// Start launches c without waiting for it. The child is reaped in the
// background.
func Start(c Command) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func classify(parent, run context.Context, err error) (Status, int) {
	if err == nil {
		return StatusSuccess, 0
	}
	if errors.Is(run.Err(), context.DeadlineExceeded) {
		return StatusTimeout, -1
	}
	if errors.Is(parent.Err(), context.Canceled) {
		return StatusCanceled, -1
	}
	if IsNotFound(err) {
		return StatusNotFound, -1
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return StatusFailed, exitErr.ExitCode()
	}
	return StatusFailed, -1
}

// IsNotFound reports whether err means the executable could not be located.
// A missing working directory is not a missing executable.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound) || errors.Is(execErr.Err, fs.ErrNotExist)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op != "chdir" && errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}
