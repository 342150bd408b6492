package tailor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/workspace"
)

const (
	op = "tailor"

	DefaultCommand = "claude"
	DefaultTimeout = 180 * time.Second
)

// DefaultAllowedTools is the capability set granted to the assistant.
var DefaultAllowedTools = []string{"Read", "Edit", "Write", "Bash"}

// Request bundles one tailoring invocation.
type Request struct {
	Dir            string
	Selection      []string
	JobDescription string
	Instructions   string
}

// Result is a successful tailoring run.
type Result struct {
	// Output is the assistant's stdout.
	Output   string
	Duration time.Duration
}

// Orchestrator invokes the assistant.
type Orchestrator struct {
	Runner       procexec.Runner
	Command      string
	AllowedTools []string
	Timeout      time.Duration
}

// New returns an Orchestrator with the default command, tools and timeout.
func New(runner procexec.Runner) *Orchestrator {
	return &Orchestrator{
		Runner:       runner,
		Command:      DefaultCommand,
		AllowedTools: append([]string{}, DefaultAllowedTools...),
		Timeout:      DefaultTimeout,
	}
}

// Validate checks the preconditions of req without touching any process.
func (req Request) Validate() error {
	if strings.TrimSpace(req.JobDescription) == "" {
		return outcome.New(op, outcome.ErrValidation, "job description is empty")
	}
	if !workspace.IsDir(req.Dir) {
		return &outcome.Error{
			Op:     op,
			Kind:   outcome.ErrValidation,
			Detail: fmt.Sprintf("resume directory %q not found", req.Dir),
			Also:   []error{outcome.ErrDirectoryNotFound},
		}
	}
	if len(req.Selection) == 0 {
		return outcome.New(op, outcome.ErrValidation, "no files selected")
	}
	return nil
}

// Invocation returns the process invocation for req.
func (o *Orchestrator) Invocation(req Request) procexec.Command {
	tools := o.AllowedTools
	if len(tools) == 0 {
		tools = DefaultAllowedTools
	}
	name := o.Command
	if strings.TrimSpace(name) == "" {
		name = DefaultCommand
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	prompt := BuildPrompt(req.JobDescription, req.Instructions, req.Dir, req.Selection)
	return procexec.Command{
		Name:    name,
		Args:    []string{"-p", prompt, "--allowedTools", strings.Join(tools, ",")},
		Dir:     req.Dir,
		Timeout: timeout,
	}
}

// Run validates req and blocks until the assistant exits, times out or turns
// out to be missing.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if o.Runner == nil {
		return Result{}, fmt.Errorf("tailor: runner not configured")
	}
	cmd := o.Invocation(req)
	out := o.Runner.Run(ctx, cmd)
	switch out.Status {
	case procexec.StatusSuccess:
		return Result{Output: out.Stdout, Duration: out.Duration}, nil
	case procexec.StatusTimeout:
		return Result{}, outcome.New(op, outcome.ErrTimeout,
			fmt.Sprintf("%s took longer than %s; try again or simplify the request", cmd.Name, cmd.Timeout))
	case procexec.StatusNotFound:
		return Result{}, outcome.New(op, outcome.ErrToolNotFound,
			fmt.Sprintf("%s not found; make sure it is on your PATH", cmd.Name))
	case procexec.StatusCanceled:
		return Result{}, outcome.New(op, outcome.ErrCanceled, "")
	default:
		detail := fmt.Sprintf("exit status %d", out.ExitCode)
		if out.ExitCode < 0 && out.Err != nil {
			detail = out.Err.Error()
		}
		return Result{}, outcome.New(op, outcome.ErrExternalFailure, detail).WithOutput(out.Diagnostic())
	}
}
