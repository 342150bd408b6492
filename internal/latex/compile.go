package latex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/workspace"
)

const (
	op = "compile"

	// Passes is fixed: one pass is not enough for references to resolve.
	Passes = 2

	DefaultTimeout = 60 * time.Second

	// ArtifactExtension is what pdflatex writes next to the main file.
	ArtifactExtension = ".pdf"

	// diagnosticLimit bounds the log excerpt attached to a failed compile.
	diagnosticLimit = 2000
)

// Byproducts are the auxiliary files removed after a successful compile.
var Byproducts = []string{".aux", ".log", ".out", ".bbl", ".blg", ".bcf", ".run.xml"}

// PassResult records one pdflatex invocation.
type PassResult struct {
	ExitCode int
	Duration time.Duration
}

// Result describes a successful compile.
type Result struct {
	ArtifactPath string
	Passes       []PassResult
	// Log is the stdout of the final pass.
	Log string
}

// Compiler runs pdflatex through a Runner.
type Compiler struct {
	Runner  procexec.Runner
	Timeout time.Duration

	// remove deletes one byproduct; swapped in tests.
	remove func(string) error
	// environ supplies the parent environment for the child.
	environ func() []string
}

// NewCompiler returns a Compiler with the default per-pass timeout.
func NewCompiler(runner procexec.Runner) *Compiler {
	return &Compiler{Runner: runner, Timeout: DefaultTimeout}
}

// ArtifactPath is where pdflatex writes the PDF for mainFile.
func ArtifactPath(dir, mainFile string) string {
	return filepath.Join(dir, basename(mainFile)+ArtifactExtension)
}

// Compile runs both passes on mainFile inside dir.
func (c *Compiler) Compile(ctx context.Context, dir, mainFile, compilerPath string) (Result, error) {
	if !workspace.IsDir(dir) {
		return Result{}, &outcome.Error{
			Op:     op,
			Kind:   outcome.ErrInvalidInput,
			Detail: fmt.Sprintf("resume directory %q not found", dir),
			Also:   []error{outcome.ErrDirectoryNotFound},
		}
	}
	mainFile = strings.TrimSpace(mainFile)
	if mainFile == "" || !isRegularFile(filepath.Join(dir, mainFile)) {
		return Result{}, outcome.New(op, outcome.ErrInvalidInput, fmt.Sprintf("main file %q not found in %s", mainFile, dir))
	}
	if strings.TrimSpace(compilerPath) == "" {
		return Result{}, outcome.New(op, outcome.ErrToolNotFound, "pdflatex not found; install TinyTeX or MacTeX")
	}
	if c.Runner == nil {
		return Result{}, fmt.Errorf("latex: runner not configured")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cmd := procexec.Command{
		Name:    compilerPath,
		Args:    []string{"-interaction=nonstopmode", mainFile},
		Dir:     dir,
		Env:     ToolchainEnv(c.parentEnv(), filepath.Dir(compilerPath)),
		Timeout: timeout,
	}

	var res Result
	var last procexec.Outcome
	for pass := 1; pass <= Passes; pass++ {
		out := c.Runner.Run(ctx, cmd)
		switch out.Status {
		case procexec.StatusTimeout:
			return Result{}, outcome.New(op, outcome.ErrTimeout, fmt.Sprintf("pass %d exceeded %s", pass, timeout)).
				WithOutput(Tail(out.Stdout, diagnosticLimit))
		case procexec.StatusNotFound:
			return Result{}, outcome.New(op, outcome.ErrToolNotFound, fmt.Sprintf("%s not found", compilerPath))
		case procexec.StatusCanceled:
			return Result{}, outcome.New(op, outcome.ErrCanceled, "")
		}
		res.Passes = append(res.Passes, PassResult{ExitCode: out.ExitCode, Duration: out.Duration})
		last = out
	}

	artifact := ArtifactPath(dir, mainFile)
	if !isRegularFile(artifact) {
		return Result{}, outcome.New(op, outcome.ErrArtifactMissing,
			fmt.Sprintf("%s was not generated; check the LaTeX errors", filepath.Base(artifact))).
			WithOutput(Tail(last.Stdout, diagnosticLimit))
	}
	c.CleanByproducts(dir, basename(mainFile))
	res.ArtifactPath = artifact
	res.Log = last.Stdout
	return res, nil
}

// CleanByproducts removes every auxiliary file for base. Failures are ignored
// one by one so a stuck file never blocks the rest.
func (c *Compiler) CleanByproducts(dir, base string) {
	remove := os.Remove
	if c != nil && c.remove != nil {
		remove = c.remove
	}
	for _, ext := range Byproducts {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		_ = remove(path)
	}
}

// ToolchainEnv returns env with binDir prepended to PATH.
func ToolchainEnv(env []string, binDir string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if ok && isPathKey(key) && !found {
			found = true
			out = append(out, key+"="+joinPath(binDir, value))
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+binDir)
	}
	return out
}

// Tail returns at most the final n characters of s.
func Tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func (c *Compiler) parentEnv() []string {
	if c.environ != nil {
		return c.environ()
	}
	return os.Environ()
}

func isPathKey(key string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(key, "PATH")
	}
	return key == "PATH"
}

func joinPath(binDir, existing string) string {
	if existing == "" {
		return binDir
	}
	return binDir + string(os.PathListSeparator) + existing
}

func basename(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
