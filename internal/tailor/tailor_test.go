package tailor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
)

type spyRunner struct {
	calls   []procexec.Command
	outcome procexec.Outcome
}

func (s *spyRunner) Run(_ context.Context, cmd procexec.Command) procexec.Outcome {
	s.calls = append(s.calls, cmd)
	return s.outcome
}

func validRequest(t *testing.T) Request {
	t.Helper()
	return Request{
		Dir:            t.TempDir(),
		Selection:      []string{"resume.tex"},
		JobDescription: "Senior Go engineer, distributed systems",
	}
}

func TestBuildPromptOmitsBlankInstructions(t *testing.T) {
	for _, blank := range []string{"", "   ", "\n\t"} {
		prompt := BuildPrompt("Build things", blank, "/cv", []string{"resume.tex"})
		assert.NotContains(t, prompt, "ADDITIONAL INSTRUCTIONS")
	}
}

func TestBuildPromptIncludesInstructionsVerbatim(t *testing.T) {
	prompt := BuildPrompt("Build things", "Focus on ML experience", "/cv", []string{"resume.tex"})
	assert.Contains(t, prompt, "ADDITIONAL INSTRUCTIONS: Focus on ML experience")
}

func TestBuildPromptEmbedsInputsAndPolicy(t *testing.T) {
	job := "We need:\n- Go\n- Kubernetes"
	prompt := BuildPrompt(job, "", "/home/me/cv", []string{"resume.tex", "experience.tex"})
	assert.Contains(t, prompt, "Resume directory: /home/me/cv")
	assert.Contains(t, prompt, "Files to consider: resume.tex, experience.tex")
	assert.Contains(t, prompt, "JOB DESCRIPTION:\n"+job+"\n")
	for i, rule := range policy {
		assert.Contains(t, prompt, rule, "rule %d", i+1)
	}
	assert.Less(t, strings.Index(prompt, "Reorder bullet points"), strings.Index(prompt, "Keep the LaTeX formatting intact"))
	assert.True(t, strings.HasSuffix(prompt, "Make the edits directly to the files."))
}

func TestRunRejectsBlankJobDescriptionWithoutSpawning(t *testing.T) {
	for _, job := range []string{"", "  ", "\n"} {
		spy := &spyRunner{}
		req := validRequest(t)
		req.JobDescription = job
		_, err := New(spy).Run(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, outcome.ErrValidation))
		assert.Contains(t, err.Error(), "job description")
		assert.Empty(t, spy.calls)
	}
}

func TestRunRejectsMissingDirectory(t *testing.T) {
	spy := &spyRunner{}
	req := validRequest(t)
	req.Dir = filepath.Join(req.Dir, "missing")
	_, err := New(spy).Run(context.Background(), req)
	assert.True(t, errors.Is(err, outcome.ErrValidation))
	assert.True(t, errors.Is(err, outcome.ErrDirectoryNotFound))
	assert.Empty(t, spy.calls)
}

func TestRunRejectsEmptySelection(t *testing.T) {
	spy := &spyRunner{}
	req := validRequest(t)
	req.Selection = nil
	_, err := New(spy).Run(context.Background(), req)
	assert.True(t, errors.Is(err, outcome.ErrValidation))
	assert.Contains(t, err.Error(), "no files selected")
	assert.Empty(t, spy.calls)
}

func TestRunInvokesAssistantWithScopedTools(t *testing.T) {
	spy := &spyRunner{outcome: procexec.Outcome{Status: procexec.StatusSuccess, Stdout: "Updated experience.tex"}}
	req := validRequest(t)
	req.Instructions = "Emphasize leadership"
	res, err := New(spy).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Updated experience.tex", res.Output)

	require.Len(t, spy.calls, 1)
	cmd := spy.calls[0]
	assert.Equal(t, "claude", cmd.Name)
	assert.Equal(t, req.Dir, cmd.Dir)
	assert.Equal(t, 180*time.Second, cmd.Timeout)
	require.Len(t, cmd.Args, 4)
	assert.Equal(t, "-p", cmd.Args[0])
	assert.Contains(t, cmd.Args[1], "ADDITIONAL INSTRUCTIONS: Emphasize leadership")
	assert.Equal(t, []string{"--allowedTools", "Read,Edit,Write,Bash"}, cmd.Args[2:])
}

func TestRunMapsOutcomes(t *testing.T) {
	cases := []struct {
		name string
		out  procexec.Outcome
		kind error
		text string
	}{
		{"nonzero prefers stderr", procexec.Outcome{Status: procexec.StatusFailed, ExitCode: 1, Stdout: "out", Stderr: "rate limited"}, outcome.ErrExternalFailure, "rate limited"},
		{"nonzero falls back to stdout", procexec.Outcome{Status: procexec.StatusFailed, ExitCode: 2, Stdout: "usage"}, outcome.ErrExternalFailure, "usage"},
		{"timeout", procexec.Outcome{Status: procexec.StatusTimeout}, outcome.ErrTimeout, ""},
		{"missing", procexec.Outcome{Status: procexec.StatusNotFound}, outcome.ErrToolNotFound, ""},
		{"canceled", procexec.Outcome{Status: procexec.StatusCanceled}, outcome.ErrCanceled, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spy := &spyRunner{outcome: tc.out}
			_, err := New(spy).Run(context.Background(), validRequest(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			assert.Equal(t, tc.text, outcome.OutputOf(err))
		})
	}
}

func TestRunWithRealProcessTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skip on windows: relies on a shell script")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "slow-assistant")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 10\n"), 0o755))

	orch := New(procexec.Exec{})
	orch.Command = script
	orch.Timeout = 200 * time.Millisecond
	req := validRequest(t)
	started := time.Now()
	_, err := orch.Run(context.Background(), req)
	assert.True(t, errors.Is(err, outcome.ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestRunWithMissingAssistant(t *testing.T) {
	orch := New(procexec.Exec{})
	orch.Command = "resume-builder-missing-assistant-91b2"
	_, err := orch.Run(context.Background(), validRequest(t))
	assert.True(t, errors.Is(err, outcome.ErrToolNotFound), "got %v", err)
}
