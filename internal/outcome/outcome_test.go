package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesKind(t *testing.T) {
	err := New("compile", ErrInvalidInput, "resume.tex is not a file")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "compile: invalid input: resume.tex is not a file", err.Error())
}

func TestErrorMatchesSecondaryKinds(t *testing.T) {
	err := &Error{Op: "compile", Kind: ErrInvalidInput, Also: []error{ErrDirectoryNotFound}}
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, ErrDirectoryNotFound))
}

func TestOutputOfWrappedError(t *testing.T) {
	base := New("tailor", ErrExternalFailure, "exit status 2").WithOutput("boom")
	wrapped := fmt.Errorf("headless: %w", base)
	require.True(t, errors.Is(wrapped, ErrExternalFailure))
	assert.Equal(t, "boom", OutputOf(wrapped))
	assert.Empty(t, OutputOf(errors.New("plain")))
}

func TestBannerPrefixes(t *testing.T) {
	assert.Empty(t, Banner(nil))
	assert.Contains(t, Banner(New("tailor", ErrTimeout, "")), "⏱")
	assert.Contains(t, Banner(New("compile", ErrToolNotFound, "pdflatex")), "⚠")
	assert.Contains(t, Banner(New("compile", ErrArtifactMissing, "")), "✗")
}
