// internal/tui/app.go
//
// This is the terminal interface for resume-builder. It uses bubbletea,
// which follows The Elm Architecture:
//
// 1. Model: the App struct below
// 2. Update: turns key presses and finished work into a new App
// 3. View: renders the App to a string
//
// Tailor and Compile run as tea.Cmds so the UI keeps drawing the spinner while
// the assistant or pdflatex is busy. The session admits one of them at a time.

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/kingrea/resume-builder/internal/config"
	"github.com/kingrea/resume-builder/internal/latex"
	"github.com/kingrea/resume-builder/internal/logbook"
	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/procexec"
	"github.com/kingrea/resume-builder/internal/session"
	"github.com/kingrea/resume-builder/internal/tailor"
	"github.com/kingrea/resume-builder/internal/workspace"
)

// focusField is the input that receives key presses.
type focusField int

const (
	focusDir focusField = iota
	focusFiles
	focusJob
	focusInstructions
	focusCount
)

// CompilerResolver locates pdflatex.
type CompilerResolver func() (string, bool)

// FolderOpener shows a directory in the OS file browser.
type FolderOpener func(dir string) error

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRunner replaces the process runner used for the assistant and pdflatex.
func WithRunner(runner procexec.Runner) AppOption {
	return func(a *App) {
		if runner != nil {
			a.runner = runner
		}
	}
}

// WithCompilerResolver overrides how pdflatex is located.
func WithCompilerResolver(resolve CompilerResolver) AppOption {
	return func(a *App) {
		if resolve != nil {
			a.resolveCompiler = resolve
		}
	}
}

// WithFolderOpener overrides the Open Folder action.
func WithFolderOpener(open FolderOpener) AppOption {
	return func(a *App) {
		if open != nil {
			a.openFolder = open
		}
	}
}

// WithLogbook writes journey entries to lb instead of the default log file.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithContext bounds every child process by ctx.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.parent = ctx
		}
	}
}

type tailorFinishedMsg struct {
	result tailor.Result
	err    error
}

type compileFinishedMsg struct {
	dir        string
	result     latex.Result
	err        error
	payload    latex.Payload
	payloadErr error
}

// App is the main application model.
type App struct {
	config  *config.Config
	session *session.Session
	logbook *logbook.Logbook

	runner          procexec.Runner
	resolveCompiler CompilerResolver
	openFolder      FolderOpener

	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	release  func()

	// UI components
	keys       keyMap
	help       help.Model
	focus      focusField
	dirInput   textinput.Model
	jobInput   textarea.Model
	instrInput textarea.Model
	output     viewport.Model
	spinner    spinner.Model
	markdown   *glamour.TermRenderer
	fileCursor int

	statusMsg   string
	err         error
	response    string
	diagnostic  string
	payload     latex.Payload
	showSources bool
	sources     []workspace.Source

	width  int
	height int
}

// NewApp creates a new App rooted at cfg.ResumeDir().
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}

	dirInput := textinput.New()
	dirInput.Prompt = "📁 "
	dirInput.Placeholder = "/path/to/resume"
	dirInput.SetValue(cfg.ResumeDir())

	jobInput := textarea.New()
	jobInput.Placeholder = "Paste the job description or key requirements here..."
	jobInput.CharLimit = 0
	jobInput.ShowLineNumbers = false
	jobInput.SetHeight(10)

	instrInput := textarea.New()
	instrInput.Placeholder = "E.g. 'Focus on ML experience', 'Emphasize leadership roles'..."
	instrInput.CharLimit = 0
	instrInput.ShowLineNumbers = false
	instrInput.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	app := &App{
		config:          cfg,
		session:         session.New(cfg.ResumeDir()),
		runner:          procexec.Exec{},
		resolveCompiler: cfg.Compiler,
		openFolder:      latex.OpenInFileManager,
		parent:          context.Background(),
		keys:            defaultKeyMap(),
		help:            help.New(),
		dirInput:        dirInput,
		jobInput:        jobInput,
		instrInput:      instrInput,
		output:          viewport.New(80, 12),
		spinner:         sp,
	}
	app.logbook = defaultLogbook(cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.ctx, app.cancel = context.WithCancel(app.parent)
	app.logbook = app.logbook.WithTag(app.session.ShortID())
	app.markdown = newMarkdownRenderer(76)

	app.setFocus(focusJob)
	app.logInfo("Session opened · %s", cfg.ResumeDir())
	app.rescan(cfg.ResumeDir())
	return app, nil
}

func defaultLogbook(cfg *config.Config) *logbook.Logbook {
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil
	}
	return lb
}

// Session exposes the session so callers can inspect what was produced.
func (a *App) Session() *session.Session {
	return a.session
}

// Close cancels any running assistant or pdflatex process and waits for it to
// be reaped.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.inflight.Wait()
	a.logInfo("Session closed")
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tea.SetWindowTitle("Resume Builder"))
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case spinner.TickMsg:
		if a.session.Active() == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tailorFinishedMsg:
		a.handleTailorFinished(msg)
		return a, nil

	case compileFinishedMsg:
		a.handleCompileFinished(msg)
		return a, nil

	case tea.KeyMsg:
		if model, cmd, handled := a.handleKey(msg); handled {
			return model, cmd
		}
	}

	return a, a.updateFocused(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit, true
	case key.Matches(msg, a.keys.Tailor):
		return a, a.startTailor(), true
	case key.Matches(msg, a.keys.Compile):
		return a, a.startCompile(), true
	case key.Matches(msg, a.keys.Open):
		a.openDirectory()
		return a, nil, true
	case key.Matches(msg, a.keys.Save):
		a.saveArtifact()
		return a, nil, true
	case key.Matches(msg, a.keys.Rescan):
		a.rescan(a.dirInput.Value())
		return a, nil, true
	case key.Matches(msg, a.keys.Sources):
		a.toggleSources()
		return a, nil, true
	case key.Matches(msg, a.keys.Next):
		return a, a.setFocus((a.focus + 1) % focusCount), true
	case key.Matches(msg, a.keys.Prev):
		return a, a.setFocus((a.focus + focusCount - 1) % focusCount), true
	case msg.String() == "pgup" || msg.String() == "pgdown":
		var cmd tea.Cmd
		a.output, cmd = a.output.Update(msg)
		return a, cmd, true
	}

	switch a.focus {
	case focusDir:
		if msg.String() == "enter" {
			a.rescan(a.dirInput.Value())
			return a, nil, true
		}
	case focusFiles:
		return a, nil, a.handleFileKey(msg)
	}
	return a, nil, false
}

func (a *App) handleFileKey(msg tea.KeyMsg) bool {
	files := a.session.Files()
	if len(files) == 0 {
		return true
	}
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.fileCursor > 0 {
			a.fileCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.fileCursor < len(files)-1 {
			a.fileCursor++
		}
	case key.Matches(msg, a.keys.Toggle):
		a.session.Toggle(files[a.fileCursor])
		a.refreshSources()
	case key.Matches(msg, a.keys.Main):
		name := files[a.fileCursor]
		if err := a.session.SetMainFile(name); err != nil {
			a.fail(err)
			return true
		}
		a.succeed(fmt.Sprintf("Main file: %s", name))
		a.loadPayload()
	}
	return true
}

func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focus {
	case focusDir:
		a.dirInput, cmd = a.dirInput.Update(msg)
	case focusJob:
		a.jobInput, cmd = a.jobInput.Update(msg)
	case focusInstructions:
		a.instrInput, cmd = a.instrInput.Update(msg)
	}
	return cmd
}

func (a *App) setFocus(f focusField) tea.Cmd {
	a.focus = f
	a.dirInput.Blur()
	a.jobInput.Blur()
	a.instrInput.Blur()
	switch f {
	case focusDir:
		return a.dirInput.Focus()
	case focusJob:
		return a.jobInput.Focus()
	case focusInstructions:
		return a.instrInput.Focus()
	}
	return nil
}

// rescan points the session at dir and re-derives its files.
func (a *App) rescan(dir string) {
	dir = strings.TrimSpace(dir)
	a.config.SetResumeDir(dir)
	dir = a.config.ResumeDir()
	a.dirInput.SetValue(dir)
	files, err := a.session.Scan(dir, a.config.SourceExtensions(), a.config.IsProtected)
	a.fileCursor = 0
	a.payload = latex.Payload{}
	if err != nil {
		a.fail(err)
		a.refreshOutput()
		return
	}
	a.succeed(fmt.Sprintf("Found %d source file(s) in %s", len(files), dir))
	a.loadPayload()
	a.refreshSources()
}

func (a *App) startTailor() tea.Cmd {
	req := tailor.Request{
		Dir:            a.session.Dir(),
		Selection:      a.session.Selection(),
		JobDescription: a.jobInput.Value(),
		Instructions:   a.instrInput.Value(),
	}
	if err := req.Validate(); err != nil {
		a.fail(err)
		return nil
	}
	release, err := a.session.Begin(session.ActionTailor)
	if err != nil {
		a.fail(err)
		return nil
	}
	a.release = release
	a.err = nil
	a.diagnostic = ""
	a.statusMsg = "Claude is tailoring your resume..."
	a.logInfo("Tailor · %d file(s): %s", len(req.Selection), strings.Join(req.Selection, ", "))

	orch := a.newTailor()
	ctx := a.ctx
	a.inflight.Add(1)
	work := func() tea.Msg {
		defer a.inflight.Done()
		res, err := orch.Run(ctx, req)
		return tailorFinishedMsg{result: res, err: err}
	}
	return tea.Batch(a.spinner.Tick, work)
}

func (a *App) handleTailorFinished(msg tailorFinishedMsg) {
	a.finishAction()
	if msg.err != nil {
		a.diagnostic = outcome.OutputOf(msg.err)
		a.fail(msg.err)
		a.refreshOutput()
		return
	}
	a.response = strings.TrimSpace(msg.result.Output)
	a.showSources = false
	a.succeed(fmt.Sprintf("Resume tailored successfully in %s", msg.result.Duration.Round(100*time.Millisecond)))
	a.refreshSources()
}

func (a *App) startCompile() tea.Cmd {
	dir := a.session.Dir()
	mainFile := a.session.MainFile()
	if !workspace.IsDir(dir) || mainFile == "" {
		a.fail(outcome.New("compile", outcome.ErrInvalidInput, "invalid resume directory or no source files"))
		return nil
	}
	compilerPath, ok := a.resolveCompiler()
	if !ok {
		a.fail(outcome.New("compile", outcome.ErrToolNotFound, "pdflatex not found; install TinyTeX or MacTeX"))
		return nil
	}
	release, err := a.session.Begin(session.ActionCompile)
	if err != nil {
		a.fail(err)
		return nil
	}
	a.release = release
	a.err = nil
	a.diagnostic = ""
	a.statusMsg = fmt.Sprintf("Compiling %s...", mainFile)
	a.logInfo("Compile · %s with %s", mainFile, compilerPath)

	compiler := latex.NewCompiler(a.runner)
	compiler.Timeout = a.config.CompilerTimeout()
	ctx := a.ctx
	a.inflight.Add(1)
	work := func() tea.Msg {
		defer a.inflight.Done()
		res, err := compiler.Compile(ctx, dir, mainFile, compilerPath)
		msg := compileFinishedMsg{dir: dir, result: res, err: err}
		if err == nil {
			msg.payload, msg.payloadErr = latex.Present(res.ArtifactPath)
		}
		return msg
	}
	return tea.Batch(a.spinner.Tick, work)
}

func (a *App) handleCompileFinished(msg compileFinishedMsg) {
	a.finishAction()
	if filepath.Clean(msg.dir) != filepath.Clean(a.session.Dir()) {
		a.logWarn("Discarded compile of %s: directory changed to %s", msg.dir, a.session.Dir())
		return
	}
	if msg.err != nil {
		a.diagnostic = outcome.OutputOf(msg.err)
		a.fail(msg.err)
		a.refreshOutput()
		return
	}
	a.session.SetArtifact(msg.result.ArtifactPath)
	a.showSources = false
	if msg.payloadErr != nil {
		a.fail(msg.payloadErr)
		a.refreshOutput()
		return
	}
	a.payload = msg.payload
	a.succeed(fmt.Sprintf("Compiled: %s", msg.payload.Name))
	a.refreshOutput()
	a.output.GotoBottom()
}

func (a *App) finishAction() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

func (a *App) openDirectory() {
	dir := a.session.Dir()
	if !workspace.IsDir(dir) {
		a.fail(outcome.New("open", outcome.ErrDirectoryNotFound, dir))
		return
	}
	if err := a.openFolder(dir); err != nil {
		a.logWarn("Open folder failed: %v", err)
		return
	}
	a.succeed(fmt.Sprintf("Opened %s", dir))
}

func (a *App) saveArtifact() {
	if !a.payload.Ready {
		a.loadPayload()
	}
	if !a.payload.Ready {
		a.fail(outcome.New("save", outcome.ErrArtifactMissing, latex.NotCompiledMessage))
		return
	}
	target, err := a.payload.SaveTo(a.config.DownloadDir())
	if err != nil {
		a.fail(err)
		return
	}
	a.succeed(fmt.Sprintf("Saved %s", target))
}

func (a *App) toggleSources() {
	a.showSources = !a.showSources
	a.refreshSources()
	a.output.GotoTop()
}

// loadPayload shows an existing PDF for the current main file, if any.
func (a *App) loadPayload() {
	path := a.session.ArtifactPath()
	if path == "" {
		a.payload = latex.Payload{Message: latex.NotCompiledMessage}
		a.refreshOutput()
		return
	}
	payload, err := latex.Present(path)
	if err != nil {
		a.logWarn("Preview unavailable: %v", err)
		payload = latex.Payload{Message: latex.NotCompiledMessage}
	}
	a.payload = payload
	a.refreshOutput()
}

func (a *App) refreshSources() {
	if !a.showSources {
		a.sources = nil
		a.refreshOutput()
		return
	}
	sources, err := workspace.ReadSources(a.session.Dir(), a.session.Selection())
	if err != nil {
		a.logWarn("Read sources failed: %v", err)
	}
	a.sources = sources
	a.refreshOutput()
}

func (a *App) newTailor() *tailor.Orchestrator {
	orch := tailor.New(a.runner)
	assistant := a.config.Assistant()
	orch.Command = assistant.Command
	orch.AllowedTools = assistant.AllowedTools
	orch.Timeout = assistant.Timeout
	return orch
}

func (a *App) succeed(status string) {
	a.err = nil
	a.statusMsg = status
	a.logInfo("%s", status)
}

func (a *App) fail(err error) {
	a.err = err
	a.statusMsg = ""
	if errors.Is(err, outcome.ErrValidation) || errors.Is(err, outcome.ErrBusy) {
		a.logWarn("%v", err)
		return
	}
	a.logError("%v", err)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
