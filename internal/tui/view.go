package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/resume-builder/internal/latex"
	"github.com/kingrea/resume-builder/internal/outcome"
	"github.com/kingrea/resume-builder/internal/session"
)

var (
	accent       = lipgloss.Color("#5B8DEF")
	muted        = lipgloss.Color("#888888")
	border       = lipgloss.Color("#444444")
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/2)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}
	return a.renderStatusBoard(leftWidth, rightWidth)
}

func (a *App) renderStatusBoard(leftWidth, rightWidth int) string {
	header := headerStyle.Render("✎ RESUME BUILDER")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderLabel("Resume directory", focusDir),
		a.dirInput.View(),
		"",
		a.renderFiles(leftWidth-4),
		"",
		a.renderLabel("Job description", focusJob),
		a.jobInput.View(),
		"",
		a.renderLabel("Custom instructions (optional)", focusInstructions),
		a.instrInput.View(),
	)
	leftBox := boxStyle.Width(max(20, leftWidth)).Render(left)

	var body string
	if rightWidth > 0 {
		rightBox := boxStyle.Width(max(20, rightWidth)).Render(a.renderOutputPanel())
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, leftBox, boxStyle.Render(a.renderOutputPanel()))
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter(), a.help.View(a.keys))
	return strings.Join(sections, "\n")
}

func (a *App) renderLabel(label string, field focusField) string {
	if a.focus == field {
		return titleStyle.Render("▸ " + label)
	}
	return hintStyle.Render("  " + label)
}

func (a *App) renderFiles(width int) string {
	files := a.session.Files()
	title := a.renderLabel(fmt.Sprintf("Files (%d selected of %d)", len(a.session.Selection()), len(files)), focusFiles)
	if len(files) == 0 {
		note := lipgloss.NewStyle().Foreground(muted).Render("No .tex files in this directory.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note)
	}
	mainFile := a.session.MainFile()
	rows := make([]string, 0, len(files))
	for i, name := range files {
		box := "[ ]"
		if a.session.IsSelected(name) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, name)
		if name == mainFile {
			line += "  (main)"
		}
		if a.focus == focusFiles && i == a.fileCursor {
			line = cursorStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	list := lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(rows, "\n"))
	if a.focus != focusFiles {
		return lipgloss.JoinVertical(lipgloss.Left, title, list)
	}
	hint := hintStyle.Render("space → select    m → main file")
	return lipgloss.JoinVertical(lipgloss.Left, title, list, hint)
}

func (a *App) renderOutputPanel() string {
	title := "Preview"
	switch {
	case a.showSources:
		title = "Current resume content"
	case a.diagnostic != "":
		title = "Output"
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), a.output.View())
}

// refreshOutput rebuilds the output pane from the response, payload, sources
// and diagnostic.
func (a *App) refreshOutput() {
	var sections []string
	if a.showSources {
		for _, src := range a.sources {
			sections = append(sections, fmt.Sprintf("%% ── %s ──\n%s", src.Name, src.Content))
		}
		if len(sections) == 0 {
			sections = append(sections, "No selected files to show.")
		}
		a.output.SetContent(strings.Join(sections, "\n\n"))
		return
	}
	if a.diagnostic != "" {
		sections = append(sections, errorStyle.Render("Output"), a.diagnostic)
	}
	if a.response != "" {
		sections = append(sections, titleStyle.Render("Claude's response"), a.renderMarkdown(a.response))
	}
	if a.payload.Ready {
		sections = append(sections, okStyle.Render("📄 "+a.payload.Message))
		if a.payload.Preview != "" {
			sections = append(sections, a.payload.Preview)
		}
		sections = append(sections, hintStyle.Render(fmt.Sprintf("ctrl+s → save to %s", a.config.DownloadDir())))
	} else {
		message := a.payload.Message
		if message == "" {
			message = latex.NotCompiledMessage
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(muted).Render(message))
	}
	a.output.SetContent(strings.Join(sections, "\n\n"))
}

func (a *App) renderMarkdown(text string) string {
	if a.markdown == nil {
		return text
	}
	out, err := a.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	footer := lipgloss.NewStyle().Foreground(muted).MarginTop(1)
	switch {
	case a.session.Active() != "":
		label := "Compiling..."
		if a.session.Active() == session.ActionTailor {
			label = "Claude is tailoring your resume..."
		}
		return footer.Render(a.spinner.View() + " " + label)
	case a.err != nil:
		return errorStyle.MarginTop(1).Render(outcome.Banner(a.err))
	default:
		return footer.Render(a.statusMsg)
	}
}

func (a *App) resize() {
	rightWidth := max(32, a.width/2)
	leftWidth := a.width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = a.width - 4
		rightWidth = a.width - 4
	}
	inputWidth := max(20, leftWidth-4)
	a.dirInput.Width = inputWidth - 4
	a.jobInput.SetWidth(inputWidth)
	a.instrInput.SetWidth(inputWidth)
	a.help.Width = a.width

	a.output.Width = max(20, rightWidth-4)
	a.output.Height = max(6, a.height-12)
	a.markdown = newMarkdownRenderer(max(20, a.output.Width-2))
	a.refreshOutput()
}
