package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/vocabtrack/internal/clips"
	"github.com/jwulff/vocabtrack/internal/session"
	"github.com/jwulff/vocabtrack/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	footer := m.renderFooter()

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderList(m.listHeight(footer)))
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}
	sections = append(sections, footer)

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("VOCABTRACK")
	mode := ui.ModeBadgeStyle.Render(" [" + m.view.Mode.String() + "]")

	var state string
	switch m.recorder.State() {
	case session.CountingDown:
		state = ui.CountdownStyle.Render("◌ GET READY")
	case session.Capturing:
		state = ui.RecordingDotStyle.Render("● REC")
	default:
		if m.playing {
			state = ui.PlayingStyle.Render("▶ PLAY")
		} else {
			state = ui.IdleDotStyle.Render("○ IDLE")
		}
	}

	count := ui.DimStyle.Render(fmt.Sprintf("  %d clips", len(m.view.Entries)))
	return title + mode + "  " + state + count
}

// listHeight is what remains after the header, dividers, error bar and footer.
func (m Model) listHeight(footer string) int {
	if m.height == 0 {
		return 20
	}
	reserved := 3 + lipgloss.Height(footer)
	if m.errorMessage != "" {
		reserved++
	}
	return max(3, m.height-reserved)
}

func (m Model) renderList(height int) string {
	var lines []string

	if len(m.view.Entries) == 0 {
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  Press Space to record the title"))
	} else {
		start := 0
		if i, ok := m.view.Selection.Index(); ok && len(m.view.Entries) > height {
			start = min(max(0, i-height/2), len(m.view.Entries)-height)
		}
		end := min(start+height, len(m.view.Entries))
		for _, e := range m.view.Entries[start:end] {
			lines = append(lines, m.renderEntry(e))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e clips.Entry) string {
	caption := e.Caption
	switch e.Role {
	case clips.RoleTitle:
		caption = ui.TitleRoleStyle.Render(caption)
	case clips.RoleTerm:
		caption = ui.TermRoleStyle.Render(caption)
	case clips.RoleDefinition:
		caption = ui.DefinitionRoleStyle.Render(caption)
	}

	length := ui.TimestampStyle.Render(fmt.Sprintf("%5.1fs", m.seconds(e.Bytes)))
	line := padRight(caption, 32) + " " + length
	if e.Role == clips.RoleDefinition {
		line = "  " + line
	}
	if e.Selected {
		return ui.SelectedStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) seconds(n int) float64 {
	if m.assembler == nil {
		return 0
	}
	cfg := m.assembler.Config()
	return float64(n) / float64(cfg.SampleRate*cfg.Channels*2)
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	switch m.prompt {
	case promptSave:
		return ui.PromptStyle.Render("Save the current recordings? ") + ui.DimStyle.Render("(y/n)")
	case promptName:
		return ui.PromptStyle.Render("File name: ") + m.input.View() + "\n" +
			ui.DimStyle.Render("enter save • esc cancel")
	case promptQuit:
		return ui.PromptStyle.Render("Are you sure you want to exit? ") + ui.DimStyle.Render("(y/n)")
	}
	return ui.StatusStyle.Render(m.statusText) + "\n" + m.help.View(keys)
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
