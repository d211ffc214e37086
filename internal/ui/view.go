package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"everysearch/internal/domain"
)

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == modeIgnore {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.ignore.view(m.styles, m.help))
	}

	sections := []string{
		m.renderTitle(),
		m.renderSearchBox(),
		m.renderOptions(),
		m.renderResults(),
		m.renderStatus(),
	}
	if m.detail != "" {
		sections = append(sections, m.styles.StatusWarning.Render(m.detail))
	}
	sections = append(sections, m.renderHelp())

	return m.styles.Main.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := m.styles.Title.Render("everysearch")
	tool := m.styles.Dim.Render(fmt.Sprintf("  %s index", m.config.Tool))
	return title + tool
}

func (m *Model) renderSearchBox() string {
	style := m.styles.Input
	if m.focus == focusSearch && m.mode == modeNormal {
		style = m.styles.InputFocused
	}
	return style.Width(m.width - 4).Render(m.input.View())
}

func (m *Model) renderOptions() string {
	sep := m.styles.Dim.Render("  │  ")

	var location string
	if m.mode == modeLocation {
		location = m.styles.Label.Render("Location: ") + m.location.View()
	} else {
		location = m.styles.Label.Render("Location: ") + m.loc
	}

	exact := m.styles.OptionOff.Render("off")
	if m.exact {
		exact = m.styles.OptionOn.Render("on")
	}

	typ := string(m.typ)
	if m.typ != domain.TypeAll {
		typ = m.styles.OptionOn.Render(typ)
	}

	parts := []string{
		location,
		m.styles.Label.Render("Exact: ") + exact,
		m.styles.Label.Render("Type: ") + typ,
		m.styles.Label.Render("Ignore: ") + fmt.Sprintf("%d rules", m.rules.Len()),
	}
	if m.indexBusy() {
		parts = append(parts, m.styles.StatusLoading.Render("updating index..."))
	}
	return strings.Join(parts, sep)
}

func (m *Model) renderResults() string {
	if len(m.rows) == 0 {
		placeholder := lipgloss.NewStyle().
			Height(m.table.Height() + 2).
			Foreground(lipgloss.Color("241")).
			Render("\n  No results")
		return placeholder
	}
	return m.table.View()
}

func (m *Model) renderStatus() string {
	var style lipgloss.Style
	switch m.statusKind {
	case statusLoading:
		style = m.styles.StatusLoading
	case statusSuccess:
		style = m.styles.StatusSuccess
	case statusWarning:
		style = m.styles.StatusWarning
	case statusError:
		style = m.styles.StatusError
	default:
		style = m.styles.Status
	}

	status := style.Render(m.status)
	if len(m.rows) == 0 {
		return status
	}

	count := m.styles.Count.Render(fmt.Sprintf("%d items", len(m.rows)))
	gap := m.width - 2 - lipgloss.Width(status) - lipgloss.Width(count)
	if gap < 2 {
		gap = 2
	}
	return status + strings.Repeat(" ", gap) + count
}

func (m *Model) renderHelp() string {
	if m.focus == focusResults {
		return m.help.View(resultsKeyMap{m.keys})
	}
	return m.help.View(m.keys)
}
