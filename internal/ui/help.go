package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Search", []helpEntry{
		{"type", "Edit the query (at least 2 characters)"},
		{"tab", "Switch focus between search box and results"},
		{"esc", "Clear query and reset options"},
		{"ctrl+e", "Toggle exact whole-word matching"},
		{"ctrl+t", "Cycle type: all, file, folder"},
		{"ctrl+l", "Edit search location"},
	}},
	{"Results", []helpEntry{
		{"↑/↓", "Move selection"},
		{"enter", "Open with default application"},
		{"o", "Open containing folder"},
		{"y", "Copy path to clipboard"},
		{"1/2/3", "Sort by name/path/size (again to reverse)"},
	}},
	{"Index", []helpEntry{
		{"ctrl+g", "Edit ignore rules (a add, e edit, d remove, r reset)"},
		{"ctrl+u", "Update the file index (asks for authentication)"},
	}},
	{"Other", []helpEntry{
		{"f1", "Show this help"},
		{"ctrl+c", "Quit"},
	}},
}

var queryTips = heredoc.Doc(`
	Wildcards: * matches any run of characters, ? matches one.
	A wildcard query must match the whole file name, e.g. *.pdf
	Queries containing * ? [ ( switch exact mode off.
	Exact mode matches whole words: "log" finds my.log but not login.txt.
	Ignore rules are case-insensitive regular expressions matched
	anywhere in the full path.
`)

// RenderHelpContent generates help content with colors for the pager
func RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(10)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	tipStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("everysearch Help"))
	help.WriteString("\n")

	for _, section := range helpSections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}

	help.WriteString(sectionStyle.Render("Query tips"))
	help.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(queryTips, "\n"), "\n") {
		help.WriteString("  " + tipStyle.Render(line) + "\n")
	}
	help.WriteString("\n")
	help.WriteString(tipStyle.Render("Press q to close"))

	return help.String()
}

// helpPager runs the ov pager as a tea.ExecCommand; ov opens the tty itself
type helpPager struct {
	content string
}

func (p *helpPager) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(p.content))
	if err != nil {
		return fmt.Errorf("failed to create pager: %w", err)
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

func (p *helpPager) SetStdin(io.Reader)  {}
func (p *helpPager) SetStdout(io.Writer) {}
func (p *helpPager) SetStderr(io.Writer) {}

// showHelp suspends the program and shows help in the pager
func showHelp() tea.Cmd {
	return tea.Exec(&helpPager{content: RenderHelpContent()}, func(err error) tea.Msg {
		return helpPagerMsg{err: err}
	})
}
