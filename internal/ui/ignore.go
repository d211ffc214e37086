package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"everysearch/internal/filter"
)

// ignoreEditor edits the in-memory ignore rules
type ignoreEditor struct {
	rules     *filter.IgnoreRules
	keys      ignoreKeyMap
	cursor    int
	editing   bool
	editIndex int // -1 while adding
	input     textinput.Model
	message   string
}

func newIgnoreEditor(rules *filter.IgnoreRules) ignoreEditor {
	ti := textinput.New()
	ti.Placeholder = `regex, e.g. node_modules/ or \.bak$`
	ti.CharLimit = 256
	ti.Width = 48
	return ignoreEditor{rules: rules, keys: newIgnoreKeyMap(), editIndex: -1, input: ti}
}

// update handles a key; closed reports that the editor should be dismissed
func (e *ignoreEditor) update(msg tea.KeyMsg) (closed bool, cmd tea.Cmd) {
	if e.editing {
		switch msg.Type {
		case tea.KeyEnter:
			e.commit()
			return false, nil
		case tea.KeyEsc:
			e.editing = false
			e.input.Blur()
			e.message = ""
			return false, nil
		}
		e.input, cmd = e.input.Update(msg)
		return false, cmd
	}

	e.message = ""
	switch {
	case key.Matches(msg, e.keys.Close):
		return true, nil
	case key.Matches(msg, e.keys.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(msg, e.keys.Down):
		if e.cursor < e.rules.Len()-1 {
			e.cursor++
		}
	case key.Matches(msg, e.keys.Add):
		return false, e.startEdit(-1, "")
	case key.Matches(msg, e.keys.Edit):
		list := e.rules.List()
		if e.cursor < len(list) {
			return false, e.startEdit(e.cursor, list[e.cursor])
		}
	case key.Matches(msg, e.keys.Delete):
		if e.rules.Remove(e.cursor) {
			e.clampCursor()
		}
	case key.Matches(msg, e.keys.Reset):
		e.rules.Reset()
		e.clampCursor()
		e.message = "Ignore rules reset to defaults"
	}
	return false, nil
}

func (e *ignoreEditor) startEdit(index int, value string) tea.Cmd {
	e.editing = true
	e.editIndex = index
	e.input.SetValue(value)
	e.input.CursorEnd()
	return e.input.Focus()
}

func (e *ignoreEditor) commit() {
	value := e.input.Value()
	var ok bool
	if e.editIndex < 0 {
		ok = e.rules.Add(value)
		if ok {
			e.cursor = e.rules.Len() - 1
		}
	} else {
		ok = e.rules.Update(e.editIndex, value)
	}
	if !ok {
		e.message = "Pattern is empty or already listed"
		return
	}

	e.editing = false
	e.input.Blur()
	e.message = ""
	if !e.rules.Valid(e.cursor) {
		e.message = fmt.Sprintf("%q is not a valid regular expression and will be skipped", strings.TrimSpace(value))
	}
}

func (e *ignoreEditor) clampCursor() {
	if n := e.rules.Len(); e.cursor >= n {
		e.cursor = n - 1
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
}

func (e *ignoreEditor) view(styles *Styles, h help.Model) string {
	var b strings.Builder
	b.WriteString(styles.PopupTitle.Render("Ignore Patterns (Regex)"))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("Paths matching any pattern are dropped from results."))
	b.WriteString("\n\n")

	list := e.rules.List()
	if len(list) == 0 {
		b.WriteString(styles.Dim.Render("  (no patterns)"))
		b.WriteString("\n")
	}
	for i, pattern := range list {
		line := "  " + pattern
		if !e.rules.Valid(i) {
			line = "  " + styles.Invalid.Render(pattern)
		}
		if i == e.cursor {
			line = styles.Selected.Render("> " + pattern)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if e.editing {
		label := "New pattern:"
		if e.editIndex >= 0 {
			label = "Edit pattern:"
		}
		b.WriteString("\n")
		b.WriteString(styles.Label.Render(label) + " " + e.input.View())
		b.WriteString("\n")
	}
	if e.message != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusWarning.Render(e.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(h.View(e.keys))
	return styles.Popup.Render(b.String())
}
