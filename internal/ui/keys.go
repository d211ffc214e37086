package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Focus       key.Binding
	Clear       key.Binding
	ToggleExact key.Binding
	CycleType   key.Binding
	Location    key.Binding
	Ignore      key.Binding
	UpdateDB    key.Binding

	Open       key.Binding
	OpenFolder key.Binding
	CopyPath   key.Binding
	SortName   key.Binding
	SortPath   key.Binding
	SortSize   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "search/results"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		ToggleExact: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "exact"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "type"),
		),
		Location: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "location"),
		),
		Ignore: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "ignore rules"),
		),
		UpdateDB: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "update db"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		OpenFolder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open folder"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		SortName: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "sort name"),
		),
		SortPath: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "sort path"),
		),
		SortSize: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sort size"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.ToggleExact, k.CycleType, k.Location, k.Ignore, k.UpdateDB, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Clear, k.ToggleExact, k.CycleType, k.Location},
		{k.Open, k.OpenFolder, k.CopyPath},
		{k.SortName, k.SortPath, k.SortSize},
		{k.Ignore, k.UpdateDB, k.Help, k.Quit},
	}
}

// resultsKeyMap is shown while the table has focus
type resultsKeyMap struct {
	keyMap
}

func (k resultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.OpenFolder, k.CopyPath, k.SortName, k.SortPath, k.SortSize, k.Focus, k.Quit}
}

type ignoreKeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reset  key.Binding
	Close  key.Binding
	Up     key.Binding
	Down   key.Binding
}

func newIgnoreKeyMap() ignoreKeyMap {
	return ignoreKeyMap{
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset defaults")),
		Close:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	}
}

func (k ignoreKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Reset, k.Close}
}

func (k ignoreKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
