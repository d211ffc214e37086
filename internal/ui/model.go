package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"everysearch/internal/config"
	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
	"everysearch/internal/filter"
	"everysearch/internal/opener"
	"everysearch/internal/results"
	"everysearch/internal/search"
	"everysearch/internal/updater"
)

type focusArea int

const (
	focusSearch focusArea = iota
	focusResults
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeLocation
	modeIgnore
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusLoading
	statusSuccess
	statusWarning
	statusError
)

const (
	actionOpen       = "open"
	actionOpenFolder = "open folder"
	actionCopy       = "copy"
)

// Deps are the services the UI drives
type Deps struct {
	Config  *config.Config
	Engine  *search.Engine
	Rules   *filter.IgnoreRules
	Opener  *opener.Opener
	Updater updater.Updater
}

// Model represents the UI state
type Model struct {
	config  *config.Config
	engine  *search.Engine
	rules   *filter.IgnoreRules
	opener  *opener.Opener
	updater updater.Updater

	ctx       context.Context
	cancel    context.CancelFunc
	debouncer *search.Debouncer
	msgs      chan tea.Msg // search worker -> program

	input    textinput.Model
	location textinput.Model
	table    table.Model
	help     help.Model
	keys     keyMap
	styles   *Styles
	ignore   ignoreEditor

	focus focusArea
	mode  inputMode

	loc   string
	exact bool
	typ   domain.TypeFilter

	rows   []domain.ResultRow
	sorter results.Sorter

	status     string
	statusKind statusKind
	detail     string
	updating   bool

	width  int
	height int
}

// NewModel creates a new UI model. Searches are cancelled when ctx is.
func NewModel(ctx context.Context, deps Deps) *Model {
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		config:  deps.Config,
		engine:  deps.Engine,
		rules:   deps.Rules,
		opener:  deps.Opener,
		updater: deps.Updater,
		ctx:     ctx,
		cancel:  cancel,
		msgs:    make(chan tea.Msg, 16),
		help:    help.New(),
		keys:    newKeyMap(),
		styles:  NewStyles(),
		ignore:  newIgnoreEditor(deps.Rules),
	}
	m.debouncer = search.NewDebouncer(ctx, deps.Config.Debounce(), m.runSearch)

	m.input = textinput.New()
	m.input.Placeholder = "Search files and folders..."
	m.input.Prompt = "🔍 "
	m.input.CharLimit = 512
	m.input.Focus()

	m.location = textinput.New()
	m.location.Prompt = ""
	m.location.CharLimit = 1024

	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithHeight(10),
		table.WithFocused(false),
	)
	m.table.SetStyles(tableStyles())

	m.resetOptions()
	m.setStatus(search.ReadyMessage, statusInfo)
	return m
}

// SetQuery pre-fills the search box
func (m *Model) SetQuery(q string) {
	m.input.SetValue(q)
	m.input.CursorEnd()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	if strings.TrimSpace(m.input.Value()) != "" {
		m.triggerSearch()
	}
	return tea.Batch(textinput.Blink, m.waitForMsg())
}

// Shutdown cancels outstanding searches
func (m *Model) Shutdown() {
	m.debouncer.Cancel()
	m.cancel()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchStartedMsg:
		if m.debouncer.Current(msg.gen) {
			m.setStatus(search.SearchingText, statusLoading)
		}
		return m, m.waitForMsg()

	case resultsMsg:
		m.applyResults(msg)
		return m, m.waitForMsg()

	case researchMsg:
		m.triggerSearch()
		return m, nil

	case updateDoneMsg:
		return m, m.handleUpdateDone(msg)

	case actionMsg:
		m.handleAction(msg)
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			log.Printf("Help pager failed: %v", msg.err)
			m.setStatus(fmt.Sprintf("Help unavailable: %v", msg.err), statusError)
		}
		return m, nil

	case EventMsg:
		return m, m.handleEvent(msg.Event)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeLocation:
		m.location, cmd = m.location.Update(msg)
	case modeIgnore:
		m.ignore.input, cmd = m.ignore.input.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.Shutdown()
		return m, tea.Quit
	}

	switch m.mode {
	case modeIgnore:
		closed, cmd := m.ignore.update(msg)
		if closed {
			m.mode = modeNormal
			m.triggerSearch()
		}
		return m, cmd
	case modeLocation:
		return m.handleLocationKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		return m, showHelp()
	case key.Matches(msg, m.keys.Focus):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.clear()
		return m, nil
	case key.Matches(msg, m.keys.ToggleExact):
		m.exact = !m.exact
		m.triggerSearch()
		return m, nil
	case key.Matches(msg, m.keys.CycleType):
		m.typ = m.typ.Next()
		m.triggerSearch()
		return m, nil
	case key.Matches(msg, m.keys.Location):
		m.mode = modeLocation
		m.location.SetValue(m.loc)
		m.location.CursorEnd()
		return m, m.location.Focus()
	case key.Matches(msg, m.keys.Ignore):
		m.mode = modeIgnore
		m.ignore.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.UpdateDB):
		return m, m.startUpdate()
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}

	if msg.Type == tea.KeyDown && len(m.rows) > 0 {
		m.toggleFocus()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.onQueryChanged()
	}
	return m, cmd
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		return m, m.actionCmd(actionOpen)
	case key.Matches(msg, m.keys.OpenFolder):
		return m, m.actionCmd(actionOpenFolder)
	case key.Matches(msg, m.keys.CopyPath):
		return m, m.actionCmd(actionCopy)
	case key.Matches(msg, m.keys.SortName):
		m.sortBy(results.ColumnName)
		return m, nil
	case key.Matches(msg, m.keys.SortPath):
		m.sortBy(results.ColumnPath)
		return m, nil
	case key.Matches(msg, m.keys.SortSize):
		m.sortBy(results.ColumnSize)
		return m, nil
	}

	if msg.Type == tea.KeyUp && m.table.Cursor() == 0 {
		m.toggleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleLocationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitLocation()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeNormal
		m.location.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}

func (m *Model) commitLocation() {
	loc, err := expandLocation(m.location.Value())
	if err != nil {
		m.setStatus("Invalid location: "+err.Error(), statusWarning)
		return
	}
	m.loc = loc
	m.mode = modeNormal
	m.location.Blur()
	m.triggerSearch()
}

// expandLocation resolves ~ and requires an existing directory
func expandLocation(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "/", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	value = filepath.Clean(value)
	info, err := os.Stat(value)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", value)
	}
	return value, nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusSearch {
		m.focus = focusResults
		m.input.Blur()
		m.table.Focus()
		return
	}
	m.focus = focusSearch
	m.table.Blur()
	m.input.Focus()
}

func (m *Model) onQueryChanged() {
	if m.exact && domain.DisablesExact(m.input.Value()) {
		m.exact = false
		log.Printf("Exact mode disabled for pattern query %q", m.input.Value())
	}
	m.triggerSearch()
}

func (m *Model) query() domain.SearchQuery {
	return domain.SearchQuery{
		Text:     m.input.Value(),
		Location: m.loc,
		Exact:    m.exact,
		Type:     m.typ,
	}
}

// triggerSearch hands the current query to the debouncer
func (m *Model) triggerSearch() {
	decision := m.debouncer.Trigger(m.query())
	if decision != search.DecisionScheduled {
		m.clearResults()
		m.setStatus(decision.Message(), statusInfo)
	}
}

// runSearch executes on the debouncer's timer goroutine
func (m *Model) runSearch(ctx context.Context, t search.Ticket) {
	m.send(ctx, searchStartedMsg{gen: t.Gen})
	out := m.engine.Run(ctx, t.Query)
	if ctx.Err() != nil {
		return
	}
	m.send(ctx, resultsMsg{gen: t.Gen, outcome: out})
}

func (m *Model) send(ctx context.Context, msg tea.Msg) {
	select {
	case m.msgs <- msg:
	case <-ctx.Done():
	}
}

func (m *Model) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.msgs:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) applyResults(msg resultsMsg) {
	if !m.debouncer.Current(msg.gen) || msg.outcome.Status == domain.StatusCancelled {
		return
	}

	out := msg.outcome
	m.rows = out.Rows
	m.sorter.Sort(m.rows)
	m.refreshTable()
	m.table.SetCursor(0)
	m.detail = ""

	switch out.Status {
	case domain.StatusFound:
		m.setStatus(out.Message(), statusInfo)
	case domain.StatusToolError:
		m.setStatus(out.Message(), statusWarning)
		m.detail = fmt.Sprintf("%s: %s", m.config.Tool, out.Detail)
	default:
		m.setStatus(out.Message(), statusWarning)
	}
}

func (m *Model) clearResults() {
	m.rows = nil
	m.detail = ""
	m.refreshTable()
}

func (m *Model) resetOptions() {
	m.loc = m.config.Search.Location
	m.exact = m.config.Search.Exact
	m.typ = m.config.TypeFilter()
}

// clear empties the query and restores the default options
func (m *Model) clear() {
	m.debouncer.Cancel()
	m.input.SetValue("")
	m.resetOptions()
	m.clearResults()
	m.setStatus(search.ReadyMessage, statusInfo)
	if m.focus == focusResults {
		m.toggleFocus()
	}
}

func (m *Model) sortBy(col results.Column) {
	m.sorter.Toggle(col)
	m.sorter.Sort(m.rows)
	m.refreshTable()
}

func (m *Model) refreshTable() {
	m.table.SetColumns(m.columns())
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = table.Row{r.Name, r.Dir, r.Size}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) columns() []table.Column {
	const sizeWidth = 12
	width := m.width - 8 // outer padding plus cell padding
	if width < 60 {
		width = 100
	}
	nameWidth := (width - sizeWidth) * 2 / 5
	pathWidth := width - sizeWidth - nameWidth
	return []table.Column{
		{Title: m.sorter.Header(results.ColumnName), Width: nameWidth},
		{Title: m.sorter.Header(results.ColumnPath), Width: pathWidth},
		{Title: m.sorter.Header(results.ColumnSize), Width: sizeWidth},
	}
}

func (m *Model) resize() {
	height := m.height - 12
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
	m.input.Width = m.width - 10
	m.refreshTable()
}

func (m *Model) selectedRow() (domain.ResultRow, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return domain.ResultRow{}, false
	}
	return m.rows[i], true
}

func (m *Model) actionCmd(action string) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	op := m.opener
	return func() tea.Msg {
		var err error
		switch action {
		case actionOpen:
			err = op.Open(row.Path())
		case actionOpenFolder:
			err = op.OpenContaining(row.Path())
		case actionCopy:
			err = opener.CopyPath(row.Path())
		}
		return actionMsg{action: action, row: row, err: err}
	}
}

func (m *Model) handleAction(msg actionMsg) {
	path := msg.row.Path()
	switch {
	case msg.err == nil && msg.action == actionCopy:
		m.setStatus("Copied to clipboard: "+path, statusSuccess)
	case msg.err == nil:
		m.setStatus("Opened: "+path, statusSuccess)
	case errors.Is(msg.err, opener.ErrNotFound):
		m.setStatus("File not found: "+path, statusWarning)
	case errors.Is(msg.err, opener.ErrPermission):
		m.setStatus("Permission denied: "+path, statusError)
	case errors.Is(msg.err, opener.ErrUnknownType):
		m.setStatus("Unknown file type: "+path, statusWarning)
	default:
		log.Printf("Action %s failed for %s: %v", msg.action, path, msg.err)
		m.setStatus(fmt.Sprintf("Failed to %s: %v", msg.action, msg.err), statusError)
	}
}

// indexBusy reports whether a refresh started here or elsewhere is still running
func (m *Model) indexBusy() bool {
	return m.updating || m.updater.Running()
}

func (m *Model) startUpdate() tea.Cmd {
	if m.indexBusy() {
		m.setStatus("Database update already in progress", statusWarning)
		return nil
	}
	m.updating = true
	m.setStatus(fmt.Sprintf("Updating %s database...", m.config.Tool), statusLoading)

	up := m.updater
	ctx := m.ctx
	return func() tea.Msg {
		out, err := up.Run(ctx)
		return updateDoneMsg{outcome: out, err: err}
	}
}

func (m *Model) handleUpdateDone(msg updateDoneMsg) tea.Cmd {
	m.updating = false
	if errors.Is(msg.err, updater.ErrAlreadyRunning) {
		m.setStatus("Database update already in progress", statusWarning)
		return nil
	}
	if msg.err != nil {
		m.setStatus(msg.err.Error(), statusWarning)
		return nil
	}

	out := msg.outcome
	switch out.Result {
	case domain.UpdateSucceeded:
		m.setStatus(out.Status(), statusSuccess)
		if len([]rune(strings.TrimSpace(m.input.Value()))) >= domain.MinQueryLength {
			return tea.Tick(time.Second, func(time.Time) tea.Msg { return researchMsg{} })
		}
	case domain.UpdateCancelled:
		m.setStatus(out.Status(), statusWarning)
	default:
		m.setStatus(out.Status(), statusError)
	}
	return nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.IndexChangedEvent:
		if m.indexBusy() {
			return nil
		}
		log.Printf("Index changed (%s), refreshing current search", e.Path)
		if len([]rune(strings.TrimSpace(m.input.Value()))) >= domain.MinQueryLength {
			m.triggerSearch()
		}
	case eventbus.IndexUpdateStartedEvent:
		m.setStatus(fmt.Sprintf("Updating %s database...", m.config.Tool), statusLoading)
	case eventbus.ErrorEvent:
		m.setStatus(e.Message, statusError)
	default:
		log.Printf("UI ignoring event %s", event.Type())
	}
	return nil
}

func (m *Model) setStatus(text string, kind statusKind) {
	m.status = text
	m.statusKind = kind
}
