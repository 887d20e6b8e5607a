package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Config configures the terminal dashboard.
type Config struct {
	Dashboard dashboard.Config
	Map       dashboard.Viewport // initial map view
	Logger    logger.Logger
	Metrics   *metrics.DashboardMetrics
}

// ReloadMsg asks the model to load the dataset again, e.g. after the
// sightings file changed.
type ReloadMsg struct{}

type loadedMsg struct{ err error }

type refreshMsg struct{}

// Model is the bubbletea model of the dashboard. Filter, search and sort
// events are forwarded to a dashboard.App which renders into a Screen.
type Model struct {
	ctx     context.Context
	app     *dashboard.App
	screen  *Screen
	mapPane *mapPane

	page       dashboard.Page
	speciesIdx int // index into page.SpeciesOptions, -1 for all species
	loading    bool
	loadErr    error

	table     table.Model
	search    textinput.Model
	searching bool
	keys      keyMap
	help      help.Model
	styles    styles
	width     int
	height    int
}

// New builds a model reading from src. ctx bounds loads and the change
// listener.
func New(ctx context.Context, src dashboard.Source, cfg Config) Model {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDiscard()
	}

	screen := NewScreen()
	pane := newMapPane(cfg.Map)
	app := dashboard.New(src, screen, pane, cfg.Dashboard,
		dashboard.WithLogger(log),
		dashboard.WithMetrics(cfg.Metrics))

	ti := textinput.New()
	ti.Placeholder = "Species or location"
	ti.Prompt = "Search: "
	ti.CharLimit = 80
	ti.Width = 40

	t := table.New(
		table.WithColumns(columns(dashboard.Page{}, 0)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return Model{
		ctx:        ctx,
		app:        app,
		screen:     screen,
		mapPane:    pane,
		speciesIdx: -1,
		table:      t,
		search:     ti,
		keys:       defaultKeyMap(),
		help:       help.New(),
		styles:     defaultStyles(),
	}
}

// Init starts the first load and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForChange())
}

// Close cancels any pending search.
func (m Model) Close() {
	m.app.Close()
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.app.Load(m.ctx)}
	}
}

// waitForChange blocks until the screen changes. Debounced searches render
// from their own goroutine and reach the model this way.
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.screen.Changed():
			return refreshMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(5, msg.Height-18))
		return m, nil

	case loadedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.speciesIdx = -1
		m.search.SetValue("")
		m.sync()
		return m, nil

	case ReloadMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.loadCmd()

	case refreshMsg:
		m.sync()
		return m, m.waitForChange()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.app.FlushSearch()
		m.searching = false
		m.search.Blur()
		m.sync()
		return m, nil
	case msg.Type == tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if text := m.search.Value(); text != before {
		m.app.Search(text)
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.app.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextSpecies):
		m.cycleSpecies(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevSpecies):
		m.cycleSpecies(-1)
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		if col, ok := sortColumn(msg.String()); ok {
			m.app.SortBy(col)
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.app.Reset()
		m.speciesIdx = -1
		m.search.SetValue("")
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m.Update(ReloadMsg{})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// cycleSpecies moves the species selection by step, passing through
// "all species" between the last and the first name.
func (m *Model) cycleSpecies(step int) {
	n := len(m.page.SpeciesOptions)
	if n == 0 {
		return
	}
	// positions 0..n map to all, then each name
	pos := (m.speciesIdx + 1 + step + n + 1) % (n + 1)
	m.speciesIdx = pos - 1

	name := ""
	if m.speciesIdx >= 0 {
		name = m.page.SpeciesOptions[m.speciesIdx]
	}
	m.app.SelectSpecies(name)
	m.sync()
}

// selectedSpecies returns the current species filter, "" for all.
func (m Model) selectedSpecies() string {
	if m.speciesIdx < 0 || m.speciesIdx >= len(m.page.SpeciesOptions) {
		return ""
	}
	return m.page.SpeciesOptions[m.speciesIdx]
}

// sortColumn maps the keys 1-5 onto the sortable columns.
func sortColumn(k string) (sightings.Column, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '5' {
		return "", false
	}
	i := int(k[0] - '1')
	if i >= len(sightings.Columns) {
		return "", false
	}
	return sightings.Columns[i], true
}

// sync copies the screen into the table.
func (m *Model) sync() {
	m.page = m.screen.Page()
	m.table.SetColumns(columns(m.page, m.width))

	rows := make([]table.Row, 0, len(m.page.Rows))
	for _, r := range m.page.Rows {
		rows = append(rows, table.Row{r.CommonName, r.Location, r.Date, r.Count, r.ScientificName})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// Run shows the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, src dashboard.Source, cfg Config, opts ...tea.ProgramOption) error {
	return RunProgram(NewProgram(ctx, src, cfg, opts...))
}

// RunProgram runs p, built by NewProgram, until it exits.
func RunProgram(p *tea.Program) error {
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return wrapRunError(err)
}

// NewProgram returns the bubbletea program for the dashboard. Callers that
// want to push a ReloadMsg use p.Send.
func NewProgram(ctx context.Context, src dashboard.Source, cfg Config, opts ...tea.ProgramOption) *tea.Program {
	m := New(ctx, src, cfg)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	return tea.NewProgram(m, opts...)
}

func wrapRunError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return errors.New(err).
		Category(errors.CategoryState).
		Component("tui").
		Build()
}
