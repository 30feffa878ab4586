// Package tui is the interactive terminal browser. It keeps one listing
// controller per tab and runs every fetch as a tea.Cmd, so searches typed in
// quick succession overlap; the controllers drop stale responses and the
// model drops snapshots older than the one it already shows.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/owasp/nestsearch"
	"github.com/owasp/nestsearch/internal/listing"
	"github.com/owasp/nestsearch/internal/theme"
	"go.uber.org/zap"
)

// DebounceDelay is how long typing must pause before a search is sent.
const DebounceDelay = 300 * time.Millisecond

// Preferences loads and saves the theme.
type Preferences interface {
	Load() (theme.Theme, error)
	Save(theme.Theme) error
}

// Option customizes a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPreferences sets where the theme is persisted.
func WithPreferences(p Preferences) Option {
	return func(m *Model) {
		m.prefs = p
	}
}

// WithHitsPerPage sets the page size of every tab.
func WithHitsPerPage(n int) Option {
	return func(m *Model) {
		m.hitsPerPage = n
	}
}

// WithRequestTimeout bounds every fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) {
		m.timeout = d
	}
}

// WithClock replaces time.Now for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx         context.Context
	logger      *zap.Logger
	prefs       Preferences
	hitsPerPage int
	timeout     time.Duration
	now         func() time.Time

	tabs   []tab
	states []snapshot
	active int

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	pager    paginator.Model

	theme  theme.Theme
	styles styles

	debounceTag int
	width       int
	height      int
}

type stateMsg struct {
	tab   int
	state snapshot
}

type debounceMsg struct {
	tab int
	tag int
}

// New builds the browser over the indexes opener serves.
func New(ctx context.Context, opener nestsearch.Opener, opts ...Option) Model {
	m := Model{
		ctx:         ctx,
		logger:      zap.NewNop(),
		hitsPerPage: 10,
		timeout:     10 * time.Second,
		now:         time.Now,
		theme:       theme.Default,
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.prefs != nil {
		t, err := m.prefs.Load()
		if err != nil {
			m.logger.Warn("failed to load preferences", zap.Error(err))
		}
		m.theme = t
	}
	m.styles = newStyles(m.theme)

	m.tabs = defaultTabs(opener, m.hitsPerPage, m.logger, m.now)
	m.states = make([]snapshot, len(m.tabs))
	for i, t := range m.tabs {
		m.states[i] = t.State()
	}

	m.input = textinput.New()
	m.input.Prompt = "/ "
	m.input.CharLimit = 120
	m.setPlaceholder()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.viewport = viewport.New(80, 20)

	m.pager = paginator.New()
	m.pager.Type = paginator.Arabic
	m.pager.PerPage = 1

	return m
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opener nestsearch.Opener, opts ...Option) error {
	p := tea.NewProgram(New(ctx, opener, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize(m.active))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refreshContent()
		return m, nil

	case stateMsg:
		return m.applyState(msg), nil

	case debounceMsg:
		if msg.tag != m.debounceTag || msg.tab != m.active {
			return m, nil
		}
		return m, m.search(m.active, m.input.Value())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.input.Blur()
		m.debounceTag++
		return m, m.search(m.active, m.input.Value())
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.debounceTag++
	tag, active := m.debounceTag, m.active
	debounce := tea.Tick(DebounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{tab: active, tag: tag}
	})
	return m, tea.Batch(cmd, debounce)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.input.SetValue(m.states[m.active].Query)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "left", "h":
		st := m.states[m.active]
		if st.CurrentPage <= 1 {
			return m, nil
		}
		return m, m.pageChange(m.active, st.CurrentPage-1)

	case "right", "l":
		st := m.states[m.active]
		if st.CurrentPage >= st.TotalPages {
			return m, nil
		}
		return m, m.pageChange(m.active, st.CurrentPage+1)

	case "tab":
		return m.switchTab((m.active + 1) % len(m.tabs))

	case "shift+tab":
		return m.switchTab((m.active + len(m.tabs) - 1) % len(m.tabs))

	case "t":
		m.theme = m.theme.Toggle()
		m.styles = newStyles(m.theme)
		if m.prefs != nil {
			if err := m.prefs.Save(m.theme); err != nil {
				m.logger.Error("failed to save preferences", zap.Error(err))
			}
		}
		m.refreshContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) switchTab(i int) (tea.Model, tea.Cmd) {
	m.active = i
	m.debounceTag++
	m.setPlaceholder()
	m.input.SetValue(m.states[i].Query)
	m.viewport.GotoTop()
	m.refreshContent()

	if m.states[i].Status == listing.StatusIdle {
		return m, m.initialize(i)
	}
	return m, nil
}

func (m Model) applyState(msg stateMsg) Model {
	if msg.tab < 0 || msg.tab >= len(m.states) {
		return m
	}
	if msg.state.Version < m.states[msg.tab].Version {
		return m
	}
	m.states[msg.tab] = msg.state

	// The flag is consumed even for a background tab so it cannot leak into
	// a later search on that tab.
	scroll := m.tabs[msg.tab].TakeScroll()
	if msg.tab == m.active {
		m.refreshContent()
		if scroll {
			m.viewport.GotoTop()
		}
	}
	return m
}

func (m *Model) refreshContent() {
	st := m.states[m.active]
	m.pager.SetTotalPages(max(st.TotalPages, 1))
	m.pager.Page = max(st.CurrentPage-1, 0)
	m.viewport.SetContent(m.renderCards(st))
}

func (m *Model) setPlaceholder() {
	m.input.Placeholder = m.tabs[m.active].Listing().Placeholder
}

// The commands below mark the tab as loading and return the fetch; it runs in
// its own goroutine and its snapshot is applied by Update.

func (m *Model) initialize(i int) tea.Cmd {
	m.states[i].Status = listing.StatusLoading
	t, ctx, timeout := m.tabs[i], m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return stateMsg{tab: i, state: t.Initialize(ctx)}
	}
}

func (m *Model) search(i int, query string) tea.Cmd {
	m.states[i].Status = listing.StatusLoading
	t, ctx, timeout := m.tabs[i], m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return stateMsg{tab: i, state: t.Search(ctx, query)}
	}
}

func (m *Model) pageChange(i, page int) tea.Cmd {
	m.states[i].Status = listing.StatusLoading
	t, ctx, timeout := m.tabs[i], m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return stateMsg{tab: i, state: t.PageChange(ctx, page)}
	}
}
