// Package ui is the bubbletea front end. Model feeds terminal input and
// timer ticks into the presenter state machine and carries out the effects
// it returns.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/readout/internal/config"
	"github.com/five82/readout/internal/gate"
	"github.com/five82/readout/internal/logtail"
	"github.com/five82/readout/internal/narration"
	"github.com/five82/readout/internal/prefs"
	"github.com/five82/readout/internal/presenter"
	"github.com/five82/readout/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Runner    *narration.Runner
	Store     *state.Store
	Pause     *gate.Pause
	Config    *config.Config
	ThemeName string
	PrefsPath string
	ShowLog   bool
	LogPath   string
	Tick      time.Duration
	// ExitAfter closes the UI this long after narration finishes. Zero keeps
	// the finished screen up until the user closes it.
	ExitAfter time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	runner    *narration.Runner
	store     *state.Store
	pause     *gate.Pause
	config    *config.Config
	prefsPath string
	logPath   string
	tick      time.Duration
	exitAfter time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	logo     string
	width    int
	height   int
	ready    bool
	showHelp bool
	showLog  bool

	// Presentation state
	phase    presenter.State
	lastTick time.Time
	token    *narration.Token
	handle   *narration.Handle
	result   *narration.Result
	quitting bool

	// Data state
	snapshot    state.Snapshot
	logLines    []string
	logErr      error
	lastLogRead time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTickInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	pause := opts.Pause
	if pause == nil {
		pause = gate.NewPause()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		runner:    opts.Runner,
		store:     store,
		pause:     pause,
		config:    cfg,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		tick:      tick,
		exitAfter: opts.ExitAfter,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		logo:      createLogo(),
		showLog:   opts.ShowLog,
		phase:     presenter.New(cfg.Splash),
		snapshot:  store.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runDoneMsg:
		if msg.handle != m.handle {
			return m, nil
		}
		res := msg.result
		m.result = &res
		if res.Err != nil {
			m.store.Fail(res.Err)
		}
		m.snapshot = m.store.Snapshot()
		return m.dispatch(presenter.FetchCompleted{})

	case runCancelledMsg:
		if msg.handle != m.handle {
			return m, nil
		}
		return m.dispatch(presenter.Close{})

	case closeMsg:
		return m.dispatch(presenter.Close{})

	case logLinesMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Phase returns the current presentation phase.
func (m Model) Phase() presenter.Phase {
	return m.phase.Phase
}

// Handle returns the run spawned by this model, or nil if narration never
// started.
func (m Model) Handle() *narration.Handle {
	return m.handle
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help; close keys still close.
		m.showHelp = false
		if !isClose(m.keys, msg) {
			return m, nil
		}
	}

	switch {
	case isClose(m.keys, msg):
		return m.dispatch(presenter.Close{})

	case matches(m.keys.Pause, msg):
		return m.dispatch(presenter.TogglePause{})

	case matches(m.keys.Help, msg):
		m.showHelp = true
		return m, nil

	case matches(m.keys.CycleTheme, msg):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case matches(m.keys.ToggleLog, msg):
		m.showLog = !m.showLog
		m.savePrefs()
		if m.showLog {
			m.lastLogRead = time.Time{}
			return m, readLogCmd(m.logPath)
		}
		return m, nil
	}

	return m, nil
}

// handleTick advances the splash clock and refreshes shared state.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	delta := m.tick
	if !m.lastTick.IsZero() {
		delta = now.Sub(m.lastTick)
	}
	m.lastTick = now
	m.snapshot = m.store.Snapshot()

	next, cmd := m.dispatch(presenter.Tick{Delta: delta})
	m = next.(Model)
	if m.quitting {
		return m, cmd
	}

	cmds := []tea.Cmd{cmd, tickCmd(m.tick)}
	if m.showLog && now.Sub(m.lastLogRead) >= LogRefreshInterval {
		m.lastLogRead = now
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// dispatch runs ev through the presenter and applies the resulting effects
// in order.
func (m Model) dispatch(ev presenter.Event) (tea.Model, tea.Cmd) {
	var effects []presenter.Effect
	m.phase, effects = presenter.Transition(m.phase, ev)

	var cmds []tea.Cmd
	for _, effect := range effects {
		if cmd := m.apply(effect); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) apply(effect presenter.Effect) tea.Cmd {
	switch e := effect.(type) {
	case presenter.SpawnRun:
		if m.runner == nil {
			return nil
		}
		m.pause.Set(false)
		m.token = narration.NewToken(m.ctx)
		m.handle = narration.Start(m.ctx, m.runner, m.token, m.pause.Reader(), m.store)
		return waitRunCmd(m.handle, m.token)

	case presenter.ReleaseRun:
		m.token = nil
		if m.exitAfter > 0 {
			return closeAfterCmd(m.exitAfter)
		}

	case presenter.PublishPause:
		m.pause.Set(e.Paused)

	case presenter.CancelRun:
		if m.token != nil {
			m.token.Cancel()
			m.token = nil
		}

	case presenter.Terminate:
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, ShowLog: m.showLog})
}

// Messages

type tickMsg time.Time

type runDoneMsg struct {
	handle *narration.Handle
	result narration.Result
}

type runCancelledMsg struct {
	handle *narration.Handle
}

type closeMsg struct{}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitRunCmd reports whichever comes first: the run ending or its token
// being cancelled from outside the UI (for example by SIGINT).
func waitRunCmd(h *narration.Handle, token *narration.Token) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-h.Done():
			return runDoneMsg{handle: h, result: h.Result()}
		case <-token.Done():
			return runCancelledMsg{handle: h}
		}
	}
}

func closeAfterCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return closeMsg{}
	})
}

func readLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Tail(path, LogPaneLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits. It returns
// the run spawned during the session, if any, so the caller can wait for it
// to wind down.
func Run(opts Options) (*narration.Handle, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()

	var handle *narration.Handle
	if fm, ok := final.(Model); ok {
		handle = fm.Handle()
		if fm.token != nil {
			// Killed without a Close event.
			fm.token.Cancel()
		}
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return handle, err
}
