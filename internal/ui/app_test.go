package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/readout/internal/config"
	"github.com/five82/readout/internal/gate"
	"github.com/five82/readout/internal/logger"
	"github.com/five82/readout/internal/narration"
	"github.com/five82/readout/internal/prefs"
	"github.com/five82/readout/internal/presenter"
	"github.com/five82/readout/internal/reddit"
	"github.com/five82/readout/internal/state"
)

type stubFetcher struct {
	posts []reddit.Post
	block bool
}

func (f stubFetcher) FetchTop(ctx context.Context) ([]reddit.Post, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.posts, nil
}

type quietSpeaker struct{}

func (quietSpeaker) Speak(context.Context, string) error { return nil }
func (quietSpeaker) Stop()                               {}

type testEnv struct {
	model Model
	store *state.Store
	pause *gate.Pause
	prefs string
}

func newTestModel(t *testing.T, fetcher reddit.Fetcher) testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Splash = 200 * time.Millisecond
	store := &state.Store{}
	pause := gate.NewPause()
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	runner := narration.NewRunner(fetcher, quietSpeaker{}, logger.Discard(), narration.WithGap(0))

	m := New(Options{
		Runner:    runner,
		Store:     store,
		Pause:     pause,
		Config:    &cfg,
		ThemeName: "Nightfox",
		PrefsPath: prefsPath,
		Tick:      100 * time.Millisecond,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return testEnv{model: next.(Model), store: store, pause: pause, prefs: prefsPath}
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// advanceToRunning ticks past the splash threshold.
func advanceToRunning(t *testing.T, m Model) Model {
	t.Helper()
	start := time.Now()
	for i := 0; i < 3; i++ {
		m = send(m, tickMsg(start.Add(time.Duration(i)*100*time.Millisecond)))
	}
	if m.Phase() != presenter.PhaseRunning {
		t.Fatalf("phase = %s, want running", m.Phase())
	}
	return m
}

func waitHandle(t *testing.T, h *narration.Handle) narration.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("run did not finish: %v", err)
	}
	return res
}

func TestModel_SplashAdvancesOnlyAfterThreshold(t *testing.T) {
	env := newTestModel(t, stubFetcher{posts: []reddit.Post{{Title: "A", Author: "x"}}})
	m := env.model
	start := time.Now()

	m = send(m, tickMsg(start))
	m = send(m, tickMsg(start.Add(100*time.Millisecond)))
	if m.Phase() != presenter.PhaseSplash {
		t.Fatalf("phase = %s at threshold, want splash", m.Phase())
	}
	if m.Handle() != nil {
		t.Fatal("run spawned during splash")
	}

	m = send(m, tickMsg(start.Add(200*time.Millisecond)))
	if m.Phase() != presenter.PhaseRunning {
		t.Fatalf("phase = %s, want running", m.Phase())
	}
	if m.Handle() == nil {
		t.Fatal("expected a run to be spawned")
	}
	waitHandle(t, m.Handle())
}

func TestModel_RunCompletionMovesToFinished(t *testing.T) {
	env := newTestModel(t, stubFetcher{posts: []reddit.Post{{Title: "A", Author: "x"}, {Title: "B", Author: "y"}}})
	m := advanceToRunning(t, env.model)

	h := m.Handle()
	res := waitHandle(t, h)
	if !res.Completed() || res.Spoken != 4 {
		t.Fatalf("result = %+v, want completed with 4 lines", res)
	}

	m = send(m, runDoneMsg{handle: h, result: res})
	if m.Phase() != presenter.PhaseFinished {
		t.Fatalf("phase = %s, want finished", m.Phase())
	}
	if !strings.Contains(m.View(), "Read 2 threads.") {
		t.Fatalf("finished view missing summary:\n%s", m.View())
	}
}

func TestModel_FinishedScreenClosesAfterDelay(t *testing.T) {
	env := newTestModel(t, stubFetcher{posts: []reddit.Post{{Title: "A", Author: "x"}}})
	m := env.model
	m.exitAfter = 10 * time.Millisecond
	m = advanceToRunning(t, m)

	h := m.Handle()
	res := waitHandle(t, h)
	next, cmd := m.Update(runDoneMsg{handle: h, result: res})
	m = next.(Model)
	if m.Phase() != presenter.PhaseFinished {
		t.Fatalf("phase = %s, want finished", m.Phase())
	}
	if cmd == nil {
		t.Fatal("expected a delayed close command")
	}
	msg := cmd()
	if _, ok := msg.(closeMsg); !ok {
		t.Fatalf("delayed command returned %T, want closeMsg", msg)
	}
	if m = send(m, msg); !m.quitting {
		t.Fatal("closeMsg should terminate the UI")
	}
}

func TestModel_StaleRunMessagesIgnored(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := advanceToRunning(t, env.model)

	m = send(m, runDoneMsg{handle: &narration.Handle{}, result: narration.Result{}})
	if m.Phase() != presenter.PhaseRunning {
		t.Fatalf("phase = %s after stale completion, want running", m.Phase())
	}
	m = send(m, runCancelledMsg{handle: &narration.Handle{}})
	if m.quitting {
		t.Fatal("stale cancellation should not close the UI")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	waitHandle(t, m.Handle())
}

func TestModel_PauseOnlyWhileRunning(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := send(env.model, runes("p"))
	if env.pause.Paused() {
		t.Fatal("pause toggled during splash")
	}

	m = advanceToRunning(t, m)
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if !env.pause.Paused() {
		t.Fatal("space should pause while running")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("view missing pause badge:\n%s", m.View())
	}
	m = send(m, runes("p"))
	if env.pause.Paused() {
		t.Fatal("p should resume")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	waitHandle(t, m.Handle())
}

func TestModel_CloseWhileRunningCancelsRun(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := advanceToRunning(t, env.model)
	h := m.Handle()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if !m.quitting {
		t.Fatal("esc should terminate the UI")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}

	res := waitHandle(t, h)
	if !res.Cancelled {
		t.Fatalf("result = %+v, want cancelled", res)
	}
	if !h.Token().Cancelled() {
		t.Fatal("token should be cancelled")
	}
}

func TestModel_CloseDuringSplash(t *testing.T) {
	env := newTestModel(t, stubFetcher{})
	m := send(env.model, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.quitting {
		t.Fatal("ctrl+c should terminate the UI")
	}
	if m.Handle() != nil {
		t.Fatal("no run should be spawned")
	}
}

func TestModel_WaitRunCmdReportsExternalCancel(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := advanceToRunning(t, env.model)
	h := m.Handle()

	h.Token().Cancel()
	msg := waitRunCmd(h, h.Token())()
	switch msg.(type) {
	case runCancelledMsg, runDoneMsg:
	default:
		t.Fatalf("unexpected message %T", msg)
	}

	m = send(m, runCancelledMsg{handle: h})
	if !m.quitting {
		t.Fatal("external cancel should close the UI")
	}
	waitHandle(t, h)
}

func TestModel_CycleThemePersists(t *testing.T) {
	env := newTestModel(t, stubFetcher{})
	m := send(env.model, runes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if got := prefs.Load(env.prefs); got.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got.Theme)
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	env := newTestModel(t, stubFetcher{})
	m := send(env.model, runes("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	m = send(m, runes("x"))
	if m.showHelp {
		t.Fatal("any key should dismiss help")
	}
}

func TestModel_RunningViewHighlightsCurrent(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := advanceToRunning(t, env.model)

	env.store.Publish([]reddit.Summary{{Title: "First"}, {Title: "Second"}})
	env.store.SetCurrent(1)
	m = send(m, tickMsg(time.Now()))

	view := m.View()
	if !strings.Contains(view, "First") || !strings.Contains(view, "▶  2. Second") {
		t.Fatalf("running view missing threads or marker:\n%s", view)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	waitHandle(t, m.Handle())
}

func TestModel_FailureShownOnFinish(t *testing.T) {
	env := newTestModel(t, stubFetcher{block: true})
	m := advanceToRunning(t, env.model)
	h := m.Handle()
	m.Handle().Token().Cancel()
	waitHandle(t, h)

	m = send(m, runDoneMsg{handle: h, result: narration.Result{Err: narration.ErrFetch}})
	if m.Phase() != presenter.PhaseFinished {
		t.Fatalf("phase = %s, want finished", m.Phase())
	}
	if env.store.Snapshot().LastError == nil {
		t.Fatal("store should record the run error")
	}
	if !strings.Contains(m.View(), "Narration stopped") {
		t.Fatalf("view missing error:\n%s", m.View())
	}
}
