package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/five82/readout/internal/config"
	"github.com/five82/readout/internal/gate"
	"github.com/five82/readout/internal/logger"
	"github.com/five82/readout/internal/narration"
	"github.com/five82/readout/internal/prefs"
	"github.com/five82/readout/internal/reddit"
	"github.com/five82/readout/internal/speech"
	"github.com/five82/readout/internal/state"
	"github.com/five82/readout/internal/ui"
)

// DefaultExitAfter is how long the finished screen stays up before the TUI
// closes on its own.
const DefaultExitAfter = 5 * time.Second

// Options configure the readout application. Zero values defer to the
// config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/readout/prefs.toml
	Headless   bool
	NoSpeech   bool
	Verbose    bool
	Quiet      bool
	LogFile    string
	Splash     time.Duration
	Subreddit  string
	Limit      int
	ExitAfter  time.Duration // zero keeps the finished screen until esc

	// Stdout receives headless progress. Nil means os.Stdout.
	Stdout io.Writer
}

// Run loads configuration, builds the fetcher, speaker and runner, and
// narrates one batch of threads either in the TUI or headless.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	headless := opts.Headless || !isTerminal(out)

	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("readout starting (headless=%t, subreddit=%s, limit=%d)", headless, cfg.Subreddit, cfg.Limit)

	speaker, err := newSpeaker(cfg, log)
	if err != nil {
		return fmt.Errorf("init speech: %w", err)
	}
	defer speaker.Stop()

	client, err := reddit.NewClient(reddit.Options{
		BaseURL:   cfg.BaseURL,
		Subreddit: cfg.Subreddit,
		Limit:     cfg.Limit,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
	})
	if err != nil {
		return fmt.Errorf("init reddit client: %w", err)
	}
	log.Debug("reddit endpoint %s", client.Endpoint())

	runnerOpts := []narration.Option{
		narration.WithGap(cfg.Gap),
		narration.WithFetchTimeout(cfg.FetchTimeout),
		narration.WithSpeechTimeout(cfg.SpeechTimeout),
	}
	if headless {
		runnerOpts = append(runnerOpts, narration.WithProgress(progressPrinter(out)))
	}
	runner := narration.NewRunner(client, speaker, log, runnerOpts...)

	store := &state.Store{}
	pause := gate.NewPause()

	if headless {
		return runHeadless(ctx, runner, pause, store, out, log)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	handle, err := ui.Run(ui.Options{
		Context:   ctx,
		Runner:    runner,
		Store:     store,
		Pause:     pause,
		Config:    &cfg,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		ShowLog:   userPrefs.ShowLog,
		LogPath:   cfg.LogFile,
		ExitAfter: opts.ExitAfter,
	})
	awaitRun(handle, cfg.ShutdownGrace, speaker, log)
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Subreddit != "" {
		cfg.Subreddit = opts.Subreddit
	}
	if opts.Limit > 0 {
		cfg.Limit = min(opts.Limit, config.MaxLimit)
	}
	if opts.Splash > 0 {
		cfg.Splash = opts.Splash
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.NoSpeech {
		cfg.SpeechBackend = speech.BackendNone
	}
	switch {
	case opts.Quiet:
		cfg.LogLevel = logger.LevelOff.String()
	case opts.Verbose:
		cfg.LogLevel = logger.LevelVerbose.String()
	}
}

// openLog sends log output to cfg.LogFile. The terminal belongs to the TUI
// (or to headless progress), so nothing is logged to it.
func openLog(cfg config.Config) (*logger.Logger, func(), error) {
	level := logger.ParseLevel(cfg.LogLevel)
	if level == logger.LevelOff || cfg.LogFile == "" {
		return logger.Discard(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(cfg.LogFile, "readout")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.New(level, f), func() { _ = f.Close() }, nil
}

func newSpeaker(cfg config.Config, log *logger.Logger) (speech.Speaker, error) {
	return speech.New(speech.Options{
		Backend:     cfg.SpeechBackend,
		Voice:       cfg.Voice,
		Command:     cfg.SpeechCommand,
		Args:        cfg.SpeechArgs,
		Dwell:       cfg.SilentDwell,
		HTTPTimeout: cfg.SpeechTimeout,
	}, log)
}

// awaitRun gives a run that outlived the UI a bounded chance to finish its
// current utterance, then stops playback.
func awaitRun(h *narration.Handle, grace time.Duration, speaker speech.Speaker, log *logger.Logger) {
	if h == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	res, err := h.Wait(ctx)
	if err != nil {
		log.Warn("narration still busy after %s, stopping playback", grace)
		speaker.Stop()
		return
	}
	log.Info("narration ended: spoken=%d total=%d cancelled=%t", res.Spoken, res.Total, res.Cancelled)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
