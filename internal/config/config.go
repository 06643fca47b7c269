// Package config loads readout's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/readout/internal/paths"
)

// Config is the resolved configuration. Every field has a usable default.
type Config struct {
	BaseURL      string
	Subreddit    string
	Limit        int
	UserAgent    string
	FetchTimeout time.Duration

	SpeechBackend string
	Voice         string
	SpeechCommand string
	SpeechArgs    []string
	SpeechTimeout time.Duration
	SilentDwell   time.Duration

	Splash        time.Duration
	Gap           time.Duration
	ShutdownGrace time.Duration
	ThumbnailDir  string

	LogFile  string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/readout/config.toml"
	defaultLogFile    = "~/.local/state/readout/readout.log"
	defaultBaseURL    = "https://www.reddit.com"
	defaultSubreddit  = "popular"
	defaultLimit      = 10
	defaultBackend    = "auto"
	defaultLogLevel   = "normal"
)

const (
	defaultFetchTimeout  = 15 * time.Second
	defaultSpeechTimeout = 90 * time.Second
	defaultSilentDwell   = 2 * time.Second
	defaultSplash        = 2 * time.Second
	defaultGap           = time.Second
	defaultShutdownGrace = 3 * time.Second
)

// MaxLimit caps how many threads one run fetches.
const MaxLimit = 100

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:       defaultBaseURL,
		Subreddit:     defaultSubreddit,
		Limit:         defaultLimit,
		FetchTimeout:  defaultFetchTimeout,
		SpeechBackend: defaultBackend,
		SpeechTimeout: defaultSpeechTimeout,
		SilentDwell:   defaultSilentDwell,
		Splash:        defaultSplash,
		Gap:           defaultGap,
		ShutdownGrace: defaultShutdownGrace,
		LogFile:       paths.MustExpand(defaultLogFile),
		LogLevel:      defaultLogLevel,
	}
}

type rawConfig struct {
	Reddit struct {
		BaseURL      string `toml:"base_url"`
		Subreddit    string `toml:"subreddit"`
		Limit        int    `toml:"limit"`
		UserAgent    string `toml:"user_agent"`
		FetchTimeout string `toml:"fetch_timeout"`
	} `toml:"reddit"`
	Speech struct {
		Backend     string   `toml:"backend"`
		Voice       string   `toml:"voice"`
		Command     string   `toml:"command"`
		Args        []string `toml:"args"`
		Timeout     string   `toml:"timeout"`
		SilentDwell string   `toml:"silent_dwell"`
	} `toml:"speech"`
	Narration struct {
		Splash        string `toml:"splash"`
		Gap           string `toml:"gap"`
		ShutdownGrace string `toml:"shutdown_grace"`
		ThumbnailDir  string `toml:"thumbnail_dir"`
	} `toml:"narration"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	setString(&c.BaseURL, raw.Reddit.BaseURL)
	setString(&c.Subreddit, raw.Reddit.Subreddit)
	setString(&c.UserAgent, raw.Reddit.UserAgent)
	if raw.Reddit.Limit > 0 {
		c.Limit = min(raw.Reddit.Limit, MaxLimit)
	}

	setString(&c.SpeechBackend, strings.ToLower(raw.Speech.Backend))
	setString(&c.Voice, raw.Speech.Voice)
	setString(&c.SpeechCommand, raw.Speech.Command)
	if len(raw.Speech.Args) > 0 {
		c.SpeechArgs = append([]string(nil), raw.Speech.Args...)
	}

	if strings.TrimSpace(raw.Narration.ThumbnailDir) != "" {
		c.ThumbnailDir = paths.MustExpand(raw.Narration.ThumbnailDir)
	}
	if strings.TrimSpace(raw.Log.File) != "" {
		c.LogFile = paths.MustExpand(raw.Log.File)
	}
	setString(&c.LogLevel, strings.ToLower(raw.Log.Level))

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
		zero  bool // whether 0 is a meaningful setting
	}{
		{"reddit.fetch_timeout", raw.Reddit.FetchTimeout, &c.FetchTimeout, false},
		{"speech.timeout", raw.Speech.Timeout, &c.SpeechTimeout, false},
		{"speech.silent_dwell", raw.Speech.SilentDwell, &c.SilentDwell, true},
		{"narration.splash", raw.Narration.Splash, &c.Splash, true},
		{"narration.gap", raw.Narration.Gap, &c.Gap, true},
		{"narration.shutdown_grace", raw.Narration.ShutdownGrace, &c.ShutdownGrace, true},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.value)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.name, err)
		}
		if parsed < 0 || (parsed == 0 && !d.zero) {
			return fmt.Errorf("parse config: %s must be positive, got %s", d.name, value)
		}
		*d.dest = parsed
	}
	return nil
}

func setString(dest *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dest = trimmed
	}
}

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// ResolveThumbnail maps a thumbnail reference to a local path. Relative
// references resolve against ThumbnailDir.
func (c Config) ResolveThumbnail(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || filepath.IsAbs(ref) || strings.TrimSpace(c.ThumbnailDir) == "" {
		return ref
	}
	return filepath.Join(c.ThumbnailDir, ref)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return paths.Expand(defaultConfigPath)
	}
	return paths.Expand(path)
}
