// Package speech turns narration text into audible speech.
//
// Every backend satisfies Speaker: Speak blocks until the utterance has
// finished playing, so callers can treat it as one indivisible unit.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/five82/readout/internal/logger"
)

// Speaker speaks one utterance at a time.
type Speaker interface {
	// Speak synthesizes and plays text, returning once playback is done or
	// ctx ends.
	Speak(ctx context.Context, text string) error
	// Stop interrupts any utterance in progress. Safe when idle.
	Stop()
}

// Backend names accepted in configuration.
const (
	BackendAuto    = "auto"
	BackendAzure   = "azure"
	BackendCommand = "command"
	BackendNone    = "none"
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

var (
	// ErrNoBackend is returned when a requested backend cannot be built.
	ErrNoBackend = errors.New("speech backend unavailable")
	// ErrInterrupted is returned by Speak when Stop cut the utterance short.
	ErrInterrupted = errors.New("speech interrupted")
)

// commandCandidates are probed, in order, when no command is configured.
var commandCandidates = []string{"espeak-ng", "espeak", "say", "spd-say"}

// Options select and tune a backend.
type Options struct {
	Backend     string
	Voice       string
	AzureKey    string
	AzureRegion string
	Command     string
	Args        []string
	Dwell       time.Duration // how long the silent backend holds each line
	HTTPTimeout time.Duration
}

// New builds the Speaker described by opts. BackendAuto prefers Azure when
// credentials are present, then a local TTS program, then silence.
func New(opts Options, log *logger.Logger) (Speaker, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendAuto
	}
	if opts.AzureKey == "" {
		opts.AzureKey = os.Getenv(EnvAzureSpeechKey)
	}
	if opts.AzureRegion == "" {
		opts.AzureRegion = os.Getenv(EnvAzureSpeechRegion)
	}

	switch backend {
	case BackendAzure:
		return newAzureVoice(opts, log)
	case BackendCommand:
		bin, err := resolveCommand(opts.Command)
		if err != nil {
			return nil, err
		}
		return NewCommand(bin, opts.Args, log), nil
	case BackendNone:
		return NewSilent(opts.Dwell, log), nil
	case BackendAuto:
		if opts.AzureKey != "" && opts.AzureRegion != "" {
			voice, err := newAzureVoice(opts, log)
			if err == nil {
				return voice, nil
			}
			log.Warn("speech: azure unavailable, falling back: %v", err)
		}
		if bin, err := resolveCommand(opts.Command); err == nil {
			log.Info("speech: using %s", bin)
			return NewCommand(bin, opts.Args, log), nil
		}
		log.Warn("speech: no tts backend found, narration will be silent")
		return NewSilent(opts.Dwell, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNoBackend, opts.Backend)
	}
}

func newAzureVoice(opts Options, log *logger.Logger) (*Voice, error) {
	if opts.AzureKey == "" || opts.AzureRegion == "" {
		return nil, fmt.Errorf("%w: %s and %s must be set", ErrNoBackend, EnvAzureSpeechKey, EnvAzureSpeechRegion)
	}
	var azureOpts []AzureOption
	if opts.Voice != "" {
		azureOpts = append(azureOpts, WithVoice(opts.Voice))
	}
	if opts.HTTPTimeout > 0 {
		azureOpts = append(azureOpts, WithHTTPTimeout(opts.HTTPTimeout))
	}
	player, err := NewPlayer(log)
	if err != nil {
		return nil, fmt.Errorf("%w: audio device: %v", ErrNoBackend, err)
	}
	tts := NewAzureClient(opts.AzureKey, opts.AzureRegion, log, azureOpts...)
	log.Info("speech: using azure voice %s", tts.Voice())
	return NewVoice(tts, player, log), nil
}

func resolveCommand(name string) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNoBackend, name, err)
		}
		return path, nil
	}
	for _, candidate := range commandCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s on PATH", ErrNoBackend, strings.Join(commandCandidates, ", "))
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
