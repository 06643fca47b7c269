package speech

import (
	"context"
	"time"

	"github.com/five82/readout/internal/logger"
)

// Silent logs each line instead of speaking it and holds for a fixed dwell
// so the UI still steps through the list at a readable pace. Used with
// --no-speech and when no backend is available.
type Silent struct {
	dwell time.Duration
	log   *logger.Logger
	stop  chan struct{}
}

// NewSilent creates a silent speaker. A zero dwell returns immediately.
func NewSilent(dwell time.Duration, log *logger.Logger) *Silent {
	return &Silent{dwell: dwell, log: log, stop: make(chan struct{}, 1)}
}

// Speak logs text and waits out the dwell.
func (s *Silent) Speak(ctx context.Context, text string) error {
	s.log.Info("speech (silent): %s", text)
	if s.dwell <= 0 {
		return nil
	}
	// Drop a Stop that arrived while idle.
	select {
	case <-s.stop:
	default:
	}
	timer := time.NewTimer(s.dwell)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stop:
		return ErrInterrupted
	case <-timer.C:
		return nil
	}
}

// Stop ends the current dwell early.
func (s *Silent) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}
