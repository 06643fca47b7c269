// Package presenter is the three-phase presentation state machine.
//
// Transition is a pure function: it never touches channels, goroutines or
// the terminal. It returns the next State together with the Effects the
// caller must carry out, in order. The bubbletea model in package ui is the
// only caller.
package presenter

import "time"

// DefaultSplashThreshold is how long the splash shows before narration.
const DefaultSplashThreshold = 2 * time.Second

// Phase identifies the current screen.
type Phase int

const (
	PhaseSplash Phase = iota
	PhaseRunning
	PhaseFinished
)

// String returns a display label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseSplash:
		return "splash"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is everything the machine owns.
type State struct {
	Phase     Phase
	Elapsed   time.Duration // time spent in PhaseSplash
	Threshold time.Duration // splash length; zero means DefaultSplashThreshold
	Paused    bool
	TokenLive bool // a run has been spawned and not yet released or cancelled
}

// New returns the initial splash state.
func New(threshold time.Duration) State {
	return State{Phase: PhaseSplash, Threshold: threshold}
}

func (s State) threshold() time.Duration {
	if s.Threshold <= 0 {
		return DefaultSplashThreshold
	}
	return s.Threshold
}

// Event is an input to Transition.
type Event interface{ isEvent() }

// Tick advances time by Delta.
type Tick struct{ Delta time.Duration }

// FetchCompleted reports that the run has ended, however it ended.
type FetchCompleted struct{}

// TogglePause flips pause while narration runs.
type TogglePause struct{}

// Close requests teardown.
type Close struct{}

func (Tick) isEvent()           {}
func (FetchCompleted) isEvent() {}
func (TogglePause) isEvent()    {}
func (Close) isEvent()          {}

// Effect is a side effect the caller must perform.
type Effect interface{ isEffect() }

// SpawnRun starts a background run with a fresh token.
type SpawnRun struct{}

// ReleaseRun drops the finished run's token.
type ReleaseRun struct{}

// PublishPause writes Paused to the pause gate.
type PublishPause struct{ Paused bool }

// CancelRun cancels the live token. Always emitted before Terminate.
type CancelRun struct{}

// Terminate tears the presentation down.
type Terminate struct{}

func (SpawnRun) isEffect()     {}
func (ReleaseRun) isEffect()   {}
func (PublishPause) isEffect() {}
func (CancelRun) isEffect()    {}
func (Terminate) isEffect()    {}

// Transition applies ev to s. Events with no meaning in the current phase
// leave s unchanged and produce no effects.
func Transition(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Tick:
		if s.Phase != PhaseSplash || ev.Delta <= 0 {
			return s, nil
		}
		s.Elapsed += ev.Delta
		if s.Elapsed <= s.threshold() {
			return s, nil
		}
		s.Phase = PhaseRunning
		s.TokenLive = true
		return s, []Effect{SpawnRun{}}

	case FetchCompleted:
		if s.Phase != PhaseRunning {
			return s, nil
		}
		s.Phase = PhaseFinished
		s.TokenLive = false
		return s, []Effect{ReleaseRun{}}

	case TogglePause:
		if s.Phase != PhaseRunning {
			return s, nil
		}
		s.Paused = !s.Paused
		return s, []Effect{PublishPause{Paused: s.Paused}}

	case Close:
		var effects []Effect
		if s.TokenLive {
			effects = append(effects, CancelRun{})
			s.TokenLive = false
		}
		return s, append(effects, Terminate{})
	}
	return s, nil
}
