package gate

import "context"

// Pause is the pause/resume signal for a narration run. The UI writes it;
// the runner waits on it between narration units.
type Pause struct {
	cell *Value[bool]
}

// NewPause returns a gate in the not-paused state.
func NewPause() *Pause {
	return &Pause{cell: NewValue(false)}
}

// Set publishes a new pause state.
func (p *Pause) Set(paused bool) {
	p.cell.Set(paused)
}

// Paused reports the current state.
func (p *Pause) Paused() bool {
	return p.cell.Load()
}

// Reader returns a read-only view for the narration side.
func (p *Pause) Reader() *PauseReader {
	return &PauseReader{watch: p.cell.Watch()}
}

// PauseReader is the runner's end of a Pause gate.
type PauseReader struct {
	watch *Watcher[bool]
}

// Paused reports the current state.
func (r *PauseReader) Paused() bool {
	return r.watch.Current()
}

// WaitResumed returns immediately when not paused. Otherwise it sleeps until
// the gate changes and re-checks, so a pause followed by a resume with no
// narration in between is indistinguishable from never pausing.
func (r *PauseReader) WaitResumed(ctx context.Context) error {
	paused := r.watch.Current()
	for paused {
		next, err := r.watch.Next(ctx)
		if err != nil {
			return err
		}
		paused = next
	}
	return nil
}
