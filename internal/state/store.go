// Package state holds the thread list the narration run publishes for the UI.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/readout/internal/reddit"
)

// NoCurrent marks that no thread is being narrated.
const NoCurrent = -1

// Snapshot is the latest data available to the UI.
type Snapshot struct {
	Threads     []reddit.Summary
	Current     int // index of the thread being narrated, or NoCurrent
	LastUpdated time.Time
	LastError   error
}

// HasThreads reports whether a list has been published.
func (s Snapshot) HasThreads() bool {
	return len(s.Threads) > 0
}

// Store is a single-slot publisher. Every write replaces what was there;
// nothing is queued, so a reader that never looks costs the writer nothing.
// The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	position int // Current+1, so the zero Store reports NoCurrent
}

// Publish replaces the thread list and resets progress.
func (s *Store) Publish(threads []reddit.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Threads = cloneThreads(threads)
	s.position = 0
	s.snapshot.LastUpdated = time.Now()
}

// SetCurrent records which thread is being narrated. Out of range values
// clear the marker.
func (s *Store) SetCurrent(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.snapshot.Threads) {
		index = NoCurrent
	}
	s.position = index + 1
	s.snapshot.LastUpdated = time.Now()
}

// Fail records the error that ended a run. The published list is kept.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.position = 0
	s.snapshot.LastUpdated = time.Now()
}

// Threads returns a copy of the latest published list, or an empty slice.
func (s *Store) Threads() []reddit.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshot.Threads) == 0 {
		return []reddit.Summary{}
	}
	return cloneThreads(s.snapshot.Threads)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Current = s.position - 1
	snap.Threads = cloneThreads(s.snapshot.Threads)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneThreads(items []reddit.Summary) []reddit.Summary {
	if len(items) == 0 {
		return nil
	}
	dup := make([]reddit.Summary, len(items))
	copy(dup, items)
	return dup
}
