// Package gate provides latest-value-wins cells shared between the UI loop
// and background narration.
//
// A Value holds exactly one current value. Writers never block and never
// queue: a second Set before anyone reads simply replaces the first.
// Readers that need to sleep until something changes take a Watcher, which
// remembers the last version it saw.
package gate

import (
	"context"
	"sync"
)

// Value is a single-slot broadcast cell. The zero value holds the zero T
// and is ready to use.
type Value[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	changed chan struct{} // closed and replaced on every Set
}

// NewValue returns a cell holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Set replaces the current value and wakes every waiting watcher.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	v.version++
	if v.changed != nil {
		close(v.changed)
		v.changed = nil
	}
	v.mu.Unlock()
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Watch returns a watcher positioned at the current version.
func (v *Value[T]) Watch() *Watcher[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return &Watcher[T]{cell: v, seen: v.version}
}

// snapshot returns the value, its version and a channel closed on the next
// Set.
func (v *Value[T]) snapshot() (T, uint64, <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.changed == nil {
		v.changed = make(chan struct{})
	}
	return v.value, v.version, v.changed
}

// Watcher observes one Value. A Watcher is not safe for concurrent use; give
// each reader its own.
type Watcher[T any] struct {
	cell *Value[T]
	seen uint64
}

// Current returns the latest value and marks it as seen.
func (w *Watcher[T]) Current() T {
	value, version, _ := w.cell.snapshot()
	w.seen = version
	return value
}

// Next blocks until the cell holds a version newer than the last one this
// watcher saw, then returns that value. Intermediate values written while
// the watcher was not looking are skipped.
func (w *Watcher[T]) Next(ctx context.Context) (T, error) {
	for {
		value, version, changed := w.cell.snapshot()
		if version != w.seen {
			w.seen = version
			return value, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-changed:
		}
	}
}
