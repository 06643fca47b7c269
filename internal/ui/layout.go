package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the logo is replaced
	// by a one-line title.
	LayoutCompactWidth = 60

	// LayoutTitleMargin is the room reserved around a thread title.
	LayoutTitleMargin = 8
)

// Log pane limits.
const (
	// LogPaneLines is how many log lines the log pane shows.
	LogPaneLines = 8

	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 500 * time.Millisecond
)

// Timing constants.
const (
	// DefaultTickInterval drives the splash clock and snapshot refresh.
	DefaultTickInterval = 100 * time.Millisecond
)
