// Package app is the composition root for readout.
//
// Run loads configuration, opens the log file, picks a speech backend and
// builds the Reddit client and narration runner. It then hands control to
// either the TUI or the headless driver.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        TOML config + flag overrides
//	       ├─────> tea.LogToFile()      log file (terminal is busy)
//	       ├─────> speech.New()         azure, command or silent
//	       ├─────> reddit.NewClient()   listing fetcher
//	       ├─────> narration.NewRunner()
//	       │
//	       ├─────> ui.Run()             splash, narration, finished
//	       │        └─> awaitRun()      grace period, then Speaker.Stop
//	       │
//	       └─────> runHeadless()        stdout not a terminal or --headless
//
// Fatal errors (config parse, speech backend, client setup) are returned
// from Run. Fetch and speech failures during a run end that run; the TUI
// shows them on the finished screen and headless mode returns them.
package app
