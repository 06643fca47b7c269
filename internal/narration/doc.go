// Package narration runs the fetch-then-speak sequence off the UI loop.
//
// A run fetches the top threads, publishes them for display and speaks an
// intro, one line per thread and an outro. Before every narration unit the
// run waits out a pause and checks its Token; cancellation is cooperative
// and only observed between units, so an utterance that has started always
// finishes.
//
//	Start(ctx, runner, token, pause, store)
//	  └─ goroutine: Runner.Run
//	       ├─ Fetcher.FetchTop        (bounded by the fetch timeout)
//	       ├─ Publisher.Publish
//	       └─ for each unit:
//	            ├─ PauseReader.WaitResumed
//	            ├─ Token.Cancelled?   → stop, no further units
//	            └─ Speaker.Speak      (bounded by the speech timeout)
//
// Fetch and speech failures end the run without retry. Every run, however
// it ends, closes its Handle's Done channel exactly once.
package narration
