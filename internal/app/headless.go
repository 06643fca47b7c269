package app

import (
	"context"
	"fmt"
	"io"

	"github.com/five82/readout/internal/gate"
	"github.com/five82/readout/internal/logger"
	"github.com/five82/readout/internal/narration"
	"github.com/five82/readout/internal/reddit"
	"github.com/five82/readout/internal/state"
)

// runHeadless drives a single run without the TUI. Cancelling ctx (SIGINT)
// cancels the run's token.
func runHeadless(ctx context.Context, runner *narration.Runner, pause *gate.Pause, store *state.Store, out io.Writer, log *logger.Logger) error {
	token := narration.NewToken(ctx)
	defer token.Cancel()

	res := runner.Run(ctx, token, pause.Reader(), store)
	switch {
	case res.Err != nil:
		store.Fail(res.Err)
		fmt.Fprintf(out, "Narration stopped: %v\n", res.Err)
		return fmt.Errorf("narrate: %w", res.Err)
	case res.Cancelled:
		fmt.Fprintln(out, "Cancelled.")
		log.Info("headless run cancelled after %d lines", res.Spoken)
	default:
		fmt.Fprintf(out, "Finished reading %d threads.\n", res.Total)
	}
	return nil
}

func progressPrinter(out io.Writer) func(position, total int, post reddit.Post) {
	return func(position, total int, post reddit.Post) {
		fmt.Fprintf(out, "[%d/%d] Speaking: %s\n", position, total, post.Title)
	}
}
