package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/five82/readout/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "readout: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, output io.Writer) (app.Options, error) {
	fs := flag.NewFlagSet("readout", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "override config path (optional, defaults to ~/.config/readout/config.toml)")
	headless := fs.Bool("headless", false, "narrate without the TUI and print progress to stdout")
	noSpeech := fs.Bool("no-speech", false, "log lines instead of speaking them")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	quiet := fs.Bool("quiet", false, "disable logging")
	logFile := fs.String("log-file", "", "override log file path")
	splash := fs.Duration("splash", 0, "splash duration before narration starts")
	subreddit := fs.String("subreddit", "", "subreddit to read (default popular)")
	limit := fs.Int("limit", 0, "number of threads to read (default 10)")
	exitAfter := fs.Duration("exit-after", app.DefaultExitAfter, "close the TUI this long after narration finishes (0 waits for esc)")
	if err := fs.Parse(args); err != nil {
		return app.Options{}, err
	}

	return app.Options{
		ConfigPath: *configPath,
		Headless:   *headless,
		NoSpeech:   *noSpeech,
		Verbose:    *verbose,
		Quiet:      *quiet,
		LogFile:    *logFile,
		Splash:     *splash,
		Subreddit:  *subreddit,
		Limit:      *limit,
		ExitAfter:  *exitAfter,
	}, nil
}
