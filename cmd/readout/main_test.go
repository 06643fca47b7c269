package main

import (
	"io"
	"testing"
	"time"

	"github.com/five82/readout/internal/app"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		exitAfter time.Duration
		subreddit string
		limit     int
	}{
		{"defaults close after finishing", nil, app.DefaultExitAfter, "", 0},
		{"zero keeps finished screen", []string{"--exit-after", "0"}, 0, "", 0},
		{"overrides", []string{"--subreddit", "golang", "--limit", "3", "--exit-after", "1s"}, time.Second, "golang", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags returned error: %v", err)
			}
			if opts.ExitAfter != tt.exitAfter {
				t.Fatalf("ExitAfter = %s, want %s", opts.ExitAfter, tt.exitAfter)
			}
			if opts.Subreddit != tt.subreddit || opts.Limit != tt.limit {
				t.Fatalf("opts = %+v", opts)
			}
		})
	}

	if _, err := parseFlags([]string{"--bogus"}, io.Discard); err == nil {
		t.Fatal("unknown flag should fail")
	}
}
