package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/five82/readout/internal/logger"
)

// Command speaks by running a local TTS program such as espeak-ng or say,
// passing the text as the final argument and waiting for it to exit.
type Command struct {
	bin  string
	args []string
	log  *logger.Logger

	mu          sync.Mutex
	active      *exec.Cmd
	interrupted bool
}

// NewCommand builds a Command backend.
func NewCommand(bin string, args []string, log *logger.Logger) *Command {
	return &Command{bin: bin, args: append([]string(nil), args...), log: log}
}

// Speak runs the program to completion.
func (c *Command) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), c.args...), text)
	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.log.Debug("command tts: %s %q", c.bin, truncate(text, 60))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.bin, err)
	}
	c.mu.Lock()
	c.active = cmd
	c.interrupted = false
	c.mu.Unlock()

	err := cmd.Wait()

	c.mu.Lock()
	c.active = nil
	interrupted := c.interrupted
	c.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if interrupted {
		return fmt.Errorf("%s: %w", c.bin, ErrInterrupted)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.bin, err, msg)
		}
		return fmt.Errorf("%s: %w", c.bin, err)
	}
	return nil
}

// IsSpeaking reports whether the program is running.
func (c *Command) IsSpeaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Stop kills the running program, if any.
func (c *Command) Stop() {
	if !c.IsSpeaking() {
		return
	}
	c.mu.Lock()
	active := c.active
	if active != nil {
		c.interrupted = true
	}
	c.mu.Unlock()

	if active != nil && active.Process != nil {
		_ = active.Process.Kill()
		c.log.Debug("command tts: interrupted")
	}
}
