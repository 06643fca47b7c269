package narration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/readout/internal/logger"
	"github.com/five82/readout/internal/reddit"
	"github.com/five82/readout/internal/speech"
)

// Error kinds that end a run. Cancellation is not an error; it is reported
// through Result.Cancelled.
var (
	ErrFetch  = errors.New("fetch failed")
	ErrSpeech = errors.New("speech failed")
)

const (
	defaultGap           = time.Second
	defaultFetchTimeout  = 15 * time.Second
	defaultSpeechTimeout = 90 * time.Second
)

// Publisher receives the fetched list and narration progress.
// Implemented by *state.Store.
type Publisher interface {
	Publish(threads []reddit.Summary)
	SetCurrent(index int)
}

// PauseReader blocks while narration is paused. Implemented by
// *gate.PauseReader.
type PauseReader interface {
	WaitResumed(ctx context.Context) error
}

// Result describes how a run ended.
type Result struct {
	Total     int // threads fetched
	Spoken    int // narration units that finished, intro and outro included
	Cancelled bool
	Err       error
}

// Completed reports whether the run spoke everything, outro included.
func (r Result) Completed() bool {
	return !r.Cancelled && r.Err == nil
}

// Option configures a Runner.
type Option func(*Runner)

// WithGap sets the silence between narration units. Zero disables it.
func WithGap(d time.Duration) Option {
	return func(r *Runner) {
		r.gap = d
	}
}

// WithFetchTimeout bounds the listing request.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithSpeechTimeout bounds each utterance.
func WithSpeechTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.speechTimeout = d
		}
	}
}

// WithProgress registers a callback invoked right before each thread line
// is spoken. Headless mode prints from it.
func WithProgress(fn func(position, total int, post reddit.Post)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner performs narration runs. One Runner may serve several runs, one
// at a time.
type Runner struct {
	fetcher       reddit.Fetcher
	speaker       speech.Speaker
	log           *logger.Logger
	gap           time.Duration
	fetchTimeout  time.Duration
	speechTimeout time.Duration
	progress      func(position, total int, post reddit.Post)
}

// NewRunner builds a Runner.
func NewRunner(fetcher reddit.Fetcher, speaker speech.Speaker, log *logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		fetcher:       fetcher,
		speaker:       speaker,
		log:           log,
		gap:           defaultGap,
		fetchTimeout:  defaultFetchTimeout,
		speechTimeout: defaultSpeechTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one run on the calling goroutine and blocks until it ends.
// ctx bounds speech calls and is normally the process context; token is
// the run's cooperative stop signal.
func (r *Runner) Run(ctx context.Context, token *Token, pause PauseReader, pub Publisher) Result {
	fetchCtx, cancel := context.WithTimeout(token.Context(), r.fetchTimeout)
	posts, err := r.fetcher.FetchTop(fetchCtx)
	cancel()
	if err != nil {
		if token.Cancelled() {
			r.log.Info("narration: cancelled during fetch")
			return Result{Cancelled: true}
		}
		r.log.Error("narration: fetch failed: %v", err)
		return Result{Err: fmt.Errorf("%w: %w", ErrFetch, err)}
	}

	total := len(posts)
	pub.Publish(reddit.Summaries(posts))
	r.log.Info("narration: found %d threads", total)

	res := Result{Total: total}
	defer pub.SetCurrent(-1)

	if !r.unit(ctx, token, pause, IntroLine(total), &res) {
		return res
	}
	for i, post := range posts {
		if !r.checkpoint(token, pause) {
			res.Cancelled = true
			return res
		}
		pub.SetCurrent(i)
		r.log.Info("[%d/%d] Speaking: %s", i+1, total, post.Title)
		if r.progress != nil {
			r.progress(i+1, total, post)
		}
		if !r.speakChecked(ctx, token, ThreadLine(i+1, post), &res) {
			return res
		}
	}
	pub.SetCurrent(-1)
	if !r.unit(ctx, token, pause, OutroLine(total), &res) {
		return res
	}
	r.log.Info("narration: finished reading %d threads", total)
	return res
}

// unit runs the checkpoint and then speaks text. It returns false when the
// run must stop; res is updated either way.
func (r *Runner) unit(ctx context.Context, token *Token, pause PauseReader, text string, res *Result) bool {
	if !r.checkpoint(token, pause) {
		res.Cancelled = true
		return false
	}
	return r.speakChecked(ctx, token, text, res)
}

// checkpoint waits while paused and reports whether the run may continue.
func (r *Runner) checkpoint(token *Token, pause PauseReader) bool {
	if err := pause.WaitResumed(token.Context()); err != nil {
		r.log.Info("narration: cancelled while paused")
		return false
	}
	if token.Cancelled() {
		r.log.Info("narration: cancelled")
		return false
	}
	return true
}

// speakChecked speaks text, then waits out the inter-unit gap.
func (r *Runner) speakChecked(ctx context.Context, token *Token, text string, res *Result) bool {
	// Speech is bounded by ctx, not the token: an utterance in progress is
	// never cut short by cancellation.
	speakCtx, cancel := context.WithTimeout(ctx, r.speechTimeout)
	err := r.speaker.Speak(speakCtx, text)
	cancel()
	if err != nil {
		// A cancelled run may see its utterance cut off by teardown
		// (Speaker.Stop after the grace period); that is a cancellation.
		if ctx.Err() != nil || token.Cancelled() {
			r.log.Info("narration: cancelled during speech: %v", err)
			res.Cancelled = true
			return false
		}
		r.log.Error("narration: speech failed: %v", err)
		res.Err = fmt.Errorf("%w: %w", ErrSpeech, err)
		return false
	}
	res.Spoken++
	r.pauseBetween(ctx, token)
	return true
}

// pauseBetween waits the configured gap. Cancellation ends the wait early;
// the next checkpoint then stops the run.
func (r *Runner) pauseBetween(ctx context.Context, token *Token) {
	if r.gap <= 0 {
		return
	}
	timer := time.NewTimer(r.gap)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-token.Done():
	case <-ctx.Done():
	}
}

// Handle tracks a run started with Start.
type Handle struct {
	token  *Token
	done   chan struct{}
	once   sync.Once
	result Result
}

// Start launches runner.Run on its own goroutine and returns immediately.
func Start(ctx context.Context, runner *Runner, token *Token, pause PauseReader, pub Publisher) *Handle {
	h := &Handle{token: token, done: make(chan struct{})}
	go func() {
		res := runner.Run(ctx, token, pause, pub)
		h.finish(res)
	}()
	return h
}

func (h *Handle) finish(res Result) {
	h.once.Do(func() {
		h.result = res
		close(h.done)
	})
}

// Token returns the run's token.
func (h *Handle) Token() *Token {
	return h.token
}

// Done is closed once the run has ended, however it ended.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the outcome. Valid after Done is closed.
func (h *Handle) Result() Result {
	<-h.done
	return h.result
}

// Wait blocks until the run ends or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
