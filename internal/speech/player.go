package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/five82/readout/internal/logger"
)

// Audio parameters matching DefaultAudioFormat.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// playbackPoll is how often Play checks whether oto has drained the buffer.
const playbackPoll = 20 * time.Millisecond

// Player plays PCM audio through the system output device.
type Player struct {
	ctx *oto.Context
	log *logger.Logger

	mu          sync.Mutex
	active      *oto.Player // nil when idle
	interrupted bool
}

// NewPlayer opens the audio device. oto allows one context per process, so
// build a single Player and share it.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: otoCtx, log: log}, nil
}

// Play plays WAV data and blocks until it finishes, Stop is called or ctx
// ends.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.active = player
	p.interrupted = false
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.active = nil
		p.mu.Unlock()
	}()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	ticker := time.NewTicker(playbackPoll)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			_ = player.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	p.mu.Lock()
	interrupted := p.interrupted
	p.mu.Unlock()
	if err := player.Close(); err != nil {
		return err
	}
	if interrupted {
		return ErrInterrupted
	}
	return nil
}

// IsSpeaking reports whether audio is playing.
func (p *Player) IsSpeaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil && p.active.IsPlaying()
}

// Stop pauses the active player, which lets Play return ErrInterrupted.
func (p *Player) Stop() {
	if !p.IsSpeaking() {
		return
	}
	p.mu.Lock()
	active := p.active
	if active != nil {
		p.interrupted = true
	}
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// extractPCM strips the RIFF header and returns the data chunk.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		if chunkID == "data" {
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) || end < start {
				end = len(wav)
			}
			return wav[start:end], nil
		}
		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}
	return nil, errors.New("data chunk not found in WAV")
}
