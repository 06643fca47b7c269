package speech

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/five82/readout/internal/logger"
)

func wavFixture(pcm []byte, extraChunk bool) []byte {
	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = append(buf, make([]byte, 16)...)
	if extraChunk {
		buf = append(buf, "LIST"...)
		buf = binary.LittleEndian.AppendUint32(buf, 3)
		buf = append(buf, 1, 2, 3, 0) // odd size plus pad byte
	}
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

func TestExtractPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	for _, extra := range []bool{false, true} {
		got, err := extractPCM(wavFixture(pcm, extra))
		if err != nil {
			t.Fatalf("extractPCM(extra=%v) returned error: %v", extra, err)
		}
		if string(got) != string(pcm) {
			t.Fatalf("extractPCM(extra=%v) = %v, want %v", extra, got, pcm)
		}
	}

	if _, err := extractPCM([]byte("short")); err == nil {
		t.Fatal("extractPCM accepted short input")
	}
	bogus := wavFixture(pcm, false)
	copy(bogus[0:4], "JUNK")
	if _, err := extractPCM(bogus); err == nil {
		t.Fatal("extractPCM accepted non-RIFF input")
	}
}

func TestAzureClient_EscapesSSMLAndSendsHeaders(t *testing.T) {
	t.Parallel()

	var gotBody, gotKey, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		_, _ = w.Write([]byte("RIFF-audio"))
	}))
	t.Cleanup(server.Close)

	c := NewAzureClient("secret", "westus", logger.Discard(), WithEndpoint(server.URL), WithVoice("en-GB-SoniaNeural"))
	audio, err := c.Synthesize(context.Background(), `Cats & dogs <3 "quotes"`)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(audio) != "RIFF-audio" {
		t.Fatalf("audio = %q", audio)
	}
	if gotKey != "secret" || gotFormat != DefaultAudioFormat {
		t.Fatalf("headers key=%q format=%q", gotKey, gotFormat)
	}
	if !strings.Contains(gotBody, "Cats &amp; dogs &lt;3") {
		t.Fatalf("SSML not escaped: %s", gotBody)
	}
	if !strings.Contains(gotBody, "name='en-GB-SoniaNeural'") {
		t.Fatalf("SSML missing voice: %s", gotBody)
	}
}

func TestAzureClient_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c := NewAzureClient("nope", "westus", logger.Discard(), WithEndpoint(server.URL))
	_, err := c.Synthesize(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("Synthesize error = %v, want status 401", err)
	}
}

func TestAzureClient_Voice(t *testing.T) {
	if got := NewAzureClient("k", "westus", logger.Discard()).Voice(); got != DefaultVoice {
		t.Fatalf("Voice() = %q, want %q", got, DefaultVoice)
	}
	c := NewAzureClient("k", "westus", logger.Discard(), WithVoice("en-GB-SoniaNeural"))
	if got := c.Voice(); got != "en-GB-SoniaNeural" {
		t.Fatalf("Voice() = %q, want en-GB-SoniaNeural", got)
	}
}

func TestSilent_DwellStopAndContext(t *testing.T) {
	s := NewSilent(0, logger.Discard())
	if err := s.Speak(context.Background(), "instant"); err != nil {
		t.Fatalf("Speak returned error: %v", err)
	}

	s = NewSilent(time.Hour, logger.Discard())
	done := make(chan error, 1)
	go func() { done <- s.Speak(context.Background(), "long") }()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("Speak after Stop = %v, want ErrInterrupted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not end the dwell")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Speak(ctx, "cancelled"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Speak error = %v, want context.Canceled", err)
	}
}

func TestCommand_RunsProgramWithText(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	ok := NewCommand(sh, []string{"-c", `test "$1" = "hello world"`, "sh"}, logger.Discard())
	if err := ok.Speak(context.Background(), "hello world"); err != nil {
		t.Fatalf("Speak returned error: %v", err)
	}
	if ok.IsSpeaking() {
		t.Fatal("IsSpeaking() = true after Speak returned")
	}

	failing := NewCommand(sh, []string{"-c", "echo no voice >&2; exit 3", "sh"}, logger.Discard())
	err = failing.Speak(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "no voice") {
		t.Fatalf("Speak error = %v, want stderr text", err)
	}
}

func TestCommand_StopInterruptsSpeech(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	c := NewCommand(sh, []string{"-c", "sleep 5", "sh"}, logger.Discard())
	c.Stop() // idle: no-op

	done := make(chan error, 1)
	go func() { done <- c.Speak(context.Background(), "long line") }()

	deadline := time.Now().Add(time.Second)
	for !c.IsSpeaking() {
		if time.Now().After(deadline) {
			t.Fatal("command never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("Speak after Stop = %v, want ErrInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end the command")
	}
	if c.IsSpeaking() {
		t.Fatal("IsSpeaking() = true after interruption")
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	t.Setenv(EnvAzureSpeechKey, "")
	t.Setenv(EnvAzureSpeechRegion, "")

	sp, err := New(Options{Backend: "none"}, logger.Discard())
	if err != nil {
		t.Fatalf("New(none) returned error: %v", err)
	}
	if _, ok := sp.(*Silent); !ok {
		t.Fatalf("New(none) = %T, want *Silent", sp)
	}

	if _, err := New(Options{Backend: "bogus"}, logger.Discard()); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("New(bogus) error = %v, want ErrNoBackend", err)
	}
	if _, err := New(Options{Backend: "azure"}, logger.Discard()); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("New(azure) without keys error = %v, want ErrNoBackend", err)
	}
	if _, err := New(Options{Backend: "command", Command: "definitely-not-a-tts-binary"}, logger.Discard()); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("New(command) error = %v, want ErrNoBackend", err)
	}
}
