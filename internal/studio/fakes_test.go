package studio

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/audiogen/internal/capture"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTTS struct {
	mu         sync.Mutex
	voices     []shared.VoiceOption
	listErr    error
	listGate   chan struct{}
	synthGate  chan struct{}
	synthErr   error
	synthCalls int
	lastVoice  string
	healthy    bool
	healthHits int
}

func (f *fakeTTS) ListVoices(ctx context.Context) ([]shared.VoiceOption, error) {
	if f.listGate != nil {
		select {
		case <-f.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]shared.VoiceOption(nil), f.voices...), nil
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, voice *shared.VoiceOption, lang shared.Language) (*shared.AudioResult, error) {
	f.mu.Lock()
	f.synthCalls++
	f.lastVoice = voice.ID
	gate := f.synthGate
	err := f.synthErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &shared.AudioResult{Data: []byte("audio:" + text), MIMEType: "audio/mpeg"}, nil
}

func (f *fakeTTS) CheckHealth(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthHits++
	return f.healthy
}

func (f *fakeTTS) healthChecks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthHits
}

func (f *fakeTTS) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synthCalls
}

type fakeSTT struct {
	mu      sync.Mutex
	text    string
	err     error
	clips   [][]byte
	langs   []shared.Language
	healthy bool
}

func (f *fakeSTT) Transcribe(_ context.Context, clip []byte, lang shared.Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clips = append(f.clips, clip)
	f.langs = append(f.langs, lang)
	return f.text, f.err
}

func (f *fakeSTT) CheckHealth(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

func (f *fakeSTT) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clips)
}

type fakeStream struct {
	frags chan []byte
	once  sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{frags: make(chan []byte, 16)}
}

func (s *fakeStream) Fragments() <-chan []byte { return s.frags }

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.frags) })
	return nil
}

func streamDevice(s *fakeStream) capture.Device {
	return capture.DeviceFunc(func(context.Context) (capture.Stream, error) { return s, nil })
}

var testCatalog = []shared.VoiceOption{
	{ID: "en-US-JennyNeural", Name: "Jenny", Gender: shared.GenderFemale, Style: "Calm"},
	{ID: "en-US-GuyNeural", Name: "Guy", Gender: shared.GenderMale, Style: "Neutral"},
	{ID: "en-US-AriaNeural", Name: "Aria", Gender: shared.GenderFemale, Style: "Calm"},
	{ID: "zh-CN-YunxiNeural", Name: "Yunxi", Gender: shared.GenderMale, Style: "Gentle"},
}

func newTestOrchestrator(t *testing.T, tts *fakeTTS, stt *fakeSTT, store playback.HandleStore) *Orchestrator {
	t.Helper()
	if store == nil {
		store = playback.NewMemoryStore()
	}
	o := New(Config{
		Synthesizer:    tts,
		Transcriber:    stt,
		Handles:        store,
		HealthInterval: time.Hour,
		Logger:         testLogger(),
	})
	t.Cleanup(o.Close)
	return o
}

// startLoaded starts the orchestrator and waits for the catalog.
func startLoaded(t *testing.T, o *Orchestrator) {
	t.Helper()
	o.Start()
	waitFor(t, "voices loaded", func() bool {
		st := o.State()
		return st.VoicesLoaded || st.Error != ""
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
