package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/eleven-am/audiogen/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingStore wraps MemoryStore and counts releases per handle.
type countingStore struct {
	*MemoryStore
	mu       sync.Mutex
	releases map[string]int
	failNext bool
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore(), releases: make(map[string]int)}
}

func (s *countingStore) Create(ctx context.Context, result *shared.AudioResult) (*Handle, error) {
	s.mu.Lock()
	fail := s.failNext
	s.failNext = false
	s.mu.Unlock()
	if fail {
		return nil, errors.New("store down")
	}
	return s.MemoryStore.Create(ctx, result)
}

func (s *countingStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	s.releases[id]++
	s.mu.Unlock()
	return s.MemoryStore.Release(ctx, id)
}

func (s *countingStore) count(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases[id]
}

func audio(data string) *shared.AudioResult {
	return &shared.AudioResult{Data: []byte(data), MIMEType: "audio/mpeg"}
}

func TestControllerLoadReleasesPreviousOnce(t *testing.T) {
	store := newCountingStore()
	c := NewController(store, testLogger())
	ctx := context.Background()

	first, err := c.Load(ctx, audio("one"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := c.Load(ctx, audio("two"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if store.count(first.ID) != 1 {
		t.Errorf("first handle released %d times, want 1", store.count(first.ID))
	}
	if store.count(second.ID) != 0 {
		t.Errorf("second handle released %d times, want 0", store.count(second.ID))
	}

	c.Close(ctx)
	c.Close(ctx)
	if store.count(second.ID) != 1 {
		t.Errorf("second handle released %d times after Close, want 1", store.count(second.ID))
	}
	if store.count(first.ID) != 1 {
		t.Errorf("first handle released %d times after Close, want 1", store.count(first.ID))
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d results, want 0", store.Len())
	}
}

func TestControllerLoadFailureKeepsCurrent(t *testing.T) {
	store := newCountingStore()
	c := NewController(store, testLogger())
	ctx := context.Background()

	h, _ := c.Load(ctx, audio("one"))
	store.failNext = true
	if _, err := c.Load(ctx, audio("two")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if snap := c.Snapshot(); snap.URL != h.URL {
		t.Errorf("URL = %s, want %s", snap.URL, h.URL)
	}
	if store.count(h.ID) != 0 {
		t.Errorf("current handle released %d times, want 0", store.count(h.ID))
	}
}

func TestControllerLoadRejectsEmpty(t *testing.T) {
	c := NewController(NewMemoryStore(), testLogger())
	if _, err := c.Load(context.Background(), &shared.AudioResult{}); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Load() error = %v, want ErrValidation", err)
	}
	if _, err := c.Load(context.Background(), nil); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Load(nil) error = %v, want ErrValidation", err)
	}
}

func TestControllerTogglePlay(t *testing.T) {
	c := NewController(NewMemoryStore(), testLogger())
	if _, err := c.TogglePlay(); !errors.Is(err, ErrNothingLoaded) {
		t.Errorf("TogglePlay() error = %v, want ErrNothingLoaded", err)
	}

	_, _ = c.Load(context.Background(), audio("x"))
	playing, err := c.TogglePlay()
	if err != nil || !playing {
		t.Fatalf("TogglePlay() = %v, %v; want true, nil", playing, err)
	}
	playing, _ = c.TogglePlay()
	if playing {
		t.Error("second TogglePlay() = true, want false")
	}
}

func TestControllerSetSpeed(t *testing.T) {
	c := NewController(NewMemoryStore(), testLogger())
	for _, speed := range AllowedSpeeds {
		if err := c.SetSpeed(speed); err != nil {
			t.Errorf("SetSpeed(%v) error = %v", speed, err)
		}
		if got := c.Snapshot().Speed; got != speed {
			t.Errorf("Speed = %v, want %v", got, speed)
		}
	}

	for _, bad := range []float64{0, 0.6, 3, -1, math.NaN()} {
		if err := c.SetSpeed(bad); !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("SetSpeed(%v) error = %v, want ErrInvalidSpeed", bad, err)
		}
	}
	if got := c.Snapshot().Speed; got != 2.0 {
		t.Errorf("Speed after invalid = %v, want 2", got)
	}
}

func TestControllerSpeedSurvivesLoad(t *testing.T) {
	c := NewController(NewMemoryStore(), testLogger())
	_ = c.SetSpeed(1.5)
	_, _ = c.Load(context.Background(), audio("x"))
	c.Clear(context.Background())
	_, _ = c.Load(context.Background(), audio("y"))
	if got := c.Snapshot().Speed; got != 1.5 {
		t.Errorf("Speed = %v, want 1.5", got)
	}
}

func TestControllerProgress(t *testing.T) {
	c := NewController(NewMemoryStore(), testLogger())
	_, _ = c.Load(context.Background(), audio("x"))
	_, _ = c.TogglePlay()

	c.TimeUpdate(30, 120)
	snap := c.Snapshot()
	if snap.Percent != 25 {
		t.Errorf("Percent = %v, want 25", snap.Percent)
	}
	if snap.Elapsed != "0:30" || snap.Total != "2:00" {
		t.Errorf("Elapsed/Total = %s/%s, want 0:30/2:00", snap.Elapsed, snap.Total)
	}

	c.Ended()
	snap = c.Snapshot()
	if snap.Playing {
		t.Error("Playing = true after Ended")
	}
	if snap.Percent != 0 || snap.Elapsed != "0:00" {
		t.Errorf("after Ended Percent = %v Elapsed = %s, want 0 and 0:00", snap.Percent, snap.Elapsed)
	}
	if snap.Total != "2:00" {
		t.Errorf("Total after Ended = %s, want 2:00", snap.Total)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		current, total, want float64
	}{
		{0, 0, 0},
		{5, math.NaN(), 0},
		{5, math.Inf(1), 0},
		{10, 5, 100},
		{-1, 5, 0},
		{1, 4, 25},
	}
	for _, tt := range tests {
		if got := percent(tt.current, tt.total); got != tt.want {
			t.Errorf("percent(%v, %v) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{math.NaN(), "0:00"},
		{math.Inf(1), "0:00"},
		{-3, "0:00"},
		{5.9, "0:05"},
		{65, "1:05"},
		{600, "10:00"},
		{3599.99, "59:59"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestSnapshotEmpty(t *testing.T) {
	snap := NewController(NewMemoryStore(), testLogger()).Snapshot()
	if snap.Loaded || snap.URL != "" || snap.Speed != DefaultSpeed {
		t.Errorf("empty snapshot = %+v", snap)
	}
}
