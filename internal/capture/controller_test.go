package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStream struct {
	frags  chan []byte
	closes atomic.Int32
	once   sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{frags: make(chan []byte, 16)}
}

func (s *fakeStream) Fragments() <-chan []byte { return s.frags }

func (s *fakeStream) Close() error {
	s.closes.Add(1)
	s.once.Do(func() { close(s.frags) })
	return nil
}

// end simulates the source stopping by itself.
func (s *fakeStream) end() {
	s.once.Do(func() { close(s.frags) })
}

type clipSink struct {
	mu    sync.Mutex
	clips [][]byte
	got   chan struct{}
}

func newClipSink() *clipSink {
	return &clipSink{got: make(chan struct{}, 8)}
}

func (s *clipSink) onClip(clip []byte) {
	s.mu.Lock()
	s.clips = append(s.clips, clip)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *clipSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

func deviceFor(stream Stream) Device {
	return DeviceFunc(func(context.Context) (Stream, error) { return stream, nil })
}

func TestControllerStartStopEmitsClip(t *testing.T) {
	sink := newClipSink()
	c := NewController(Callbacks{OnClip: sink.onClip}, testLogger())
	stream := newFakeStream()

	if err := c.Start(context.Background(), deviceFor(stream)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.IsRecording() {
		t.Fatal("IsRecording() = false after Start")
	}

	stream.frags <- []byte("ab")
	stream.frags <- []byte{}
	stream.frags <- []byte("cd")

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if c.IsRecording() {
		t.Error("IsRecording() = true after Stop")
	}
	if sink.count() != 1 {
		t.Fatalf("clips = %d, want 1", sink.count())
	}
	if string(sink.clips[0]) != "abcd" {
		t.Errorf("clip = %q, want abcd", sink.clips[0])
	}
	if stream.closes.Load() != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closes.Load())
	}
}

func TestControllerStopWithoutFragments(t *testing.T) {
	sink := newClipSink()
	var stopped atomic.Int32
	c := NewController(Callbacks{
		OnStopped: func() { stopped.Add(1) },
		OnClip:    sink.onClip,
	}, testLogger())
	stream := newFakeStream()

	if err := c.Start(context.Background(), deviceFor(stream)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream.frags <- []byte{}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if sink.count() != 0 {
		t.Errorf("clips = %d, want 0", sink.count())
	}
	if stopped.Load() != 1 {
		t.Errorf("OnStopped fired %d times, want 1", stopped.Load())
	}
	if stream.closes.Load() != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closes.Load())
	}
}

func TestControllerStopWhenIdle(t *testing.T) {
	c := NewController(Callbacks{}, testLogger())
	if err := c.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() error = %v, want ErrNotRecording", err)
	}
}

func TestControllerStartWhileRecordingIsNoop(t *testing.T) {
	c := NewController(Callbacks{}, testLogger())
	first := newFakeStream()
	var opens atomic.Int32
	second := DeviceFunc(func(context.Context) (Stream, error) {
		opens.Add(1)
		return newFakeStream(), nil
	})

	if err := c.Start(context.Background(), deviceFor(first)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(context.Background(), second); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if opens.Load() != 0 {
		t.Errorf("second device opened %d times, want 0", opens.Load())
	}
	_ = c.Stop()
}

func TestControllerStartErrors(t *testing.T) {
	tests := []struct {
		name    string
		openErr error
		want    error
	}{
		{"permission denied", ErrPermissionDenied, ErrPermissionDenied},
		{"unavailable", ErrDeviceUnavailable, ErrDeviceUnavailable},
		{"other error wrapped", errors.New("no such device"), ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Callbacks{}, testLogger())
			dev := DeviceFunc(func(context.Context) (Stream, error) { return nil, tt.openErr })

			if err := c.Start(context.Background(), dev); !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
			if c.IsRecording() {
				t.Error("IsRecording() = true after failed Start")
			}
		})
	}
}

func TestControllerSourceEndEmitsClip(t *testing.T) {
	sink := newClipSink()
	c := NewController(Callbacks{OnClip: sink.onClip}, testLogger())
	stream := newFakeStream()

	if err := c.Start(context.Background(), deviceFor(stream)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream.frags <- []byte("xyz")
	stream.end()

	select {
	case <-sink.got:
	case <-time.After(time.Second):
		t.Fatal("clip not emitted after source ended")
	}
	if string(sink.clips[0]) != "xyz" {
		t.Errorf("clip = %q, want xyz", sink.clips[0])
	}
	if err := c.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() error = %v, want ErrNotRecording", err)
	}
	if stream.closes.Load() != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closes.Load())
	}
}

func TestControllerCloseReleasesWithoutClip(t *testing.T) {
	sink := newClipSink()
	c := NewController(Callbacks{OnClip: sink.onClip}, testLogger())
	stream := newFakeStream()

	if err := c.Start(context.Background(), deviceFor(stream)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stream.frags <- []byte("data")

	c.Close()
	c.Close()

	if stream.closes.Load() != 1 {
		t.Errorf("stream closed %d times, want 1", stream.closes.Load())
	}
	if sink.count() != 0 {
		t.Errorf("clips = %d, want 0", sink.count())
	}
	if err := c.Start(context.Background(), deviceFor(newFakeStream())); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close error = %v, want ErrClosed", err)
	}
}
