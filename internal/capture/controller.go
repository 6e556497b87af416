package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Callbacks fire outside the controller lock. OnStopped runs whenever a
// recording ends through Stop or because the source ended; OnClip follows
// only when at least one fragment was captured.
type Callbacks struct {
	OnStopped func()
	OnClip    func(clip []byte)
}

// Controller owns at most one recording at a time.
type Controller struct {
	cb     Callbacks
	logger *slog.Logger

	mu       sync.Mutex
	active   *recording
	starting bool
	closed   bool
}

type recording struct {
	stream    Stream
	chunks    [][]byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewController(cb Callbacks, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cb:     cb,
		logger: logger.With("component", "capture"),
	}
}

// Start opens the device and begins accumulating fragments. It is a no-op
// while a recording is already active.
func (c *Controller) Start(ctx context.Context, device Device) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.active != nil || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.mu.Unlock()

	stream, err := device.Open(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if c.closed {
		c.mu.Unlock()
		_ = stream.Close()
		return ErrClosed
	}
	rec := &recording{stream: stream, done: make(chan struct{})}
	c.active = rec
	c.mu.Unlock()

	c.logger.Debug("recording started")
	go c.accumulate(rec)
	return nil
}

func (c *Controller) accumulate(rec *recording) {
	for frag := range rec.stream.Fragments() {
		if len(frag) == 0 {
			continue
		}
		rec.chunks = append(rec.chunks, frag)
	}
	close(rec.done)

	// The source ended on its own; finish the recording unless Stop or
	// Close already claimed it.
	c.mu.Lock()
	owned := c.active == rec
	if owned {
		c.active = nil
	}
	c.mu.Unlock()

	if owned {
		rec.release(c.logger)
		c.emit(rec)
	}
}

// Stop ends the active recording, waits for buffered fragments and emits the
// clip.
func (c *Controller) Stop() error {
	c.mu.Lock()
	rec := c.active
	c.active = nil
	c.mu.Unlock()

	if rec == nil {
		return ErrNotRecording
	}

	rec.release(c.logger)
	<-rec.done
	c.emit(rec)
	return nil
}

func (c *Controller) emit(rec *recording) {
	if c.cb.OnStopped != nil {
		c.cb.OnStopped()
	}
	if len(rec.chunks) == 0 {
		c.logger.Debug("recording stopped without audio")
		return
	}
	clip := bytes.Join(rec.chunks, nil)
	c.logger.Debug("recording stopped", "fragments", len(rec.chunks), "bytes", len(clip))
	if c.cb.OnClip != nil {
		c.cb.OnClip(clip)
	}
}

func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Close releases the device without firing callbacks. Further Start calls
// fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	rec := c.active
	c.active = nil
	c.mu.Unlock()

	if rec != nil {
		rec.release(c.logger)
		<-rec.done
	}
}

func (r *recording) release(logger *slog.Logger) {
	r.closeOnce.Do(func() {
		if err := r.stream.Close(); err != nil {
			logger.Debug("failed to release capture stream", "error", err)
		}
	})
}
