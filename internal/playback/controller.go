package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/eleven-am/audiogen/internal/shared"
)

const DefaultSpeed = 1.0

// AllowedSpeeds are the playback rates the player offers.
var AllowedSpeeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

var (
	ErrNothingLoaded = errors.New("no audio loaded")
	ErrInvalidSpeed  = errors.New("unsupported playback speed")
)

type Snapshot struct {
	Loaded   bool    `json:"loaded"`
	URL      string  `json:"url,omitempty"`
	MIMEType string  `json:"mime_type,omitempty"`
	Size     int     `json:"size"`
	Playing  bool    `json:"playing"`
	Speed    float64 `json:"speed"`
	Percent  float64 `json:"percent"`
	Elapsed  string  `json:"elapsed"`
	Total    string  `json:"total"`
}

// Controller owns the handle of the current result. Loading a new result or
// clearing the player releases the previous handle exactly once.
type Controller struct {
	store  HandleStore
	logger *slog.Logger

	mu       sync.Mutex
	handle   *Handle
	result   *shared.AudioResult
	playing  bool
	speed    float64
	current  float64
	duration float64
}

func NewController(store HandleStore, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  store,
		logger: logger.With("component", "playback"),
		speed:  DefaultSpeed,
	}
}

func (c *Controller) Load(ctx context.Context, result *shared.AudioResult) (*Handle, error) {
	if result == nil || len(result.Data) == 0 {
		return nil, fmt.Errorf("load audio: %w", shared.ErrValidation)
	}

	h, err := c.store.Create(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("register audio handle: %w", err)
	}

	c.mu.Lock()
	prev := c.handle
	c.handle = h
	c.result = result
	c.playing = false
	c.current = 0
	c.duration = 0
	c.mu.Unlock()

	c.release(ctx, prev)
	c.logger.Debug("audio loaded", "handle_id", h.ID, "bytes", h.Size, "mime_type", h.MIMEType)
	return h, nil
}

// Clear drops the current result and releases its handle. Speed is kept.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	prev := c.handle
	c.handle = nil
	c.result = nil
	c.playing = false
	c.current = 0
	c.duration = 0
	c.mu.Unlock()

	c.release(ctx, prev)
}

func (c *Controller) Close(ctx context.Context) {
	c.Clear(ctx)
}

func (c *Controller) release(ctx context.Context, h *Handle) {
	if h == nil {
		return
	}
	if err := c.store.Release(context.WithoutCancel(ctx), h.ID); err != nil {
		c.logger.Warn("failed to release audio handle", "handle_id", h.ID, "error", err)
	}
}

// Result returns the loaded audio, or nil.
func (c *Controller) Result() *shared.AudioResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Controller) TogglePlay() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return false, ErrNothingLoaded
	}
	c.playing = !c.playing
	return c.playing, nil
}

func (c *Controller) SetSpeed(speed float64) error {
	for _, allowed := range AllowedSpeeds {
		if speed == allowed {
			c.mu.Lock()
			c.speed = speed
			c.mu.Unlock()
			return nil
		}
	}
	return ErrInvalidSpeed
}

func (c *Controller) TimeUpdate(current, total float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return
	}
	c.current = current
	c.duration = total
}

func (c *Controller) Ended() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	c.current = 0
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Playing: c.playing,
		Speed:   c.speed,
		Percent: percent(c.current, c.duration),
		Elapsed: FormatTime(c.current),
		Total:   FormatTime(c.duration),
	}
	if c.handle != nil {
		snap.Loaded = true
		snap.URL = c.handle.URL
		snap.MIMEType = c.handle.MIMEType
		snap.Size = c.handle.Size
	}
	return snap
}

func percent(current, total float64) float64 {
	if !finite(current) || !finite(total) || total <= 0 {
		return 0
	}
	p := current / total * 100
	return math.Max(0, math.Min(100, p))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatTime renders seconds as M:SS; zero, negative and non-finite values
// render as "0:00".
func FormatTime(seconds float64) string {
	if !finite(seconds) || seconds <= 0 {
		return "0:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
