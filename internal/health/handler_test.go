package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/eleven-am/audiogen/internal/studio"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type stubTTS struct{ healthy bool }

func (s stubTTS) ListVoices(context.Context) ([]shared.VoiceOption, error) { return nil, nil }

func (s stubTTS) Synthesize(context.Context, string, *shared.VoiceOption, shared.Language) (*shared.AudioResult, error) {
	return &shared.AudioResult{Data: []byte("x"), MIMEType: "audio/mpeg"}, nil
}

func (s stubTTS) CheckHealth(context.Context) bool { return s.healthy }

type stubSTT struct{ healthy bool }

func (s stubSTT) Transcribe(context.Context, []byte, shared.Language) (string, error) {
	return "", nil
}

func (s stubSTT) CheckHealth(context.Context) bool { return s.healthy }

func newTestHandler(t *testing.T, rdb *redis.Client, ttsOK, sttOK bool) (*Handler, *studio.Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tts := stubTTS{healthy: ttsOK}
	stt := stubSTT{healthy: sttOK}
	mgr := studio.NewManager(studio.ManagerConfig{
		Synthesizer:    tts,
		Transcriber:    stt,
		Handles:        playback.NewMemoryStore(),
		HealthInterval: time.Hour,
		Log:            logger,
	})
	t.Cleanup(func() { _ = mgr.Close() })
	return NewHandler(rdb, tts, stt, mgr, "test"), mgr
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t, nil, true, true)
	e := echo.New()
	h.RegisterRoutes(e)

	expected := map[string]bool{
		"/health":          false,
		"/health/ready":    false,
		"/health/sessions": false,
	}
	for _, r := range e.Routes() {
		if _, ok := expected[r.Path]; ok {
			expected[r.Path] = true
		}
	}
	for path, found := range expected {
		if !found {
			t.Errorf("expected route %s to be registered", path)
		}
	}
}

func TestLiveness(t *testing.T) {
	h, _ := newTestHandler(t, nil, false, false)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Liveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Liveness() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	healthyRedis := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = healthyRedis.Close() })

	deadRedis := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = deadRedis.Close() })

	tests := []struct {
		name       string
		redis      *redis.Client
		ttsOK      bool
		sttOK      bool
		wantStatus Status
		wantCode   int
		wantRedis  bool
	}{
		{"all healthy, memory store", nil, true, true, StatusHealthy, http.StatusOK, false},
		{"all healthy with redis", healthyRedis, true, true, StatusHealthy, http.StatusOK, true},
		{"tts down degrades", nil, false, true, StatusDegraded, http.StatusOK, false},
		{"whisper down degrades", healthyRedis, true, false, StatusDegraded, http.StatusOK, true},
		{"redis down is unhealthy", deadRedis, true, true, StatusUnhealthy, http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, tt.redis, tt.ttsOK, tt.sttOK)
			e := echo.New()

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()
			if err := h.Readiness(e.NewContext(req, rec)); err != nil {
				t.Fatalf("Readiness() error = %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s (%+v)", resp.Status, tt.wantStatus, resp.Components)
			}
			if _, ok := resp.Components["redis"]; ok != tt.wantRedis {
				t.Errorf("redis component present = %v, want %v", ok, tt.wantRedis)
			}
			if resp.Version != "test" {
				t.Errorf("version = %s", resp.Version)
			}
		})
	}
}

func TestSessions(t *testing.T) {
	h, mgr := newTestHandler(t, nil, true, true)
	mgr.GetOrCreate("")
	mgr.GetOrCreate("")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/sessions", nil)
	rec := httptest.NewRecorder()
	if err := h.Sessions(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}

	var resp SessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Sessions) != 2 {
		t.Errorf("sessions = %+v, want 2", resp)
	}
	if stats := h.sessionStats(); stats.Active != 2 {
		t.Errorf("sessionStats().Active = %d, want 2", stats.Active)
	}
}

func TestMiddleware_CountsRequests(t *testing.T) {
	h, _ := newTestHandler(t, nil, true, true)
	e := echo.New()
	e.Use(h.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for range 3 {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	}

	if h.totalRequests != 3 {
		t.Errorf("totalRequests = %d, want 3", h.totalRequests)
	}
	if h.activeConnections != 0 {
		t.Errorf("activeConnections = %d, want 0", h.activeConnections)
	}
}

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentStatus
		want       Status
	}{
		{"empty", map[string]ComponentStatus{}, StatusHealthy},
		{"healthy", map[string]ComponentStatus{"tts": {Status: StatusHealthy}}, StatusHealthy},
		{"tts unhealthy only degrades", map[string]ComponentStatus{"tts": {Status: StatusUnhealthy}}, StatusDegraded},
		{"redis unhealthy", map[string]ComponentStatus{"redis": {Status: StatusUnhealthy}, "tts": {Status: StatusHealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeOverallStatus(tt.components); got != tt.want {
				t.Errorf("computeOverallStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
