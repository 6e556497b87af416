package studio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/audiogen/internal/metrics"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/eleven-am/audiogen/internal/transcription"
)

const (
	DefaultIdleTimeout = 30 * time.Minute
	sweepInterval      = time.Minute
)

// Manager keeps one orchestrator per browser session.
type Manager struct {
	tts            synthesis.Synthesizer
	stt            transcription.Transcriber
	handles        playback.HandleStore
	healthInterval time.Duration
	probeTimeout   time.Duration
	idleTimeout    time.Duration

	servicesMu sync.RWMutex
	services   ServiceStatus

	sessions map[string]*Orchestrator
	mu       sync.RWMutex
	log      *slog.Logger
}

type ManagerConfig struct {
	Synthesizer    synthesis.Synthesizer
	Transcriber    transcription.Transcriber
	Handles        playback.HandleStore
	HealthInterval time.Duration
	IdleTimeout    time.Duration
	Log            *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Handles == nil {
		cfg.Handles = playback.NewMemoryStore()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}

	return &Manager{
		tts:            cfg.Synthesizer,
		stt:            cfg.Transcriber,
		handles:        cfg.Handles,
		healthInterval: cfg.HealthInterval,
		probeTimeout:   defaultProbeTimeout,
		idleTimeout:    cfg.IdleTimeout,
		services: ServiceStatus{
			TTS:     shared.AvailabilityUnknown,
			Whisper: shared.AvailabilityUnknown,
		},
		sessions:       make(map[string]*Orchestrator),
		log:            cfg.Log.With("component", "studio_manager"),
	}
}

// Handles is the store serving /media/:id for every session.
func (m *Manager) Handles() playback.HandleStore {
	return m.handles
}

// GetOrCreate returns the session with id, creating and starting a new one
// when id is empty or unknown.
func (m *Manager) GetOrCreate(id string) (*Orchestrator, bool) {
	if id != "" {
		m.mu.RLock()
		o, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return o, false
		}
	}

	m.mu.Lock()
	if id != "" {
		if o, ok := m.sessions[id]; ok {
			m.mu.Unlock()
			return o, false
		}
	}
	o := New(Config{
		Synthesizer:    m.tts,
		Transcriber:    m.stt,
		Handles:        m.handles,
		SharedHealth:   true,
		Logger:         m.log,
	})
	o.SetServices(m.Services())
	m.sessions[o.ID()] = o
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	o.Start()
	m.log.Info("studio session created", "session_id", o.ID())
	return o, true
}

func (m *Manager) GetSession(id string) (*Orchestrator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.sessions[id]
	return o, ok
}

func (m *Manager) RemoveSession(id string) error {
	m.mu.Lock()
	o, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return shared.ErrNotFound
	}
	metrics.ActiveSessions.Set(float64(count))
	o.Close()
	m.log.Info("studio session removed", "session_id", id)
	return nil
}

type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	LastActive   time.Time `json:"last_active"`
	IsGenerating bool      `json:"is_generating"`
	Recording    bool      `json:"recording"`
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) ListSessions() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Orchestrator, 0, len(m.sessions))
	for _, o := range m.sessions {
		sessions = append(sessions, o)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, o := range sessions {
		state := o.State()
		infos = append(infos, SessionInfo{
			SessionID:    o.ID(),
			LastActive:   o.LastActive(),
			IsGenerating: state.IsGenerating,
			Recording:    state.VoiceInput.Recording,
		})
	}
	return infos
}

// Sweep closes sessions idle since before now minus the idle timeout.
// Sessions that are generating or recording are kept.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*Orchestrator
	for id, o := range m.sessions {
		if o.LastActive().After(cutoff) || o.busy() {
			continue
		}
		delete(m.sessions, id)
		expired = append(expired, o)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	metrics.ActiveSessions.Set(float64(count))
	for _, o := range expired {
		o.Close()
		m.log.Info("studio session expired", "session_id", o.ID())
	}
	return len(expired)
}

// Services is the availability last seen by the shared probe.
func (m *Manager) Services() ServiceStatus {
	m.servicesMu.RLock()
	defer m.servicesMu.RUnlock()
	return m.services
}

// Probe checks both remote services once and pushes the result to every
// session.
func (m *Manager) Probe(ctx context.Context) ServiceStatus {
	status := checkServices(ctx, m.tts, m.stt, m.probeTimeout)
	if ctx.Err() != nil {
		return m.Services()
	}

	m.servicesMu.Lock()
	changed := m.services != status
	m.services = status
	m.servicesMu.Unlock()
	if changed {
		m.log.Info("service availability changed", "tts", status.TTS, "whisper", status.Whisper)
	}

	m.mu.RLock()
	sessions := make([]*Orchestrator, 0, len(m.sessions))
	for _, o := range m.sessions {
		sessions = append(sessions, o)
	}
	m.mu.RUnlock()

	for _, o := range sessions {
		o.SetServices(status)
	}
	return status
}

// Run probes the remote services and sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	health := time.NewTicker(m.healthInterval)
	defer health.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-sweep.C:
			m.Sweep(now)
		case <-health.C:
			m.Probe(ctx)
		}
	}
}

func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := make([]*Orchestrator, 0, len(m.sessions))
	for _, o := range m.sessions {
		sessions = append(sessions, o)
	}
	m.sessions = make(map[string]*Orchestrator)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(0)
	for _, o := range sessions {
		o.Close()
	}
	return nil
}
