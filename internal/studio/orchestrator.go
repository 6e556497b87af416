package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/eleven-am/audiogen/internal/capture"
	"github.com/eleven-am/audiogen/internal/metrics"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/eleven-am/audiogen/internal/transcription"
	"golang.org/x/sync/errgroup"
)

const maxUploadSize = 1 << 20

type Config struct {
	ID             string
	Synthesizer    synthesis.Synthesizer
	Transcriber    transcription.Transcriber
	Handles        playback.HandleStore
	HealthInterval time.Duration
	ProbeTimeout   time.Duration
	// SharedHealth disables the per-session probe; availability then
	// arrives through SetServices.
	SharedHealth bool
	Logger       *slog.Logger
}

// Orchestrator holds the state of one studio session. State is guarded by
// mu; remote calls are always made without holding it.
type Orchestrator struct {
	id       string
	tts      synthesis.Synthesizer
	stt      transcription.Transcriber
	player   *playback.Controller
	recorder *capture.Controller
	logger   *slog.Logger

	healthInterval time.Duration
	probeTimeout   time.Duration
	sharedHealth   bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once

	mu           sync.Mutex
	closed       bool
	services     ServiceStatus
	voices       []shared.VoiceOption
	voicesLoaded bool
	gender       shared.Gender
	voice        *shared.VoiceOption
	language     shared.Language
	text         string
	generating   bool
	errMsg       string
	voiceInput   VoiceInputState
	lastActive   time.Time

	subMu sync.Mutex
	subs  map[chan StateEvent]struct{}
}

func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ID == "" {
		cfg.ID = shared.NewID("studio_")
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.Handles == nil {
		cfg.Handles = playback.NewMemoryStore()
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := cfg.Logger.With("component", "studio", "session_id", cfg.ID)

	o := &Orchestrator{
		id:             cfg.ID,
		tts:            cfg.Synthesizer,
		stt:            cfg.Transcriber,
		player:         playback.NewController(cfg.Handles, logger),
		logger:         logger,
		healthInterval: cfg.HealthInterval,
		probeTimeout:   cfg.ProbeTimeout,
		sharedHealth:   cfg.SharedHealth,
		ctx:            ctx,
		cancel:         cancel,
		services: ServiceStatus{
			TTS:     shared.AvailabilityUnknown,
			Whisper: shared.AvailabilityUnknown,
		},
		gender:     shared.GenderFemale,
		language:   shared.LanguageEnglish,
		lastActive: time.Now(),
		subs:       make(map[chan StateEvent]struct{}),
	}
	o.recorder = capture.NewController(capture.Callbacks{
		OnStopped: o.onRecordingStopped,
		OnClip:    o.onClip,
	}, logger)
	return o
}

func (o *Orchestrator) ID() string {
	return o.id
}

// Start launches the one-shot catalog fetch and, unless health is shared,
// the recurring health probe. Calling it again has no effect.
func (o *Orchestrator) Start() {
	o.startOnce.Do(func() {
		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return
		}
		o.wg.Add(1)
		if !o.sharedHealth {
			o.wg.Add(1)
		}
		o.mu.Unlock()

		if !o.sharedHealth {
			go o.healthLoop()
		}
		go o.loadVoices()
	})
}

func (o *Orchestrator) healthLoop() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.healthInterval)
	defer ticker.Stop()

	o.probe()
	for {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
			o.probe()
		}
	}
}

// checkServices probes both remote services concurrently.
func checkServices(ctx context.Context, tts synthesis.Synthesizer, stt transcription.Transcriber, timeout time.Duration) ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var ttsOK, whisperOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ttsOK = tts.CheckHealth(gctx)
		return nil
	})
	g.Go(func() error {
		whisperOK = stt.CheckHealth(gctx)
		return nil
	})
	_ = g.Wait()

	status := ServiceStatus{
		TTS:     shared.AvailabilityOf(ttsOK),
		Whisper: shared.AvailabilityOf(whisperOK),
	}
	metrics.HealthProbes.WithLabelValues("tts", string(status.TTS)).Inc()
	metrics.HealthProbes.WithLabelValues("whisper", string(status.Whisper)).Inc()
	return status
}

func (o *Orchestrator) probe() {
	status := checkServices(o.ctx, o.tts, o.stt, o.probeTimeout)
	if o.ctx.Err() != nil {
		return
	}
	o.SetServices(status)
}

// SetServices records the availability of the remote services and notifies
// subscribers when it changed.
func (o *Orchestrator) SetServices(status ServiceStatus) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	changed := o.services != status
	o.services = status
	o.mu.Unlock()

	if changed {
		o.logger.Info("service availability changed", "tts", status.TTS, "whisper", status.Whisper)
		o.publish("services")
	}
}

func (o *Orchestrator) loadVoices() {
	defer o.wg.Done()

	voices, err := o.tts.ListVoices(o.ctx)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if err != nil {
		o.voices = nil
		o.voicesLoaded = false
		o.voice = nil
		o.errMsg = msgCatalogFailed
		o.mu.Unlock()
		o.logger.Error("failed to load voices", "error", err)
		o.publish("voices")
		return
	}

	o.voices = voices
	o.voicesLoaded = true
	// The gender read here is the one current at completion time.
	if o.voice == nil || o.voice.Gender != o.gender {
		o.voice = pickVoice(voices, o.gender)
	}
	o.mu.Unlock()

	o.logger.Info("voices loaded", "count", len(voices))
	o.publish("voices")
}

// pickVoice returns the first voice of the gender, else the first entry,
// else nil.
func pickVoice(voices []shared.VoiceOption, gender shared.Gender) *shared.VoiceOption {
	if len(voices) == 0 {
		return nil
	}
	for i := range voices {
		if voices[i].Gender == gender {
			v := voices[i]
			return &v
		}
	}
	v := voices[0]
	return &v
}

func findVoice(voices []shared.VoiceOption, id string) *shared.VoiceOption {
	for i := range voices {
		if voices[i].ID == id {
			v := voices[i]
			return &v
		}
	}
	return nil
}

func (o *Orchestrator) touch() {
	o.lastActive = time.Now()
}

// Touch marks the session as in use.
func (o *Orchestrator) Touch() {
	o.mu.Lock()
	o.touch()
	o.mu.Unlock()
}

// LastActive reports the last time a caller used the session.
func (o *Orchestrator) LastActive() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActive
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	state := State{
		SessionID:    o.id,
		Services:     o.services,
		Voices:       append([]shared.VoiceOption(nil), o.voices...),
		VoicesLoaded: o.voicesLoaded,
		Gender:       o.gender,
		Language:     o.language,
		Text:         o.text,
		IsGenerating: o.generating,
		Error:        o.errMsg,
		VoiceInput:   o.voiceInput,
	}
	if o.voice != nil {
		v := *o.voice
		state.Voice = &v
	}
	o.mu.Unlock()

	state.VoiceInput.Recording = o.recorder.IsRecording()
	state.Playback = o.player.Snapshot()
	return state
}

func (o *Orchestrator) Voices() []shared.VoiceOption {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]shared.VoiceOption(nil), o.voices...)
}

func (o *Orchestrator) SetText(text string) {
	o.mu.Lock()
	o.text = text
	o.touch()
	o.mu.Unlock()
	o.publish("text")
}

// UploadText replaces the text with the contents of a .txt file.
func (o *Orchestrator) UploadText(filename string, r io.Reader) error {
	if !strings.EqualFold(filepath.Ext(filename), ".txt") {
		return shared.NewValidationError("Only .txt files can be uploaded.")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return shared.NewValidationError("The file is too large.")
	}
	if !utf8.Valid(data) {
		return shared.NewValidationError("The file is not valid UTF-8 text.")
	}
	o.SetText(string(data))
	return nil
}

// SetGender re-derives the selected voice from the loaded catalog. The
// catalog is not fetched again.
func (o *Orchestrator) SetGender(gender shared.Gender) {
	o.mu.Lock()
	o.gender = gender
	if o.voicesLoaded && len(o.voices) > 0 {
		o.voice = pickVoice(o.voices, gender)
	}
	o.touch()
	o.mu.Unlock()
	o.publish("gender")
}

func (o *Orchestrator) SelectVoice(id string) error {
	o.mu.Lock()
	v := findVoice(o.voices, id)
	if v == nil {
		o.mu.Unlock()
		return ErrUnknownVoice
	}
	o.voice = v
	o.touch()
	o.mu.Unlock()
	o.publish("voice")
	return nil
}

func (o *Orchestrator) SetLanguage(lang shared.Language) {
	o.mu.Lock()
	o.language = lang
	o.touch()
	o.mu.Unlock()
	o.publish("language")
}

// Generate synthesizes the current text with the selected voice. Only one
// generation runs at a time; a concurrent call returns ErrGenerationInFlight
// and changes nothing. The call runs on the session context.
func (o *Orchestrator) Generate() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.generating {
		o.mu.Unlock()
		return ErrGenerationInFlight
	}
	o.touch()
	req, err := NewGenerationRequest(o.text, o.voice, o.language)
	if err != nil {
		o.errMsg = err.Error()
		o.mu.Unlock()
		metrics.Generations.WithLabelValues("rejected").Inc()
		o.publish("error")
		return err
	}
	o.generating = true
	o.errMsg = ""
	o.wg.Add(1)
	o.mu.Unlock()
	defer o.wg.Done()

	o.player.Clear(o.ctx)
	o.publish("generation_started")

	o.logger.Info("generating speech", "voice_id", req.Voice.ID, "language", req.Language, "chars", len(req.Text))
	result, err := o.tts.Synthesize(o.ctx, req.Text, &req.Voice, req.Language)
	if err == nil {
		_, err = o.player.Load(o.ctx, result)
	}

	o.mu.Lock()
	o.generating = false
	if err != nil {
		o.errMsg = errorMessage(err, msgGenerateFailed)
	}
	o.mu.Unlock()

	if err != nil {
		metrics.Generations.WithLabelValues("failure").Inc()
		o.logger.Error("speech generation failed", "voice_id", req.Voice.ID, "error", err)
	} else {
		metrics.Generations.WithLabelValues("success").Inc()
	}
	o.publish("generation_finished")
	return err
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// Reset clears the result and the error; text and voice are kept.
func (o *Orchestrator) Reset() {
	o.player.Clear(o.ctx)
	o.mu.Lock()
	o.errMsg = ""
	o.touch()
	o.mu.Unlock()
	o.publish("reset")
}

func (o *Orchestrator) TogglePlay() (bool, error) {
	playing, err := o.player.TogglePlay()
	if err == nil {
		o.publish("playback")
	}
	return playing, err
}

func (o *Orchestrator) SetSpeed(speed float64) error {
	if err := o.player.SetSpeed(speed); err != nil {
		return err
	}
	o.publish("playback")
	return nil
}

func (o *Orchestrator) UpdateProgress(current, total float64) {
	o.player.TimeUpdate(current, total)
}

func (o *Orchestrator) PlaybackEnded() {
	o.player.Ended()
	o.publish("playback")
}

// Result returns the audio currently loaded for playback, or nil.
func (o *Orchestrator) Result() *shared.AudioResult {
	return o.player.Result()
}

func (o *Orchestrator) IsRecording() bool {
	return o.recorder.IsRecording()
}

func (o *Orchestrator) StartRecording(ctx context.Context, device capture.Device) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	o.voiceInput.Error = ""
	o.touch()
	o.mu.Unlock()

	if err := o.recorder.Start(ctx, device); err != nil {
		o.mu.Lock()
		o.voiceInput.Error = errorMessage(err, msgMicUnavailable)
		o.mu.Unlock()
		o.logger.Warn("failed to start recording", "error", err)
		o.publish("voice_input")
		return err
	}
	o.publish("recording_started")
	return nil
}

func (o *Orchestrator) StopRecording() error {
	return o.recorder.Stop()
}

// ToggleRecording stops an active recording or starts one on device.
func (o *Orchestrator) ToggleRecording(ctx context.Context, device capture.Device) (bool, error) {
	if o.recorder.IsRecording() {
		err := o.recorder.Stop()
		if err == nil || errors.Is(err, capture.ErrNotRecording) {
			return false, nil
		}
		return false, err
	}
	if err := o.StartRecording(ctx, device); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Orchestrator) onRecordingStopped() {
	o.publish("recording_stopped")
}

func (o *Orchestrator) onClip(clip []byte) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	lang := o.language
	o.voiceInput.Transcribing = true
	o.voiceInput.Error = ""
	o.wg.Add(1)
	o.mu.Unlock()

	o.publish("transcription_started")

	go func() {
		defer o.wg.Done()

		text, err := o.stt.Transcribe(o.ctx, clip, lang)

		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return
		}
		o.voiceInput.Transcribing = false
		if err != nil {
			o.voiceInput.Error = errorMessage(err, msgTranscribeFailed)
		} else {
			o.text = text
		}
		o.mu.Unlock()

		if err != nil {
			o.logger.Error("transcription failed", "bytes", len(clip), "error", err)
		} else {
			o.logger.Info("transcription applied", "chars", len(text))
		}
		o.publish("transcription_finished")
	}()
}

// Close stops background work, releases the microphone and the playback
// handle, and ends every subscription.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()

		o.cancel()
		o.recorder.Close()
		o.wg.Wait()
		o.player.Close(context.Background())
		o.closeSubscribers()
		o.logger.Debug("studio session closed")
	})
}

func (o *Orchestrator) busy() bool {
	o.mu.Lock()
	generating := o.generating || o.voiceInput.Transcribing
	o.mu.Unlock()
	return generating || o.recorder.IsRecording() || o.subscriberCount() > 0
}
