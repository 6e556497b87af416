package studio

import (
	"errors"
	"strings"
	"time"

	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
)

// User-facing messages stored in the studio state.
const (
	msgEmptyText        = "Please enter some text first."
	msgNoVoice          = "Please select a voice first."
	msgCatalogFailed    = "Could not load voice options. Please try refreshing."
	msgGenerateFailed   = "Failed to generate speech. Please try again."
	msgTranscribeFailed = "Transcription failed. Please try again."
	msgMicUnavailable   = "Unable to access the microphone."
)

const (
	DefaultHealthInterval = 30 * time.Second
	defaultProbeTimeout   = 10 * time.Second
	subscriberBuffer      = 16
)

var (
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrUnknownVoice       = errors.New("voice not in catalog")
	ErrClosed             = errors.New("studio session closed")
)

type GenerationRequest struct {
	Text     string
	Voice    shared.VoiceOption
	Language shared.Language
}

// NewGenerationRequest rejects blank text and a missing voice before any
// network call is made.
func NewGenerationRequest(text string, voice *shared.VoiceOption, lang shared.Language) (*GenerationRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewValidationError(msgEmptyText)
	}
	if voice == nil {
		return nil, shared.NewValidationError(msgNoVoice)
	}
	return &GenerationRequest{Text: text, Voice: *voice, Language: lang}, nil
}

type ServiceStatus struct {
	TTS     shared.Availability `json:"tts"`
	Whisper shared.Availability `json:"whisper"`
}

type VoiceInputState struct {
	Recording    bool   `json:"recording"`
	Transcribing bool   `json:"transcribing"`
	Error        string `json:"error,omitempty"`
}

type State struct {
	SessionID    string               `json:"session_id"`
	Services     ServiceStatus        `json:"services"`
	Voices       []shared.VoiceOption `json:"voices"`
	VoicesLoaded bool                 `json:"voices_loaded"`
	Gender       shared.Gender        `json:"gender"`
	Voice        *shared.VoiceOption  `json:"voice,omitempty"`
	Language     shared.Language      `json:"language"`
	Text         string               `json:"text"`
	IsGenerating bool                 `json:"is_generating"`
	Error        string               `json:"error,omitempty"`
	VoiceInput   VoiceInputState      `json:"voice_input"`
	Playback     playback.Snapshot    `json:"playback"`
}

type StateEvent struct {
	Reason string `json:"reason"`
	State  State  `json:"state"`
}
