package synthesis

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Provider string

const (
	// ProviderProxy calls a self-hosted TTS proxy; no secondary fallback.
	ProviderProxy Provider = "proxy"
	// ProviderTranslate calls the public translate TTS endpoint and falls
	// back to a secondary public provider.
	ProviderTranslate Provider = "translate"
)

const (
	DefaultTranslateURL = "https://translate.google.com/translate_tts"
	DefaultSecondaryURL = "https://tts.voicetech.yandex.net/tts"
	DefaultOutputFormat = "mp3"

	defaultTimeout = 60 * time.Second
)

var (
	ErrNoVoice    = errors.New("no voice selected")
	ErrEmptyAudio = errors.New("provider returned no audio data")
)

type Config struct {
	BaseURL      string
	Provider     Provider
	TranslateURL string
	SecondaryURL string
	OutputFormat string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// StatusError is a non-2xx provider response. Body holds the provider's
// textual error payload when one could be read.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TTS generation failed: %d - %s", e.StatusCode, e.Body)
}
