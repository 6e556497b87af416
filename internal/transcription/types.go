package transcription

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultPaths are tried in order against the base URL; deployments of the
// transcription service expose the endpoint under different prefixes.
var DefaultPaths = []string{
	"/api/transcribe",
	"/api/whisper/transcribe",
	"/transcribe",
	"/v1/audio/transcriptions",
}

const (
	fileField     = "audio"
	fileName      = "audio.webm"
	languageField = "language"

	defaultTimeout = 60 * time.Second
)

var (
	ErrNoEndpoint = errors.New("no transcription endpoint reachable")
	ErrEmptyAudio = errors.New("empty audio clip")
)

type Config struct {
	BaseURL    string
	Paths      []string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Endpoint %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}
