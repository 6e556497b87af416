package transcription

import (
	"context"

	"github.com/eleven-am/audiogen/internal/shared"
)

type Transcriber interface {
	Transcribe(ctx context.Context, clip []byte, lang shared.Language) (string, error)
	CheckHealth(ctx context.Context) bool
}
