package synthesis

import (
	"context"

	"github.com/eleven-am/audiogen/internal/shared"
)

type Synthesizer interface {
	ListVoices(ctx context.Context) ([]shared.VoiceOption, error)
	Synthesize(ctx context.Context, text string, voice *shared.VoiceOption, lang shared.Language) (*shared.AudioResult, error)
	CheckHealth(ctx context.Context) bool
}
