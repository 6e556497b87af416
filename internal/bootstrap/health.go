package bootstrap

import (
	"github.com/eleven-am/audiogen/internal/health"
	"github.com/eleven-am/audiogen/internal/studio"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/eleven-am/audiogen/internal/transcription"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const version = "1.0.0"

func ProvideHealthHandler(
	redis *redis.Client,
	tts synthesis.Synthesizer,
	stt transcription.Transcriber,
	mgr *studio.Manager,
) *health.Handler {
	return health.NewHandler(redis, tts, stt, mgr, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(h.Middleware())
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
