package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/audiogen/internal/audio"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/studio"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/eleven-am/audiogen/internal/transcription"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func ProvideSynthesizer(cfg *Config, logger *slog.Logger) synthesis.Synthesizer {
	return synthesis.New(synthesis.Config{
		BaseURL:  cfg.TTSBaseURL,
		Provider: synthesis.Provider(cfg.TTSProvider),
		Timeout:  cfg.HTTPTimeout(),
		Logger:   logger,
	})
}

func ProvideTranscriber(cfg *Config, logger *slog.Logger) transcription.Transcriber {
	return transcription.New(transcription.Config{
		BaseURL: cfg.WhisperBaseURL,
		Timeout: cfg.HTTPTimeout(),
		Logger:  logger,
	})
}

func ProvideStudioManager(
	lc fx.Lifecycle,
	cfg *Config,
	tts synthesis.Synthesizer,
	stt transcription.Transcriber,
	handles playback.HandleStore,
	logger *slog.Logger,
) *studio.Manager {
	mgr := studio.NewManager(studio.ManagerConfig{
		Synthesizer:    tts,
		Transcriber:    stt,
		Handles:        handles,
		HealthInterval: cfg.HealthCheckInterval(),
		IdleTimeout:    cfg.SessionIdleTimeout(),
		Log:            logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go mgr.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return mgr.Close()
		},
	})
	return mgr
}

func ProvideStudioHandler(mgr *studio.Manager, logger *slog.Logger) *studio.Handler {
	return studio.NewHandler(mgr, logger.With("handler", "studio"))
}

func ProvideAudioHandler(tts synthesis.Synthesizer, stt transcription.Transcriber, logger *slog.Logger) *audio.Handler {
	return audio.NewHandler(tts, stt, logger)
}

func RegisterStudioRoutes(e *echo.Echo, h *studio.Handler, audioHandler *audio.Handler) {
	h.RegisterRoutes(e.Group("/api/v1/studio"))
	h.RegisterMediaRoutes(e)
	audioHandler.RegisterRoutes(e.Group("/api/v1/audio"))
}

var StudioModule = fx.Options(
	fx.Provide(
		ProvideSynthesizer,
		ProvideTranscriber,
		ProvideStudioManager,
		ProvideStudioHandler,
		ProvideAudioHandler,
	),
	fx.Invoke(RegisterStudioRoutes),
)
