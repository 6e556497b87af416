package bootstrap

import (
	"log/slog"
	"os"

	_ "github.com/eleven-am/audiogen/docs"
	"github.com/eleven-am/audiogen/internal/metrics"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

func RegisterRoutes(e *echo.Echo, cfg *Config) {
	e.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.Static("/assets", cfg.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(cfg.IndexHTML)
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

var HandlersModule = fx.Options(
	fx.Provide(ProvideLogger),
	fx.Invoke(RegisterRoutes),
)
