// Package logger builds the slog logger used by the binaries.
package logger

import (
	"io"
	"log/slog"
)

// Environments understood by New.
const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"
)

// New returns a logger writing to w, configured for env.
// Unknown environments get a minimal JSON logger and one error line saying so.
func New(w io.Writer, env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case EnvLocal:
		log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	case EnvDev:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	case EnvProd:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       slog.LevelWarn,
			ReplaceAttr: dropTime,
		}))
	default:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       slog.LevelError,
			ReplaceAttr: dropTime,
		}))

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
