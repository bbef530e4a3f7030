package bootstrap

import (
	"log/slog"

	"go.uber.org/fx"

	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/config"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger builds the process-wide logger from LogConfig and installs
// it as the slog default, so package-level slog calls land on the same
// handler as the request logger.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
