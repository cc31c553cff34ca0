package main

import (
	"log/slog"
	"time"

	"github.com/fastwager/wagercore/internal/infra/pgutils"
)

type apiConfig struct {
	Port            uint16         `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level     `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration  `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Postgres        pgutils.Config
	Gateway         gatewayConfig
}

type gatewayConfig struct {
	BaseURL       string `env:"GATEWAY_BASE_URL"`
	KeyID         string `env:"GATEWAY_KEY_ID"`
	KeySecret     string `env:"GATEWAY_KEY_SECRET"`
	WebhookSecret string `env:"GATEWAY_WEBHOOK_SECRET"`
}
