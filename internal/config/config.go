package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is parsed from the environment at startup.
type Config struct {
	Port       string `env:"PORT" envDefault:"8083"`
	DBPath     string `env:"DB_PATH" envDefault:"invite-service.db"`
	SelfPeerID string `env:"SELF_PEER_ID"`

	// DeviceToken guards the local API. Empty disables the check (dev only).
	DeviceToken string `env:"DEVICE_TOKEN"`

	PushRelayURL      string        `env:"PUSH_RELAY_URL"`
	PushRelayKey      string        `env:"PUSH_RELAY_KEY"`
	PushTimeout       time.Duration `env:"PUSH_TIMEOUT" envDefault:"10s"`
	GatewayAttempts   int           `env:"GATEWAY_ATTEMPTS" envDefault:"3"`
	GatewayRetryDelay time.Duration `env:"GATEWAY_RETRY_DELAY" envDefault:"2s"`

	AMQPURL       string `env:"AMQP_URL"`
	AuditExchange string `env:"AUDIT_EXCHANGE" envDefault:"invite.audit"`

	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	DebugRoutes  bool   `env:"DEBUG_ROUTES"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SelfPeerID == "" {
		return Config{}, fmt.Errorf("SELF_PEER_ID is required")
	}
	return cfg, nil
}
