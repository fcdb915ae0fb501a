package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type OutboxConfig struct {
	Workers      int           `env:"OUTBOX_WORKERS" envDefault:"4"`
	Buffer       int           `env:"OUTBOX_BUFFER" envDefault:"4096"`
	RetryMax     int           `env:"OUTBOX_RETRY_MAX" envDefault:"5"`
	RetryBase    time.Duration `env:"OUTBOX_RETRY_BASE" envDefault:"250ms"`
	WriteTimeout time.Duration `env:"OUTBOX_WRITE_TIMEOUT" envDefault:"5s"`

	// robfig/cron specs.
	ReplaySchedule    string `env:"OUTBOX_REPLAY_SCHEDULE" envDefault:"@every 1m"`
	ReconcileSchedule string `env:"LEDGER_RECONCILE_SCHEDULE" envDefault:"@every 15m"`
}

func LoadOutbox() (OutboxConfig, error) {
	var cfg OutboxConfig
	err := env.Parse(&cfg)
	return cfg, err
}
