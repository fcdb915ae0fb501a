package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	DuelMinBet       int64         `env:"DUEL_MIN_BET" envDefault:"10"`
	DuelCancelWindow time.Duration `env:"DUEL_CANCEL_WINDOW" envDefault:"60s"`
	DuelRollDelay    time.Duration `env:"DUEL_ROLL_DELAY" envDefault:"3s"`

	BankerMinBet       int64         `env:"BANKER_MIN_BET" envDefault:"10"`
	BankerMaxShares    int           `env:"BANKER_MAX_SHARES" envDefault:"10"`
	BankerTimer        time.Duration `env:"BANKER_TIMER" envDefault:"60s"`
	BankerCancelWindow time.Duration `env:"BANKER_CANCEL_WINDOW" envDefault:"10m"`

	// Empty means a random seed is generated at startup.
	DiceServerSeed string `env:"DICE_SERVER_SEED"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
