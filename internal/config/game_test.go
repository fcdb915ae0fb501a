package config

import (
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.DuelMinBet != 10 || cfg.BankerMinBet != 10 {
		t.Fatalf("min bets = %d/%d, want 10/10", cfg.DuelMinBet, cfg.BankerMinBet)
	}
	if cfg.DuelCancelWindow != time.Minute {
		t.Fatalf("DuelCancelWindow = %v, want 1m", cfg.DuelCancelWindow)
	}
	if cfg.BankerCancelWindow != 10*time.Minute {
		t.Fatalf("BankerCancelWindow = %v, want 10m", cfg.BankerCancelWindow)
	}
	if cfg.BankerMaxShares != 10 {
		t.Fatalf("BankerMaxShares = %d, want 10", cfg.BankerMaxShares)
	}
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("BANKER_TIMER", "90s")
	t.Setenv("DUEL_ROLL_DELAY", "0s")
	t.Setenv("DICE_SERVER_SEED", "seed-a")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.BankerTimer != 90*time.Second {
		t.Fatalf("BankerTimer = %v", cfg.BankerTimer)
	}
	if cfg.DuelRollDelay != 0 {
		t.Fatalf("DuelRollDelay = %v, want 0", cfg.DuelRollDelay)
	}
	if cfg.DiceServerSeed != "seed-a" {
		t.Fatalf("DiceServerSeed = %q", cfg.DiceServerSeed)
	}
}

func TestLoadOutboxDefaults(t *testing.T) {
	cfg, err := LoadOutbox()
	if err != nil {
		t.Fatalf("LoadOutbox() error = %v", err)
	}
	if cfg.Workers != 4 || cfg.RetryMax != 5 {
		t.Fatalf("unexpected outbox config: %+v", cfg)
	}
	if cfg.ReplaySchedule != "@every 1m" {
		t.Fatalf("ReplaySchedule = %q", cfg.ReplaySchedule)
	}
}
