package game

import (
	"time"

	"chat-casino/internal/config"
)

type Rules struct {
	HouseUserID int64

	DuelMinBet       int64
	DuelCancelWindow time.Duration
	DuelRollDelay    time.Duration

	BankerMinBet       int64
	BankerMaxShares    int
	BankerTimer        time.Duration
	BankerCancelWindow time.Duration
}

func DefaultRules(houseUserID int64) Rules {
	return Rules{
		HouseUserID:        houseUserID,
		DuelMinBet:         10,
		DuelCancelWindow:   60 * time.Second,
		DuelRollDelay:      3 * time.Second,
		BankerMinBet:       10,
		BankerMaxShares:    10,
		BankerTimer:        60 * time.Second,
		BankerCancelWindow: 10 * time.Minute,
	}
}

func RulesFromConfig(cfg config.GameConfig, houseUserID int64) Rules {
	r := DefaultRules(houseUserID)
	if cfg.DuelMinBet > 0 {
		r.DuelMinBet = cfg.DuelMinBet
	}
	if cfg.DuelCancelWindow > 0 {
		r.DuelCancelWindow = cfg.DuelCancelWindow
	}
	if cfg.DuelRollDelay >= 0 {
		r.DuelRollDelay = cfg.DuelRollDelay
	}
	if cfg.BankerMinBet > 0 {
		r.BankerMinBet = cfg.BankerMinBet
	}
	if cfg.BankerMaxShares > 0 {
		r.BankerMaxShares = cfg.BankerMaxShares
	}
	if cfg.BankerTimer > 0 {
		r.BankerTimer = cfg.BankerTimer
	}
	if cfg.BankerCancelWindow > 0 {
		r.BankerCancelWindow = cfg.BankerCancelWindow
	}
	return r
}
