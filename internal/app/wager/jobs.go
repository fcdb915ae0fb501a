package wager

import (
	"expvar"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	duelRetention      = time.Hour
	pruneSchedule      = "@every 10m"
	seedRotateSchedule = "@daily"
)

var (
	metricJobReplayRuns    = expvar.NewInt("wager_job_replay_runs_total")
	metricJobReconcileRuns = expvar.NewInt("wager_job_reconcile_runs_total")
	metricJobPruneRuns     = expvar.NewInt("wager_job_prune_runs_total")
)

func (s *Service) newCron() (*cron.Cron, error) {
	c := cron.New()
	replay := s.opts.ReplaySchedule
	if replay == "" {
		replay = "@every 1m"
	}
	reconcile := s.opts.ReconcileSchedule
	if reconcile == "" {
		reconcile = "@every 15m"
	}

	if _, err := c.AddFunc(replay, s.replayJob); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(reconcile, s.reconcileJob); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(pruneSchedule, s.pruneJob); err != nil {
		return nil, err
	}
	if s.seeds != nil {
		if _, err := c.AddFunc(seedRotateSchedule, s.rotateSeedJob); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Service) replayJob() {
	metricJobReplayRuns.Add(1)
	s.ReplayOutbox()
}

// reconcileJob re-emits every balance; version-guarded upserts make this a
// no-op for rows that are already current.
func (s *Service) reconcileJob() {
	metricJobReconcileRuns.Add(1)
	n := s.ledger.Resync()
	log.Debug().Int("accounts", n).Msg("ledger reconcile enqueued")
}

func (s *Service) pruneJob() {
	metricJobPruneRuns.Add(1)
	if n := s.duels.Prune(s.now().Add(-duelRetention)); n > 0 {
		log.Debug().Int("duels", n).Msg("finished duels pruned from memory")
	}
}

func (s *Service) rotateSeedJob() {
	revealed := s.seeds.Rotate()
	hash, _ := s.seeds.Commitment()
	log.Info().Str("revealed_seed", revealed).Str("next_commitment", hash).Msg("dice seed rotated")
}
