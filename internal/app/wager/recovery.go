package wager

import (
	"context"
	"fmt"

	"chat-casino/internal/game"
	"chat-casino/internal/store"

	"github.com/rs/zerolog/log"
)

// Recover rebuilds in-memory state after a restart. Balances are loaded from
// the store, id counters continue from the stored maxima, and every duel or
// round left unfinished is refunded and closed, since armed timers and
// in-flight rolls do not survive a restart. Call it after Start and before
// serving traffic.
func (s *Service) Recover(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport

	balances, err := s.repo.ListBalances(ctx)
	if err != nil {
		return report, fmt.Errorf("load balances: %w", err)
	}
	values := make(map[int64]int64, len(balances))
	versions := make(map[int64]int64, len(balances))
	for _, b := range balances {
		values[b.UserID] = b.Balance
		versions[b.UserID] = b.Version
	}
	s.ledger.Load(values, versions)
	report.Balances = len(balances)

	maxDuel, err := s.repo.MaxDuelID(ctx)
	if err != nil {
		return report, fmt.Errorf("max duel id: %w", err)
	}
	s.duels.SeedNextID(maxDuel)
	maxRound, err := s.repo.MaxRoundID(ctx)
	if err != nil {
		return report, fmt.Errorf("max round id: %w", err)
	}
	s.banker.SeedNextID(maxRound)

	duels, err := s.repo.ListDuelsByState(ctx, string(game.DuelOpen), string(game.DuelMatched))
	if err != nil {
		return report, fmt.Errorf("list unfinished duels: %w", err)
	}
	var closedDuels []store.DuelRecord
	for _, d := range duels {
		refunds := map[int64]int64{d.CreatorID: d.Bet}
		if d.State == string(game.DuelMatched) && d.OpponentID != nil {
			refunds[*d.OpponentID] += d.Bet
		}
		report.AmountRefunded += s.refund(refunds)
		closedDuels = append(closedDuels, d)
	}

	rounds, err := s.repo.ListRoundsByState(ctx, string(game.RoundForming), string(game.RoundOpen), string(game.RoundLocked))
	if err != nil {
		return report, fmt.Errorf("list unfinished rounds: %w", err)
	}
	var closedRounds []store.RoundRecord
	for _, r := range rounds {
		sums, err := s.repo.SumRoundBets(ctx, r.ID)
		if err != nil {
			return report, fmt.Errorf("sum bets for round %d: %w", r.ID, err)
		}
		report.AmountRefunded += s.refund(sums)
		closedRounds = append(closedRounds, r)
	}

	// Refunded balances must be durable before the records are closed.
	if err := s.queue.Drain(ctx); err != nil {
		return report, fmt.Errorf("flush refunds: %w", err)
	}

	now := s.now().UTC()
	for _, d := range closedDuels {
		d.State = string(game.DuelCancelled)
		d.Version++
		d.FinishedAt = &now
		if err := s.repo.UpsertDuel(ctx, d); err != nil {
			return report, fmt.Errorf("close duel %d: %w", d.ID, err)
		}
		report.DuelsRefunded++
	}
	for _, r := range closedRounds {
		r.State = string(game.RoundRefunded)
		r.TotalBank = 0
		r.Version++
		r.FinishedAt = &now
		if err := s.repo.UpsertRound(ctx, r); err != nil {
			return report, fmt.Errorf("close round %d: %w", r.ID, err)
		}
		report.RoundsRefunded++
	}

	log.Info().
		Int("balances", report.Balances).
		Int("duels_refunded", report.DuelsRefunded).
		Int("rounds_refunded", report.RoundsRefunded).
		Int64("amount_refunded", report.AmountRefunded).
		Msg("wager state recovered")
	return report, nil
}

func (s *Service) refund(amounts map[int64]int64) int64 {
	var total int64
	for userID, amount := range amounts {
		if amount <= 0 {
			continue
		}
		if _, err := s.ledger.Adjust(userID, amount); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Int64("amount", amount).Msg("recovery refund failed")
			continue
		}
		total += amount
	}
	return total
}
