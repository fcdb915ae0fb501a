package wager

import (
	"context"
	"time"

	"chat-casino/internal/store"
)

// UserDuelHistory returns a user's latest finished duels with day, week and
// month totals.
func (s *Service) UserDuelHistory(ctx context.Context, userID int64, limit int) (*DuelHistoryResponse, error) {
	limit = clampLimit(limit, historyMaxRows)
	now := s.now().UTC()
	since := now.Add(-ratingWindow)
	month, err := s.repo.ListUserDuels(ctx, userID, &since, monthScanRows)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListUserDuels(ctx, userID, nil, limit)
	if err != nil {
		return nil, err
	}

	out := &DuelHistoryResponse{UserID: userID, Items: make([]DuelHistoryItem, 0, len(recent))}
	for _, d := range month {
		item, ok := historyItem(userID, d)
		if !ok {
			continue
		}
		age := now.Sub(item.FinishedAt)
		out.Month.add(item.Profit)
		if age <= 7*24*time.Hour {
			out.Week.add(item.Profit)
		}
		if age <= 24*time.Hour {
			out.Day.add(item.Profit)
		}
	}
	for _, d := range recent {
		if item, ok := historyItem(userID, d); ok {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (p *PeriodStats) add(profit int64) {
	p.Games++
	p.Profit += profit
}

func historyItem(userID int64, d store.DuelRecord) (DuelHistoryItem, bool) {
	if d.OpponentID == nil || d.WinnerID == nil || d.FinishedAt == nil || d.CreatorRoll == nil || d.OpponentRoll == nil {
		return DuelHistoryItem{}, false
	}
	item := DuelHistoryItem{
		DuelID:     d.ID,
		Bet:        d.Bet,
		Won:        *d.WinnerID == userID,
		FinishedAt: *d.FinishedAt,
	}
	if d.CreatorID == userID {
		item.OpponentID = *d.OpponentID
		item.OwnRoll = *d.CreatorRoll
		item.OpponentRoll = *d.OpponentRoll
	} else {
		item.OpponentID = d.CreatorID
		item.OwnRoll = *d.OpponentRoll
		item.OpponentRoll = *d.CreatorRoll
	}
	if item.Won {
		item.Profit = d.Bet
	} else {
		item.Profit = -d.Bet
	}
	return item, true
}
