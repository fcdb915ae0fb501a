package wager

import (
	"context"
	"errors"
	"sync"
	"time"

	"chat-casino/internal/game"
	"chat-casino/internal/ledger"
	"chat-casino/internal/outbox"
	"chat-casino/internal/store"
	"chat-casino/internal/stream"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	ratingWindow    = 30 * 24 * time.Hour
	ratingMaxRows   = 100
	transferMaxRows = 100
	historyMaxRows  = 50
	monthScanRows   = 5000
)

// Service owns the ledger, both engines and the outbox, and is the single
// entry point for the transports.
type Service struct {
	repo   Repository
	writer *writer
	rules  game.Rules
	opts   Options
	queue  *outbox.Queue
	ledger *ledger.Ledger
	duels  *game.DuelEngine
	banker *game.Banker
	events *stream.EventBuffer
	seeds  *game.SeededRoller
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

func New(repo Repository, opts Options) *Service {
	queue := outbox.New(opts.Outbox)
	w := &writer{repo: repo, queue: queue}
	l := ledger.New(w)
	events := stream.NewEventBuffer(opts.EventBuffer)

	var seeds *game.SeededRoller
	roller := opts.Roller
	if roller == nil {
		seeds = game.NewSeededRoller(opts.ServerSeed)
		roller = seeds
	}
	return &Service{
		repo:   repo,
		writer: w,
		rules:  opts.Rules,
		opts:   opts,
		queue:  queue,
		ledger: l,
		duels:  game.NewDuelEngine(opts.Rules, l, roller, w, events),
		banker: game.NewBanker(opts.Rules, l, w, events, game.NewRoundTimer()),
		events: events,
		seeds:  seeds,
		now:    time.Now,
	}
}

// Start launches the outbox workers and periodic jobs.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.queue.Start(ctx)
	c, err := s.newCron()
	if err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.started = true
	return nil
}

// Shutdown stops timers and jobs, waits for pending durable writes and then
// stops the outbox workers. Cancelling the context given to Start does not
// stop the outbox; only Shutdown does.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	s.banker.Close()
	s.duels.Close()
	err := s.queue.Drain(ctx)
	s.queue.Close()
	s.events.Close()
	return err
}

func (s *Service) Events() *stream.EventBuffer { return s.events }

func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

func (s *Service) Ping(ctx context.Context) error { return s.repo.Ping(ctx) }

func (s *Service) Balance(userID int64) BalanceResponse {
	return BalanceResponse{UserID: userID, Balance: s.ledger.Balance(userID)}
}

func (s *Service) SetBalance(userID, value int64) (BalanceResponse, error) {
	if err := s.ledger.Set(userID, value); err != nil {
		return BalanceResponse{}, err
	}
	log.Info().Int64("user_id", userID).Int64("balance", value).Msg("balance overridden")
	return s.Balance(userID), nil
}

func (s *Service) Transfer(from, to, amount int64) (TransferResponse, error) {
	if err := s.ledger.Transfer(from, to, amount); err != nil {
		if errors.Is(err, ledger.ErrSameAccount) {
			return TransferResponse{}, ErrSelfTransfer
		}
		return TransferResponse{}, err
	}
	rec := store.Transfer{ID: store.NewID(), FromUserID: from, ToUserID: to, Amount: amount, CreatedAt: s.now().UTC()}
	s.writer.AppendTransfer(rec)
	log.Info().Str("transfer_id", rec.ID).Int64("from", from).Int64("to", to).Int64("amount", amount).Msg("transfer")
	return TransferResponse{ID: rec.ID, From: from, To: to, Amount: amount, FromBalance: s.ledger.Balance(from)}, nil
}

// UserTransfers lists transfers the user sent or received, newest first.
func (s *Service) UserTransfers(ctx context.Context, userID int64, limit int) (*TransferHistoryResponse, error) {
	items, err := s.repo.ListUserTransfers(ctx, userID, clampLimit(limit, transferMaxRows))
	if err != nil {
		return nil, err
	}
	return &TransferHistoryResponse{UserID: userID, Items: items}, nil
}

func (s *Service) CreateDuel(ctx context.Context, creatorID, bet int64) (game.Duel, error) {
	return s.duels.Create(ctx, creatorID, bet)
}

func (s *Service) JoinDuel(ctx context.Context, opponentID, duelID int64) (game.Duel, error) {
	return s.duels.Join(ctx, opponentID, duelID)
}

func (s *Service) CancelDuel(ctx context.Context, creatorID, duelID int64) (game.Duel, error) {
	return s.duels.Cancel(ctx, creatorID, duelID)
}

// GetDuel looks in memory first and falls back to the durable record.
func (s *Service) GetDuel(ctx context.Context, duelID int64) (game.Duel, error) {
	d, err := s.duels.Get(duelID)
	if err == nil {
		return d, nil
	}
	rec, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return game.Duel{}, game.ErrDuelNotFound
		}
		return game.Duel{}, err
	}
	return duelFromRecord(rec), nil
}

func (s *Service) ListOpenDuels() []game.Duel {
	return s.duels.ListOpen()
}

func (s *Service) PlaceBet(ctx context.Context, userID, amount int64) (game.BetReceipt, error) {
	return s.banker.PlaceBet(ctx, userID, amount)
}

func (s *Service) CancelBet(ctx context.Context, userID int64) (int64, error) {
	return s.banker.CancelBet(ctx, userID)
}

func (s *Service) CurrentRound() (game.Round, bool) {
	return s.banker.Current()
}

func (s *Service) ForceDraw(ctx context.Context) (game.Round, error) {
	return s.banker.ForceSettle(ctx)
}

func (s *Service) DuelRating(ctx context.Context, limit int) (*DuelRatingResponse, error) {
	limit = clampLimit(limit, ratingMaxRows)
	items, err := s.repo.ListDuelRating(ctx, s.now().Add(-ratingWindow), limit)
	if err != nil {
		return nil, err
	}
	return &DuelRatingResponse{WindowDays: int(ratingWindow / (24 * time.Hour)), Items: items}, nil
}

func (s *Service) BankerRating(ctx context.Context, limit int) (*BankerRatingResponse, error) {
	limit = clampLimit(limit, ratingMaxRows)
	items, err := s.repo.ListBankerRating(ctx, s.now().Add(-ratingWindow), limit)
	if err != nil {
		return nil, err
	}
	return &BankerRatingResponse{WindowDays: int(ratingWindow / (24 * time.Hour)), Items: items}, nil
}

func (s *Service) Outbox() OutboxResponse {
	return OutboxResponse{Stats: s.queue.Stats(), DeadLetters: s.queue.DeadLetters()}
}

func (s *Service) ReplayOutbox() int {
	n := s.queue.ReplayDeadLetters()
	if n > 0 {
		log.Info().Int("jobs", n).Msg("outbox dead letters replayed")
	}
	return n
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
