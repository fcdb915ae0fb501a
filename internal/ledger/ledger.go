package ledger

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrSameAccount       = errors.New("same_account")
)

// Sink receives every committed balance. Implementations must not block;
// version grows by one per mutation of the same user.
type Sink interface {
	SaveBalance(userID, balance, version int64)
}

type account struct {
	mu      sync.Mutex
	balance int64
	version int64
}

// Ledger is the in-memory authority for user balances.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[int64]*account
	sink     Sink
}

func New(sink Sink) *Ledger {
	return &Ledger{accounts: map[int64]*account{}, sink: sink}
}

func (l *Ledger) account(userID int64) *account {
	l.mu.RLock()
	acc := l.accounts[userID]
	l.mu.RUnlock()
	if acc != nil {
		return acc
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc = l.accounts[userID]; acc == nil {
		acc = &account{}
		l.accounts[userID] = acc
	}
	return acc
}

func (l *Ledger) Balance(userID int64) int64 {
	l.mu.RLock()
	acc := l.accounts[userID]
	l.mu.RUnlock()
	if acc == nil {
		return 0
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance
}

// Adjust applies delta and returns the new balance. A result below zero is
// rejected without mutation.
func (l *Ledger) Adjust(userID, delta int64) (int64, error) {
	acc := l.account(userID)
	acc.mu.Lock()
	defer acc.mu.Unlock()
	next := acc.balance + delta
	if next < 0 {
		return acc.balance, ErrInsufficientFunds
	}
	if delta == 0 {
		return acc.balance, nil
	}
	l.commit(userID, acc, next)
	return next, nil
}

// Set overrides a balance. Used by administrators.
func (l *Ledger) Set(userID, value int64) error {
	if value < 0 {
		return ErrInvalidAmount
	}
	acc := l.account(userID)
	acc.mu.Lock()
	defer acc.mu.Unlock()
	l.commit(userID, acc, value)
	return nil
}

// Transfer moves amount from one user to another atomically.
func (l *Ledger) Transfer(from, to, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSameAccount
	}
	src, dst := l.account(from), l.account(to)
	first, second := src, dst
	if to < from {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if src.balance < amount {
		return ErrInsufficientFunds
	}
	l.commit(from, src, src.balance-amount)
	l.commit(to, dst, dst.balance+amount)
	return nil
}

// Load replaces balances with persisted values without emitting writes.
// versions may be nil.
func (l *Ledger) Load(balances map[int64]int64, versions map[int64]int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for userID, balance := range balances {
		acc := l.accounts[userID]
		if acc == nil {
			acc = &account{}
			l.accounts[userID] = acc
		}
		acc.mu.Lock()
		acc.balance = balance
		if v := versions[userID]; v > acc.version {
			acc.version = v
		}
		acc.mu.Unlock()
	}
}

type Entry struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
	Version int64 `json:"version"`
}

// Snapshot returns every known account ordered by user id.
func (l *Ledger) Snapshot() []Entry {
	l.mu.RLock()
	ids := make([]int64, 0, len(l.accounts))
	accs := make(map[int64]*account, len(l.accounts))
	for id, acc := range l.accounts {
		ids = append(ids, id)
		accs[id] = acc
	}
	l.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		acc := accs[id]
		acc.mu.Lock()
		out = append(out, Entry{UserID: id, Balance: acc.balance, Version: acc.version})
		acc.mu.Unlock()
	}
	return out
}

// Total is the sum of all balances.
func (l *Ledger) Total() int64 {
	var sum int64
	for _, e := range l.Snapshot() {
		sum += e.Balance
	}
	return sum
}

// Resync re-emits the current balance of every account to the sink.
func (l *Ledger) Resync() int {
	entries := l.Snapshot()
	if l.sink == nil {
		return 0
	}
	for _, e := range entries {
		l.sink.SaveBalance(e.UserID, e.Balance, e.Version)
	}
	return len(entries)
}

func (l *Ledger) commit(userID int64, acc *account, balance int64) {
	acc.balance = balance
	acc.version++
	if l.sink != nil {
		l.sink.SaveBalance(userID, balance, acc.version)
	}
}
