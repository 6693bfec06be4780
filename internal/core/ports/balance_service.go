package ports

import (
	"context"
	"time"
)

// HistoryItem is one row of the payment-history projection: a ledger entry
// decorated for display. RunningBalance is the balance after applying this
// entry, derived while walking the log in order.
type HistoryItem struct {
	EntryID        string
	Delta          int64
	Reason         string
	Reference      string
	CreatedAt      time.Time
	RunningBalance int64
}

// BalanceService is the read-only projection over the ledger. It must never
// be used as the write-side source of truth; authorization re-derives balance
// inside the store's atomic operations.
type BalanceService interface {
	// BalanceOf returns the current unit balance; 0 for unknown professionals.
	BalanceOf(ctx context.Context, professionalID string) (int64, error)
	// History returns the professional's ledger entries, oldest first, with
	// running balances. Display only.
	History(ctx context.Context, professionalID string) ([]HistoryItem, error)
}
