package ports

import (
	"context"

	"github.com/prolink/credits-system/internal/core/domain"
)

// LedgerRepository is the durable, append-only store for unit ledger entries.
//
// Append must be atomic per professional: the entry insert and the balance
// effect are applied as one unit, and a debit that would take the balance
// below zero fails with domain.ErrInsufficientBalance without writing
// anything. A PURCHASE or REFUND entry whose reference was already recorded
// fails with domain.ErrDuplicatePayment.
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
	// BalanceOf returns the professional's current unit balance. Unknown
	// professionals have balance 0, not an error.
	BalanceOf(ctx context.Context, professionalID string) (int64, error)
	// ListEntries returns all entries for a professional ordered by
	// created_at ascending. Reporting only; authorization decisions always
	// go through BalanceOf or the grant store.
	ListEntries(ctx context.Context, professionalID string) ([]*domain.LedgerEntry, error)
}
