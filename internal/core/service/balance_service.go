package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/core/ports"
)

type balanceService struct {
	ledger ports.LedgerRepository
	log    zerolog.Logger
}

// NewBalanceService returns the read-only balance and history projection.
func NewBalanceService(ledger ports.LedgerRepository, log zerolog.Logger) ports.BalanceService {
	return &balanceService{ledger: ledger, log: log}
}

func (s *balanceService) BalanceOf(ctx context.Context, professionalID string) (int64, error) {
	balance, err := s.ledger.BalanceOf(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("balance lookup: %w", err)
	}
	return balance, nil
}

// History walks the professional's ledger oldest-first and decorates each
// entry with the balance after it applied. Display only; never consulted for
// authorization.
func (s *balanceService) History(ctx context.Context, professionalID string) ([]ports.HistoryItem, error) {
	entries, err := s.ledger.ListEntries(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	items := make([]ports.HistoryItem, 0, len(entries))
	var running int64
	for _, entry := range entries {
		running += entry.Delta
		items = append(items, ports.HistoryItem{
			EntryID:        entry.ID,
			Delta:          entry.Delta,
			Reason:         string(entry.Reason),
			Reference:      entry.ReferenceID,
			CreatedAt:      entry.CreatedAt,
			RunningBalance: running,
		})
	}
	return items, nil
}
