package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// PaymentDedup abstracts the fast-path idempotency store (Redis). The ledger's
// unique index on the payment reference is the durable guarantee; the dedup
// store only short-circuits obvious webhook replays.
type PaymentDedup interface {
	IsDuplicate(ctx context.Context, paymentReference string) (bool, error)
	Mark(ctx context.Context, paymentReference string) error
}

type creditService struct {
	ledger ports.LedgerRepository
	dedup  PaymentDedup
	log    zerolog.Logger
}

// NewCreditService returns the CreditService implementation. dedup may be nil.
func NewCreditService(ledger ports.LedgerRepository, dedup PaymentDedup, log zerolog.Logger) ports.CreditService {
	return &creditService{ledger: ledger, dedup: dedup, log: log}
}

// PaymentConfirmed credits purchased units exactly once per payment reference.
func (s *creditService) PaymentConfirmed(ctx context.Context, professionalID string, units int64, paymentReference string) (int64, error) {
	if units <= 0 || paymentReference == "" {
		return 0, domain.ErrInvalidEntry
	}

	if s.dedup != nil {
		if dup, err := s.dedup.IsDuplicate(ctx, paymentReference); err != nil {
			s.log.Warn().Err(err).Str("reference", paymentReference).Msg("payment dedup check failed, falling through to ledger")
		} else if dup {
			s.log.Debug().Str("reference", paymentReference).Msg("duplicate payment notification skipped")
			return 0, domain.ErrDuplicatePayment
		}
	}

	entry, err := s.ledger.Append(ctx, &domain.LedgerEntry{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		Delta:          units,
		Reason:         domain.ReasonPurchase,
		ReferenceID:    paymentReference,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			return 0, domain.ErrDuplicatePayment
		}
		return 0, fmt.Errorf("credit units: %w", err)
	}

	s.markReference(ctx, paymentReference)

	balance, err := s.ledger.BalanceOf(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("balance lookup: %w", err)
	}

	s.log.Info().
		Str("professional_id", professionalID).
		Int64("units", units).
		Str("reference", paymentReference).
		Str("entry_id", entry.ID).
		Int64("balance", balance).
		Msg("units credited")

	return balance, nil
}

// RefundConfirmed debits refunded units. The store only enforces that the
// balance stays non-negative; whether the units were still unspent is decided
// by the operator before this call.
func (s *creditService) RefundConfirmed(ctx context.Context, professionalID string, units int64, paymentReference string) (int64, error) {
	if units <= 0 || paymentReference == "" {
		return 0, domain.ErrInvalidEntry
	}

	entry, err := s.ledger.Append(ctx, &domain.LedgerEntry{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		Delta:          -units,
		Reason:         domain.ReasonRefund,
		ReferenceID:    paymentReference,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("refund units: %w", err)
	}

	balance, err := s.ledger.BalanceOf(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("balance lookup: %w", err)
	}

	s.log.Info().
		Str("professional_id", professionalID).
		Int64("units", units).
		Str("reference", paymentReference).
		Str("entry_id", entry.ID).
		Int64("balance", balance).
		Msg("units refunded")

	return balance, nil
}

// Adjust appends an operator correction entry.
func (s *creditService) Adjust(ctx context.Context, professionalID string, delta int64, reference string) (int64, error) {
	_, err := s.ledger.Append(ctx, &domain.LedgerEntry{
		ID:             uuid.NewString(),
		ProfessionalID: professionalID,
		Delta:          delta,
		Reason:         domain.ReasonAdjustment,
		ReferenceID:    reference,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("adjust units: %w", err)
	}

	balance, err := s.ledger.BalanceOf(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("balance lookup: %w", err)
	}

	s.log.Info().
		Str("professional_id", professionalID).
		Int64("delta", delta).
		Str("reference", reference).
		Msg("balance adjusted")

	return balance, nil
}

func (s *creditService) markReference(ctx context.Context, paymentReference string) {
	if s.dedup == nil {
		return
	}
	if err := s.dedup.Mark(ctx, paymentReference); err != nil {
		s.log.Warn().Err(err).Str("reference", paymentReference).Msg("failed to set payment dedup key")
	}
}
