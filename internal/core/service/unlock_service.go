package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// GrantCache is a fast-path lookup for unlock grants (Redis). Grants never
// expire or get revoked, so positive cache entries are safe indefinitely; a
// cache miss or error always falls through to the store.
type GrantCache interface {
	Has(ctx context.Context, professionalID, clientID string) (bool, error)
	Set(ctx context.Context, professionalID, clientID string) error
}

type unlockService struct {
	unlocks       ports.UnlockRepository
	ledger        ports.LedgerRepository
	conversations ports.ConversationReader
	cache         GrantCache
	log           zerolog.Logger
}

// NewUnlockService returns the UnlockService implementation backed by the
// given stores. cache may be nil.
func NewUnlockService(
	unlocks ports.UnlockRepository,
	ledger ports.LedgerRepository,
	conversations ports.ConversationReader,
	cache GrantCache,
	log zerolog.Logger,
) ports.UnlockService {
	return &unlockService{
		unlocks:       unlocks,
		ledger:        ledger,
		conversations: conversations,
		cache:         cache,
		log:           log,
	}
}

// TrySpendAndUnlock runs the LOCKED → UNLOCKED transition for one
// (professional, client) pair. The debit and the grant happen in a single
// store transaction; a concurrent loser detects the winner's grant and
// returns it as the idempotent result instead of erroring.
func (s *unlockService) TrySpendAndUnlock(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
	if err := s.authorize(ctx, input); err != nil {
		return nil, err
	}

	pro, client := input.ProfessionalID, input.ClientID

	// 1. Idempotent fast path: an existing grant costs nothing.
	if grant, err := s.unlocks.FindGrant(ctx, pro, client); err == nil {
		return s.alreadyUnlocked(ctx, grant)
	} else if !errors.Is(err, domain.ErrGrantNotFound) {
		return nil, fmt.Errorf("unlock lookup: %w", err)
	}

	// 2. Spend one unit and create the grant atomically.
	grant, remaining, err := s.unlocks.SpendAndGrant(ctx, pro, client)
	if err != nil {
		// Lost the race for the pair: the winner's grant is the result.
		if errors.Is(err, domain.ErrAlreadyUnlocked) {
			winner, findErr := s.unlocks.FindGrant(ctx, pro, client)
			if findErr != nil {
				return nil, fmt.Errorf("unlock re-read after race: %w", findErr)
			}
			return s.alreadyUnlocked(ctx, winner)
		}
		if errors.Is(err, domain.ErrInsufficientBalance) {
			s.log.Info().Str("professional_id", pro).Str("client_id", client).Msg("unlock rejected: no units")
			return nil, domain.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("spend and grant: %w", err)
	}

	s.cacheGrant(ctx, pro, client)
	s.log.Info().
		Str("professional_id", pro).
		Str("client_id", client).
		Str("grant_id", grant.ID).
		Int64("remaining_balance", remaining).
		Msg("contact unlocked")

	return &ports.UnlockResult{
		RemainingBalance: remaining,
		GrantedAt:        grant.GrantedAt,
	}, nil
}

// HasUnlock reports whether the pair is unlocked, consulting the cache first.
func (s *unlockService) HasUnlock(ctx context.Context, professionalID, clientID string) (bool, error) {
	if s.cache != nil {
		if hit, err := s.cache.Has(ctx, professionalID, clientID); err == nil && hit {
			return true, nil
		}
	}

	_, err := s.unlocks.FindGrant(ctx, professionalID, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrGrantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("unlock lookup: %w", err)
	}

	s.cacheGrant(ctx, professionalID, clientID)
	return true, nil
}

// authorize rejects callers spending someone else's units or targeting a
// client they have no conversation with.
func (s *unlockService) authorize(ctx context.Context, input ports.SpendUnlockInput) error {
	if input.Caller.Role != domain.RoleProfessional {
		return domain.ErrForbidden
	}
	if input.Caller.AccountID == "" || input.Caller.AccountID != input.ProfessionalID {
		return domain.ErrForbidden
	}
	if input.ClientID == "" {
		return domain.ErrForbidden
	}

	ok, err := s.conversations.Exists(ctx, input.ProfessionalID, input.ClientID)
	if err != nil {
		return fmt.Errorf("conversation lookup: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (s *unlockService) alreadyUnlocked(ctx context.Context, grant *domain.UnlockGrant) (*ports.UnlockResult, error) {
	s.cacheGrant(ctx, grant.ProfessionalID, grant.ClientID)

	balance, err := s.ledger.BalanceOf(ctx, grant.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("balance lookup: %w", err)
	}
	return &ports.UnlockResult{
		AlreadyUnlocked:  true,
		RemainingBalance: balance,
		GrantedAt:        grant.GrantedAt,
	}, nil
}

// cacheGrant is best effort; the store is the source of truth.
func (s *unlockService) cacheGrant(ctx context.Context, professionalID, clientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, professionalID, clientID); err != nil {
		s.log.Warn().Err(err).Str("professional_id", professionalID).Msg("failed to cache unlock grant")
	}
}
