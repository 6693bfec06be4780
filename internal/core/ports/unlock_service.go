package ports

import (
	"context"
	"time"
)

// Caller identifies the authenticated actor behind a request, as extracted
// from the JWT claims.
type Caller struct {
	Role      string
	AccountID string
}

// SpendUnlockInput carries everything needed to attempt an unlock.
// ProfessionalID is the professional being charged; the service rejects
// callers acting on behalf of anyone but themselves.
type SpendUnlockInput struct {
	Caller         Caller
	ProfessionalID string
	ClientID       string
}

// UnlockResult is returned by TrySpendAndUnlock. AlreadyUnlocked reports the
// idempotent path: the grant existed before this call and nothing was
// debited.
type UnlockResult struct {
	AlreadyUnlocked  bool
	RemainingBalance int64
	GrantedAt        time.Time
}

// UnlockService is the contact-unlock state machine. Per (professional,
// client) pair the state goes LOCKED → UNLOCKED exactly once and never back.
type UnlockService interface {
	// TrySpendAndUnlock spends one unit to unlock the client's contact data,
	// or confirms an existing grant without touching the ledger. Errors:
	// domain.ErrForbidden, domain.ErrInsufficientBalance.
	TrySpendAndUnlock(ctx context.Context, input SpendUnlockInput) (*UnlockResult, error)

	// HasUnlock reports whether a grant exists for the pair.
	HasUnlock(ctx context.Context, professionalID, clientID string) (bool, error)
}
