package ports

import (
	"context"

	"github.com/prolink/credits-system/internal/core/domain"
)

// UnlockRepository stores unlock grants and performs the compound
// spend-and-grant write.
type UnlockRepository interface {
	// FindGrant returns the grant for the pair, or domain.ErrGrantNotFound.
	FindGrant(ctx context.Context, professionalID, clientID string) (*domain.UnlockGrant, error)

	// SpendAndGrant atomically debits one unit and creates the grant for the
	// pair. Exactly one concurrent caller per pair can succeed; losers get
	// domain.ErrAlreadyUnlocked and must re-read the winner's grant. A zero
	// balance fails with domain.ErrInsufficientBalance and writes nothing.
	// On success it returns the new grant and the remaining balance.
	SpendAndGrant(ctx context.Context, professionalID, clientID string) (*domain.UnlockGrant, int64, error)
}

// ConversationReader answers whether a professional has an active
// conversation with a client. Owned by the messaging surface; read-only here.
type ConversationReader interface {
	Exists(ctx context.Context, professionalID, clientID string) (bool, error)
}

// IdentityReader provides read-only access to the profile store's identity
// records.
type IdentityReader interface {
	// GetIdentity returns the identity for a user, or domain.ErrIdentityNotFound.
	GetIdentity(ctx context.Context, userID string) (*domain.Identity, error)
}
