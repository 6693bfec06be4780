package ports

import (
	"context"

	"github.com/prolink/credits-system/internal/core/domain"
)

// DisclosureService resolves the viewer's relationship to a subject identity
// (ownership, role, unlock state) and applies the pure redaction policy.
type DisclosureService interface {
	// ViewIdentity returns the redacted view of subjectID's identity for the
	// given viewer. Errors: domain.ErrIdentityNotFound.
	ViewIdentity(ctx context.Context, viewer Caller, subjectID string) (*domain.DisclosureView, error)
}
