package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

type disclosureService struct {
	identities ports.IdentityReader
	unlocks    ports.UnlockService
	log        zerolog.Logger
}

// NewDisclosureService returns the DisclosureService implementation. It
// resolves ownership and unlock state, then delegates the actual redaction to
// the pure domain.Redact policy.
func NewDisclosureService(identities ports.IdentityReader, unlocks ports.UnlockService, log zerolog.Logger) ports.DisclosureService {
	return &disclosureService{identities: identities, unlocks: unlocks, log: log}
}

func (s *disclosureService) ViewIdentity(ctx context.Context, viewer ports.Caller, subjectID string) (*domain.DisclosureView, error) {
	identity, err := s.identities.GetIdentity(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	isOwn := viewer.AccountID != "" && viewer.AccountID == subjectID

	unlocked := false
	if !isOwn && viewer.Role == domain.RoleProfessional {
		unlocked, err = s.unlocks.HasUnlock(ctx, viewer.AccountID, subjectID)
		if err != nil {
			// Fail closed: an unreachable grant store yields the restricted
			// view, not an error page with leaked fields.
			s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("unlock lookup failed, serving restricted view")
			unlocked = false
		}
	}

	view := domain.Redact(*identity, viewer.Role, isOwn, unlocked)
	return &view, nil
}
