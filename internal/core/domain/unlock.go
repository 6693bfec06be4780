package domain

import "time"

// UnlockGrant records that a professional may see a client's full identity.
// At most one grant exists per (professional, client) pair; grants never
// expire and are never revoked. Each grant references the UNLOCK ledger entry
// that paid for it.
type UnlockGrant struct {
	ID             string    `json:"id" bson:"_id"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	LedgerEntryID  string    `json:"ledger_entry_id" bson:"ledger_entry_id"`
	GrantedAt      time.Time `json:"granted_at" bson:"granted_at"`
}
