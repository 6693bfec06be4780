package domain

import "time"

// EntryReason classifies the business event behind a ledger entry.
type EntryReason string

const (
	ReasonPurchase   EntryReason = "PURCHASE"
	ReasonUnlock     EntryReason = "UNLOCK"
	ReasonRefund     EntryReason = "REFUND"
	ReasonAdjustment EntryReason = "ADJUSTMENT"
)

// Valid reports whether the reason is one of the known entry reasons.
func (r EntryReason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonUnlock, ReasonRefund, ReasonAdjustment:
		return true
	}
	return false
}

// LedgerEntry is a single immutable row in a professional's unit ledger.
// A positive delta credits units, a negative delta spends them. Entries are
// append-only: corrections are new REFUND or ADJUSTMENT entries, never edits.
//
// ReferenceID carries the external payment reference for PURCHASE/REFUND
// entries and the unlock grant id for UNLOCK entries; it is empty for
// operator adjustments.
type LedgerEntry struct {
	ID             string      `json:"id" bson:"_id"`
	ProfessionalID string      `json:"professional_id" bson:"professional_id"`
	Delta          int64       `json:"delta" bson:"delta"`
	Reason         EntryReason `json:"reason" bson:"reason"`
	ReferenceID    string      `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
}

// Validate checks the structural invariants of an entry before it is
// appended. A zero delta is a programmer error, not a business outcome.
func (e *LedgerEntry) Validate() error {
	if e.ProfessionalID == "" {
		return ErrInvalidEntry
	}
	if e.Delta == 0 {
		return ErrInvalidEntry
	}
	if !e.Reason.Valid() {
		return ErrInvalidEntry
	}
	return nil
}
