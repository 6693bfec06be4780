package ports

import (
	"context"
	"time"
)

// PaymentNotificationKind distinguishes the two intake entry points.
type PaymentNotificationKind string

const (
	PaymentConfirmed PaymentNotificationKind = "confirmed"
	RefundConfirmed  PaymentNotificationKind = "refunded"
)

// PaymentNotificationInput is the DTO for an asynchronous payment
// notification flowing from the intake endpoints through the dispatcher.
type PaymentNotificationInput struct {
	Kind           PaymentNotificationKind
	ProfessionalID string
	Units          int64
	Reference      string
	ReceivedAt     time.Time
}

// CreditService converts confirmed external payment events into ledger
// credits. The payment gateway itself is an external collaborator; by the
// time these methods run, money has already moved.
type CreditService interface {
	// PaymentConfirmed credits units purchased under the given payment
	// reference. Replays of the same reference fail with
	// domain.ErrDuplicatePayment and write nothing; callers treat that as
	// success. Returns the new balance.
	PaymentConfirmed(ctx context.Context, professionalID string, units int64, paymentReference string) (int64, error)

	// RefundConfirmed debits units returned to the payment provider. The
	// only store-side invariant is that the balance stays ≥ 0; whether the
	// refunded units were still unspent is the operator's business rule.
	RefundConfirmed(ctx context.Context, professionalID string, units int64, paymentReference string) (int64, error)

	// Adjust appends an operator ADJUSTMENT entry (positive or negative).
	// Reference is optional and typically carries a support ticket id.
	Adjust(ctx context.Context, professionalID string, delta int64, reference string) (int64, error)
}
