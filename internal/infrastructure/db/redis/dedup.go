package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// PaymentDedup provides a fast-path idempotency check for payment
// notifications. The ledger's unique index on the payment reference is the
// durable guarantee; this just short-circuits the common webhook replay
// without a store round-trip. Key format: payment:ref:<payment_reference>
type PaymentDedup struct {
	client *redis.Client
}

// NewPaymentDedup creates a PaymentDedup wrapping the given Redis client.
func NewPaymentDedup(client *redis.Client) *PaymentDedup {
	return &PaymentDedup{client: client}
}

// IsDuplicate reports whether this payment reference was recently credited.
func (d *PaymentDedup) IsDuplicate(ctx context.Context, paymentReference string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(paymentReference)).Result()
	if err != nil {
		return false, fmt.Errorf("payment dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this payment reference has been credited (expires after
// dedupTTL; the ledger index covers replays beyond that).
func (d *PaymentDedup) Mark(ctx context.Context, paymentReference string) error {
	return d.client.Set(ctx, d.key(paymentReference), "1", dedupTTL).Err()
}

func (d *PaymentDedup) key(paymentReference string) string {
	return "payment:ref:" + paymentReference
}
