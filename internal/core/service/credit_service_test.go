package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prolink/credits-system/internal/core/domain"
)

type stubPaymentDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newStubPaymentDedup() *stubPaymentDedup {
	return &stubPaymentDedup{seen: make(map[string]bool)}
}

func (d *stubPaymentDedup) IsDuplicate(_ context.Context, ref string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	return d.seen[ref], nil
}

func (d *stubPaymentDedup) Mark(_ context.Context, ref string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[ref] = true
	return nil
}

func TestCreditService_PaymentConfirmed(t *testing.T) {
	store := newStubStore()
	svc := NewCreditService(store, newStubPaymentDedup(), discardLogger)

	balance, err := svc.PaymentConfirmed(context.Background(), "pro-1", 25, "ref-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 25 {
		t.Fatalf("expected balance 25, got %d", balance)
	}
	if n := store.countByReason(domain.ReasonPurchase); n != 1 {
		t.Fatalf("expected 1 PURCHASE entry, got %d", n)
	}
}

func TestCreditService_DuplicatePaymentReplay(t *testing.T) {
	store := newStubStore()
	svc := NewCreditService(store, newStubPaymentDedup(), discardLogger)

	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 25, "ref-1"); err != nil {
		t.Fatalf("first notification: %v", err)
	}
	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 25, "ref-1"); !errors.Is(err, domain.ErrDuplicatePayment) {
		t.Fatalf("expected ErrDuplicatePayment, got %v", err)
	}

	if balance, _ := store.BalanceOf(context.Background(), "pro-1"); balance != 25 {
		t.Fatalf("replay must not double-credit: balance %d", balance)
	}
	if n := store.countByReason(domain.ReasonPurchase); n != 1 {
		t.Fatalf("expected 1 PURCHASE entry, got %d", n)
	}
}

// The ledger's reference uniqueness must hold even when the fast-path dedup
// store is down.
func TestCreditService_DuplicateCaughtByLedgerWhenDedupFails(t *testing.T) {
	store := newStubStore()
	dedup := newStubPaymentDedup()
	dedup.err = errors.New("redis down")
	svc := NewCreditService(store, dedup, discardLogger)

	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 10, "ref-2"); err != nil {
		t.Fatalf("first notification: %v", err)
	}
	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 10, "ref-2"); !errors.Is(err, domain.ErrDuplicatePayment) {
		t.Fatalf("expected ErrDuplicatePayment from ledger, got %v", err)
	}
	if balance, _ := store.BalanceOf(context.Background(), "pro-1"); balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}
}

func TestCreditService_PaymentValidation(t *testing.T) {
	svc := NewCreditService(newStubStore(), nil, discardLogger)

	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 0, "ref-1"); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("zero units: expected ErrInvalidEntry, got %v", err)
	}
	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", -5, "ref-1"); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("negative units: expected ErrInvalidEntry, got %v", err)
	}
	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 5, ""); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("missing reference: expected ErrInvalidEntry, got %v", err)
	}
}

func TestCreditService_RefundConfirmed(t *testing.T) {
	store := newStubStore()
	svc := NewCreditService(store, nil, discardLogger)

	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 10, "ref-1"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, err := svc.RefundConfirmed(context.Background(), "pro-1", 4, "ref-1")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if balance != 6 {
		t.Fatalf("expected balance 6, got %d", balance)
	}
	if n := store.countByReason(domain.ReasonRefund); n != 1 {
		t.Fatalf("expected 1 REFUND entry, got %d", n)
	}
}

func TestCreditService_RefundCannotGoNegative(t *testing.T) {
	store := newStubStore()
	svc := NewCreditService(store, nil, discardLogger)

	if _, err := svc.PaymentConfirmed(context.Background(), "pro-1", 3, "ref-1"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := svc.RefundConfirmed(context.Background(), "pro-1", 5, "ref-1"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if balance, _ := store.BalanceOf(context.Background(), "pro-1"); balance != 3 {
		t.Fatalf("failed refund must not change balance: %d", balance)
	}
}

func TestCreditService_Adjust(t *testing.T) {
	store := newStubStore()
	svc := NewCreditService(store, nil, discardLogger)

	balance, err := svc.Adjust(context.Background(), "pro-1", 5, "ticket-77")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if balance != 5 {
		t.Fatalf("expected balance 5, got %d", balance)
	}

	if _, err := svc.Adjust(context.Background(), "pro-1", -10, "ticket-78"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("negative adjustment below zero: expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := svc.Adjust(context.Background(), "pro-1", 0, ""); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("zero adjustment: expected ErrInvalidEntry, got %v", err)
	}
}
