package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// End-to-end flows across the credit intake, the unlock state machine, and the
// disclosure policy, wired against the in-memory store.

func TestScenario_PurchaseUnlockDisclose(t *testing.T) {
	store := newStubStore()
	conv := conversationsWith([2]string{"pro-1", "client-1"})
	credits := NewCreditService(store, newStubPaymentDedup(), discardLogger)
	unlocks := NewUnlockService(store, store, conv, nil, discardLogger)
	disclosure := NewDisclosureService(identityFixture(), unlocks, discardLogger)
	ctx := context.Background()

	if balance, _ := store.BalanceOf(ctx, "pro-1"); balance != 0 {
		t.Fatalf("expected empty starting balance, got %d", balance)
	}

	balance, err := credits.PaymentConfirmed(ctx, "pro-1", 25, "ref-1")
	if err != nil || balance != 25 {
		t.Fatalf("payment: balance %d err %v", balance, err)
	}

	result, err := unlocks.TrySpendAndUnlock(ctx, spendInput("pro-1", "client-1"))
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if result.RemainingBalance != 24 {
		t.Fatalf("expected balance 24, got %d", result.RemainingBalance)
	}

	view, err := disclosure.ViewIdentity(ctx, proCaller("pro-1"), "client-1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.FullName == "" || view.Email == "" || view.Phone == "" {
		t.Fatalf("expected full identity after unlock: %+v", view)
	}
}

func TestScenario_BrokeUnlockStaysRestricted(t *testing.T) {
	store := newStubStore()
	conv := conversationsWith([2]string{"pro-1", "client-1"})
	unlocks := NewUnlockService(store, store, conv, nil, discardLogger)
	disclosure := NewDisclosureService(identityFixture(), unlocks, discardLogger)
	ctx := context.Background()

	_, err := unlocks.TrySpendAndUnlock(ctx, spendInput("pro-1", "client-1"))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if balance, _ := store.BalanceOf(ctx, "pro-1"); balance != 0 {
		t.Fatalf("balance must stay 0, got %d", balance)
	}

	view, err := disclosure.ViewIdentity(ctx, proCaller("pro-1"), "client-1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Email != "" || view.Phone != "" || view.FullName != "" {
		t.Fatalf("failed unlock must leave the view restricted: %+v", view)
	}
	if view.DisplayName != "Ana" {
		t.Fatalf("expected first name only, got %q", view.DisplayName)
	}
}

func TestScenario_TimedOutSpendIsSafeToRetry(t *testing.T) {
	store := newStubStore()
	conv := conversationsWith([2]string{"pro-1", "client-1"})
	unlocks := NewUnlockService(store, store, conv, nil, discardLogger)
	ctx := context.Background()

	seedBalance(t, store, "pro-1", 3, "ref-seed")

	// First attempt commits; the caller's response is lost and it retries.
	if _, err := unlocks.TrySpendAndUnlock(ctx, spendInput("pro-1", "client-1")); err != nil {
		t.Fatalf("first attempt: %v", err)
	}

	var retry *ports.UnlockResult
	var err error
	for i := 0; i < 3; i++ {
		retry, err = unlocks.TrySpendAndUnlock(ctx, spendInput("pro-1", "client-1"))
		if err != nil {
			t.Fatalf("retry %d: %v", i, err)
		}
	}
	if !retry.AlreadyUnlocked || retry.RemainingBalance != 2 {
		t.Fatalf("retries must converge on the committed state: %+v", retry)
	}
}
