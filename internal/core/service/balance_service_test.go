package service

import (
	"context"
	"testing"

	"github.com/prolink/credits-system/internal/core/domain"
)

func TestBalanceService_UnknownProfessionalIsZero(t *testing.T) {
	svc := NewBalanceService(newStubStore(), discardLogger)

	balance, err := svc.BalanceOf(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected 0 for unknown professional, got %d", balance)
	}
}

func TestBalanceService_HistoryRunningBalance(t *testing.T) {
	store := newStubStore()
	credits := NewCreditService(store, nil, discardLogger)
	unlocks := NewUnlockService(store, store, conversationsWith([2]string{"pro-1", "client-1"}), nil, discardLogger)
	svc := NewBalanceService(store, discardLogger)

	if _, err := credits.PaymentConfirmed(context.Background(), "pro-1", 10, "ref-1"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := unlocks.TrySpendAndUnlock(context.Background(), spendInput("pro-1", "client-1")); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if _, err := credits.RefundConfirmed(context.Background(), "pro-1", 2, "ref-1"); err != nil {
		t.Fatalf("refund: %v", err)
	}

	items, err := svc.History(context.Background(), "pro-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	wantReasons := []string{string(domain.ReasonPurchase), string(domain.ReasonUnlock), string(domain.ReasonRefund)}
	wantRunning := []int64{10, 9, 7}
	for i, item := range items {
		if item.Reason != wantReasons[i] {
			t.Fatalf("item %d: expected reason %s, got %s", i, wantReasons[i], item.Reason)
		}
		if item.RunningBalance != wantRunning[i] {
			t.Fatalf("item %d: expected running balance %d, got %d", i, wantRunning[i], item.RunningBalance)
		}
		if item.Reference == "" {
			t.Fatalf("item %d: expected a reference", i)
		}
	}

	// The projection's final running balance matches the authoritative read.
	balance, _ := svc.BalanceOf(context.Background(), "pro-1")
	if balance != items[len(items)-1].RunningBalance {
		t.Fatalf("projection diverged from balance: %d vs %d", balance, items[len(items)-1].RunningBalance)
	}
}
