package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

type recordingCreditService struct {
	mu    sync.Mutex
	calls []string
	wg    *sync.WaitGroup
	err   error
}

func (s *recordingCreditService) record(kind, professionalID, reference string) (int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, kind+":"+professionalID+":"+reference)
	s.mu.Unlock()
	s.wg.Done()
	return 0, s.err
}

func (s *recordingCreditService) PaymentConfirmed(ctx context.Context, professionalID string, units int64, reference string) (int64, error) {
	return s.record("confirmed", professionalID, reference)
}

func (s *recordingCreditService) RefundConfirmed(ctx context.Context, professionalID string, units int64, reference string) (int64, error) {
	return s.record("refunded", professionalID, reference)
}

func (s *recordingCreditService) Adjust(ctx context.Context, professionalID string, delta int64, reference string) (int64, error) {
	return s.record("adjusted", professionalID, reference)
}

func waitFor(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notifications to be processed")
	}
}

func TestDispatcher_ShardIndexIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())

	for _, id := range []string{"pro_1", "pro_2", "another-professional"} {
		first := d.shardIndex(id)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard index for %q changed: %d vs %d", id, first, got)
			}
		}
	}
}

func TestDispatcher_PreservesPerProfessionalOrdering(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(4)
	credits := &recordingCreditService{wg: &wg}

	d := NewDispatcher(4, credits, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.EnqueueBatch([]ports.PaymentNotificationInput{
		{Kind: ports.PaymentConfirmed, ProfessionalID: "pro_1", Units: 25, Reference: "pay_1"},
		{Kind: ports.PaymentConfirmed, ProfessionalID: "pro_1", Units: 10, Reference: "pay_2"},
		{Kind: ports.RefundConfirmed, ProfessionalID: "pro_1", Units: 10, Reference: "ref_1"},
		{Kind: ports.PaymentConfirmed, ProfessionalID: "pro_2", Units: 5, Reference: "pay_3"},
	})

	waitFor(t, &wg)

	credits.mu.Lock()
	defer credits.mu.Unlock()

	var pro1 []string
	for _, call := range credits.calls {
		switch call {
		case "confirmed:pro_1:pay_1", "confirmed:pro_1:pay_2", "refunded:pro_1:ref_1":
			pro1 = append(pro1, call)
		}
	}
	want := []string{"confirmed:pro_1:pay_1", "confirmed:pro_1:pay_2", "refunded:pro_1:ref_1"}
	if len(pro1) != len(want) {
		t.Fatalf("expected %d pro_1 calls, got %d", len(want), len(pro1))
	}
	for i := range want {
		if pro1[i] != want[i] {
			t.Fatalf("pro_1 call %d out of order: got %s, want %s", i, pro1[i], want[i])
		}
	}
}

func TestDispatcher_DuplicateDoesNotStopWorker(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	credits := &recordingCreditService{wg: &wg, err: domain.ErrDuplicatePayment}

	d := NewDispatcher(1, credits, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.PaymentNotificationInput{Kind: ports.PaymentConfirmed, ProfessionalID: "pro_1", Units: 25, Reference: "pay_1"})
	d.Enqueue(ports.PaymentNotificationInput{Kind: ports.PaymentConfirmed, ProfessionalID: "pro_1", Units: 25, Reference: "pay_1"})

	waitFor(t, &wg)

	credits.mu.Lock()
	defer credits.mu.Unlock()
	if len(credits.calls) != 2 {
		t.Fatalf("expected both notifications attempted, got %d", len(credits.calls))
	}
}
