package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/prolink/credits-system/internal/api/metrics"
	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes payment notifications to a fixed set of workers using
// consistent hashing on the professional id, guaranteeing per-professional
// intake ordering (a refund never overtakes the purchase it reverses).
type Dispatcher struct {
	workers []chan ports.PaymentNotificationInput
	credits ports.CreditService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, credits ports.CreditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PaymentNotificationInput, numWorkers),
		credits: credits,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PaymentNotificationInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a notification to the worker responsible for its
// professional. The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(n ports.PaymentNotificationInput) {
	idx := d.shardIndex(n.ProfessionalID)
	d.workers[idx] <- n
	metrics.IntakeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple notifications preserving per-professional
// ordering.
func (d *Dispatcher) EnqueueBatch(ns []ports.PaymentNotificationInput) {
	for _, n := range ns {
		d.Enqueue(n)
	}
}

// shardIndex maps a professional id deterministically to a worker index.
func (d *Dispatcher) shardIndex(professionalID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(professionalID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PaymentNotificationInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, n)
			metrics.IntakeQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, n ports.PaymentNotificationInput) {
	var err error
	switch n.Kind {
	case ports.RefundConfirmed:
		_, err = d.credits.RefundConfirmed(ctx, n.ProfessionalID, n.Units, n.Reference)
	default:
		_, err = d.credits.PaymentConfirmed(ctx, n.ProfessionalID, n.Units, n.Reference)
	}
	if err != nil {
		// A replayed reference is the expected webhook retry case, not a failure.
		if errors.Is(err, domain.ErrDuplicatePayment) {
			metrics.PaymentsDuplicateTotal.Inc()
			d.log.Debug().
				Str("reference", n.Reference).
				Int("worker_id", id).
				Msg("duplicate payment notification absorbed")
			return
		}
		metrics.IntakeErrorsTotal.WithLabelValues(string(n.Kind)).Inc()
		d.log.Error().Err(err).
			Str("professional_id", n.ProfessionalID).
			Str("reference", n.Reference).
			Int("worker_id", id).
			Msg("payment notification processing failed")
		return
	}
	metrics.PaymentsProcessedTotal.WithLabelValues(string(n.Kind)).Inc()
}
