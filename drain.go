package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Drainer attempts delivery of pending payloads through a Transport, oldest
// first, with at most one attempt in flight per resource type. Independent
// resource types drain concurrently and never block one another.
type Drainer struct {
	store     Store
	transport Transport
	cfg       Config
	guard     resourceGuard

	pendingMu sync.Mutex
	pendingAt map[ResourceType]time.Time
}

// NewDrainer constructs a Drainer with defaults and optional settings.
func NewDrainer(store Store, transport Transport, opts ...Option) *Drainer {
	if store == nil {
		panic("delivery: nil Store")
	}
	if transport == nil {
		panic("delivery: nil Transport")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return newDrainer(store, transport, cfg.withDefaults())
}

func newDrainer(store Store, transport Transport, cfg Config) *Drainer {
	return &Drainer{
		store:     store,
		transport: transport,
		cfg:       cfg,
		pendingAt: make(map[ResourceType]time.Time),
	}
}

// Run drains the configured resource types until the context is canceled,
// with one worker per resource type and a drain pass every poll interval.
func (d *Drainer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(d.cfg.Resources))
	var wg sync.WaitGroup

	for _, resource := range d.cfg.Resources {
		wg.Add(1)
		go func(resource ResourceType) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("%w: %v", ErrDrainPanic, rec)
					d.cfg.Logger.Error("delivery drain panic", "resource", resource, "panic", rec)
					errCh <- err
					cancel()
				}
			}()

			if err := d.drainResource(ctx, resource); err != nil && !errors.Is(err, context.Canceled) {
				d.cfg.Logger.Error("delivery drain error", "resource", resource, "err", err)
				errCh <- err
				cancel()
			}
		}(resource)
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (d *Drainer) drainResource(ctx context.Context, resource ResourceType) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.DrainOnce(ctx, resource)
		if err := d.sleep(ctx, d.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// Kick schedules an asynchronous drain pass for the resource type. A trigger
// arriving while a pass is in flight is coalesced into it. A panicking
// transport or store is recovered and reported to the ErrorSink; it never
// escapes into the host application.
func (d *Drainer) Kick(resource ResourceType) {
	go func() {
		defer d.recoverPanic(resource)
		d.DrainOnce(context.Background(), resource)
	}()
}

func (d *Drainer) recoverPanic(resource ResourceType) {
	if rec := recover(); rec != nil {
		d.cfg.Logger.Error("delivery drain panic", "resource", resource, "panic", rec)
		d.cfg.Sink.Report(context.Background(), fmt.Errorf("%w: %v", ErrDrainPanic, rec))
	}
}

// DrainOnce drains one resource type until its queue is empty or a retryable
// failure leaves the head in place. It reports whether any delivery attempt
// was made; when a pass is already in flight the call is a no-op returning
// false. Failures never propagate: every failure path ends in the ErrorSink.
func (d *Drainer) DrainOnce(ctx context.Context, resource ResourceType) bool {
	if !d.guard.acquire(resource) {
		return false
	}
	defer d.guard.release(resource)

	attempted := d.drain(ctx, resource)
	d.maybeRecordPending(ctx, resource)

	return attempted
}

func (d *Drainer) drain(ctx context.Context, resource ResourceType) bool {
	attempted := false
	for {
		if ctx.Err() != nil {
			return attempted
		}

		payload, err := d.store.Peek(ctx, resource)
		if err != nil {
			if !errors.Is(err, ErrNoPayloads) {
				d.cfg.Sink.Report(ctx, fmt.Errorf("delivery peek %s failed: %w", resource, err))
			}

			return attempted
		}

		attempted = true
		outcome, attemptErr := d.attempt(ctx, payload)
		if attemptErr != nil && ctx.Err() != nil {
			// The attempt lost to cancellation, not to the collector; the
			// payload stays queued untouched and is re-attempted later.
			return attempted
		}

		if !d.settle(ctx, payload, outcome, attemptErr) {
			return attempted
		}
	}
}

func (d *Drainer) attempt(ctx context.Context, payload Payload) (Outcome, error) {
	start := time.Now()
	defer func() {
		d.cfg.Metrics.ObserveAttemptDuration(payload.Resource, time.Since(start))
	}()

	sendCtx := ctx
	cancel := func() {}
	if d.cfg.AttemptTimeout > 0 {
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.AttemptTimeout)
	}
	err := d.transport.Send(sendCtx, payload)
	cancel()

	outcome := d.cfg.Classifier(ctx, payload, err)
	if outcome == OutcomeRetryable && d.cfg.MaxRetries > 0 && payload.Retries+1 >= d.cfg.MaxRetries {
		outcome = OutcomePermanent
	}

	return outcome, err
}

// settle applies the classified outcome and reports whether the pass should
// continue with the next payload.
func (d *Drainer) settle(ctx context.Context, payload Payload, outcome Outcome, attemptErr error) bool {
	switch outcome {
	case OutcomeSuccess:
		if err := d.store.Remove(ctx, payload.ID); err != nil {
			d.cfg.Sink.Report(ctx, fmt.Errorf("delivery remove %s failed: %w", payload.ID, err))

			return false
		}
		d.cfg.Metrics.AddDelivered(payload.Resource, 1)
		d.cfg.Logger.Debug("payload delivered", "resource", payload.Resource, "id", payload.ID)

		return true

	case OutcomePermanent:
		d.cfg.Sink.Report(ctx, fmt.Errorf("delivery dropping payload %s after %d retries: %w", payload.ID, payload.Retries, attemptErr))
		if err := d.store.Remove(ctx, payload.ID); err != nil {
			d.cfg.Sink.Report(ctx, fmt.Errorf("delivery remove %s failed: %w", payload.ID, err))

			return false
		}
		d.cfg.Metrics.AddDropped(payload.Resource, 1)

		return true

	default:
		// Retryable: the payload keeps its position so later payloads that
		// depend on causal ordering are not delivered ahead of it. The pass
		// ends here; re-attempting the same head immediately would spin.
		retries := payload.Retries + 1
		if err := d.store.Update(ctx, payload.ID, PayloadUpdate{Retries: &retries}); err != nil {
			d.cfg.Sink.Report(ctx, fmt.Errorf("delivery retry update %s failed: %w", payload.ID, err))
		}
		d.cfg.Metrics.AddRetried(payload.Resource, 1)
		d.cfg.Logger.Debug("payload delivery failed", "resource", payload.Resource, "id", payload.ID, "retries", retries, "err", attemptErr)

		return false
	}
}

func (d *Drainer) maybeRecordPending(ctx context.Context, resource ResourceType) {
	if d.cfg.PendingInterval <= 0 {
		return
	}
	if ctx.Err() != nil {
		return
	}

	now := d.cfg.Clock.Now()
	d.pendingMu.Lock()
	last := d.pendingAt[resource]
	if !last.IsZero() && now.Before(last.Add(d.cfg.PendingInterval)) {
		d.pendingMu.Unlock()

		return
	}
	d.pendingAt[resource] = now
	d.pendingMu.Unlock()

	ids, err := d.store.List(ctx, resource)
	if err != nil {
		d.cfg.Logger.Warn("delivery pending count failed", "resource", resource, "err", err)

		return
	}

	d.cfg.Metrics.SetPending(resource, len(ids))
}

func (d *Drainer) sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
