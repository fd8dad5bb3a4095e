package delivery

import (
	"context"
	"fmt"
)

// Truncator bounds store size per resource type by evicting the oldest
// entries beyond MaxItems.
type Truncator struct {
	store Store
	cfg   Config
	guard resourceGuard
}

// NewTruncator constructs a Truncator with defaults and optional settings.
func NewTruncator(store Store, opts ...Option) *Truncator {
	if store == nil {
		panic("delivery: nil Store")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return newTruncator(store, cfg.withDefaults())
}

func newTruncator(store Store, cfg Config) *Truncator {
	return &Truncator{store: store, cfg: cfg}
}

// Truncate runs one truncation pass for the resource type and reports
// whether the pass ran. A pass already in flight coalesces the trigger and
// returns false; the next completed pass restores the bound, so bursts of
// triggers may run fewer passes than triggers without losing correctness.
//
// Removal failures are reported to the ErrorSink and do not abort the rest
// of the batch.
func (t *Truncator) Truncate(ctx context.Context, resource ResourceType) bool {
	if !t.guard.acquire(resource) {
		return false
	}
	defer t.guard.release(resource)

	ids, err := t.store.List(ctx, resource)
	if err != nil {
		t.cfg.Sink.Report(ctx, fmt.Errorf("delivery truncate %s: list failed: %w", resource, err))

		return true
	}

	overflow := len(ids) - t.cfg.MaxItems
	if overflow <= 0 {
		return true
	}

	removed := 0
	for _, id := range ids[:overflow] {
		if err := t.store.Remove(ctx, id); err != nil {
			t.cfg.Sink.Report(ctx, fmt.Errorf("delivery truncate %s: remove %s failed: %w", resource, id, err))

			continue
		}
		removed++
	}

	t.cfg.Metrics.AddTruncated(resource, removed)
	t.cfg.Logger.Debug("delivery queue truncated", "resource", resource, "evicted", removed)

	return true
}
