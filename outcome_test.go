package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDefaultClassifier(t *testing.T) {
	ctx := context.Background()

	if got := defaultClassifier(ctx, Payload{}, nil); got != OutcomeSuccess {
		t.Fatalf("expected success for nil error, got %d", got)
	}
	if got := defaultClassifier(ctx, Payload{}, errors.New("timeout")); got != OutcomeRetryable {
		t.Fatalf("expected retryable for plain error, got %d", got)
	}
	if got := defaultClassifier(ctx, Payload{}, Permanent(errors.New("bad key"))); got != OutcomePermanent {
		t.Fatalf("expected permanent for wrapped error, got %d", got)
	}

	wrapped := fmt.Errorf("send errors: %w", Permanent(errors.New("bad key")))
	if got := defaultClassifier(ctx, Payload{}, wrapped); got != OutcomePermanent {
		t.Fatalf("expected permanent to survive wrapping, got %d", got)
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Fatalf("expected Permanent(nil) to be nil")
	}

	inner := errors.New("bad key")
	err := Permanent(inner)
	if !errors.Is(err, ErrPermanentDelivery) {
		t.Fatalf("expected errors.Is to match ErrPermanentDelivery")
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected the original error to stay reachable")
	}
	if err.Error() != inner.Error() {
		t.Fatalf("expected message %q, got %q", inner.Error(), err.Error())
	}
}
