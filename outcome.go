package delivery

import (
	"context"
	"errors"
)

// Outcome classifies the result of one delivery attempt.
type Outcome int

const (
	// OutcomeSuccess removes the payload from the queue.
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable keeps the payload at its position and increments its
	// retry count.
	OutcomeRetryable
	// OutcomePermanent drops the payload and reports the failure, so a
	// single poison payload cannot block its queue.
	OutcomePermanent
)

// OutcomeClassifier maps a transport result to an Outcome.
type OutcomeClassifier func(ctx context.Context, payload Payload, err error) Outcome

// defaultClassifier treats nil as success, Permanent-wrapped errors as
// permanent, and everything else as retryable.
func defaultClassifier(_ context.Context, _ Payload, err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrPermanentDelivery):
		return OutcomePermanent
	default:
		return OutcomeRetryable
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func (e *permanentError) Is(target error) bool {
	return target == ErrPermanentDelivery
}

// Permanent wraps a transport error so the default classifier treats it as
// non-retryable. Permanent(nil) returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}
