package delivery

import "context"

// Transport performs the actual network send for one payload.
//
// Ordinary network conditions (unreachable host, timeout, 5xx) must surface
// as plain errors, which the classifier treats as retryable. Use Permanent to
// mark rejections that a retry cannot fix. A Transport must eventually
// resolve; an attempt that hangs forever stalls its resource type.
type Transport interface {
	// Send delivers a single payload and returns an error on failure.
	Send(ctx context.Context, payload Payload) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, payload Payload) error

// Send implements Transport.
func (fn TransportFunc) Send(ctx context.Context, payload Payload) error {
	return fn(ctx, payload)
}
