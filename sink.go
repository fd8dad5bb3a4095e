package delivery

import "context"

// ErrorSink receives every internal failure the queue swallows.
//
// Core operations never propagate storage or delivery errors to their callers;
// each failure path terminates in a Report call and a safe default action. Sink
// implementations must not panic and should not block for long.
type ErrorSink interface {
	// Report records an internal failure.
	Report(ctx context.Context, err error)
}

// SinkFunc adapts a function to ErrorSink.
type SinkFunc func(ctx context.Context, err error)

// Report implements ErrorSink.
func (fn SinkFunc) Report(ctx context.Context, err error) {
	fn(ctx, err)
}

// NopSink discards all reports.
type NopSink struct{}

// Report implements ErrorSink.
func (NopSink) Report(context.Context, error) {}

// loggerSink is the default sink: failures end up in the configured logger.
type loggerSink struct {
	logger Logger
}

func (s loggerSink) Report(_ context.Context, err error) {
	s.logger.Error("delivery failure", "err", err)
}
