package file

import "github.com/crashkit/delivery"

// Config defines file store behavior.
type Config struct {
	Clock     delivery.Clock
	Generator delivery.Generator
	Logger    delivery.Logger
	Sink      delivery.ErrorSink
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = delivery.SystemClock{}
	}
	if c.Generator == nil {
		c.Generator = delivery.NewMonotonicGenerator(c.Clock)
	}
	if c.Logger == nil {
		c.Logger = delivery.NopLogger{}
	}
	if c.Sink == nil {
		c.Sink = delivery.NopSink{}
	}

	return c
}

// Option configures the file store.
type Option func(*Config)

// WithClock sets the time source used for record timestamps.
func WithClock(clock delivery.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithGenerator sets the id generator.
func WithGenerator(gen delivery.Generator) Option {
	return func(c *Config) {
		c.Generator = gen
	}
}

// WithLogger sets the store logger.
func WithLogger(logger delivery.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSink sets the sink receiving corrupt-entry reports.
func WithSink(sink delivery.ErrorSink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}
