package delivery

import "time"

const (
	// DefaultMaxItems is the per-resource capacity bound enforced by
	// truncation.
	DefaultMaxItems = 64

	defaultPollInterval = 30 * time.Second
)

// Config defines queue, truncation and drain behavior.
type Config struct {
	// MaxItems bounds the number of stored payloads per resource type.
	MaxItems int
	// PollInterval is the delay between drain passes in Run.
	PollInterval time.Duration
	// AttemptTimeout bounds a single transport attempt. Zero disables it.
	AttemptTimeout time.Duration
	// MaxRetries drops a payload once its retry count reaches the limit.
	// Zero keeps retrying until the capacity bound evicts it.
	MaxRetries int
	// PendingInterval is the minimum interval between pending gauge samples.
	// Zero disables sampling.
	PendingInterval time.Duration
	// Resources lists the resource types Run drains.
	Resources []ResourceType

	Clock      Clock
	Logger     Logger
	Metrics    Metrics
	Sink       ErrorSink
	Classifier OutcomeClassifier
}

func (c Config) withDefaults() Config {
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if len(c.Resources) == 0 {
		c.Resources = []ResourceType{ResourceErrors, ResourceSessions}
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Sink == nil {
		c.Sink = loggerSink{logger: c.Logger}
	}
	if c.Classifier == nil {
		c.Classifier = defaultClassifier
	}

	return c
}

// Option configures queue behavior.
type Option func(*Config)

// WithMaxItems sets the per-resource capacity bound.
func WithMaxItems(max int) Option {
	return func(c *Config) {
		c.MaxItems = max
	}
}

// WithPollInterval sets the delay between drain passes in Run.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
	}
}

// WithAttemptTimeout sets a per-attempt transport timeout.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.AttemptTimeout = timeout
	}
}

// WithMaxRetries drops a payload after the given number of retryable
// failures instead of retrying forever.
func WithMaxRetries(max int) Option {
	return func(c *Config) {
		c.MaxRetries = max
	}
}

// WithPendingInterval sets the minimum interval between pending gauge
// samples. Use a positive value to enable sampling; the default is disabled.
func WithPendingInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PendingInterval = interval
	}
}

// WithResources sets the resource types Run drains.
func WithResources(resources ...ResourceType) Option {
	return func(c *Config) {
		c.Resources = resources
	}
}

// WithClock sets the time source.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithSink sets the sink receiving internal failures.
func WithSink(sink ErrorSink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}

// WithClassifier sets the outcome classifier for delivery results.
func WithClassifier(classifier OutcomeClassifier) Option {
	return func(c *Config) {
		c.Classifier = classifier
	}
}
