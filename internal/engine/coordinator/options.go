package coordinator

import "github.com/dshills/formedit/internal/event"

// Logger is the logging contract the coordinator needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for swallowed coordination failures.
func WithLogger(l Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus sets the bus on which history events are published.
func WithBus(b event.Bus) Option {
	return func(c *Coordinator) {
		c.bus = b
	}
}
