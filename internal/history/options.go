package history

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/rewind/internal/bell"
	"github.com/dshills/rewind/internal/event"
)

// DefaultCapacity is the maximum number of entries kept when no capacity is configured.
const DefaultCapacity = 1000

// Option configures a History during creation.
type Option func(*History)

// WithCapacity sets the maximum number of history entries.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// WithWaitTimeout bounds how long an operation waits for the effect ahead of
// it. Zero waits forever.
func WithWaitTimeout(d time.Duration) Option {
	return func(h *History) {
		if d >= 0 {
			h.waitTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *History) {
		h.log = log
	}
}

// WithBell sets the bell rung when undo or redo has nothing to act on.
func WithBell(b bell.Bell) Option {
	return func(h *History) {
		if b != nil {
			h.bell = b
		}
	}
}

// WithPublisher sets where history change events are published.
func WithPublisher(p event.Publisher) Option {
	return func(h *History) {
		if p != nil {
			h.publisher = p
		}
	}
}

// WithClock overrides the clock used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}
