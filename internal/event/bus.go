package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityCritical is for handlers that must observe changes first, such as the bell.
	PriorityCritical Priority = 0

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for logging handlers that run last.
	PriorityLow Priority = 300
)

// HandlerFunc handles a delivered event. The event is the value passed to
// Publish, usually an Event[T].
type HandlerFunc func(ctx context.Context, ev any) error

// Publisher publishes events. The history engine depends only on this.
type Publisher interface {
	Publish(ctx context.Context, ev any) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, ev any) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, ev any) error {
	return f(ctx, ev)
}

// NopPublisher discards every event.
var NopPublisher Publisher = PublisherFunc(func(context.Context, any) error { return nil })

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id       string
	pattern  Topic
	priority Priority
	handler  HandlerFunc
	once     bool
	fired    atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() Topic { return s.pattern }

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *Subscription) {
		s.priority = p
	}
}

// Once cancels the subscription after its first delivery.
func Once() SubscriptionOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Stats reports bus activity counters.
type Stats struct {
	EventsPublished  uint64
	EventsDelivered  uint64
	HandlerErrors    uint64
	HandlerPanics    uint64
	SubscriptionsNow int
}

// Bus delivers published events synchronously to matching subscriptions in
// priority order. It is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	log  zerolog.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers fn for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}

	sub := &Subscription{
		id:       uuid.NewString(),
		pattern:  pattern,
		priority: PriorityNormal,
		handler:  fn,
	}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, sub)
	slices.SortStableFunc(b.subs, func(a, c *Subscription) int {
		return int(a.priority) - int(c.priority)
	})
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = slices.Delete(b.subs, i, i+1)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers ev to every matching handler. All handler failures are
// joined into the returned error; delivery continues past a failing handler.
// The event topic must be concrete: wildcards belong to subscriptions.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	tp, ok := ev.(TopicProvider)
	if !ok {
		return fmt.Errorf("%w: %T has no topic", ErrInvalidEvent, ev)
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
	}

	b.published.Add(1)

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if s.once && !s.fired.CompareAndSwap(false, true) {
			continue
		}
		if err := b.deliver(ctx, s, t, ev); err != nil {
			errs = append(errs, err)
		}
		if s.once {
			_ = b.Unsubscribe(s)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, t Topic, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.log.Error().
				Str("topic", t.String()).
				Str("subscription", s.id).
				Bytes("stack", debug.Stack()).
				Msgf("event handler panicked: %v", r)
			err = &HandlerError{SubscriptionID: s.id, Topic: t, Err: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
		}
	}()

	b.delivered.Add(1)
	if herr := s.handler(ctx, ev); herr != nil {
		b.errs.Add(1)
		return &HandlerError{SubscriptionID: s.id, Topic: t, Err: herr}
	}
	return nil
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:  b.published.Load(),
		EventsDelivered:  b.delivered.Load(),
		HandlerErrors:    b.errs.Load(),
		HandlerPanics:    b.panics.Load(),
		SubscriptionsNow: n,
	}
}
