// Package event provides a small typed publish/subscribe bus.
//
// Events are published as Event[T] values carrying a dot-separated Topic.
// Subscribers register a pattern that may contain wildcards:
//
//	bus := event.NewBus(logger)
//	bus.Subscribe("history.*", func(ctx context.Context, ev any) error {
//	    change, _ := event.PayloadOf[history.Change](ev)
//	    ...
//	})
//
// Delivery is synchronous and ordered by Priority. A handler that returns an
// error or panics does not stop delivery to the remaining handlers; the
// failures are joined into the error returned by Publish.
package event
