// Package event provides a synchronous, topic-based event bus.
//
// The form editor runs its undo engine on a single goroutine, so every event
// is delivered in the publisher's goroutine before Publish returns. Handlers
// subscribe with topic patterns:
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("history.*", func(ctx context.Context, ev any) error {
//	    // ...
//	    return nil
//	})
//	defer bus.Unsubscribe(sub)
//
// Patterns may use "*" for exactly one segment and "**" for any number of
// segments. Handler errors and panics are counted and reported to the
// configured error handler; they never reach the publisher.
package event
