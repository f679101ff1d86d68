package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formedit/internal/event/topic"
)

type testPayload struct {
	Value string
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var got []string
	record := func(name string) HandlerFunc {
		return func(_ context.Context, ev any) error {
			p, ok := Payload[testPayload](ev)
			if !ok {
				t.Errorf("%s: unexpected event %T", name, ev)
			}
			got = append(got, name+":"+p.Value)
			return nil
		}
	}

	if _, err := bus.SubscribeFunc("history.undone", record("exact")); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.SubscribeFunc("history.*", record("single")); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.SubscribeFunc("editor.**", record("other")); err != nil {
		t.Fatal(err)
	}

	ev := NewEvent[testPayload]("history.undone", testPayload{Value: "a"}, "test")
	if err := bus.Publish(ctx, ev); err != nil {
		t.Fatal(err)
	}

	want := []string{"exact:a", "single:a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}

	stats := bus.Stats()
	if stats.EventsPublished != 1 || stats.EventsDelivered != 2 || stats.ActiveSubscribers != 3 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestPublishInvalid(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	if err := bus.Publish(ctx, "not an event"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Publish() = %v, want ErrInvalidEvent", err)
	}
	ev := NewEvent[testPayload]("history.*", testPayload{}, "test")
	if err := bus.Publish(ctx, ev); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() = %v, want ErrInvalidTopic", err)
	}
}

func TestHandlerFailuresAreIsolated(t *testing.T) {
	var reported []error
	bus := NewBus(WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))
	ctx := context.Background()

	boom := errors.New("boom")
	_, _ = bus.SubscribeFunc("a.b", func(context.Context, any) error { return boom })
	_, _ = bus.SubscribeFunc("a.b", func(context.Context, any) error { panic("bad handler") })
	delivered := false
	_, _ = bus.SubscribeFunc("a.b", func(context.Context, any) error {
		delivered = true
		return nil
	})

	if err := bus.Publish(ctx, NewEvent[testPayload]("a.b", testPayload{}, "test")); err != nil {
		t.Fatalf("Publish() = %v", err)
	}

	if !delivered {
		t.Error("healthy handler was skipped")
	}
	if len(reported) != 2 {
		t.Fatalf("reported %d errors, want 2", len(reported))
	}
	if !errors.Is(reported[0], boom) {
		t.Errorf("first error = %v, want boom", reported[0])
	}
	if !errors.Is(reported[1], ErrHandlerPanic) {
		t.Errorf("second error = %v, want ErrHandlerPanic", reported[1])
	}
	stats := bus.Stats()
	if stats.HandlerErrors != 1 || stats.HandlerPanics != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestSubscribeOptions(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	onceCount := 0
	_, _ = bus.SubscribeFunc("x.y", func(context.Context, any) error {
		onceCount++
		return nil
	}, WithOnce())

	filtered := 0
	_, _ = bus.SubscribeFunc("x.y", func(context.Context, any) error {
		filtered++
		return nil
	}, WithFilter(func(ev any) bool {
		p, _ := Payload[testPayload](ev)
		return p.Value == "keep"
	}))

	for _, v := range []string{"keep", "drop", "keep"} {
		_ = bus.Publish(ctx, NewEvent[testPayload]("x.y", testPayload{Value: v}, "test"))
	}

	if onceCount != 1 {
		t.Errorf("once handler ran %d times, want 1", onceCount)
	}
	if filtered != 2 {
		t.Errorf("filtered handler ran %d times, want 2", filtered)
	}
	if n := bus.Stats().ActiveSubscribers; n != 1 {
		t.Errorf("ActiveSubscribers = %d, want 1", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	if _, err := bus.Subscribe("a", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) = %v, want ErrNilHandler", err)
	}
	if _, err := bus.SubscribeFunc(topic.Topic(""), func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") = %v, want ErrInvalidTopic", err)
	}

	sub, err := bus.SubscribeFunc("a", func(context.Context, any) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() = %v", err)
	}
	if sub.IsActive() {
		t.Error("subscription still active")
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe() = %v, want ErrSubscriptionNotFound", err)
	}
	if err := bus.Unsubscribe(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("Unsubscribe(nil) = %v, want ErrInvalidSubscription", err)
	}
}
