package events_test

import (
	"testing"

	"safari_reviews/internal/events"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := events.NewBus()
	var got []string
	bus.Subscribe(events.LanguageChanged, func(e events.Event) {
		got = append(got, "first:"+e.Data.(events.LanguageChange).Lang)
	})
	bus.Subscribe(events.LanguageChanged, func(e events.Event) {
		got = append(got, "second:"+e.Data.(events.LanguageChange).Lang)
	})
	bus.Subscribe("other", func(events.Event) { got = append(got, "other") })

	bus.Publish(events.Event{Type: events.LanguageChanged, Data: events.LanguageChange{Lang: "fr"}})

	if len(got) != 2 || got[0] != "first:fr" || got[1] != "second:fr" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	unsub := bus.Subscribe(events.LanguageChanged, func(events.Event) { calls++ })
	keep := 0
	bus.Subscribe(events.LanguageChanged, func(events.Event) { keep++ })

	unsub()
	unsub() // second call is a no-op

	bus.Publish(events.Event{Type: events.LanguageChanged, Data: events.LanguageChange{Lang: "de"}})
	if calls != 0 {
		t.Fatalf("unsubscribed handler called %d times", calls)
	}
	if keep != 1 {
		t.Fatalf("remaining handler called %d times, want 1", keep)
	}
	if n := bus.Subscribers(events.LanguageChanged); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
}
