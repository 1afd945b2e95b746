package rules

import "testing"

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []EventType
	bus.Subscribe(func(e Event) {
		got = append(got, e.Type)
	})

	bus.Publish(NewEvent(EventCardDrawn, "m1", "alice", "c1"))
	bus.Publish(NewEvent(EventCardDeployed, "m1", "alice", "c1"))

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0] != EventCardDrawn || got[1] != EventCardDeployed {
		t.Fatalf("unexpected event order: %v", got)
	}
}

func TestEventBusTypedFiltering(t *testing.T) {
	bus := NewEventBus()

	destroyed := 0
	bus.SubscribeTyped(EventCardDestroyed, func(e Event) {
		destroyed++
	})

	bus.Publish(NewEvent(EventCardDamaged, "m1", "alice", "c1"))
	bus.Publish(NewEvent(EventCardDestroyed, "m1", "alice", "c1"))
	bus.Publish(NewEvent(EventCardDestroyed, "m1", "bob", "c2"))

	if destroyed != 2 {
		t.Fatalf("expected 2 destroyed events, got %d", destroyed)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handle := bus.Subscribe(func(e Event) { calls++ })

	bus.Publish(NewEvent(EventTurnEnded, "m1", "alice", ""))
	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventTurnEnded, "m1", "alice", ""))

	if calls != 1 {
		t.Fatalf("expected 1 call after unsubscribe, got %d", calls)
	}
}

func TestEventBusDeliveryOrderIsSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(func(e Event) { order = append(order, i) })
	}

	bus.Publish(NewEvent(EventMatchStarted, "m1", "", ""))

	for i, v := range order {
		if v != i {
			t.Fatalf("expected delivery in subscription order, got %v", order)
		}
	}
}

func TestNewEventDefaults(t *testing.T) {
	e := NewEvent(EventCardDrawn, "m1", "alice", "c1")
	if e.ID == "" {
		t.Fatal("expected event ID to be populated")
	}
	if e.Slot != -1 {
		t.Fatalf("expected slot -1 by default, got %d", e.Slot)
	}
	if e.Metadata == nil {
		t.Fatal("expected metadata map to be allocated")
	}
}
