package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Match lifecycle events
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchEnded   EventType = "MATCH_ENDED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"

	// Card/zone events
	EventCardDrawn        EventType = "CARD_DRAWN"
	EventCardDeployed     EventType = "CARD_DEPLOYED"
	EventCardDiscarded    EventType = "CARD_DISCARDED"
	EventCardDestroyed    EventType = "CARD_DESTROYED"
	EventCardReturned     EventType = "CARD_RETURNED"
	EventCardMoved        EventType = "CARD_MOVED"
	EventCardSummoned     EventType = "CARD_SUMMONED"
	EventCardTransformed  EventType = "CARD_TRANSFORMED"
	EventCardFlippedUp    EventType = "CARD_FLIPPED_UP"
	EventOrderPlayed      EventType = "ORDER_PLAYED"
	EventFrontlineChanged EventType = "FRONTLINE_CHANGED"

	// Combat/damage events
	EventCardDamaged    EventType = "CARD_DAMAGED"
	EventCardHealed     EventType = "CARD_HEALED"
	EventAttackDeclared EventType = "ATTACK_DECLARED"
	EventAttackResolved EventType = "ATTACK_RESOLVED"

	// Ability/resource events
	EventAbilityExecuted EventType = "ABILITY_EXECUTED"
	EventModifierAdded   EventType = "MODIFIER_ADDED"
	EventModifierExpired EventType = "MODIFIER_EXPIRED"
	EventCreditsChanged  EventType = "CREDITS_CHANGED"
)

// Event represents a state change that collaborators may react to.
type Event struct {
	Type       EventType
	ID         string            // unique event ID
	MatchID    string            // match the event belongs to
	PlayerID   string            // acting/affected player
	CardID     string            // primary card instance
	SourceID   string            // source card/ability instance
	TargetIDs  []string          // additional affected cards
	Amount     int               // numeric payload (damage, credits, slot, ...)
	Slot       int               // battlefield slot, -1 when not applicable
	Turn       int               // turn number at emission time
	Timestamp  time.Time
	Metadata   map[string]string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener is a listener filtered to a single event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with
// optional type filtering. Delivery order within a publish is the subscription
// order, which keeps collaborator observation deterministic.
type EventBus struct {
	mu             sync.RWMutex
	order          []int
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	bus.order = append(bus.order, handle)
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, ok := bus.listeners[handle]; ok {
		delete(bus.listeners, handle)
		for i, h := range bus.order {
			if h == handle {
				bus.order = append(bus.order[:i], bus.order[i+1:]...)
				break
			}
		}
		return
	}
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, handle := range bus.order {
		if listener, ok := bus.listeners[handle]; ok {
			listener(event)
		}
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, matchID, playerID, cardID string) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		MatchID:   matchID,
		PlayerID:  playerID,
		CardID:    cardID,
		Slot:      -1,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}
