// Package event implements the per-entity notification channel: a small
// publish/subscribe registry with a bounded event history. Every entity owns
// its own Bus; there is no process-global broker. Delivery is synchronous and
// assumes the caller serializes access to the owning entity.
package event

import (
	"time"

	"github.com/thexant/galaxygame/internal/log"
)

// HistoryCapacity bounds the retained event history per bus. When the
// capacity is exceeded the oldest event is evicted first.
const HistoryCapacity = 100

// Event is one published occurrence on a bus.
type Event struct {
	Type      string
	Source    any
	Data      map[string]any
	Timestamp time.Time
}

// Handler receives published events.
type Handler func(Event)

// Subscription is the owning handle for one registered handler. The
// listener's owner cancels it on teardown; a canceled subscription is
// skipped at delivery time and pruned from the registry afterwards.
type Subscription struct {
	eventType string
	id        int
	canceled  bool
}

// Cancel deregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s != nil {
		s.canceled = true
	}
}

// EventType reports which event type the subscription was registered for.
func (s *Subscription) EventType() string {
	return s.eventType
}

type registration struct {
	sub     *Subscription
	handler Handler
}

// Bus is one entity's notification channel.
type Bus struct {
	source  any
	nextID  int
	subs    map[string][]registration
	history []Event
}

// NewBus creates a channel whose published events carry source as origin.
func NewBus(source any) *Bus {
	return &Bus{
		source: source,
		subs:   make(map[string][]registration),
	}
}

// Subscribe registers handler for events of the given type and returns the
// handle that controls the registration's lifetime.
func (b *Bus) Subscribe(eventType string, handler Handler) *Subscription {
	b.nextID++
	sub := &Subscription{eventType: eventType, id: b.nextID}
	b.subs[eventType] = append(b.subs[eventType], registration{sub: sub, handler: handler})
	return sub
}

// Unsubscribe cancels the given subscription. Equivalent to sub.Cancel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	sub.Cancel()
}

// Publish records the event in the history, then delivers it to every live
// handler registered for its type, in subscription order. Handlers are
// resolved to a snapshot first, so a handler may subscribe, cancel, or
// publish again without corrupting the iteration. A panicking handler is
// logged and skipped; it never interrupts delivery to later handlers or
// surfaces to the publisher.
func (b *Bus) Publish(eventType string, data map[string]any) {
	evt := Event{
		Type:      eventType,
		Source:    b.source,
		Data:      data,
		Timestamp: time.Now(),
	}

	b.history = append(b.history, evt)
	if len(b.history) > HistoryCapacity {
		b.history = b.history[len(b.history)-HistoryCapacity:]
	}

	for _, reg := range b.prune(eventType) {
		if reg.sub.canceled {
			continue
		}
		deliver(reg.handler, evt)
	}
}

func deliver(handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Event handler failed", "event", evt.Type, "error", r)
		}
	}()
	handler(evt)
}

// prune drops canceled registrations for the given type and returns a
// snapshot of the survivors.
func (b *Bus) prune(eventType string) []registration {
	regs, ok := b.subs[eventType]
	if !ok {
		return nil
	}

	live := regs[:0]
	for _, reg := range regs {
		if !reg.sub.canceled {
			live = append(live, reg)
		}
	}
	if len(live) == 0 {
		delete(b.subs, eventType)
		return nil
	}
	b.subs[eventType] = live

	snapshot := make([]registration, len(live))
	copy(snapshot, live)
	return snapshot
}

// SubscriberCount reports the number of live registrations for the type.
func (b *Bus) SubscriberCount(eventType string) int {
	return len(b.prune(eventType))
}

// History returns a snapshot of retained events, optionally filtered by
// type (empty string matches all). A positive limit keeps only the most
// recent limit events.
func (b *Bus) History(eventType string, limit int) []Event {
	out := make([]Event, 0, len(b.history))
	for _, evt := range b.history {
		if eventType == "" || evt.Type == eventType {
			out = append(out, evt)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// ClearHistory discards all retained events.
func (b *Bus) ClearHistory() {
	b.history = nil
}
