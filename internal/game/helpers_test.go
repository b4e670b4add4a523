package game

import (
	"github.com/thexant/galaxygame/internal/event"
)

// eventLog collects published events so tests can assert on order, count,
// and payloads.
type eventLog struct {
	events []event.Event
}

func (l *eventLog) watch(bus *event.Bus, eventTypes ...string) {
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(evt event.Event) {
			l.events = append(l.events, evt)
		})
	}
}

func (l *eventLog) ofType(eventType string) []event.Event {
	var out []event.Event
	for _, evt := range l.events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func (l *eventLog) count(eventType string) int {
	return len(l.ofType(eventType))
}

func (l *eventLog) types() []string {
	out := make([]string, 0, len(l.events))
	for _, evt := range l.events {
		out = append(out, evt.Type)
	}
	return out
}
