package entity

import (
	"fmt"

	"github.com/thexant/galaxygame/internal/event"
)

// Collection events.
const (
	EventModelAdded        = "model_added"
	EventModelRemoved      = "model_removed"
	EventCollectionCleared = "collection_cleared"
)

// Collection is a keyed registry of one entity kind. It is itself a
// notification channel, so a persistence layer can observe membership
// changes without polling. Iteration order of All and Filter is undefined.
type Collection[T Model] struct {
	*event.Bus
	models map[int64]T
}

// NewCollection creates an empty registry.
func NewCollection[T Model]() *Collection[T] {
	c := &Collection[T]{models: make(map[int64]T)}
	c.Bus = event.NewBus(c)
	return c
}

// Add registers a saved entity under its id, replacing any previous entry,
// and emits model_added. Entities without an assigned id are rejected: the
// persistence layer hands out ids, and an unkeyed entry could never be
// looked up or removed.
func (c *Collection[T]) Add(model T) error {
	if model.ID() == 0 {
		return fmt.Errorf("cannot add model without an id")
	}

	c.models[model.ID()] = model
	c.Publish(EventModelAdded, map[string]any{"model": model})
	return nil
}

// Remove deletes the entity under id and emits model_removed carrying it.
// The second result is false when the id was not present.
func (c *Collection[T]) Remove(id int64) (T, bool) {
	model, ok := c.models[id]
	if !ok {
		var zero T
		return zero, false
	}

	delete(c.models, id)
	c.Publish(EventModelRemoved, map[string]any{"model": model})
	return model, true
}

// Get looks up the entity under id.
func (c *Collection[T]) Get(id int64) (T, bool) {
	model, ok := c.models[id]
	return model, ok
}

// All returns the registered entities in no particular order.
func (c *Collection[T]) All() []T {
	out := make([]T, 0, len(c.models))
	for _, model := range c.models {
		out = append(out, model)
	}
	return out
}

// Filter returns the entities matching the predicate without mutating the
// collection.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	var out []T
	for _, model := range c.models {
		if pred(model) {
			out = append(out, model)
		}
	}
	return out
}

// Count reports the number of registered entities.
func (c *Collection[T]) Count() int {
	return len(c.models)
}

// Clear removes every entity and emits collection_cleared with the count.
func (c *Collection[T]) Clear() {
	cleared := len(c.models)
	c.models = make(map[int64]T)
	c.Publish(EventCollectionCleared, map[string]any{"count": cleared})
}
