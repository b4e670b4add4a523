// Package game holds the concrete entity state machines: characters, ships,
// locations, and NPCs. All domain mutation goes through methods here;
// ordinary failures are reported as boolean or optional results, never
// panics. Cross-entity relations are id references resolved through the
// State registry or the external store.
package game

import "github.com/thexant/galaxygame/internal/entity"

// Item is a stackable inventory or cargo entry. Stacks merge by ItemID; the
// weight of a stack is Quantity times the per-unit Weight.
type Item struct {
	ItemID   string
	Name     string
	Quantity int
	Weight   float64
	Value    int
	Category string
	Metadata map[string]any
}

// NewItem creates a single-quantity item with the default unit weight.
func NewItem(itemID, name string) *Item {
	return &Item{
		ItemID:   itemID,
		Name:     name,
		Quantity: 1,
		Weight:   1.0,
		Category: "misc",
	}
}

// StackWeight is the total weight this stack contributes.
func (i *Item) StackWeight() float64 {
	return i.Weight * float64(i.Quantity)
}

func (i *Item) toRecord() entity.Record {
	rec := entity.Record{
		"item_id":  i.ItemID,
		"name":     i.Name,
		"quantity": i.Quantity,
		"weight":   i.Weight,
		"value":    i.Value,
		"type":     i.Category,
	}
	if len(i.Metadata) > 0 {
		rec["metadata"] = i.Metadata
	}
	return rec
}

func itemFromRecord(rec entity.Record) *Item {
	item := &Item{
		ItemID:   rec.Str("item_id"),
		Name:     rec.Str("name"),
		Quantity: 1,
		Weight:   1.0,
		Category: "misc",
	}
	if rec.Has("quantity") {
		item.Quantity = rec.Int("quantity")
	}
	if rec.Has("weight") {
		item.Weight = rec.Float("weight")
	}
	item.Value = rec.Int("value")
	if cat := rec.Str("type"); cat != "" {
		item.Category = cat
	}
	if meta, ok := rec["metadata"].(map[string]any); ok {
		item.Metadata = meta
	}
	return item
}

func itemsToRecords(items []*Item) []entity.Record {
	out := make([]entity.Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.toRecord())
	}
	return out
}

func itemsFromRecords(recs []entity.Record) []*Item {
	out := make([]*Item, 0, len(recs))
	for _, rec := range recs {
		out = append(out, itemFromRecord(rec))
	}
	return out
}
