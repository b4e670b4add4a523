// Package entity provides the base every game entity is built on: numeric
// identity assigned by the persistence layer, created/updated timestamps, a
// dirty flag, tracked-field change interception, and the record contract
// (Validate/ToRecord plus a per-kind FromRecord constructor) the storage
// layer round-trips entities through.
package entity

import (
	"time"

	"github.com/thexant/galaxygame/internal/event"
)

// Model is the contract every concrete entity satisfies. FromRecord is the
// per-kind counterpart, a package-level constructor returning (entity, error).
type Model interface {
	ID() int64
	SetID(id int64)
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Dirty() bool
	MarkClean()
	Events() *event.Bus
	Validate() bool
	ToRecord() Record
}

// Base carries the shared identity, timestamp, and dirty-state machinery.
// Concrete entities embed it and pass themselves as the event source.
type Base struct {
	id        int64
	createdAt time.Time
	updatedAt time.Time
	dirty     bool
	bus       *event.Bus
}

// NewBase initializes the shared state with source as the notification
// channel's event origin (the embedding entity).
func NewBase(source any) Base {
	now := time.Now()
	return Base{
		createdAt: now,
		updatedAt: now,
		bus:       event.NewBus(source),
	}
}

// ID returns the persistence-assigned identifier, zero while unassigned.
func (b *Base) ID() int64 {
	return b.id
}

// SetID assigns the identifier once. Later calls with a different id are
// ignored; the id is immutable after the initial assignment.
func (b *Base) SetID(id int64) {
	if b.id != 0 && b.id != id {
		return
	}
	if b.id == id {
		return
	}
	b.id = id
	b.MarkDirty()
}

func (b *Base) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Base) UpdatedAt() time.Time {
	return b.updatedAt
}

// Dirty reports whether the entity has unsaved changes.
func (b *Base) Dirty() bool {
	return b.dirty
}

// MarkClean clears the dirty flag. Called by the persistence layer after a
// successful save, never by entity logic.
func (b *Base) MarkClean() {
	b.dirty = false
}

// MarkDirty flags unsaved changes and refreshes the update timestamp.
// Mutations of untracked but persisted state (inventory, cargo, upgrades)
// call this directly.
func (b *Base) MarkDirty() {
	b.dirty = true
	b.updatedAt = time.Now()
}

// Events returns the entity's notification channel.
func (b *Base) Events() *event.Bus {
	return b.bus
}

// SetField writes a tracked field through the change-interception contract:
// a differing value is stored, the entity turns dirty, and one
// "<field>_changed" event fires with the old and new values. Writing the
// current value is a complete no-op. Returns whether the value changed.
func SetField[T comparable](b *Base, field string, ptr *T, value T) bool {
	if *ptr == value {
		return false
	}

	old := *ptr
	*ptr = value
	b.MarkDirty()
	b.bus.Publish(field+"_changed", map[string]any{
		"field":     field,
		"old_value": old,
		"new_value": value,
	})
	return true
}

// BaseRecord returns the identity/timestamp portion of a record snapshot.
// Concrete ToRecord implementations extend it with their own fields.
func (b *Base) BaseRecord() Record {
	rec := Record{
		"created_at": b.createdAt.Format(time.RFC3339Nano),
		"updated_at": b.updatedAt.Format(time.RFC3339Nano),
	}
	if b.id != 0 {
		rec["id"] = b.id
	}
	return rec
}

// ApplyBaseRecord restores the identity/timestamp portion from a record.
// FromRecord constructors call it after NewBase.
func (b *Base) ApplyBaseRecord(rec Record) {
	if id := rec.Int64("id"); id != 0 {
		b.id = id
	}
	if created := rec.Time("created_at"); !created.IsZero() {
		b.createdAt = created
	}
	if updated := rec.Time("updated_at"); !updated.IsZero() {
		b.updatedAt = updated
	}
	b.dirty = false
}
