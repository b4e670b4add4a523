package game

import (
	"time"

	"github.com/thexant/galaxygame/internal/entity"
)

// Alignment buckets a character by accumulated karma.
type Alignment string

const (
	AlignmentLoyal   Alignment = "loyal"
	AlignmentNeutral Alignment = "neutral"
	AlignmentBandit  Alignment = "bandit"
)

// LocationStatus describes what a character is doing at their current location.
type LocationStatus string

const (
	StatusDocked    LocationStatus = "docked"
	StatusTraveling LocationStatus = "traveling"
	StatusInCombat  LocationStatus = "in_combat"
	StatusInShip    LocationStatus = "in_ship"
	StatusExploring LocationStatus = "exploring"
)

// Stats are the five core attributes of a character.
type Stats struct {
	Strength     int
	Agility      int
	Intelligence int
	Charisma     int
	Endurance    int
}

// DefaultStats returns the starting attribute block.
func DefaultStats() Stats {
	return Stats{
		Strength:     10,
		Agility:      10,
		Intelligence: 10,
		Charisma:     10,
		Endurance:    10,
	}
}

// Modifier returns the tabletop-style modifier for a stat, (value-10)/2
// rounded toward negative infinity. Unknown stat names count as 10.
func (s Stats) Modifier(stat string) int {
	value := 10
	switch stat {
	case "strength":
		value = s.Strength
	case "agility":
		value = s.Agility
	case "intelligence":
		value = s.Intelligence
	case "charisma":
		value = s.Charisma
	case "endurance":
		value = s.Endurance
	}
	diff := value - 10
	mod := diff / 2
	if diff < 0 && diff%2 != 0 {
		mod--
	}
	return mod
}

func (s Stats) toRecord() entity.Record {
	return entity.Record{
		"strength":     s.Strength,
		"agility":      s.Agility,
		"intelligence": s.Intelligence,
		"charisma":     s.Charisma,
		"endurance":    s.Endurance,
	}
}

func statsFromRecord(rec entity.Record) Stats {
	s := DefaultStats()
	if rec.Has("strength") {
		s.Strength = rec.Int("strength")
	}
	if rec.Has("agility") {
		s.Agility = rec.Int("agility")
	}
	if rec.Has("intelligence") {
		s.Intelligence = rec.Int("intelligence")
	}
	if rec.Has("charisma") {
		s.Charisma = rec.Int("charisma")
	}
	if rec.Has("endurance") {
		s.Endurance = rec.Int("endurance")
	}
	return s
}

// Character is a player-controlled actor. Location, credits, life state,
// karma, alignment, and wanted level are tracked fields: writing a new value
// marks the character dirty and publishes a "<field>_changed" event. The
// remaining fields are plain state carried along for persistence.
type Character struct {
	entity.Base

	PlayerRef string
	Name      string

	currentLocation int64
	credits         int

	ShipFuel      int
	ShipHull      int
	MaxShipHull   int
	CurrentShipID int64

	Stats       Stats
	karma       int
	wantedLevel int
	alignment   Alignment

	LocationStatus LocationStatus
	alive          bool
	DeathCount     int
	LastDeathTime  time.Time

	inventory          []*Item
	MaxInventoryWeight float64

	Experience int
	Level      int
	Skills     map[string]int
}

// NewCharacter creates a live character with the starting loadout.
func NewCharacter(playerRef, name string) *Character {
	c := &Character{
		PlayerRef:          playerRef,
		Name:               name,
		credits:            1000,
		ShipFuel:           50,
		ShipHull:           100,
		MaxShipHull:        100,
		Stats:              DefaultStats(),
		alignment:          AlignmentNeutral,
		LocationStatus:     StatusDocked,
		alive:              true,
		MaxInventoryWeight: 100.0,
		Level:              1,
		Skills: map[string]int{
			"piloting":    1,
			"combat":      1,
			"trading":     1,
			"engineering": 1,
			"diplomacy":   1,
		},
	}
	c.Base = entity.NewBase(c)
	return c
}

// CurrentLocation returns the id of the location the character is at,
// or 0 when unplaced.
func (c *Character) CurrentLocation() int64 { return c.currentLocation }

// Credits returns the current balance.
func (c *Character) Credits() int { return c.credits }

// IsAlive reports whether the character is alive.
func (c *Character) IsAlive() bool { return c.alive }

// Karma returns the accumulated karma score.
func (c *Character) Karma() int { return c.karma }

// Alignment returns the current karma-derived alignment.
func (c *Character) Alignment() Alignment { return c.alignment }

// WantedLevel returns the current wanted level.
func (c *Character) WantedLevel() int { return c.wantedLevel }

func (c *Character) setCurrentLocation(id int64) {
	entity.SetField(&c.Base, "current_location", &c.currentLocation, id)
}

func (c *Character) setCredits(amount int) {
	entity.SetField(&c.Base, "credits", &c.credits, amount)
}

func (c *Character) setAlive(alive bool) {
	entity.SetField(&c.Base, "is_alive", &c.alive, alive)
}

func (c *Character) setKarma(karma int) {
	entity.SetField(&c.Base, "karma", &c.karma, karma)
}

func (c *Character) setAlignment(alignment Alignment) {
	entity.SetField(&c.Base, "alignment", &c.alignment, alignment)
}

// SetWantedLevel updates the wanted level, publishing a change event when the
// value differs.
func (c *Character) SetWantedLevel(level int) {
	entity.SetField(&c.Base, "wanted_level", &c.wantedLevel, level)
}

// MoveTo relocates the character. Fails while dead. The tracked location
// write fires its own change event; a richer character_moved event follows
// with origin, destination, and travel time.
func (c *Character) MoveTo(locationID int64, travelTime time.Duration) bool {
	if !c.alive {
		return false
	}

	from := c.currentLocation
	c.setCurrentLocation(locationID)

	c.Events().Publish("character_moved", map[string]any{
		"from_location": from,
		"to_location":   locationID,
		"travel_time":   travelTime,
	})

	return true
}

// AddCredits adjusts the balance by amount, which may be negative for
// spending. Fails without changing anything if the withdrawal would drive
// the balance below zero.
func (c *Character) AddCredits(amount int) bool {
	if amount < 0 && c.credits+amount < 0 {
		return false
	}

	c.setCredits(c.credits + amount)

	if amount > 1000 || amount < -1000 {
		c.Events().Publish("major_transaction", map[string]any{
			"amount":      amount,
			"new_balance": c.credits,
		})
	}

	return true
}

// TakeDamage applies hull damage to the character's ship. Fails while dead.
// Hull reaching zero kills the character.
func (c *Character) TakeDamage(damage int, source string) bool {
	if !c.alive {
		return false
	}

	c.ShipHull = max(0, c.ShipHull-damage)

	c.Events().Publish("damage_taken", map[string]any{
		"damage":         damage,
		"remaining_hull": c.ShipHull,
		"source":         source,
	})

	if c.ShipHull <= 0 {
		c.die(source)
	}

	return true
}

// Heal restores hull up to the maximum and returns the amount actually
// healed. Dead characters cannot be healed.
func (c *Character) Heal(amount int) int {
	if !c.alive {
		return 0
	}

	oldHull := c.ShipHull
	c.ShipHull = min(c.MaxShipHull, c.ShipHull+amount)
	healed := c.ShipHull - oldHull

	if healed > 0 {
		c.Events().Publish("healed", map[string]any{
			"amount":   healed,
			"new_hull": c.ShipHull,
		})
	}

	return healed
}

func (c *Character) die(cause string) {
	c.setAlive(false)
	c.DeathCount++
	c.LastDeathTime = time.Now()

	// Death penalty: lose 10% of credits
	creditsLost := int(float64(c.credits) * 0.1)
	c.setCredits(max(0, c.credits-creditsLost))

	c.ShipHull = 0
	c.ShipFuel = 0

	c.Events().Publish("character_died", map[string]any{
		"cause":        cause,
		"death_count":  c.DeathCount,
		"credits_lost": creditsLost,
		"location":     c.currentLocation,
	})
}

// Respawn revives a dead character at the given location with half hull and
// minimal fuel. Does nothing while alive.
func (c *Character) Respawn(locationID int64) {
	if c.alive {
		return
	}

	c.setAlive(true)
	c.setCurrentLocation(locationID)
	c.ShipHull = int(float64(c.MaxShipHull) * 0.5)
	c.ShipFuel = 25
	c.LocationStatus = StatusDocked

	c.Events().Publish("character_respawned", map[string]any{
		"location":    locationID,
		"death_count": c.DeathCount,
	})
}

// UpdateAlignment adds karma and recomputes the alignment. An
// alignment_changed event fires only when the bucket actually changes.
func (c *Character) UpdateAlignment(karmaChange int) {
	oldAlignment := c.alignment
	c.setKarma(c.karma + karmaChange)

	newAlignment := AlignmentNeutral
	if c.karma >= 50 {
		newAlignment = AlignmentLoyal
	} else if c.karma <= -50 {
		newAlignment = AlignmentBandit
	}
	c.setAlignment(newAlignment)

	if oldAlignment != c.alignment {
		c.Events().Publish("alignment_changed", map[string]any{
			"old_alignment": string(oldAlignment),
			"new_alignment": string(c.alignment),
			"karma":         c.karma,
		})
	}
}

// AddExperience grants experience and advances at most one level per call,
// carrying excess experience over. Each level raises all five stats by one.
// A known skill named in skill gains a point, capped at 100.
func (c *Character) AddExperience(amount int, skill string) {
	c.Experience += amount

	xpForNextLevel := c.Level * 1000
	if c.Experience >= xpForNextLevel {
		c.Level++
		c.Experience -= xpForNextLevel

		c.Stats.Strength++
		c.Stats.Agility++
		c.Stats.Intelligence++
		c.Stats.Charisma++
		c.Stats.Endurance++

		c.Events().Publish("level_up", map[string]any{
			"new_level": c.Level,
			"stats":     c.Stats,
		})
	}

	if skill != "" {
		if current, ok := c.Skills[skill]; ok {
			c.Skills[skill] = min(100, current+1)
		}
	}
}

// AddItem adds an item to the inventory, stacking onto an existing entry
// with the same item id. Fails when the added stack would push the carried
// weight past the maximum.
func (c *Character) AddItem(item *Item) bool {
	if c.InventoryWeight()+item.StackWeight() > c.MaxInventoryWeight {
		return false
	}

	for _, held := range c.inventory {
		if held.ItemID == item.ItemID {
			held.Quantity += item.Quantity
			c.Events().Publish("item_added", map[string]any{
				"item":     item.Name,
				"quantity": item.Quantity,
				"total":    held.Quantity,
			})
			return true
		}
	}

	c.inventory = append(c.inventory, item)
	c.Events().Publish("item_added", map[string]any{
		"item":     item.Name,
		"quantity": item.Quantity,
	})
	return true
}

// RemoveItem takes quantity units of an item out of the inventory. Fails if
// the item is missing or the stack holds fewer units than requested.
func (c *Character) RemoveItem(itemID string, quantity int) bool {
	for i, item := range c.inventory {
		if item.ItemID != itemID {
			continue
		}
		if item.Quantity > quantity {
			item.Quantity -= quantity
			c.Events().Publish("item_removed", map[string]any{
				"item":      item.Name,
				"quantity":  quantity,
				"remaining": item.Quantity,
			})
			return true
		}
		if item.Quantity == quantity {
			c.inventory = append(c.inventory[:i], c.inventory[i+1:]...)
			c.Events().Publish("item_removed", map[string]any{
				"item":      item.Name,
				"quantity":  quantity,
				"remaining": 0,
			})
			return true
		}
		return false
	}
	return false
}

// Inventory returns a copy of the inventory list.
func (c *Character) Inventory() []*Item {
	return append([]*Item(nil), c.inventory...)
}

// InventoryWeight returns the total carried weight.
func (c *Character) InventoryWeight() float64 {
	total := 0.0
	for _, item := range c.inventory {
		total += item.StackWeight()
	}
	return total
}

// ItemByID returns the inventory entry with the given item id, or nil.
func (c *Character) ItemByID(itemID string) *Item {
	for _, item := range c.inventory {
		if item.ItemID == itemID {
			return item
		}
	}
	return nil
}

// HasItem reports whether the character holds at least quantity units of an
// item.
func (c *Character) HasItem(itemID string, quantity int) bool {
	item := c.ItemByID(itemID)
	return item != nil && item.Quantity >= quantity
}

// Validate checks structural and range invariants.
func (c *Character) Validate() bool {
	if c.Name == "" || c.PlayerRef == "" {
		return false
	}
	if c.credits < 0 {
		return false
	}
	if c.ShipFuel < 0 || c.ShipFuel > 100 {
		return false
	}
	if c.ShipHull < 0 || c.ShipHull > c.MaxShipHull {
		return false
	}
	switch c.alignment {
	case AlignmentLoyal, AlignmentNeutral, AlignmentBandit:
	default:
		return false
	}
	return true
}

// ToRecord returns a complete snapshot of the character.
func (c *Character) ToRecord() entity.Record {
	rec := c.BaseRecord()
	rec["player_ref"] = c.PlayerRef
	rec["name"] = c.Name
	rec["current_location"] = c.currentLocation
	rec["credits"] = c.credits
	rec["ship_fuel"] = c.ShipFuel
	rec["ship_hull"] = c.ShipHull
	rec["max_ship_hull"] = c.MaxShipHull
	rec["current_ship_id"] = c.CurrentShipID
	rec["stats"] = c.Stats.toRecord()
	rec["karma"] = c.karma
	rec["wanted_level"] = c.wantedLevel
	rec["alignment"] = string(c.alignment)
	rec["location_status"] = string(c.LocationStatus)
	rec["is_alive"] = c.alive
	rec["death_count"] = c.DeathCount
	if !c.LastDeathTime.IsZero() {
		rec["last_death_time"] = c.LastDeathTime.Format(time.RFC3339Nano)
	}
	rec["inventory"] = itemsToRecords(c.inventory)
	rec["experience"] = c.Experience
	rec["level"] = c.Level
	rec["skills"] = c.Skills
	return rec
}

// CharacterFromRecord rebuilds a character from a snapshot. The result is
// clean and publishes no events.
func CharacterFromRecord(rec entity.Record) *Character {
	c := NewCharacter(rec.Str("player_ref"), rec.Str("name"))

	c.currentLocation = rec.Int64("current_location")
	if rec.Has("credits") {
		c.credits = rec.Int("credits")
	}
	if rec.Has("ship_fuel") {
		c.ShipFuel = rec.Int("ship_fuel")
	}
	if rec.Has("ship_hull") {
		c.ShipHull = rec.Int("ship_hull")
	}
	if rec.Has("max_ship_hull") {
		c.MaxShipHull = rec.Int("max_ship_hull")
	}
	c.CurrentShipID = rec.Int64("current_ship_id")

	if stats := rec.Sub("stats"); stats != nil {
		c.Stats = statsFromRecord(stats)
	}

	c.karma = rec.Int("karma")
	c.wantedLevel = rec.Int("wanted_level")
	if v := rec.Str("alignment"); v != "" {
		c.alignment = Alignment(v)
	}
	if v := rec.Str("location_status"); v != "" {
		c.LocationStatus = LocationStatus(v)
	}
	if rec.Has("is_alive") {
		c.alive = rec.Bool("is_alive")
	}
	c.DeathCount = rec.Int("death_count")
	c.LastDeathTime = rec.Time("last_death_time")

	if recs := rec.Records("inventory"); len(recs) > 0 {
		c.inventory = itemsFromRecords(recs)
	}

	c.Experience = rec.Int("experience")
	if rec.Has("level") {
		c.Level = rec.Int("level")
	}
	if skills := rec.IntMap("skills"); len(skills) > 0 {
		c.Skills = skills
	}

	c.ApplyBaseRecord(rec)
	return c
}
