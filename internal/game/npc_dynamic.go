package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/thexant/galaxygame/internal/entity"
)

// DynamicNPC pilots a ship between locations under an AI behavior. It is
// either docked (no destination) or traveling (destination, start time, and
// duration all set); arrival is evaluated lazily against a caller-supplied
// clock. Current location and destination are tracked fields on top of the
// shared NPC tracking.
type DynamicNPC struct {
	NPC

	Callsign string
	ShipName string
	ShipType string

	currentLocation     int64
	destinationLocation int64
	travelStart         time.Time
	travelDuration      time.Duration

	ShipHull      int
	MaxShipHull   int
	ShipFuel      int
	MaxShipFuel   int
	CargoCapacity int
	cargo         []*Item

	radioMessages     []string
	lastBroadcast     time.Time
	broadcastInterval time.Duration

	behavior Behavior
}

// NewDynamicNPC creates a traveling NPC with a full ship. An empty callsign
// or ship name gets a generated one.
func NewDynamicNPC(name string, age int, alignment Alignment, callsign, shipName, shipType string) *DynamicNPC {
	if callsign == "" {
		callsign = fmt.Sprintf("Trader-%d", 100+rand.Intn(900))
	}
	if shipName == "" {
		shipName = "SS " + name
	}
	if shipType == "" {
		shipType = "freighter"
	}

	n := &DynamicNPC{
		NPC:               newNPC(name, age, alignment),
		Callsign:          callsign,
		ShipName:          shipName,
		ShipType:          shipType,
		ShipHull:          100,
		MaxShipHull:       100,
		ShipFuel:          100,
		MaxShipFuel:       100,
		CargoCapacity:     100,
		broadcastInterval: 30 * time.Minute,
		behavior:          TraderBehavior{},
	}
	n.initializeRadioMessages()
	n.Base = entity.NewBase(n)
	return n
}

func (n *DynamicNPC) initializeRadioMessages() {
	switch n.alignment {
	case AlignmentBandit:
		n.radioMessages = []string{
			fmt.Sprintf("This is %s. Stay out of my way.", n.Callsign),
			"Valuable cargo coming through. Don't get any ideas.",
			fmt.Sprintf("%s to all ships - maintaining radio silence.", n.ShipName),
			"...signal interference... *static* ...watch your six...",
		}
	case AlignmentLoyal:
		n.radioMessages = []string{
			fmt.Sprintf("%s here. Safe travels, everyone!", n.Callsign),
			fmt.Sprintf("This is %s. Reporting clear skies ahead.", n.ShipName),
			"Remember to check your fuel before long jumps, folks!",
			fmt.Sprintf("%s to all ships - happy to provide escort if needed.", n.Callsign),
		}
	default:
		n.radioMessages = []string{
			fmt.Sprintf("%s passing through.", n.Callsign),
			fmt.Sprintf("This is %s. Just another milk run.", n.ShipName),
			"Anyone know the best prices for quantum cores these days?",
			fmt.Sprintf("%s here. Everything nominal.", n.Callsign),
		}
	}
}

// CurrentLocation returns the id of the location the NPC is at, or 0 while
// unplaced.
func (n *DynamicNPC) CurrentLocation() int64 { return n.currentLocation }

// DestinationLocation returns the travel destination id, or 0 when docked.
func (n *DynamicNPC) DestinationLocation() int64 { return n.destinationLocation }

// IsTraveling reports whether the NPC is en route to a destination.
func (n *DynamicNPC) IsTraveling() bool { return n.destinationLocation != 0 }

// TravelStart returns the start time of the current trip.
func (n *DynamicNPC) TravelStart() time.Time { return n.travelStart }

// TravelDuration returns the planned duration of the current trip.
func (n *DynamicNPC) TravelDuration() time.Duration { return n.travelDuration }

// SetCurrentLocation places the NPC at a location, publishing a change event
// when the value differs.
func (n *DynamicNPC) SetCurrentLocation(locationID int64) {
	entity.SetField(&n.Base, "current_location", &n.currentLocation, locationID)
}

func (n *DynamicNPC) setDestination(locationID int64) {
	entity.SetField(&n.Base, "destination_location", &n.destinationLocation, locationID)
}

// StartTravel sends the NPC toward a destination. Fails while dead, already
// traveling, or with less than the minimum 10 fuel. Fuel burns at one unit
// per minute of planned travel.
func (n *DynamicNPC) StartTravel(destinationID int64, travelTime time.Duration, now time.Time) bool {
	if !n.alive || n.destinationLocation != 0 {
		return false
	}
	if n.ShipFuel < 10 {
		return false
	}

	n.setDestination(destinationID)
	n.travelStart = now
	n.travelDuration = travelTime

	fuelCost := int(travelTime.Seconds() / 60)
	n.ShipFuel = max(0, n.ShipFuel-fuelCost)

	n.Events().Publish("npc_departing", map[string]any{
		"npc_name":      n.Name,
		"callsign":      n.Callsign,
		"from_location": n.currentLocation,
		"to_location":   destinationID,
		"travel_time":   travelTime.Seconds(),
	})

	return true
}

// UpdatePosition completes the current trip once enough time has elapsed,
// and reports whether an arrival happened.
func (n *DynamicNPC) UpdatePosition(now time.Time) bool {
	if !n.alive || n.destinationLocation == 0 {
		return false
	}
	if n.travelStart.IsZero() || n.travelDuration == 0 {
		return false
	}

	if now.Sub(n.travelStart) < n.travelDuration {
		return false
	}

	from := n.currentLocation
	n.SetCurrentLocation(n.destinationLocation)
	n.setDestination(0)
	n.travelStart = time.Time{}
	n.travelDuration = 0

	n.Events().Publish("npc_arrived", map[string]any{
		"npc_name":      n.Name,
		"callsign":      n.Callsign,
		"from_location": from,
		"to_location":   n.currentLocation,
	})

	return true
}

// BroadcastRadio emits a radio message fitting the NPC's state. Without
// force, broadcasts are rate limited to one per 30 minutes. Reports whether
// a message went out.
func (n *DynamicNPC) BroadcastRadio(now time.Time, force bool) (string, bool) {
	if !n.alive {
		return "", false
	}

	if !force && !n.lastBroadcast.IsZero() && now.Sub(n.lastBroadcast) < n.broadcastInterval {
		return "", false
	}

	var message string
	if n.destinationLocation != 0 && n.travelDuration != 0 {
		if n.travelDuration.Seconds() > 600 {
			message = fmt.Sprintf("%s: Still got a ways to go. ETA %d minutes.", n.Callsign, int(n.travelDuration.Seconds()/60))
		} else {
			message = n.radioMessages[rand.Intn(len(n.radioMessages))]
		}
	} else {
		dockedMessages := []string{
			fmt.Sprintf("%s: Docked and resupplying.", n.Callsign),
			fmt.Sprintf("This is %s. Anyone need transport?", n.ShipName),
			fmt.Sprintf("%s here. Prices are good at this station!", n.Callsign),
		}
		message = dockedMessages[rand.Intn(len(dockedMessages))]
	}

	n.lastBroadcast = now

	n.Events().Publish("radio_broadcast", map[string]any{
		"npc_name": n.Name,
		"callsign": n.Callsign,
		"message":  message,
		"location": n.currentLocation,
	})

	return message, true
}

// AddCargo stows an item, stacking onto an existing entry with the same item
// id. Fails when the added stack would exceed capacity.
func (n *DynamicNPC) AddCargo(item *Item) bool {
	if n.CargoWeight()+item.StackWeight() > float64(n.CargoCapacity) {
		return false
	}

	for _, held := range n.cargo {
		if held.ItemID == item.ItemID {
			held.Quantity += item.Quantity
			return true
		}
	}

	n.cargo = append(n.cargo, item)
	return true
}

// RemoveCargo takes quantity units of an item out of the hold. Fails if the
// item is missing or held in insufficient quantity.
func (n *DynamicNPC) RemoveCargo(itemID string, quantity int) bool {
	for i, item := range n.cargo {
		if item.ItemID != itemID {
			continue
		}
		if item.Quantity > quantity {
			item.Quantity -= quantity
			return true
		}
		if item.Quantity == quantity {
			n.cargo = append(n.cargo[:i], n.cargo[i+1:]...)
			return true
		}
		return false
	}
	return false
}

// CargoWeight returns the total stowed weight.
func (n *DynamicNPC) CargoWeight() float64 {
	total := 0.0
	for _, item := range n.cargo {
		total += item.StackWeight()
	}
	return total
}

// Cargo returns a copy of the cargo list.
func (n *DynamicNPC) Cargo() []*Item {
	return append([]*Item(nil), n.cargo...)
}

// CargoValue returns the total value of the cargo hold.
func (n *DynamicNPC) CargoValue() int {
	total := 0
	for _, item := range n.cargo {
		total += item.Value * item.Quantity
	}
	return total
}

// Refuel adds fuel up to capacity and returns the amount taken on.
func (n *DynamicNPC) Refuel(amount int) int {
	oldFuel := n.ShipFuel
	n.ShipFuel = min(n.MaxShipFuel, n.ShipFuel+amount)
	return n.ShipFuel - oldFuel
}

// RepairShip restores hull up to the maximum and returns the amount
// repaired.
func (n *DynamicNPC) RepairShip(amount int) int {
	oldHull := n.ShipHull
	n.ShipHull = min(n.MaxShipHull, n.ShipHull+amount)
	return n.ShipHull - oldHull
}

// Behavior returns the NPC's AI behavior.
func (n *DynamicNPC) Behavior() Behavior { return n.behavior }

// SetBehavior swaps the NPC's AI behavior.
func (n *DynamicNPC) SetBehavior(behavior Behavior) { n.behavior = behavior }

// ExecuteAIBehavior settles any pending arrival, then asks the behavior for
// the next action given the candidate locations. Returns nil while dead,
// mid-travel, or when the behavior has nothing to do. The caller applies the
// returned action.
func (n *DynamicNPC) ExecuteAIBehavior(availableLocations []int64, now time.Time) *Action {
	if !n.alive {
		return nil
	}

	n.UpdatePosition(now)

	if n.destinationLocation != 0 {
		return nil
	}

	if n.behavior == nil {
		return nil
	}
	return n.behavior.NextAction(n, availableLocations)
}

// Validate checks structural and range invariants.
func (n *DynamicNPC) Validate() bool {
	if !n.validateCore() {
		return false
	}
	if n.Callsign == "" || n.ShipName == "" {
		return false
	}
	if n.ShipFuel < 0 || n.ShipFuel > n.MaxShipFuel {
		return false
	}
	if n.ShipHull < 0 || n.ShipHull > n.MaxShipHull {
		return false
	}
	return true
}

// ToRecord returns a complete snapshot of the NPC, including travel, radio,
// and behavior state.
func (n *DynamicNPC) ToRecord() entity.Record {
	rec := n.coreRecord()
	rec["callsign"] = n.Callsign
	rec["ship_name"] = n.ShipName
	rec["ship_type"] = n.ShipType
	rec["current_location"] = n.currentLocation
	rec["destination_location"] = n.destinationLocation
	if !n.travelStart.IsZero() {
		rec["travel_start_time"] = n.travelStart.Format(time.RFC3339Nano)
	}
	if n.travelDuration != 0 {
		rec["travel_duration"] = n.travelDuration.Seconds()
	}
	rec["ship_hull"] = n.ShipHull
	rec["max_ship_hull"] = n.MaxShipHull
	rec["ship_fuel"] = n.ShipFuel
	rec["max_ship_fuel"] = n.MaxShipFuel
	rec["cargo_capacity"] = n.CargoCapacity
	rec["current_cargo"] = itemsToRecords(n.cargo)
	if !n.lastBroadcast.IsZero() {
		rec["last_radio_broadcast"] = n.lastBroadcast.Format(time.RFC3339Nano)
	}
	rec["ai_behavior"] = n.behavior.Name()
	rec["behavior_state"] = n.behavior.state()
	return rec
}

// DynamicNPCFromRecord rebuilds a dynamic NPC from a snapshot. The result is
// clean and publishes no events.
func DynamicNPCFromRecord(rec entity.Record) *DynamicNPC {
	alignment := AlignmentNeutral
	if v := rec.Str("alignment"); v != "" {
		alignment = Alignment(v)
	}
	age := 30
	if rec.Has("age") {
		age = rec.Int("age")
	}

	n := NewDynamicNPC(
		rec.Str("name"),
		age,
		alignment,
		rec.Str("callsign"),
		rec.Str("ship_name"),
		rec.Str("ship_type"),
	)
	n.applyCoreRecord(rec)
	if !rec.Has("credits") {
		n.Credits = 1000
	}

	n.currentLocation = rec.Int64("current_location")
	n.destinationLocation = rec.Int64("destination_location")
	n.travelStart = rec.Time("travel_start_time")
	if rec.Has("travel_duration") {
		n.travelDuration = time.Duration(rec.Float("travel_duration") * float64(time.Second))
	}

	if rec.Has("ship_hull") {
		n.ShipHull = rec.Int("ship_hull")
	}
	if rec.Has("max_ship_hull") {
		n.MaxShipHull = rec.Int("max_ship_hull")
	}
	if rec.Has("ship_fuel") {
		n.ShipFuel = rec.Int("ship_fuel")
	}
	if rec.Has("max_ship_fuel") {
		n.MaxShipFuel = rec.Int("max_ship_fuel")
	}
	if rec.Has("cargo_capacity") {
		n.CargoCapacity = rec.Int("cargo_capacity")
	}
	if recs := rec.Records("current_cargo"); len(recs) > 0 {
		n.cargo = itemsFromRecords(recs)
	}
	n.lastBroadcast = rec.Time("last_radio_broadcast")

	behaviorName := rec.Str("ai_behavior")
	if behaviorName == "" {
		behaviorName = "trader"
	}
	n.behavior = behaviorFromRecord(behaviorName, rec.Sub("behavior_state"))

	n.ApplyBaseRecord(rec)
	return n
}
