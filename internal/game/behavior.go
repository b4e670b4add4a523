package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/thexant/galaxygame/internal/entity"
)

// ActionType names the kinds of action an AI behavior can propose.
type ActionType string

const (
	ActionRefuel ActionType = "refuel"
	ActionRepair ActionType = "repair"
	ActionTravel ActionType = "travel"
)

// Action is a single step proposed by an AI behavior. Refuel and repair
// carry an amount; travel carries a destination and duration.
type Action struct {
	Type        ActionType
	Amount      int
	Destination int64
	Duration    time.Duration
}

// Behavior decides a dynamic NPC's next action from its current stats and a
// candidate location list. Implementations that need memory (a patrol
// rotation, a visited set) own it as typed state that serializes with the
// NPC.
type Behavior interface {
	Name() string
	NextAction(npc *DynamicNPC, availableLocations []int64) *Action

	state() entity.Record
}

func behaviorFromRecord(name string, state entity.Record) Behavior {
	switch name {
	case "patrol":
		b := &PatrolBehavior{}
		if state != nil {
			b.rotation = state.Int("patrol_index")
		}
		return b
	case "pirate":
		return PirateBehavior{}
	case "explorer":
		b := &ExplorerBehavior{visited: make(map[int64]struct{})}
		if state != nil {
			for _, id := range state.Int64s("visited_locations") {
				b.visited[id] = struct{}{}
			}
		}
		return b
	default:
		return TraderBehavior{}
	}
}

func otherLocations(available []int64, current int64) []int64 {
	out := make([]int64, 0, len(available))
	for _, id := range available {
		if id != current {
			out = append(out, id)
		}
	}
	return out
}

func randomMinutes(low, high int) time.Duration {
	return time.Duration(low+rand.Intn(high-low+1)) * time.Minute
}

// TraderBehavior hops between markets, keeping fuel and hull serviceable.
type TraderBehavior struct{}

func (TraderBehavior) Name() string { return "trader" }

func (TraderBehavior) NextAction(npc *DynamicNPC, availableLocations []int64) *Action {
	if npc.ShipFuel < 20 {
		return &Action{Type: ActionRefuel, Amount: npc.MaxShipFuel - npc.ShipFuel}
	}
	if float64(npc.ShipHull) < float64(npc.MaxShipHull)*0.5 {
		return &Action{Type: ActionRepair, Amount: npc.MaxShipHull - npc.ShipHull}
	}

	if len(availableLocations) > 0 && npc.CurrentLocation() != 0 {
		destinations := otherLocations(availableLocations, npc.CurrentLocation())
		if len(destinations) > 0 {
			return &Action{
				Type:        ActionTravel,
				Destination: destinations[rand.Intn(len(destinations))],
				Duration:    randomMinutes(5, 30),
			}
		}
	}

	return nil
}

func (TraderBehavior) state() entity.Record { return nil }

// PatrolBehavior walks the candidate locations in a fixed rotation.
type PatrolBehavior struct {
	rotation int
}

func (b *PatrolBehavior) Name() string { return "patrol" }

func (b *PatrolBehavior) NextAction(npc *DynamicNPC, availableLocations []int64) *Action {
	if npc.ShipFuel < 30 {
		return &Action{Type: ActionRefuel, Amount: npc.MaxShipFuel - npc.ShipFuel}
	}

	if len(availableLocations) > 0 && npc.CurrentLocation() != 0 {
		destinations := otherLocations(availableLocations, npc.CurrentLocation())
		if len(destinations) > 0 {
			destination := destinations[b.rotation%len(destinations)]
			b.rotation = (b.rotation + 1) % len(destinations)
			return &Action{
				Type:        ActionTravel,
				Destination: destination,
				Duration:    randomMinutes(10, 20),
			}
		}
	}

	return nil
}

func (b *PatrolBehavior) state() entity.Record {
	return entity.Record{"patrol_index": b.rotation}
}

// PirateBehavior keeps the ship fight-ready and prowls quickly between
// locations.
type PirateBehavior struct{}

func (PirateBehavior) Name() string { return "pirate" }

func (PirateBehavior) NextAction(npc *DynamicNPC, availableLocations []int64) *Action {
	// Pirates keep the ship fight-ready before anything else
	if float64(npc.ShipHull) < float64(npc.MaxShipHull)*0.7 {
		return &Action{Type: ActionRepair, Amount: npc.MaxShipHull - npc.ShipHull}
	}
	if npc.ShipFuel < 40 {
		return &Action{Type: ActionRefuel, Amount: npc.MaxShipFuel - npc.ShipFuel}
	}

	if len(availableLocations) > 0 && npc.CurrentLocation() != 0 {
		destinations := otherLocations(availableLocations, npc.CurrentLocation())
		if len(destinations) > 0 {
			return &Action{
				Type:        ActionTravel,
				Destination: destinations[rand.Intn(len(destinations))],
				Duration:    randomMinutes(3, 15),
			}
		}
	}

	return nil
}

func (PirateBehavior) state() entity.Record { return nil }

// ExplorerBehavior prefers locations it has not seen yet, remembering where
// it has been.
type ExplorerBehavior struct {
	visited map[int64]struct{}
}

func (b *ExplorerBehavior) Name() string { return "explorer" }

func (b *ExplorerBehavior) NextAction(npc *DynamicNPC, availableLocations []int64) *Action {
	if b.visited == nil {
		b.visited = make(map[int64]struct{})
	}
	if npc.CurrentLocation() != 0 {
		b.visited[npc.CurrentLocation()] = struct{}{}
	}

	if npc.ShipFuel < 50 {
		return &Action{Type: ActionRefuel, Amount: npc.MaxShipFuel - npc.ShipFuel}
	}

	if len(availableLocations) > 0 && npc.CurrentLocation() != 0 {
		var unvisited []int64
		for _, id := range availableLocations {
			if id == npc.CurrentLocation() {
				continue
			}
			if _, seen := b.visited[id]; !seen {
				unvisited = append(unvisited, id)
			}
		}

		var destination int64
		if len(unvisited) > 0 {
			destination = unvisited[rand.Intn(len(unvisited))]
		} else {
			destinations := otherLocations(availableLocations, npc.CurrentLocation())
			if len(destinations) == 0 {
				return nil
			}
			destination = destinations[rand.Intn(len(destinations))]
		}

		return &Action{
			Type:        ActionTravel,
			Destination: destination,
			Duration:    randomMinutes(15, 45),
		}
	}

	return nil
}

func (b *ExplorerBehavior) state() entity.Record {
	ids := make([]int64, 0, len(b.visited))
	for id := range b.visited {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return entity.Record{"visited_locations": ids}
}

// Visited reports whether the explorer has already been to a location.
func (b *ExplorerBehavior) Visited(locationID int64) bool {
	_, ok := b.visited[locationID]
	return ok
}
