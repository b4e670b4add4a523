package game

import (
	"sort"
	"time"

	"github.com/thexant/galaxygame/internal/entity"
)

// State is the in-memory registry of everything live in the galaxy: one
// collection per entity kind plus cross-collection queries. It never touches
// persistence; loading and saving go through the storage layer, which feeds
// entities in and out of these collections.
type State struct {
	characters  *entity.Collection[*Character]
	ships       *entity.Collection[*Ship]
	locations   *entity.Collection[*Location]
	staticNPCs  *entity.Collection[*StaticNPC]
	dynamicNPCs *entity.Collection[*DynamicNPC]
}

// NewState creates an empty registry.
func NewState() *State {
	return &State{
		characters:  entity.NewCollection[*Character](),
		ships:       entity.NewCollection[*Ship](),
		locations:   entity.NewCollection[*Location](),
		staticNPCs:  entity.NewCollection[*StaticNPC](),
		dynamicNPCs: entity.NewCollection[*DynamicNPC](),
	}
}

// Characters returns the character collection.
func (s *State) Characters() *entity.Collection[*Character] { return s.characters }

// Ships returns the ship collection.
func (s *State) Ships() *entity.Collection[*Ship] { return s.ships }

// Locations returns the location collection.
func (s *State) Locations() *entity.Collection[*Location] { return s.locations }

// StaticNPCs returns the static NPC collection.
func (s *State) StaticNPCs() *entity.Collection[*StaticNPC] { return s.staticNPCs }

// DynamicNPCs returns the dynamic NPC collection.
func (s *State) DynamicNPCs() *entity.Collection[*DynamicNPC] { return s.dynamicNPCs }

// CharacterByPlayerRef finds the character owned by a player ref.
func (s *State) CharacterByPlayerRef(playerRef string) (*Character, bool) {
	for _, c := range s.characters.All() {
		if c.PlayerRef == playerRef {
			return c, true
		}
	}
	return nil, false
}

// CharactersAt returns the characters whose current location is locationID.
func (s *State) CharactersAt(locationID int64) []*Character {
	return s.characters.Filter(func(c *Character) bool {
		return c.CurrentLocation() == locationID
	})
}

// ShipsDockedAt returns the ships docked at locationID.
func (s *State) ShipsDockedAt(locationID int64) []*Ship {
	return s.ships.Filter(func(ship *Ship) bool {
		return ship.DockedAt() == locationID
	})
}

// StaticNPCsAt returns the static NPCs anchored to locationID.
func (s *State) StaticNPCsAt(locationID int64) []*StaticNPC {
	return s.staticNPCs.Filter(func(npc *StaticNPC) bool {
		return npc.LocationID == locationID
	})
}

// DynamicNPCsAt returns the dynamic NPCs docked at locationID. NPCs in
// transit away from it do not count.
func (s *State) DynamicNPCsAt(locationID int64) []*DynamicNPC {
	return s.dynamicNPCs.Filter(func(npc *DynamicNPC) bool {
		return npc.CurrentLocation() == locationID && !npc.IsTraveling()
	})
}

// LocationIDs returns every registered location id in ascending order, the
// candidate list handed to NPC behaviors.
func (s *State) LocationIDs() []int64 {
	ids := make([]int64, 0, s.locations.Count())
	for _, l := range s.locations.All() {
		ids = append(ids, l.ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AdvanceTravelers settles arrivals for every traveling dynamic NPC against
// the given clock and returns the NPCs that arrived.
func (s *State) AdvanceTravelers(now time.Time) []*DynamicNPC {
	var arrived []*DynamicNPC
	for _, npc := range s.dynamicNPCs.All() {
		if npc.UpdatePosition(now) {
			arrived = append(arrived, npc)
		}
	}
	return arrived
}
