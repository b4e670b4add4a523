package galaxy

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"

	"github.com/thexant/galaxygame/internal/game"
	"github.com/thexant/galaxygame/internal/log"
	"github.com/thexant/galaxygame/internal/storage"
)

// Generator builds a complete world into a database: the galaxy
// record, locations, the corridor web, resident NPCs, and a roaming
// fleet. A fixed seed reproduces the same world.
type Generator struct {
	cfg *Config
	rng *rand.Rand
}

// NewGenerator wires a generation profile to a seeded source. Seed
// zero draws from the clock.
func NewGenerator(cfg *Config, seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed)),
	}
}

// Summary reports what a generation run produced.
type Summary struct {
	GalaxyID      string
	Name          string
	StartDate     string
	Locations     int
	Corridors     int
	StaticNPCs    int
	DynamicNPCs   int
	HistoryEvents int
	TypeCounts    map[game.LocationType]int
}

// Generate wipes the world and builds a fresh one. The corridor web is
// checked for full connectivity before anything is written, so a world
// that generates at all is a world the travel logic can walk.
func (g *Generator) Generate(ctx context.Context, db storage.Database) (*Summary, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}

	if err := db.WipeWorld(); err != nil {
		return nil, fmt.Errorf("failed to clear world: %w", err)
	}

	name := g.cfg.GalaxyName
	if name == "" {
		name = fmt.Sprintf("Galaxy-%d", 1000+g.rng.IntN(9000))
	}
	startDate := g.cfg.StartDate
	if startDate == "" {
		startDate = fmt.Sprintf("01-01-%d", 2700+g.rng.IntN(100))
	}

	info := storage.GalaxyInfo{GalaxyID: uuid.NewString(), Name: name, StartDate: startDate}
	if err := db.SaveGalaxyInfo(info); err != nil {
		return nil, fmt.Errorf("failed to save galaxy info: %w", err)
	}
	log.Info("generating galaxy", "name", name, "start_date", startDate, "locations", g.cfg.LocationCount)

	locations, err := g.generateLocations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to generate locations: %w", err)
	}

	corridors, err := g.generateCorridors(ctx, db, locations)
	if err != nil {
		return nil, fmt.Errorf("failed to generate corridors: %w", err)
	}

	residents, err := g.generateStaticNPCs(ctx, db, locations)
	if err != nil {
		return nil, fmt.Errorf("failed to generate npcs: %w", err)
	}

	fleet, err := g.generateFleet(ctx, db, locations)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fleet: %w", err)
	}

	history, err := g.generateHistory(ctx, db, locations, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to generate history: %w", err)
	}

	counts := make(map[game.LocationType]int, 4)
	for _, l := range locations {
		counts[l.Type]++
	}

	log.Info("galaxy generated",
		"locations", len(locations), "corridors", corridors,
		"static_npcs", residents, "dynamic_npcs", fleet,
		"history_events", history)

	return &Summary{
		GalaxyID:      info.GalaxyID,
		Name:          name,
		StartDate:     startDate,
		Locations:     len(locations),
		Corridors:     corridors,
		StaticNPCs:    residents,
		DynamicNPCs:   fleet,
		HistoryEvents: history,
		TypeCounts:    counts,
	}, nil
}

func (g *Generator) generateLocations(ctx context.Context, db storage.Database) ([]*game.Location, error) {
	n := g.cfg.LocationCount
	colonies := int(float64(n) * g.cfg.ColonyShare)
	stations := int(float64(n) * g.cfg.StationShare)
	outposts := int(float64(n) * g.cfg.OutpostShare)
	gates := n - colonies - stations - outposts

	plan := make([]game.LocationType, 0, n)
	for i := 0; i < colonies; i++ {
		plan = append(plan, game.LocColony)
	}
	for i := 0; i < stations; i++ {
		plan = append(plan, game.LocSpaceStation)
	}
	for i := 0; i < outposts; i++ {
		plan = append(plan, game.LocOutpost)
	}
	for i := 0; i < gates; i++ {
		plan = append(plan, game.LocGate)
	}

	locations := make([]*game.Location, 0, n)
	for _, kind := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		l := g.createLocation(kind)
		if err := db.SaveLocation(l); err != nil {
			return nil, fmt.Errorf("failed to save location %s: %w", l.Name, err)
		}
		locations = append(locations, l)
	}
	return locations, nil
}

func (g *Generator) createLocation(kind game.LocationType) *game.Location {
	var name string
	if kind == game.LocGate {
		name = fmt.Sprintf("Gate %s-%d", g.choice(g.cfg.GateNames), 100+g.rng.IntN(900))
	} else {
		name = g.choice(g.cfg.NamePrefixes) + " " + g.choice(g.cfg.NameSuffixes)
	}

	// Locations sit on a disc 10 to 100 units out, with a thin band of
	// vertical spread.
	angle := g.rng.Float64() * 2 * math.Pi
	distance := 10 + g.rng.Float64()*90
	coords := game.Coordinates{
		X: distance * math.Cos(angle),
		Y: distance * math.Sin(angle),
		Z: g.rng.Float64()*20 - 10,
	}

	wealth := g.intIn(g.cfg.Wealth[string(kind)])
	population := g.intIn(g.cfg.Population[string(kind)])

	l := game.NewLocation(name, kind, coords, wealth, population)
	l.LocationRef = uuid.NewString()
	l.SystemName = g.choice(g.cfg.SystemNames)
	return l
}

// generateCorridors links every location into one web: a minimum
// spanning tree over the complete distance graph for reachability,
// plus the closest unused pairs for redundancy. Each undirected link
// is stored as two directed corridor rows sharing one set of rolled
// stats.
func (g *Generator) generateCorridors(ctx context.Context, db storage.Database, locations []*game.Location) (int, error) {
	type pair struct{ a, b int }

	dist := func(i, j int) float64 {
		ci, cj := locations[i].Coordinates, locations[j].Coordinates
		dx := ci.X - cj.X
		dy := ci.Y - cj.Y
		dz := ci.Z - cj.Z
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	complete := graph.New(func(i int) int { return i }, graph.Weighted())
	for i := range locations {
		complete.AddVertex(i)
	}
	for i := 0; i < len(locations); i++ {
		for j := i + 1; j < len(locations); j++ {
			complete.AddEdge(i, j, graph.EdgeWeight(int(dist(i, j)*1000)))
		}
	}

	mst, err := graph.MinimumSpanningTree(complete)
	if err != nil {
		return 0, fmt.Errorf("failed to compute spanning tree: %w", err)
	}
	mstEdges, err := mst.Edges()
	if err != nil {
		return 0, fmt.Errorf("failed to list spanning tree edges: %w", err)
	}

	used := make(map[pair]bool)
	var picked []pair
	for _, e := range mstEdges {
		a, b := e.Source, e.Target
		if a > b {
			a, b = b, a
		}
		if !used[pair{a, b}] {
			used[pair{a, b}] = true
			picked = append(picked, pair{a, b})
		}
	}

	type candidate struct {
		p pair
		d float64
	}
	var candidates []candidate
	for i := 0; i < len(locations); i++ {
		for j := i + 1; j < len(locations); j++ {
			if used[pair{i, j}] {
				continue
			}
			candidates = append(candidates, candidate{pair{i, j}, dist(i, j)})
		}
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].d < candidates[b].d })

	extra := len(locations) / 2
	if extra > len(candidates) {
		extra = len(candidates)
	}
	for _, c := range candidates[:extra] {
		used[c.p] = true
		picked = append(picked, c.p)
	}

	web := graph.New(func(i int) int { return i })
	for i := range locations {
		web.AddVertex(i)
	}
	for _, p := range picked {
		web.AddEdge(p.a, p.b)
	}

	reached := 0
	if err := graph.BFS(web, 0, func(int) bool { reached++; return false }); err != nil {
		return 0, fmt.Errorf("failed to walk corridor web: %w", err)
	}
	if reached != len(locations) {
		return 0, fmt.Errorf("corridor web is not connected: reached %d of %d locations", reached, len(locations))
	}

	count := 0
	for _, p := range picked {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		d := dist(p.a, p.b)
		base := int(d * 10)
		travelTime := base + g.rng.IntN(base+1)
		fuelCost := int(d*0.5) + 5 + g.rng.IntN(16)
		danger := 1 + g.rng.IntN(5)

		origin, dest := locations[p.a], locations[p.b]
		for _, c := range []*storage.Corridor{
			{
				Name:          fmt.Sprintf("Corridor-%d-%d", origin.ID(), dest.ID()),
				OriginID:      origin.ID(),
				DestinationID: dest.ID(),
				TravelTime:    travelTime,
				FuelCost:      fuelCost,
				DangerLevel:   danger,
				IsActive:      true,
			},
			{
				Name:          fmt.Sprintf("Corridor-%d-%d", dest.ID(), origin.ID()),
				OriginID:      dest.ID(),
				DestinationID: origin.ID(),
				TravelTime:    travelTime,
				FuelCost:      fuelCost,
				DangerLevel:   danger,
				IsActive:      true,
			},
		} {
			if err := db.SaveCorridor(c); err != nil {
				return count, fmt.Errorf("failed to save corridor %s: %w", c.Name, err)
			}
			count++
		}
	}
	return count, nil
}

var occupationsByType = map[game.LocationType][]game.NPCOccupation{
	game.LocColony: {
		game.OccupationMiner, game.OccupationDoctor, game.OccupationTrader,
		game.OccupationBartender, game.OccupationMechanic,
	},
	game.LocSpaceStation: {
		game.OccupationMechanic, game.OccupationPilot, game.OccupationTrader,
		game.OccupationSecurity, game.OccupationBartender,
	},
	game.LocOutpost: {
		game.OccupationResearcher, game.OccupationSecurity, game.OccupationMiner,
	},
	game.LocGate: {
		game.OccupationPilot, game.OccupationSecurity, game.OccupationMechanic,
	},
}

func (g *Generator) generateStaticNPCs(ctx context.Context, db storage.Database, locations []*game.Location) (int, error) {
	count := 0
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		residents := g.intIn(g.cfg.NPCsPerLocation)
		for i := 0; i < residents; i++ {
			name := g.choice(g.cfg.NPCFirstNames) + " " + g.choice(g.cfg.NPCLastNames)
			age := 25 + g.rng.IntN(41)

			occs := occupationsByType[loc.Type]
			if len(occs) == 0 {
				occs = []game.NPCOccupation{game.OccupationTrader}
			}
			occ := occs[g.rng.IntN(len(occs))]

			npc := game.NewStaticNPC(name, age, g.alignmentForWealth(loc.WealthLevel()), loc.ID(), occ, g.personalityFor(occ))
			npc.Credits = 50 + g.rng.IntN(451)

			if err := db.SaveStaticNPC(npc); err != nil {
				return count, fmt.Errorf("failed to save npc %s: %w", name, err)
			}
			count++
		}
	}
	return count, nil
}

// alignmentForWealth skews residents bandit-ward in poor places and
// loyal-ward in rich ones.
func (g *Generator) alignmentForWealth(wealth int) game.Alignment {
	switch {
	case wealth <= 3:
		return g.pickAlignment(game.AlignmentBandit, game.AlignmentNeutral, game.AlignmentNeutral)
	case wealth >= 7:
		return g.pickAlignment(game.AlignmentLoyal, game.AlignmentLoyal, game.AlignmentNeutral)
	default:
		return game.AlignmentNeutral
	}
}

func (g *Generator) personalityFor(occ game.NPCOccupation) game.NPCPersonality {
	switch occ {
	case game.OccupationTrader:
		return game.PersonalityMerchant
	case game.OccupationBartender:
		return game.PersonalityFriendly
	case game.OccupationSecurity:
		return game.PersonalityGuard
	case game.OccupationResearcher:
		return game.PersonalityScientist
	case game.OccupationPilot:
		return game.PersonalityPilot
	default:
		options := []game.NPCPersonality{
			game.PersonalityFriendly, game.PersonalityNeutral,
			game.PersonalityNeutral, game.PersonalityMysterious,
		}
		return options[g.rng.IntN(len(options))]
	}
}

func (g *Generator) generateFleet(ctx context.Context, db storage.Database, locations []*game.Location) (int, error) {
	seen := make(map[string]bool)
	count := 0

	for i := 0; i < g.cfg.DynamicNPCCount; i++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		callsign := g.uniqueCallsign(seen, i)
		seen[callsign] = true

		name := g.choice(g.cfg.NPCFirstNames) + " " + g.choice(g.cfg.NPCLastNames)
		shipName := "SS " + g.choice(g.cfg.ShipNames)
		shipType := g.choice(g.cfg.ShipTypes)
		age := 25 + g.rng.IntN(41)
		alignment := g.fleetAlignment()

		npc := game.NewDynamicNPC(name, age, alignment, callsign, shipName, shipType)
		npc.SetBehavior(g.behaviorFor(alignment, i))
		npc.SetCurrentLocation(locations[g.rng.IntN(len(locations))].ID())
		npc.Credits = 200 + g.rng.IntN(1801)

		if err := db.SaveDynamicNPC(npc); err != nil {
			return count, fmt.Errorf("failed to save fleet npc %s: %w", callsign, err)
		}
		count++
	}
	return count, nil
}

func (g *Generator) uniqueCallsign(seen map[string]bool, serial int) string {
	for attempts := 0; attempts < 100; attempts++ {
		callsign := fmt.Sprintf("%s-%d", g.choice(g.cfg.CallsignPrefixes), 100+g.rng.IntN(900))
		if !seen[callsign] {
			return callsign
		}
	}
	// Dense fleets exhaust the random space; the serial keeps the
	// fallback unique.
	return fmt.Sprintf("%s-%d-%d", g.choice(g.cfg.CallsignPrefixes), 100+g.rng.IntN(900), serial)
}

func (g *Generator) fleetAlignment() game.Alignment {
	switch r := g.rng.IntN(10); {
	case r < 2:
		return game.AlignmentBandit
	case r < 4:
		return game.AlignmentLoyal
	default:
		return game.AlignmentNeutral
	}
}

func (g *Generator) behaviorFor(alignment game.Alignment, serial int) game.Behavior {
	switch alignment {
	case game.AlignmentBandit:
		return game.PirateBehavior{}
	case game.AlignmentLoyal:
		return &game.PatrolBehavior{}
	default:
		if serial%2 == 0 {
			return game.TraderBehavior{}
		}
		return &game.ExplorerBehavior{}
	}
}

// generateHistory scatters a handful of founding-era events across the
// new locations, all dated to the galaxy start.
func (g *Generator) generateHistory(ctx context.Context, db storage.Database, locations []*game.Location, startDate string) (int, error) {
	total := g.intIn(g.cfg.HistoryEvents)
	count := 0

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		loc := locations[g.rng.IntN(len(locations))]
		title := g.choice(g.cfg.HistoryTitles)
		event := &storage.HistoryEvent{
			LocationID:  loc.ID(),
			Title:       title,
			Description: loc.Name + " " + title,
			Figure:      g.choice(g.cfg.HistoryFigures),
			EventDate:   startDate,
		}

		if err := db.SaveHistoryEvent(event); err != nil {
			return count, fmt.Errorf("failed to save history event %q: %w", title, err)
		}
		count++
	}
	return count, nil
}

func (g *Generator) pickAlignment(options ...game.Alignment) game.Alignment {
	return options[g.rng.IntN(len(options))]
}

func (g *Generator) choice(table []string) string {
	return table[g.rng.IntN(len(table))]
}

// intIn draws from an inclusive range.
func (g *Generator) intIn(r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.IntN(r.Max-r.Min+1)
}
