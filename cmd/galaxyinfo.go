package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/thexant/galaxygame/internal/game"
	"github.com/thexant/galaxygame/internal/storage"
)

// galaxyinfo opens a world database read-only-in-spirit, loads every
// entity back through the record contract, validates each one, and
// prints a report. Exit code 1 means the world failed inspection.
func main() {
	dbPath := flag.String("db", "galaxy.db", "Path to world database file")
	flag.Parse()

	failures, err := inspect(*dbPath)
	if err != nil {
		fmt.Printf("Error inspecting database: %v\n", err)
		os.Exit(1)
	}
	if failures > 0 {
		fmt.Printf("\n%d entities failed validation\n", failures)
		os.Exit(1)
	}
	fmt.Println("\nAll entities valid")
}

func inspect(path string) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("database %s does not exist", path)
	}

	db := storage.NewDatabase()
	if err := db.OpenDatabase(path); err != nil {
		return 0, err
	}
	defer db.CloseDatabase()

	info, err := db.LoadGalaxyInfo()
	if err != nil {
		return 0, err
	}
	if info == nil {
		fmt.Println("No galaxy has been generated in this database")
	} else {
		fmt.Printf("Galaxy:     %s (founded %s)\n", info.Name, info.StartDate)
		fmt.Printf("Galaxy ID:  %s\n", info.GalaxyID)
	}

	failures := 0

	locations, err := db.LoadAllLocations()
	if err != nil {
		return failures, err
	}
	typeCounts := make(map[game.LocationType]int)
	serviceCounts := make(map[game.Service]int)
	locationIDs := make(map[int64]bool, len(locations))
	for _, l := range locations {
		typeCounts[l.Type]++
		locationIDs[l.ID()] = true
		for _, s := range l.Services() {
			serviceCounts[s]++
		}
		if !l.Validate() {
			fmt.Printf("  INVALID location %d: %s\n", l.ID(), l.Name)
			failures++
		}
	}
	fmt.Printf("\nLocations:  %d\n", len(locations))
	for _, kind := range []game.LocationType{game.LocColony, game.LocSpaceStation, game.LocOutpost, game.LocGate} {
		if typeCounts[kind] > 0 {
			fmt.Printf("  %-14s %d\n", kind, typeCounts[kind])
		}
	}

	fmt.Println("\nServices offered:")
	services := make([]game.Service, 0, len(serviceCounts))
	for s := range serviceCounts {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })
	for _, s := range services {
		fmt.Printf("  %-14s %d\n", s, serviceCounts[s])
	}

	corridors, err := db.LoadAllCorridors()
	if err != nil {
		return failures, err
	}
	for _, c := range corridors {
		if !locationIDs[c.OriginID] || !locationIDs[c.DestinationID] {
			fmt.Printf("  INVALID corridor %d: %s links missing locations\n", c.ID, c.Name)
			failures++
		}
	}
	fmt.Printf("\nCorridors:  %d\n", len(corridors))

	characters, err := db.LoadAllCharacters()
	if err != nil {
		return failures, err
	}
	for _, c := range characters {
		if !c.Validate() {
			fmt.Printf("  INVALID character %d: %s\n", c.ID(), c.Name)
			failures++
		}
	}
	fmt.Printf("Characters: %d\n", len(characters))

	ships, err := db.LoadAllShips()
	if err != nil {
		return failures, err
	}
	for _, s := range ships {
		if !s.Validate() {
			fmt.Printf("  INVALID ship %d: %s\n", s.ID(), s.Name)
			failures++
		}
	}
	fmt.Printf("Ships:      %d\n", len(ships))

	statics, err := db.LoadAllStaticNPCs()
	if err != nil {
		return failures, err
	}
	for _, n := range statics {
		if !n.Validate() {
			fmt.Printf("  INVALID npc %d: %s\n", n.ID(), n.Name)
			failures++
		}
		if !locationIDs[n.LocationID] {
			fmt.Printf("  INVALID npc %d: %s placed at missing location %d\n", n.ID(), n.Name, n.LocationID)
			failures++
		}
	}
	fmt.Printf("Residents:  %d\n", len(statics))

	fleet, err := db.LoadAllDynamicNPCs()
	if err != nil {
		return failures, err
	}
	for _, n := range fleet {
		if !n.Validate() {
			fmt.Printf("  INVALID fleet npc %d: %s\n", n.ID(), n.Callsign)
			failures++
		}
	}
	fmt.Printf("Fleet:      %d\n", len(fleet))

	history, err := db.LoadAllHistory()
	if err != nil {
		return failures, err
	}
	for _, e := range history {
		if !locationIDs[e.LocationID] {
			fmt.Printf("  INVALID history event %d: %q set at missing location %d\n", e.ID, e.Title, e.LocationID)
			failures++
		}
	}
	fmt.Printf("History:    %d\n", len(history))

	return failures, nil
}
