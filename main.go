package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sort"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/thexant/galaxygame/internal/config"
	"github.com/thexant/galaxygame/internal/galaxy"
	"github.com/thexant/galaxygame/internal/game"
	"github.com/thexant/galaxygame/internal/log"
	"github.com/thexant/galaxygame/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set up global panic handler first
	defer func() {
		if r := recover(); r != nil {
			log.Error("GLOBAL PANIC recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "Application crashed. See the debug log for details.\n")
			os.Exit(1)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Configure debug logging to file for main application
	if err := log.SetFileOutput(cfg.LogFile); err != nil {
		fmt.Printf("Warning: Could not configure debug logging to file: %v\n", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", "version", version, "commit", commit, "built", date)

	if err := run(ctx, cfg); err != nil {
		log.Error("run failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	profile, err := galaxy.LoadConfig(cfg.ProfilePath)
	if err != nil {
		return err
	}
	if cfg.GalaxyName != "" {
		profile.GalaxyName = cfg.GalaxyName
	}
	if cfg.LocationCount > 0 {
		profile.LocationCount = cfg.LocationCount
	}

	db := storage.NewDatabase()
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		err = db.CreateDatabase(cfg.DBPath)
		if err != nil {
			return err
		}
	} else if err := db.OpenDatabase(cfg.DBPath); err != nil {
		return err
	}
	defer db.CloseDatabase()

	summary, err := galaxy.NewGenerator(profile, cfg.Seed).Generate(ctx, db)
	if err != nil {
		return err
	}

	locations, err := db.LoadAllLocations()
	if err != nil {
		return err
	}

	out := newReport(isatty.IsTerminal(os.Stdout.Fd()))
	out.header(summary)
	out.locationSample(locations)

	history, err := db.LoadAllHistory()
	if err != nil {
		return err
	}
	out.founding(history)

	chatter, err := runFleetPass(ctx, db, locations)
	if err != nil {
		return err
	}
	out.fleetChatter(chatter)
	out.footer(summary, locations)
	return nil
}

// runFleetPass settles one AI step for every roaming NPC: arrivals,
// refuels, repairs, new courses, and any radio traffic, all persisted
// back to the store.
func runFleetPass(ctx context.Context, db storage.Database, locations []*game.Location) ([]string, error) {
	names := make(map[int64]string, len(locations))
	for _, l := range locations {
		names[l.ID()] = l.Name
	}

	fleet, err := db.LoadAllDynamicNPCs()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var chatter []string
	for _, npc := range fleet {
		if err := ctx.Err(); err != nil {
			return chatter, err
		}

		destinations, err := db.DestinationsFrom(npc.CurrentLocation())
		if err != nil {
			return chatter, err
		}

		if action := npc.ExecuteAIBehavior(destinations, now); action != nil {
			switch action.Type {
			case game.ActionTravel:
				if npc.StartTravel(action.Destination, action.Duration, now) {
					chatter = append(chatter, fmt.Sprintf("%s (%s) sets course for %s, ETA %s",
						npc.Callsign, npc.Behavior().Name(), names[action.Destination],
						action.Duration.Round(time.Minute)))
				}
			case game.ActionRefuel:
				npc.Refuel(action.Amount)
			case game.ActionRepair:
				npc.RepairShip(action.Amount)
			}
		}

		if msg, ok := npc.BroadcastRadio(now, false); ok {
			chatter = append(chatter, fmt.Sprintf("[RADIO] %s", msg))
		}

		if err := db.SaveDynamicNPC(npc); err != nil {
			return chatter, err
		}
	}
	return chatter, nil
}

// report prints the demo summary, with box drawing only on a real
// terminal so piped output stays plain.
type report struct {
	p   *message.Printer
	tty bool
}

func newReport(tty bool) *report {
	return &report{p: message.NewPrinter(language.English), tty: tty}
}

func (r *report) rule() string {
	if r.tty {
		return "════════════════════════════════════════"
	}
	return "----------------------------------------"
}

func (r *report) header(s *galaxy.Summary) {
	fmt.Println(r.rule())
	if r.tty {
		r.p.Printf("  ✦ %s ✦\n", s.Name)
	} else {
		r.p.Printf("  %s\n", s.Name)
	}
	r.p.Printf("  Founded %s\n", s.StartDate)
	fmt.Println(r.rule())

	r.p.Printf("Locations: %d (%d colonies, %d stations, %d outposts, %d gates)\n",
		s.Locations,
		s.TypeCounts[game.LocColony], s.TypeCounts[game.LocSpaceStation],
		s.TypeCounts[game.LocOutpost], s.TypeCounts[game.LocGate])
	r.p.Printf("Corridors: %d    Residents: %d    Fleet: %d    History: %d\n",
		s.Corridors, s.StaticNPCs, s.DynamicNPCs, s.HistoryEvents)
}

func (r *report) locationSample(locations []*game.Location) {
	sorted := make([]*game.Location, len(locations))
	copy(sorted, locations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Population() > sorted[j].Population()
	})

	fmt.Println()
	fmt.Println("Largest settlements:")
	for i, l := range sorted {
		if i == 3 {
			break
		}
		r.p.Printf("  %-24s %-14s wealth %2d   pop %d\n",
			l.Name, l.Type, l.WealthLevel(), l.Population())
	}
}

func (r *report) founding(events []*storage.HistoryEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Founding history:")
	for i, e := range events {
		if i == 3 {
			break
		}
		fmt.Printf("  %s  (%s, %s)\n", e.Description, e.Figure, e.EventDate)
	}
}

func (r *report) fleetChatter(lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Fleet activity:")
	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
}

func (r *report) footer(s *galaxy.Summary, locations []*game.Location) {
	total := 0
	for _, l := range locations {
		total += l.Population()
	}

	fmt.Println()
	fmt.Println(r.rule())
	r.p.Printf("Total population: %d across %d locations\n", total, s.Locations)
	fmt.Println(r.rule())
}
