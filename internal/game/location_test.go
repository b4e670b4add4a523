package game

import (
	"strings"
	"testing"
)

func TestCoordinatesDistance(t *testing.T) {
	a := Coordinates{X: 0, Y: 0, Z: 0}
	b := Coordinates{X: 3, Y: 4, Z: 0}
	if d := a.DistanceTo(b); d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
	if d := b.DistanceTo(a); d != 5 {
		t.Errorf("expected distance symmetric, got %v", d)
	}
}

func TestServiceDerivation(t *testing.T) {
	cases := []struct {
		name     string
		locType  LocationType
		wealth   int
		services []Service
	}{
		{
			name:    "wealthy colony",
			locType: LocColony,
			wealth:  8,
			services: []Service{
				ServiceBank, ServiceComms, ServiceFuel, ServiceHomes, ServiceJobs,
				ServiceMedical, ServiceRepairs, ServiceShipyard, ServiceShops, ServiceUpgrades,
			},
		},
		{
			name:    "federal station",
			locType: LocSpaceStation,
			wealth:  8,
			services: []Service{
				ServiceBank, ServiceComms, ServiceFederalSupplies, ServiceFuel,
				ServiceJobs, ServiceMedical, ServiceRepairs, ServiceShops, ServiceUpgrades,
			},
		},
		{
			name:     "poor outpost",
			locType:  LocOutpost,
			wealth:   2,
			services: []Service{ServiceBlackMarket, ServiceComms, ServiceJobs},
		},
		{
			name:     "modest outpost",
			locType:  LocOutpost,
			wealth:   4,
			services: []Service{ServiceBlackMarket, ServiceComms, ServiceFuel, ServiceJobs, ServiceShops},
		},
		{
			name:     "derelict ruin",
			locType:  LocDerelict,
			wealth:   1,
			services: nil,
		},
	}

	for _, tc := range cases {
		l := NewLocation(tc.name, tc.locType, Coordinates{}, tc.wealth, 1000)
		got := l.Services()
		if len(got) != len(tc.services) {
			t.Errorf("%s: expected services %v, got %v", tc.name, tc.services, got)
			continue
		}
		for i, svc := range tc.services {
			if got[i] != svc {
				t.Errorf("%s: expected services %v, got %v", tc.name, tc.services, got)
				break
			}
		}
	}
}

func TestBasicOutpostLacksShipyard(t *testing.T) {
	l := NewLocation("Dust Rock", LocOutpost, Coordinates{}, 6, 500)
	if l.HasService(ServiceShipyard) {
		t.Error("expected no shipyard on an outpost")
	}
	if l.HasService(ServiceBlackMarket) {
		t.Error("expected no black market at wealth 6")
	}
	if !l.HasService(ServiceMedical) || !l.HasService(ServiceRepairs) {
		t.Error("expected medical and repairs at wealth 6")
	}
}

func TestCalculatePopulation(t *testing.T) {
	l := NewLocation("New Terra", LocColony, Coordinates{}, 7, 1000)
	// 10 services at wealth 7: 1000 * 1.2 * 1.5 * 1.5
	if got := l.CalculatePopulation(); got != 2700 {
		t.Errorf("expected effective population 2700, got %d", got)
	}

	l.SetDerelict(true)
	if got := l.CalculatePopulation(); got != 0 {
		t.Errorf("expected zero effective population when derelict, got %d", got)
	}
}

func TestUpdateWealthRebuildsServices(t *testing.T) {
	l := NewLocation("Dust Rock", LocOutpost, Coordinates{}, 2, 500)
	if !l.HasService(ServiceBlackMarket) {
		t.Fatal("expected black market at wealth 2")
	}

	var log eventLog
	log.watch(l.Events(), "wealth_level_changed", "service_added", "service_removed")

	l.UpdateWealth(3)
	if l.WealthLevel() != 5 {
		t.Fatalf("expected wealth 5, got %d", l.WealthLevel())
	}
	if l.HasService(ServiceBlackMarket) {
		t.Error("expected the black market gone at wealth 5")
	}
	if !l.HasService(ServiceMedical) || !l.HasService(ServiceRepairs) {
		t.Error("expected medical and repairs at wealth 5")
	}

	// The rebuild is silent; only the tracked wealth change publishes.
	if log.count("wealth_level_changed") != 1 {
		t.Errorf("expected one wealth change event, got %d", log.count("wealth_level_changed"))
	}
	if log.count("service_added") != 0 || log.count("service_removed") != 0 {
		t.Errorf("expected no service events from a rebuild, got %v", log.types())
	}

	l.UpdateWealth(100)
	if l.WealthLevel() != 10 {
		t.Errorf("expected wealth clamped at 10, got %d", l.WealthLevel())
	}
	l.UpdateWealth(-100)
	if l.WealthLevel() != 1 {
		t.Errorf("expected wealth clamped at 1, got %d", l.WealthLevel())
	}
}

func TestUpdatePopulationFloorsAtZero(t *testing.T) {
	l := NewLocation("Dust Rock", LocOutpost, Coordinates{}, 3, 100)
	l.UpdatePopulation(-500)
	if l.Population() != 0 {
		t.Errorf("expected population floored at 0, got %d", l.Population())
	}
	l.UpdatePopulation(250)
	if l.Population() != 250 {
		t.Errorf("expected population 250, got %d", l.Population())
	}
}

func TestSetDerelictStripsServices(t *testing.T) {
	l := NewLocation("Meridian", LocSpaceStation, Coordinates{}, 5, 8000)

	var log eventLog
	log.watch(l.Events(), "is_derelict_changed", "service_removed", "population_changed")

	l.SetDerelict(true)

	if !l.IsDerelict() {
		t.Fatal("expected derelict")
	}
	services := l.Services()
	if len(services) != 1 || services[0] != ServiceComms {
		t.Errorf("expected only comms to survive, got %v", services)
	}
	if l.Population() != 0 {
		t.Errorf("expected population 0, got %d", l.Population())
	}
	if !strings.HasPrefix(l.Description, "Abandoned ") {
		t.Errorf("expected abandoned description, got %q", l.Description)
	}
	if log.count("is_derelict_changed") != 1 || log.count("population_changed") != 1 {
		t.Errorf("unexpected events: %v", log.types())
	}
	if log.count("service_removed") != 5 {
		t.Errorf("expected five services stripped, got %d", log.count("service_removed"))
	}
}

func TestSetDerelictKeepsDerelictDescriptions(t *testing.T) {
	l := NewLocation("Old Hull", LocDerelict, Coordinates{}, 1, 0)
	before := l.Description

	l.SetDerelict(true)
	if l.Description != before {
		t.Errorf("expected description untouched, got %q", l.Description)
	}
}

func TestRestoreDerelictRederivesServices(t *testing.T) {
	l := NewLocation("Meridian", LocSpaceStation, Coordinates{}, 5, 8000)
	l.SetDerelict(true)

	l.SetDerelict(false)

	if l.IsDerelict() {
		t.Fatal("expected restored")
	}
	for _, svc := range []Service{ServiceJobs, ServiceComms, ServiceShops, ServiceFuel, ServiceMedical, ServiceRepairs} {
		if !l.HasService(svc) {
			t.Errorf("expected %s back after restoration", svc)
		}
	}
	// Restoration rebuilds services, not residents.
	if l.Population() != 0 {
		t.Errorf("expected population still 0, got %d", l.Population())
	}
}

func TestServiceEscapeHatches(t *testing.T) {
	l := NewLocation("Dust Rock", LocOutpost, Coordinates{}, 2, 500)

	var log eventLog
	log.watch(l.Events(), "service_added", "service_removed")

	l.AddService(ServiceShipyard)
	l.AddService(ServiceShipyard)
	if log.count("service_added") != 1 {
		t.Errorf("expected one service_added, got %d", log.count("service_added"))
	}

	l.RemoveService(ServiceShipyard)
	l.RemoveService(ServiceShipyard)
	if log.count("service_removed") != 1 {
		t.Errorf("expected one service_removed, got %d", log.count("service_removed"))
	}
}

func TestPriceModifier(t *testing.T) {
	l := NewLocation("New Terra", LocColony, Coordinates{}, 8, 10000)

	// (1 + (5-8)*0.05) * 0.95
	if got := l.PriceModifier("general"); !almostEqual(got, 0.85*0.95) {
		t.Errorf("expected modifier %.4f, got %v", 0.85*0.95, got)
	}

	l.SupplyDemandFactors["ore"] = 2.0
	if got := l.PriceModifier("ore"); !almostEqual(got, 0.85*2.0*0.95) {
		t.Errorf("expected modifier %.4f, got %v", 0.85*2.0*0.95, got)
	}
}

func TestPriceModifierClamps(t *testing.T) {
	ruin := NewLocation("Old Hull", LocDerelict, Coordinates{}, 1, 0)
	ruin.SupplyDemandFactors["relic"] = 2.0
	if got := ruin.PriceModifier("relic"); got != 3.0 {
		t.Errorf("expected modifier clamped at 3.0, got %v", got)
	}

	rich := NewLocation("New Terra", LocColony, Coordinates{}, 10, 10000)
	rich.SupplyDemandFactors["grain"] = 0.1
	if got := rich.PriceModifier("grain"); got != 0.5 {
		t.Errorf("expected modifier clamped at 0.5, got %v", got)
	}
}

func TestLocationValidate(t *testing.T) {
	l := NewLocation("Sound", LocOutpost, Coordinates{}, 5, 100)
	if !l.Validate() {
		t.Fatal("expected valid location")
	}

	l.Name = ""
	if l.Validate() {
		t.Error("expected empty name to fail validation")
	}
	l.Name = "Sound"

	l.wealthLevel = 11
	if l.Validate() {
		t.Error("expected wealth above 10 to fail validation")
	}
	l.wealthLevel = 5

	l.Type = "casino"
	if l.Validate() {
		t.Error("expected unknown type to fail validation")
	}
}

func TestLocationRecordRoundTrip(t *testing.T) {
	l := NewLocation("Meridian", LocSpaceStation, Coordinates{X: 12.5, Y: -3.25, Z: 40}, 6, 8000)
	l.SetID(9)
	l.LocationRef = "loc-meridian"
	l.SystemName = "Kepler"
	l.Faction = "Federation"
	l.EstablishmentDate = "14-03-2742"
	l.SetGateStatus("unstable")
	l.BasePriceModifier = 1.2
	l.SupplyDemandFactors["ore"] = 1.5
	l.AddService(ServiceShipyard)

	loaded := LocationFromRecord(l.ToRecord())

	if loaded.ID() != 9 || loaded.Name != "Meridian" || loaded.Type != LocSpaceStation {
		t.Errorf("identity mismatch: id=%d name=%q type=%q", loaded.ID(), loaded.Name, loaded.Type)
	}
	if loaded.Coordinates != l.Coordinates {
		t.Errorf("coordinates mismatch: %+v", loaded.Coordinates)
	}
	if loaded.WealthLevel() != 6 || loaded.Population() != 8000 {
		t.Errorf("state mismatch: wealth=%d pop=%d", loaded.WealthLevel(), loaded.Population())
	}
	if loaded.LocationRef != "loc-meridian" || loaded.SystemName != "Kepler" || loaded.Faction != "Federation" {
		t.Errorf("reference mismatch: %q %q %q", loaded.LocationRef, loaded.SystemName, loaded.Faction)
	}
	if loaded.GateStatus() != "unstable" {
		t.Errorf("expected gate status restored, got %q", loaded.GateStatus())
	}
	if loaded.BasePriceModifier != 1.2 || loaded.SupplyDemandFactors["ore"] != 1.5 {
		t.Errorf("pricing mismatch: %v %v", loaded.BasePriceModifier, loaded.SupplyDemandFactors)
	}
	if !loaded.HasService(ServiceShipyard) {
		t.Error("expected the granted shipyard to survive the round trip")
	}
	if len(loaded.Services()) != len(l.Services()) {
		t.Errorf("expected services %v, got %v", l.Services(), loaded.Services())
	}
	if loaded.Dirty() {
		t.Error("expected loaded location clean")
	}
}

func TestLocationFromRecordDefaults(t *testing.T) {
	loaded := LocationFromRecord(map[string]any{"name": "Bare"})

	if loaded.Type != LocOutpost {
		t.Errorf("expected outpost fallback, got %q", loaded.Type)
	}
	if loaded.WealthLevel() != 5 || loaded.Population() != 1000 {
		t.Errorf("unexpected defaults: wealth=%d pop=%d", loaded.WealthLevel(), loaded.Population())
	}
	if loaded.Faction != "Independent" {
		t.Errorf("expected independent faction, got %q", loaded.Faction)
	}
	if loaded.GateStatus() != "active" {
		t.Errorf("expected active gate status, got %q", loaded.GateStatus())
	}
	if loaded.Description == "" {
		t.Error("expected a generated description")
	}
}
