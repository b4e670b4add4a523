package game

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestShipTemplates(t *testing.T) {
	cases := []struct {
		shipType ShipType
		cargo    int
		fuel     int
		hull     int
	}{
		{ShipShuttle, 50, 80, 50},
		{ShipFighter, 20, 100, 80},
		{ShipFreighter, 200, 150, 150},
		{ShipExplorer, 100, 200, 100},
		{ShipCorvette, 80, 120, 120},
		{ShipCruiser, 150, 180, 200},
		{ShipCarrier, 300, 250, 300},
	}
	for _, tc := range cases {
		s := NewShip(1, "Test", tc.shipType)
		if s.CargoCapacity != tc.cargo || s.FuelCapacity != tc.fuel || s.MaxHullPoints != tc.hull {
			t.Errorf("%s: got cargo=%d fuel=%d hull=%d, want %d/%d/%d",
				tc.shipType, s.CargoCapacity, s.FuelCapacity, s.MaxHullPoints, tc.cargo, tc.fuel, tc.hull)
		}
		if s.HullPoints() != tc.hull || s.Fuel() != tc.fuel {
			t.Errorf("%s: expected new ship fully fueled and repaired", tc.shipType)
		}
		if !s.IsActive() {
			t.Errorf("%s: expected new ship active", tc.shipType)
		}
	}

	explorer := NewShip(1, "Scout", ShipExplorer)
	if explorer.BaseStats.ScannerRange != 200 {
		t.Errorf("expected explorer scanner range 200, got %d", explorer.BaseStats.ScannerRange)
	}
	fighter := NewShip(1, "Dart", ShipFighter)
	if fighter.BaseStats.MaxSpeed != 150 || fighter.BaseStats.WeaponPower != 30 {
		t.Errorf("unexpected fighter stats: %+v", fighter.BaseStats)
	}

	unknown := NewShip(1, "Mystery", ShipType("battlestation"))
	if unknown.CargoCapacity != 50 || unknown.FuelCapacity != 80 || unknown.MaxHullPoints != 50 {
		t.Errorf("expected unknown type to use the shuttle template, got %d/%d/%d",
			unknown.CargoCapacity, unknown.FuelCapacity, unknown.MaxHullPoints)
	}
	if unknown.InteriorDescription != "A functional spacecraft interior." {
		t.Errorf("unexpected fallback interior: %q", unknown.InteriorDescription)
	}
}

func TestNewShipDefaults(t *testing.T) {
	s := NewShip(1, "", ShipShuttle)
	if s.Name != "Unnamed Ship" {
		t.Errorf("expected default name, got %q", s.Name)
	}
	if s.EngineLevel != 1 || s.ShieldLevel != 0 || s.WeaponLevel != 1 {
		t.Errorf("unexpected starting levels: engine=%d shield=%d weapon=%d",
			s.EngineLevel, s.ShieldLevel, s.WeaponLevel)
	}
	if s.PowerAvailable != 100 || s.PowerUsed != 0 {
		t.Errorf("unexpected power budget: %d/%d", s.PowerUsed, s.PowerAvailable)
	}
	if len(s.DamageReport) != 5 {
		t.Errorf("expected five tracked subsystems, got %d", len(s.DamageReport))
	}
	if !s.Validate() {
		t.Error("expected a fresh ship to validate")
	}
}

func TestShieldsAbsorbDamage(t *testing.T) {
	s := NewShip(1, "Aegis", ShipFreighter)
	s.ShieldLevel = 3

	var log eventLog
	log.watch(s.Events(), "shields_hit", "hull_points_changed")

	if got := s.ApplyDamage(50, "energy"); got != 20 {
		t.Errorf("expected 20 damage past shields, got %d", got)
	}
	if s.HullPoints() != 130 {
		t.Errorf("expected hull 130, got %d", s.HullPoints())
	}

	hits := log.ofType("shields_hit")
	if len(hits) != 1 {
		t.Fatalf("expected one shields_hit event, got %d", len(hits))
	}
	if hits[0].Data["absorbed"] != 30 || hits[0].Data["remaining_damage"] != 20 {
		t.Errorf("unexpected shields payload: %v", hits[0].Data)
	}

	// Fully absorbed hits leave the hull alone.
	if got := s.ApplyDamage(25, "energy"); got != 0 {
		t.Errorf("expected 0 damage past shields, got %d", got)
	}
	if s.HullPoints() != 130 {
		t.Errorf("expected hull unchanged at 130, got %d", s.HullPoints())
	}
}

func TestBypassDamageIgnoresShields(t *testing.T) {
	s := NewShip(1, "Aegis", ShipFreighter)
	s.ShieldLevel = 3

	var log eventLog
	log.watch(s.Events(), "shields_hit")

	if got := s.ApplyDamage(25, "bypass"); got != 25 {
		t.Errorf("expected full 25 damage on bypass, got %d", got)
	}
	if s.HullPoints() != 125 {
		t.Errorf("expected hull 125, got %d", s.HullPoints())
	}
	if log.count("shields_hit") != 0 {
		t.Error("expected no shields_hit on bypass damage")
	}
}

func TestHullCriticalWarning(t *testing.T) {
	s := NewShip(1, "Rustbucket", ShipFreighter)

	var log eventLog
	log.watch(s.Events(), "hull_critical")

	s.ApplyDamage(125, "weapons")
	if s.HullPoints() != 25 {
		t.Fatalf("expected hull 25, got %d", s.HullPoints())
	}

	critical := log.ofType("hull_critical")
	if len(critical) != 1 {
		t.Fatalf("expected one hull_critical event, got %d", len(critical))
	}
	if critical[0].Data["hull_remaining"] != 25 {
		t.Errorf("unexpected payload: %v", critical[0].Data)
	}

	// Under half hull the hit also degraded the targeted subsystem.
	if worn := s.DamageReport["weapons"]; worn <= 0 || worn > 0.15 {
		t.Errorf("expected weapons degradation in (0, 0.15], got %v", worn)
	}
}

func TestShipDestroyedAtZeroHull(t *testing.T) {
	s := NewShip(1, "Doomed", ShipShuttle)

	var log eventLog
	log.watch(s.Events(), "ship_destroyed", "is_active_changed")

	s.ApplyDamage(60, "general")
	if s.HullPoints() != 0 {
		t.Errorf("expected hull 0, got %d", s.HullPoints())
	}
	if s.IsActive() {
		t.Error("expected destroyed ship inactive")
	}

	destroyed := log.ofType("ship_destroyed")
	if len(destroyed) != 1 {
		t.Fatalf("expected one ship_destroyed event, got %d", len(destroyed))
	}
	if destroyed[0].Data["final_damage"] != 60 || destroyed[0].Data["damage_type"] != "general" {
		t.Errorf("unexpected payload: %v", destroyed[0].Data)
	}
}

func TestConsumeFuelWarnings(t *testing.T) {
	s := NewShip(1, "Thirsty", ShipShuttle)

	var log eventLog
	log.watch(s.Events(), "fuel_low", "fuel_critical")

	if s.ConsumeFuel(100) {
		t.Error("expected burning more than the tank holds to fail")
	}
	if s.Fuel() != 80 {
		t.Errorf("expected fuel unchanged at 80, got %d", s.Fuel())
	}

	// 80 -> 20 is exactly a quarter tank.
	if !s.ConsumeFuel(60) {
		t.Fatal("expected burn to succeed")
	}
	low := log.ofType("fuel_low")
	if len(low) != 1 {
		t.Fatalf("expected one fuel_low event, got %d", len(low))
	}
	if low[0].Data["fuel_remaining"] != 20 || !almostEqual(low[0].Data["percentage"].(float64), 25.0) {
		t.Errorf("unexpected fuel_low payload: %v", low[0].Data)
	}

	// 20 -> 8 crosses the critical tenth.
	s.ConsumeFuel(12)
	critical := log.ofType("fuel_critical")
	if len(critical) != 1 {
		t.Fatalf("expected one fuel_critical event, got %d", len(critical))
	}
	if critical[0].Data["fuel_remaining"] != 8 {
		t.Errorf("unexpected fuel_critical payload: %v", critical[0].Data)
	}
	if log.count("fuel_low") != 1 {
		t.Error("expected no second fuel_low once critical")
	}
}

func TestRefuelCapsAtCapacity(t *testing.T) {
	s := NewShip(1, "Thirsty", ShipShuttle)
	s.ConsumeFuel(50)

	var log eventLog
	log.watch(s.Events(), "ship_refueled")

	if got := s.Refuel(100); got != 50 {
		t.Errorf("expected 50 fuel taken on, got %d", got)
	}
	if s.Fuel() != 80 {
		t.Errorf("expected a full tank of 80, got %d", s.Fuel())
	}
	if got := s.Refuel(10); got != 0 {
		t.Errorf("expected no fuel taken on a full tank, got %d", got)
	}
	if log.count("ship_refueled") != 1 {
		t.Errorf("expected one ship_refueled event, got %d", log.count("ship_refueled"))
	}
}

func TestRepairNamedSystem(t *testing.T) {
	s := NewShip(1, "Wrench", ShipFreighter)
	s.DamageReport["engine"] = 0.4

	var log eventLog
	log.watch(s.Events(), "system_repaired")

	if got := s.Repair(25, "engine"); got != 25 {
		t.Errorf("expected 25 percent repaired, got %d", got)
	}
	if !almostEqual(s.DamageReport["engine"], 0.15) {
		t.Errorf("expected 0.15 degradation left, got %v", s.DamageReport["engine"])
	}

	// Over-repair floors at zero.
	if got := s.Repair(1000, "engine"); got != 15 {
		t.Errorf("expected the remaining 15 percent repaired, got %d", got)
	}
	if s.DamageReport["engine"] != 0 {
		t.Errorf("expected engine fully repaired, got %v", s.DamageReport["engine"])
	}
	if log.count("system_repaired") != 2 {
		t.Errorf("expected two system_repaired events, got %d", log.count("system_repaired"))
	}
}

func TestRepairHull(t *testing.T) {
	s := NewShip(1, "Wrench", ShipFreighter)
	s.ApplyDamage(60, "hull")
	s.DamageReport["shields"] = 0.25

	var log eventLog
	log.watch(s.Events(), "ship_repaired")

	if got := s.Repair(30, ""); got != 30 {
		t.Errorf("expected 30 hull points repaired, got %d", got)
	}
	if s.HullPoints() != 120 {
		t.Errorf("expected hull 120, got %d", s.HullPoints())
	}
	// Hull work incidentally eases subsystem wear.
	if !almostEqual(s.DamageReport["shields"], 0.15) {
		t.Errorf("expected shields degradation 0.15, got %v", s.DamageReport["shields"])
	}

	// Unknown system names fall back to hull repair.
	if got := s.Repair(100, "warp_core"); got != 30 {
		t.Errorf("expected repair capped at max hull, got %d", got)
	}
	if s.HullPoints() != 150 {
		t.Errorf("expected full hull, got %d", s.HullPoints())
	}

	if got := s.Repair(10, ""); got != 0 {
		t.Errorf("expected nothing repaired at full hull, got %d", got)
	}
	if log.count("ship_repaired") != 2 {
		t.Errorf("expected two ship_repaired events, got %d", log.count("ship_repaired"))
	}
}

func TestAddUpgradePowerBudget(t *testing.T) {
	s := NewShip(1, "Sparky", ShipShuttle)

	big := &Upgrade{UpgradeID: "eng-1", Name: "Heavy Drive", Type: UpgradeEngine, Level: 2, PowerRequirement: 60}
	if !s.AddUpgrade(big) {
		t.Fatal("expected install within budget to succeed")
	}
	if s.PowerUsed != 60 {
		t.Errorf("expected 60 power used, got %d", s.PowerUsed)
	}

	// The budget check runs against the installed set; a replacement that
	// would only fit after evicting its predecessor is rejected.
	bigger := &Upgrade{UpgradeID: "eng-2", Name: "Monster Drive", Type: UpgradeEngine, Level: 3, PowerRequirement: 50}
	if s.AddUpgrade(bigger) {
		t.Error("expected install past the power budget to fail")
	}
	if s.PowerUsed != 60 {
		t.Errorf("expected power unchanged at 60, got %d", s.PowerUsed)
	}
	if s.UpgradeByID("eng-1") == nil || s.UpgradeByID("eng-2") != nil {
		t.Error("expected the original upgrade to stay installed")
	}
}

func TestAddUpgradeEvictsSameCategory(t *testing.T) {
	s := NewShip(1, "Sparky", ShipShuttle)

	var log eventLog
	log.watch(s.Events(), "upgrade_installed", "upgrade_removed")

	s.AddUpgrade(&Upgrade{UpgradeID: "eng-1", Name: "Drive Mk1", Type: UpgradeEngine, Level: 2, PowerRequirement: 20})
	if s.EngineLevel != 2 {
		t.Fatalf("expected engine level 2, got %d", s.EngineLevel)
	}

	if !s.AddUpgrade(&Upgrade{UpgradeID: "eng-2", Name: "Drive Mk2", Type: UpgradeEngine, Level: 3, PowerRequirement: 30}) {
		t.Fatal("expected replacement within budget to succeed")
	}
	if s.UpgradeByID("eng-1") != nil {
		t.Error("expected the old engine evicted")
	}
	if s.EngineLevel != 3 {
		t.Errorf("expected engine level 3, got %d", s.EngineLevel)
	}
	if s.PowerUsed != 30 {
		t.Errorf("expected 30 power used after eviction, got %d", s.PowerUsed)
	}
	if log.count("upgrade_removed") != 1 || log.count("upgrade_installed") != 2 {
		t.Errorf("unexpected event counts: %v", log.types())
	}
}

func TestRemoveUpgradeRevertsEffects(t *testing.T) {
	s := NewShip(1, "Hauler", ShipShuttle)

	s.AddUpgrade(&Upgrade{UpgradeID: "crg-1", Name: "Cargo Pods", Type: UpgradeCargo, BonusValue: 50, PowerRequirement: 10})
	if s.CargoCapacity != 100 {
		t.Fatalf("expected cargo capacity 100, got %d", s.CargoCapacity)
	}
	s.AddUpgrade(&Upgrade{UpgradeID: "shd-1", Name: "Deflector", Type: UpgradeShield, Level: 2, PowerRequirement: 15})
	if s.ShieldLevel != 2 {
		t.Fatalf("expected shield level 2, got %d", s.ShieldLevel)
	}

	if removed := s.RemoveUpgrade("crg-1"); removed == nil || removed.UpgradeID != "crg-1" {
		t.Fatalf("expected the cargo upgrade back, got %+v", removed)
	}
	if s.CargoCapacity != 50 {
		t.Errorf("expected cargo capacity reverted to 50, got %d", s.CargoCapacity)
	}

	s.RemoveUpgrade("shd-1")
	// Category levels fall back to their baselines once nothing provides
	// them.
	if s.EngineLevel != 1 || s.ShieldLevel != 0 || s.WeaponLevel != 1 {
		t.Errorf("expected baseline levels 1/0/1, got %d/%d/%d", s.EngineLevel, s.ShieldLevel, s.WeaponLevel)
	}
	if s.PowerUsed != 0 {
		t.Errorf("expected no power used, got %d", s.PowerUsed)
	}

	if s.RemoveUpgrade("missing") != nil {
		t.Error("expected removing an unknown upgrade to return nil")
	}
}

func TestFuelEfficiency(t *testing.T) {
	s := NewShip(1, "Hauler", ShipFreighter)
	if !almostEqual(s.FuelEfficiency(), 1.1*0.8) {
		t.Errorf("expected freighter efficiency 0.88, got %v", s.FuelEfficiency())
	}

	s.EngineLevel = 3
	if !almostEqual(s.FuelEfficiency(), 1.3*0.8) {
		t.Errorf("expected upgraded efficiency 1.04, got %v", s.FuelEfficiency())
	}

	s.DamageReport["engine"] = 1.0
	if !almostEqual(s.FuelEfficiency(), (1.3-0.5)*0.8) {
		t.Errorf("expected damaged efficiency 0.64, got %v", s.FuelEfficiency())
	}

	// Types without a modifier burn at the neutral rate.
	c := NewShip(1, "Escort", ShipCorvette)
	if !almostEqual(c.FuelEfficiency(), 1.1) {
		t.Errorf("expected corvette efficiency 1.1, got %v", c.FuelEfficiency())
	}
}

func TestCombatPower(t *testing.T) {
	s := NewShip(1, "Dart", ShipFighter)
	if got := s.CombatPower(); got != 40 {
		t.Errorf("expected base combat power 40, got %d", got)
	}

	s.WeaponLevel = 3
	s.DamageReport["weapons"] = 0.5
	s.ApplyDamage(40, "shields")
	// (30 + 30 - 7) at half hull.
	if got := s.CombatPower(); got != 26 {
		t.Errorf("expected combat power 26, got %d", got)
	}
}

func TestCombatPowerFloorsAtOne(t *testing.T) {
	s := NewShip(1, "Wreck", ShipFighter)
	s.ApplyDamage(79, "shields")
	if s.HullPoints() != 1 {
		t.Fatalf("expected hull 1, got %d", s.HullPoints())
	}
	if got := s.CombatPower(); got != 1 {
		t.Errorf("expected combat power floored at 1, got %d", got)
	}
}

func TestDockingEvents(t *testing.T) {
	s := NewShip(1, "Ferry", ShipShuttle)

	var log eventLog
	log.watch(s.Events(), "ship_docked", "ship_undocked")

	s.DockAt(4)
	if s.DockedAt() != 4 {
		t.Errorf("expected docked at 4, got %d", s.DockedAt())
	}
	docked := log.ofType("ship_docked")
	if len(docked) != 1 {
		t.Fatalf("expected one ship_docked event, got %d", len(docked))
	}
	if docked[0].Data["location_id"] != int64(4) || docked[0].Data["previous_location"] != int64(0) {
		t.Errorf("unexpected payload: %v", docked[0].Data)
	}

	s.Undock()
	if s.DockedAt() != 0 {
		t.Errorf("expected undocked, got %d", s.DockedAt())
	}
	undocked := log.ofType("ship_undocked")
	if len(undocked) != 1 || undocked[0].Data["from_location"] != int64(4) {
		t.Errorf("unexpected undock events: %v", undocked)
	}

	// Undocking in open space is a no-op.
	s.Undock()
	if log.count("ship_undocked") != 1 {
		t.Error("expected no second undock event")
	}
}

func TestShipCargoStacking(t *testing.T) {
	s := NewShip(1, "Hauler", ShipShuttle)

	ore := NewItem("iron_ore", "Iron Ore")
	ore.Weight = 10
	ore.Quantity = 4
	if !s.AddCargo(ore) {
		t.Fatal("expected 40 units of weight to fit in 50")
	}

	more := NewItem("iron_ore", "Iron Ore")
	more.Weight = 10
	more.Quantity = 2
	if s.AddCargo(more) {
		t.Error("expected a stack pushing weight to 60 to be rejected")
	}

	one := NewItem("iron_ore", "Iron Ore")
	one.Weight = 10
	if !s.AddCargo(one) {
		t.Fatal("expected one more unit to fit exactly")
	}
	cargo := s.Cargo()
	if len(cargo) != 1 || cargo[0].Quantity != 5 {
		t.Fatalf("expected a single stack of 5, got %+v", cargo)
	}
}

func TestRemoveCargoPartialStripsMetadata(t *testing.T) {
	s := NewShip(1, "Hauler", ShipFreighter)

	data := NewItem("datapad", "Encrypted Datapad")
	data.Quantity = 3
	data.Metadata = map[string]any{"encryption": "military"}
	s.AddCargo(data)

	removed := s.RemoveCargo("datapad", 2)
	if removed == nil || removed.Quantity != 2 {
		t.Fatalf("expected a stack of 2 back, got %+v", removed)
	}
	if removed.Metadata != nil {
		t.Error("expected the split stack without metadata")
	}

	rest := s.RemoveCargo("datapad", 1)
	if rest == nil || rest.Metadata["encryption"] != "military" {
		t.Errorf("expected the final stack to carry its metadata, got %+v", rest)
	}

	if s.RemoveCargo("datapad", 1) != nil {
		t.Error("expected removal from an empty bay to return nil")
	}
}

func TestShipValidate(t *testing.T) {
	s := NewShip(1, "Sound", ShipShuttle)
	if !s.Validate() {
		t.Fatal("expected valid ship")
	}

	s.PowerUsed = 150
	if s.Validate() {
		t.Error("expected power over budget to fail validation")
	}
	s.PowerUsed = 0

	s.fuel = 200
	if s.Validate() {
		t.Error("expected fuel over capacity to fail validation")
	}
	s.fuel = 50

	s.Type = "battlestation"
	if s.Validate() {
		t.Error("expected unknown hull type to fail validation")
	}
}

func TestShipRecordRoundTrip(t *testing.T) {
	s := NewShip(7, "Long Haul", ShipFreighter)
	s.SetID(11)
	s.DockAt(3)
	s.ConsumeFuel(40)
	s.ApplyDamage(30, "hull")
	s.AddUpgrade(&Upgrade{
		UpgradeID:        "shd-1",
		Name:             "Deflector",
		Type:             UpgradeShield,
		Level:            2,
		BonusValue:       20,
		PowerRequirement: 15,
		Mass:             2.5,
	})
	ore := NewItem("iron_ore", "Iron Ore")
	ore.Quantity = 6
	ore.Weight = 2.5
	ore.Value = 12
	s.AddCargo(ore)
	s.DamageReport["engine"] = 0.3

	loaded := ShipFromRecord(s.ToRecord())

	if loaded.ID() != 11 || loaded.OwnerID != 7 || loaded.Name != "Long Haul" {
		t.Errorf("identity mismatch: id=%d owner=%d name=%q", loaded.ID(), loaded.OwnerID, loaded.Name)
	}
	if loaded.Type != ShipFreighter {
		t.Errorf("expected freighter, got %q", loaded.Type)
	}
	if loaded.HullPoints() != s.HullPoints() || loaded.Fuel() != s.Fuel() {
		t.Errorf("state mismatch: hull=%d fuel=%d", loaded.HullPoints(), loaded.Fuel())
	}
	if loaded.DockedAt() != 3 || !loaded.IsActive() {
		t.Errorf("docking mismatch: at=%d active=%v", loaded.DockedAt(), loaded.IsActive())
	}
	if loaded.ShieldLevel != 2 || loaded.PowerUsed != 15 {
		t.Errorf("upgrade effects missing: shield=%d power=%d", loaded.ShieldLevel, loaded.PowerUsed)
	}

	up := loaded.UpgradeByID("shd-1")
	if up == nil {
		t.Fatal("expected the shield upgrade back")
	}
	if up.Level != 2 || up.BonusValue != 20 || up.PowerRequirement != 15 || up.Mass != 2.5 {
		t.Errorf("upgrade mismatch: %+v", up)
	}

	cargo := loaded.Cargo()
	if len(cargo) != 1 || cargo[0].ItemID != "iron_ore" || cargo[0].Quantity != 6 {
		t.Errorf("cargo mismatch: %+v", cargo)
	}
	if !almostEqual(loaded.DamageReport["engine"], 0.3) {
		t.Errorf("damage report mismatch: %v", loaded.DamageReport)
	}

	if loaded.Dirty() {
		t.Error("expected loaded ship clean")
	}
	if len(loaded.Events().History("", 0)) != 0 {
		t.Error("expected no events replayed on load")
	}
}

func TestShipFromRecordDefaults(t *testing.T) {
	loaded := ShipFromRecord(map[string]any{
		"owner_id": int64(2),
		"name":     "Bare",
	})

	if loaded.Type != ShipShuttle {
		t.Errorf("expected shuttle fallback, got %q", loaded.Type)
	}
	if loaded.EngineLevel != 1 || loaded.ShieldLevel != 0 || loaded.WeaponLevel != 1 {
		t.Errorf("unexpected levels: %d/%d/%d", loaded.EngineLevel, loaded.ShieldLevel, loaded.WeaponLevel)
	}
	if loaded.PowerAvailable != 100 {
		t.Errorf("expected default power budget 100, got %d", loaded.PowerAvailable)
	}
	if !loaded.IsActive() {
		t.Error("expected ships active by default")
	}
}
