package game

import (
	"math/rand"
	"sort"

	"github.com/thexant/galaxygame/internal/entity"
)

// ShipType selects a hull template: capacities, base stats, and interior.
type ShipType string

const (
	ShipShuttle   ShipType = "shuttle"
	ShipFighter   ShipType = "fighter"
	ShipFreighter ShipType = "freighter"
	ShipExplorer  ShipType = "explorer"
	ShipCorvette  ShipType = "corvette"
	ShipCruiser   ShipType = "cruiser"
	ShipCarrier   ShipType = "carrier"
	ShipSpecial   ShipType = "special"
)

// UpgradeType is the category an installed upgrade occupies. At most one
// upgrade per category is active on a ship.
type UpgradeType string

const (
	UpgradeEngine  UpgradeType = "engine"
	UpgradeShield  UpgradeType = "shield"
	UpgradeWeapon  UpgradeType = "weapon"
	UpgradeCargo   UpgradeType = "cargo"
	UpgradeFuel    UpgradeType = "fuel"
	UpgradeHull    UpgradeType = "hull"
	UpgradeScanner UpgradeType = "scanner"
	UpgradeSpecial UpgradeType = "special"
)

// Upgrade is an installable ship modification.
type Upgrade struct {
	UpgradeID        string
	Name             string
	Type             UpgradeType
	Level            int
	BonusValue       float64
	Description      string
	PowerRequirement int
	Mass             float64
}

func (u *Upgrade) toRecord() entity.Record {
	return entity.Record{
		"upgrade_id":        u.UpgradeID,
		"name":              u.Name,
		"type":              string(u.Type),
		"level":             u.Level,
		"bonus_value":       u.BonusValue,
		"description":       u.Description,
		"power_requirement": u.PowerRequirement,
		"mass":              u.Mass,
	}
}

func upgradeFromRecord(rec entity.Record) *Upgrade {
	up := &Upgrade{
		UpgradeID:   rec.Str("upgrade_id"),
		Name:        rec.Str("name"),
		Type:        UpgradeType(rec.Str("type")),
		Level:       1,
		Description: rec.Str("description"),
	}
	if rec.Has("level") {
		up.Level = rec.Int("level")
	}
	up.BonusValue = rec.Float("bonus_value")
	up.PowerRequirement = rec.Int("power_requirement")
	up.Mass = rec.Float("mass")
	return up
}

// ShipStats are the fixed capability numbers of a hull template.
type ShipStats struct {
	MaxSpeed          int
	Acceleration      int
	Maneuverability   int
	ShieldStrength    int
	WeaponPower       int
	TargetingAccuracy int
	ScannerRange      int
	StealthRating     int
	PowerGeneration   int
}

func defaultShipStats() ShipStats {
	return ShipStats{
		MaxSpeed:          100,
		Acceleration:      50,
		Maneuverability:   50,
		ShieldStrength:    0,
		WeaponPower:       10,
		TargetingAccuracy: 70,
		ScannerRange:      100,
		StealthRating:     0,
		PowerGeneration:   100,
	}
}

type shipConfig struct {
	cargoCapacity int
	fuelCapacity  int
	maxHullPoints int
	baseStats     ShipStats
	interior      string
}

func shipConfigFor(shipType ShipType) shipConfig {
	stats := defaultShipStats()
	switch shipType {
	case ShipFighter:
		stats.MaxSpeed = 150
		stats.Maneuverability = 90
		stats.WeaponPower = 30
		return shipConfig{
			cargoCapacity: 20,
			fuelCapacity:  100,
			maxHullPoints: 80,
			baseStats:     stats,
			interior:      "A tight cockpit filled with combat systems, targeting computers, and weapon controls.",
		}
	case ShipFreighter:
		stats.MaxSpeed = 60
		stats.Maneuverability = 30
		stats.ShieldStrength = 20
		return shipConfig{
			cargoCapacity: 200,
			fuelCapacity:  150,
			maxHullPoints: 150,
			baseStats:     stats,
			interior:      "A spacious cargo hold dominates the interior, with living quarters tucked into the corners.",
		}
	case ShipExplorer:
		stats.ScannerRange = 200
		return shipConfig{
			cargoCapacity: 100,
			fuelCapacity:  200,
			maxHullPoints: 100,
			baseStats:     stats,
			interior:      "Advanced sensor arrays line the walls, with comfortable quarters for long journeys.",
		}
	case ShipCorvette:
		stats.MaxSpeed = 120
		stats.WeaponPower = 25
		stats.ShieldStrength = 15
		return shipConfig{
			cargoCapacity: 80,
			fuelCapacity:  120,
			maxHullPoints: 120,
			baseStats:     stats,
			interior:      "A military-style bridge with multiple stations and reinforced bulkheads.",
		}
	case ShipCruiser:
		stats.WeaponPower = 40
		stats.ShieldStrength = 30
		stats.PowerGeneration = 150
		return shipConfig{
			cargoCapacity: 150,
			fuelCapacity:  180,
			maxHullPoints: 200,
			baseStats:     stats,
			interior:      "An impressive command center with tactical displays and crew stations.",
		}
	case ShipCarrier:
		stats.MaxSpeed = 40
		stats.ShieldStrength = 50
		stats.PowerGeneration = 200
		return shipConfig{
			cargoCapacity: 300,
			fuelCapacity:  250,
			maxHullPoints: 300,
			baseStats:     stats,
			interior:      "A massive hangar bay with multiple decks and launch facilities.",
		}
	case ShipShuttle:
		stats.MaxSpeed = 80
		stats.Maneuverability = 70
		return shipConfig{
			cargoCapacity: 50,
			fuelCapacity:  80,
			maxHullPoints: 50,
			baseStats:     stats,
			interior:      "A cramped but functional shuttle interior with basic controls and minimal amenities.",
		}
	default:
		// Unknown and special types use the shuttle template.
		cfg := shipConfigFor(ShipShuttle)
		cfg.interior = "A functional spacecraft interior."
		return cfg
	}
}

// fuelEfficiencyModifiers adjusts fuel burn per hull template. Types without
// an entry burn at the neutral rate.
var fuelEfficiencyModifiers = map[ShipType]float64{
	ShipShuttle:   1.1,
	ShipFighter:   0.9,
	ShipFreighter: 0.8,
	ShipExplorer:  1.3,
	ShipCruiser:   0.7,
	ShipCarrier:   0.6,
}

// Ship is a vessel owned by a character or NPC. Hull, fuel, docking, and the
// active flag are tracked fields.
type Ship struct {
	entity.Base

	OwnerID int64
	Name    string
	Type    ShipType

	CargoCapacity int
	FuelCapacity  int
	MaxHullPoints int
	BaseStats     ShipStats

	hullPoints int
	fuel       int

	cargoBay []*Item
	upgrades map[string]*Upgrade

	EngineLevel int
	ShieldLevel int
	WeaponLevel int

	PowerAvailable int
	PowerUsed      int

	dockedAt int64
	active   bool

	InteriorDescription string

	// DamageReport holds per-subsystem degradation in [0, 1].
	DamageReport map[string]float64
}

// NewShip creates a ship from its hull template, fully fueled and repaired.
func NewShip(ownerID int64, name string, shipType ShipType) *Ship {
	if name == "" {
		name = "Unnamed Ship"
	}
	cfg := shipConfigFor(shipType)

	s := &Ship{
		OwnerID:             ownerID,
		Name:                name,
		Type:                shipType,
		CargoCapacity:       cfg.cargoCapacity,
		FuelCapacity:        cfg.fuelCapacity,
		MaxHullPoints:       cfg.maxHullPoints,
		BaseStats:           cfg.baseStats,
		hullPoints:          cfg.maxHullPoints,
		fuel:                cfg.fuelCapacity,
		upgrades:            make(map[string]*Upgrade),
		EngineLevel:         1,
		ShieldLevel:         0,
		WeaponLevel:         1,
		PowerAvailable:      100,
		PowerUsed:           0,
		active:              true,
		InteriorDescription: cfg.interior,
		DamageReport: map[string]float64{
			"hull":         0.0,
			"engine":       0.0,
			"weapons":      0.0,
			"shields":      0.0,
			"life_support": 0.0,
		},
	}
	s.Base = entity.NewBase(s)
	return s
}

// HullPoints returns the current hull points.
func (s *Ship) HullPoints() int { return s.hullPoints }

// Fuel returns the current fuel level.
func (s *Ship) Fuel() int { return s.fuel }

// DockedAt returns the id of the location the ship is docked at, or 0 when
// in open space.
func (s *Ship) DockedAt() int64 { return s.dockedAt }

// IsActive reports whether the ship is operational. Destroyed ships stay
// inactive until repaired externally.
func (s *Ship) IsActive() bool { return s.active }

func (s *Ship) setHullPoints(points int) {
	entity.SetField(&s.Base, "hull_points", &s.hullPoints, points)
}

func (s *Ship) setFuel(fuel int) {
	entity.SetField(&s.Base, "fuel", &s.fuel, fuel)
}

func (s *Ship) setDockedAt(locationID int64) {
	entity.SetField(&s.Base, "docked_at_location", &s.dockedAt, locationID)
}

func (s *Ship) setActive(active bool) {
	entity.SetField(&s.Base, "is_active", &s.active, active)
}

// AddCargo stows an item in the cargo bay, stacking onto an existing entry
// with the same item id. Fails when the added stack would exceed capacity.
func (s *Ship) AddCargo(item *Item) bool {
	if s.CargoWeight()+item.StackWeight() > float64(s.CargoCapacity) {
		return false
	}

	for _, held := range s.cargoBay {
		if held.ItemID == item.ItemID {
			held.Quantity += item.Quantity
			s.Events().Publish("cargo_added", map[string]any{
				"item":         item.Name,
				"quantity":     item.Quantity,
				"total_weight": s.CargoWeight(),
			})
			return true
		}
	}

	s.cargoBay = append(s.cargoBay, item)
	s.Events().Publish("cargo_added", map[string]any{
		"item":         item.Name,
		"quantity":     item.Quantity,
		"total_weight": s.CargoWeight(),
	})
	return true
}

// RemoveCargo takes quantity units of an item out of the bay and returns the
// removed stack, or nil if the item is missing or held in insufficient
// quantity.
func (s *Ship) RemoveCargo(itemID string, quantity int) *Item {
	for i, held := range s.cargoBay {
		if held.ItemID != itemID {
			continue
		}
		if held.Quantity > quantity {
			held.Quantity -= quantity
			removed := &Item{
				ItemID:   itemID,
				Name:     held.Name,
				Quantity: quantity,
				Weight:   held.Weight,
				Value:    held.Value,
				Category: held.Category,
			}
			s.Events().Publish("cargo_removed", map[string]any{
				"item":     held.Name,
				"quantity": quantity,
			})
			return removed
		}
		if held.Quantity == quantity {
			s.cargoBay = append(s.cargoBay[:i], s.cargoBay[i+1:]...)
			s.Events().Publish("cargo_removed", map[string]any{
				"item":     held.Name,
				"quantity": quantity,
			})
			return held
		}
		return nil
	}
	return nil
}

// CargoWeight returns the total stowed weight.
func (s *Ship) CargoWeight() float64 {
	total := 0.0
	for _, item := range s.cargoBay {
		total += item.StackWeight()
	}
	return total
}

// Cargo returns a copy of the cargo list.
func (s *Ship) Cargo() []*Item {
	return append([]*Item(nil), s.cargoBay...)
}

// ConsumeFuel burns fuel for an operation. Fails without side effects if the
// tank holds less than requested. Dropping to 25% or 10% of capacity emits a
// low or critical warning after the burn.
func (s *Ship) ConsumeFuel(amount int) bool {
	if s.fuel < amount {
		return false
	}

	s.setFuel(s.fuel - amount)

	fraction := float64(s.fuel) / float64(s.FuelCapacity)
	if fraction <= 0.1 {
		s.Events().Publish("fuel_critical", map[string]any{
			"fuel_remaining": s.fuel,
			"percentage":     fraction * 100,
		})
	} else if fraction <= 0.25 {
		s.Events().Publish("fuel_low", map[string]any{
			"fuel_remaining": s.fuel,
			"percentage":     fraction * 100,
		})
	}

	return true
}

// Refuel adds fuel up to capacity and returns the amount actually taken on.
func (s *Ship) Refuel(amount int) int {
	oldFuel := s.fuel
	s.setFuel(min(s.FuelCapacity, s.fuel+amount))
	refueled := s.fuel - oldFuel

	if refueled > 0 {
		s.Events().Publish("ship_refueled", map[string]any{
			"amount":     refueled,
			"fuel_level": s.fuel,
			"capacity":   s.FuelCapacity,
		})
	}

	return refueled
}

// ApplyDamage deals damage to the ship and returns the amount that got past
// the shields. Shields absorb up to shieldLevel*10 unless the damage type is
// "bypass". Hull dropping under half triggers subsystem degradation; hull
// reaching zero deactivates the ship.
func (s *Ship) ApplyDamage(damage int, damageType string) int {
	actualDamage := damage

	if s.ShieldLevel > 0 && damageType != "bypass" {
		absorbed := min(damage, s.ShieldLevel*10)
		actualDamage = damage - absorbed

		if absorbed > 0 {
			s.Events().Publish("shields_hit", map[string]any{
				"absorbed":         absorbed,
				"remaining_damage": actualDamage,
			})
		}
	}

	if actualDamage > 0 {
		s.setHullPoints(max(0, s.hullPoints-actualDamage))

		hullFraction := float64(s.hullPoints) / float64(s.MaxHullPoints)
		if hullFraction < 0.5 {
			s.applySystemDamage(damageType)
		}

		if s.hullPoints == 0 {
			s.setActive(false)
			s.Events().Publish("ship_destroyed", map[string]any{
				"final_damage": actualDamage,
				"damage_type":  damageType,
			})
		} else if hullFraction < 0.2 {
			s.Events().Publish("hull_critical", map[string]any{
				"hull_remaining": s.hullPoints,
				"percentage":     hullFraction * 100,
			})
		}
	}

	return actualDamage
}

func (s *Ship) applySystemDamage(damageType string) {
	var system string
	if damageType == "general" {
		keys := make([]string, 0, len(s.DamageReport))
		for key := range s.DamageReport {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		system = keys[rand.Intn(len(keys))]
	} else if _, ok := s.DamageReport[damageType]; ok {
		system = damageType
	} else {
		system = "hull"
	}

	amount := 0.05 + rand.Float64()*0.1
	s.DamageReport[system] = min(1.0, s.DamageReport[system]+amount)

	if s.DamageReport[system] > 0.5 {
		s.Events().Publish("system_damaged", map[string]any{
			"system":       system,
			"damage_level": s.DamageReport[system] * 100,
		})
	}
}

// Repair restores a named subsystem by amount/100, or, with an empty or
// unknown system, restores hull points and incidentally works 0.1 of
// degradation out of every subsystem. Returns the points (or degradation
// percent) actually repaired.
func (s *Ship) Repair(amount int, system string) int {
	if _, ok := s.DamageReport[system]; ok && system != "" {
		oldDamage := s.DamageReport[system]
		s.DamageReport[system] = max(0, oldDamage-float64(amount)/100.0)
		repaired := oldDamage - s.DamageReport[system]

		s.Events().Publish("system_repaired", map[string]any{
			"system":           system,
			"repair_amount":    repaired * 100,
			"remaining_damage": s.DamageReport[system] * 100,
		})

		return int(repaired * 100)
	}

	oldHull := s.hullPoints
	s.setHullPoints(min(s.MaxHullPoints, s.hullPoints+amount))
	repaired := s.hullPoints - oldHull

	if repaired > 0 {
		for key := range s.DamageReport {
			s.DamageReport[key] = max(0, s.DamageReport[key]-0.1)
		}

		s.Events().Publish("ship_repaired", map[string]any{
			"amount":      repaired,
			"hull_points": s.hullPoints,
			"max_hull":    s.MaxHullPoints,
		})
	}

	return repaired
}

// AddUpgrade installs an upgrade, evicting any occupant of the same
// category. Fails if the ship's power budget cannot take the new upgrade on
// top of the currently installed set.
func (s *Ship) AddUpgrade(upgrade *Upgrade) bool {
	if s.PowerUsed+upgrade.PowerRequirement > s.PowerAvailable {
		return false
	}

	for _, installed := range s.upgrades {
		if installed.Type == upgrade.Type {
			s.RemoveUpgrade(installed.UpgradeID)
			break
		}
	}

	s.upgrades[upgrade.UpgradeID] = upgrade
	s.PowerUsed += upgrade.PowerRequirement

	switch upgrade.Type {
	case UpgradeEngine:
		s.EngineLevel = max(s.EngineLevel, upgrade.Level)
	case UpgradeShield:
		s.ShieldLevel = max(s.ShieldLevel, upgrade.Level)
	case UpgradeWeapon:
		s.WeaponLevel = max(s.WeaponLevel, upgrade.Level)
	case UpgradeCargo:
		s.CargoCapacity += int(upgrade.BonusValue)
	case UpgradeFuel:
		s.FuelCapacity += int(upgrade.BonusValue)
	}

	s.Events().Publish("upgrade_installed", map[string]any{
		"upgrade_name": upgrade.Name,
		"upgrade_type": string(upgrade.Type),
		"level":        upgrade.Level,
	})

	return true
}

// RemoveUpgrade uninstalls an upgrade by id, reverting capacity bonuses and
// recomputing category levels. Returns the removed upgrade, or nil.
func (s *Ship) RemoveUpgrade(upgradeID string) *Upgrade {
	upgrade, ok := s.upgrades[upgradeID]
	if !ok {
		return nil
	}

	delete(s.upgrades, upgradeID)
	s.PowerUsed -= upgrade.PowerRequirement

	switch upgrade.Type {
	case UpgradeCargo:
		s.CargoCapacity -= int(upgrade.BonusValue)
	case UpgradeFuel:
		s.FuelCapacity -= int(upgrade.BonusValue)
	}

	s.recalculateUpgradeLevels()

	s.Events().Publish("upgrade_removed", map[string]any{
		"upgrade_name": upgrade.Name,
		"upgrade_type": string(upgrade.Type),
	})

	return upgrade
}

func (s *Ship) recalculateUpgradeLevels() {
	s.EngineLevel = 1
	s.ShieldLevel = 0
	s.WeaponLevel = 1

	for _, upgrade := range s.upgrades {
		switch upgrade.Type {
		case UpgradeEngine:
			s.EngineLevel = max(s.EngineLevel, upgrade.Level)
		case UpgradeShield:
			s.ShieldLevel = max(s.ShieldLevel, upgrade.Level)
		case UpgradeWeapon:
			s.WeaponLevel = max(s.WeaponLevel, upgrade.Level)
		}
	}
}

// Upgrades returns the installed upgrades ordered by id.
func (s *Ship) Upgrades() []*Upgrade {
	out := make([]*Upgrade, 0, len(s.upgrades))
	for _, upgrade := range s.upgrades {
		out = append(out, upgrade)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpgradeID < out[j].UpgradeID })
	return out
}

// UpgradeByID returns the installed upgrade with the given id, or nil.
func (s *Ship) UpgradeByID(upgradeID string) *Upgrade {
	return s.upgrades[upgradeID]
}

// FuelEfficiency derives fuel efficiency from engine level, engine damage,
// and the hull template, floored at 0.1.
func (s *Ship) FuelEfficiency() float64 {
	engineBonus := float64(s.EngineLevel) * 0.1
	enginePenalty := s.DamageReport["engine"] * 0.5

	typeModifier, ok := fuelEfficiencyModifiers[s.Type]
	if !ok {
		typeModifier = 1.0
	}

	efficiency := (1.0 + engineBonus - enginePenalty) * typeModifier
	return max(0.1, efficiency)
}

// CombatPower derives effective combat power from base weapon power, the
// weapon upgrade level, weapon damage, and hull integrity, floored at 1.
func (s *Ship) CombatPower() int {
	basePower := s.BaseStats.WeaponPower
	weaponBonus := s.WeaponLevel * 10
	weaponPenalty := int(s.DamageReport["weapons"] * float64(basePower) * 0.5)
	hullModifier := float64(s.hullPoints) / float64(s.MaxHullPoints)

	totalPower := int(float64(basePower+weaponBonus-weaponPenalty) * hullModifier)
	return max(1, totalPower)
}

// DockAt docks the ship at a location.
func (s *Ship) DockAt(locationID int64) {
	previous := s.dockedAt
	s.setDockedAt(locationID)

	s.Events().Publish("ship_docked", map[string]any{
		"location_id":       locationID,
		"previous_location": previous,
	})
}

// Undock releases the ship into open space. Does nothing if not docked.
func (s *Ship) Undock() {
	if s.dockedAt == 0 {
		return
	}

	from := s.dockedAt
	s.setDockedAt(0)

	s.Events().Publish("ship_undocked", map[string]any{
		"from_location": from,
	})
}

// Validate checks structural and range invariants.
func (s *Ship) Validate() bool {
	if s.Name == "" {
		return false
	}
	if s.hullPoints < 0 || s.hullPoints > s.MaxHullPoints {
		return false
	}
	if s.fuel < 0 || s.fuel > s.FuelCapacity {
		return false
	}
	if s.CargoCapacity < 0 {
		return false
	}
	if s.PowerUsed > s.PowerAvailable {
		return false
	}
	switch s.Type {
	case ShipShuttle, ShipFighter, ShipFreighter, ShipExplorer,
		ShipCorvette, ShipCruiser, ShipCarrier, ShipSpecial:
	default:
		return false
	}
	return true
}

// ToRecord returns a complete snapshot of the ship.
func (s *Ship) ToRecord() entity.Record {
	upgrades := make([]entity.Record, 0, len(s.upgrades))
	for _, upgrade := range s.Upgrades() {
		upgrades = append(upgrades, upgrade.toRecord())
	}

	report := make(map[string]float64, len(s.DamageReport))
	for key, value := range s.DamageReport {
		report[key] = value
	}

	rec := s.BaseRecord()
	rec["owner_id"] = s.OwnerID
	rec["name"] = s.Name
	rec["ship_type"] = string(s.Type)
	rec["cargo_capacity"] = s.CargoCapacity
	rec["fuel_capacity"] = s.FuelCapacity
	rec["hull_points"] = s.hullPoints
	rec["max_hull_points"] = s.MaxHullPoints
	rec["fuel"] = s.fuel
	rec["engine_level"] = s.EngineLevel
	rec["shield_level"] = s.ShieldLevel
	rec["weapon_level"] = s.WeaponLevel
	rec["interior_description"] = s.InteriorDescription
	rec["docked_at_location"] = s.dockedAt
	rec["is_active"] = s.active
	rec["cargo_bay"] = itemsToRecords(s.cargoBay)
	rec["upgrades"] = upgrades
	rec["damage_report"] = report
	rec["power_available"] = s.PowerAvailable
	rec["power_used"] = s.PowerUsed
	return rec
}

// ShipFromRecord rebuilds a ship from a snapshot. The result is clean and
// publishes no events.
func ShipFromRecord(rec entity.Record) *Ship {
	shipType := ShipShuttle
	if v := rec.Str("ship_type"); v != "" {
		shipType = ShipType(v)
	}
	s := NewShip(rec.Int64("owner_id"), rec.Str("name"), shipType)

	if rec.Has("cargo_capacity") {
		s.CargoCapacity = rec.Int("cargo_capacity")
	}
	if rec.Has("fuel_capacity") {
		s.FuelCapacity = rec.Int("fuel_capacity")
	}
	if rec.Has("hull_points") {
		s.hullPoints = rec.Int("hull_points")
	}
	if rec.Has("max_hull_points") {
		s.MaxHullPoints = rec.Int("max_hull_points")
	}
	if rec.Has("fuel") {
		s.fuel = rec.Int("fuel")
	}
	s.EngineLevel = 1
	if rec.Has("engine_level") {
		s.EngineLevel = rec.Int("engine_level")
	}
	s.ShieldLevel = rec.Int("shield_level")
	s.WeaponLevel = 1
	if rec.Has("weapon_level") {
		s.WeaponLevel = rec.Int("weapon_level")
	}
	s.InteriorDescription = rec.Str("interior_description")
	s.dockedAt = rec.Int64("docked_at_location")
	s.active = true
	if rec.Has("is_active") {
		s.active = rec.Bool("is_active")
	}

	if recs := rec.Records("cargo_bay"); len(recs) > 0 {
		s.cargoBay = itemsFromRecords(recs)
	}
	for _, upRec := range rec.Records("upgrades") {
		upgrade := upgradeFromRecord(upRec)
		s.upgrades[upgrade.UpgradeID] = upgrade
	}
	if rec.Has("damage_report") {
		s.DamageReport = rec.FloatMap("damage_report")
	}

	s.PowerAvailable = 100
	if rec.Has("power_available") {
		s.PowerAvailable = rec.Int("power_available")
	}
	s.PowerUsed = rec.Int("power_used")

	s.ApplyBaseRecord(rec)
	return s
}
