package game

import (
	"math"
	"sort"
	"strings"

	"github.com/thexant/galaxygame/internal/entity"
)

// LocationType classifies a place in the galaxy.
type LocationType string

const (
	LocColony       LocationType = "colony"
	LocSpaceStation LocationType = "space_station"
	LocOutpost      LocationType = "outpost"
	LocGate         LocationType = "gate"
	LocDerelict     LocationType = "derelict"
	LocHidden       LocationType = "hidden"
)

// Service is something a location offers to visiting characters.
type Service string

const (
	ServiceJobs            Service = "jobs"
	ServiceShops           Service = "shops"
	ServiceMedical         Service = "medical"
	ServiceRepairs         Service = "repairs"
	ServiceFuel            Service = "fuel"
	ServiceUpgrades        Service = "upgrades"
	ServiceBlackMarket     Service = "black_market"
	ServiceFederalSupplies Service = "federal_supplies"
	ServiceShipyard        Service = "shipyard"
	ServiceBank            Service = "bank"
	ServiceComms           Service = "comms"
	ServiceHomes           Service = "homes"
)

// Coordinates is a position in 3-D space.
type Coordinates struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the Euclidean distance to another position.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	dx := c.X - other.X
	dy := c.Y - other.Y
	dz := c.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (c Coordinates) toRecord() entity.Record {
	return entity.Record{"x": c.X, "y": c.Y, "z": c.Z}
}

var populationTypeModifiers = map[LocationType]float64{
	LocColony:       1.5,
	LocSpaceStation: 1.2,
	LocOutpost:      0.8,
	LocGate:         0.5,
	LocDerelict:     0.0,
	LocHidden:       0.3,
}

var priceTypeModifiers = map[LocationType]float64{
	LocColony:       0.95,
	LocSpaceStation: 1.05,
	LocOutpost:      1.1,
	LocGate:         1.15,
	LocDerelict:     2.0,
	LocHidden:       0.9,
}

// Location is a place characters and NPCs occupy. The service set is always
// derived from type, wealth, and the derelict flag; the add/remove escape
// hatches exist for scripted events only. Wealth, population, the derelict
// flag, and gate status are tracked fields.
type Location struct {
	entity.Base

	Name        string
	Type        LocationType
	Coordinates Coordinates

	wealthLevel int
	population  int

	Description string
	services    map[Service]struct{}

	// LocationRef identifies this location to systems outside the store,
	// assigned once at generation time.
	LocationRef string

	SystemName        string
	Faction           string
	derelict          bool
	gateStatus        string
	EstablishmentDate string

	BasePriceModifier   float64
	SupplyDemandFactors map[string]float64
}

// NewLocation creates a location and derives its initial service set.
func NewLocation(name string, locationType LocationType, coords Coordinates, wealthLevel, population int) *Location {
	l := &Location{
		Name:                name,
		Type:                locationType,
		Coordinates:         coords,
		wealthLevel:         wealthLevel,
		population:          population,
		Description:         "A " + string(locationType) + " in the galaxy",
		services:            make(map[Service]struct{}),
		Faction:             "Independent",
		gateStatus:          "active",
		BasePriceModifier:   1.0,
		SupplyDemandFactors: make(map[string]float64),
	}
	l.initializeServices()
	l.Base = entity.NewBase(l)
	return l
}

// WealthLevel returns the wealth level, 1 through 10.
func (l *Location) WealthLevel() int { return l.wealthLevel }

// Population returns the resident population.
func (l *Location) Population() int { return l.population }

// IsDerelict reports whether the location has been abandoned.
func (l *Location) IsDerelict() bool { return l.derelict }

// GateStatus returns the gate status. Only meaningful for gate locations.
func (l *Location) GateStatus() string { return l.gateStatus }

// SetGateStatus updates the gate status, publishing a change event when the
// value differs.
func (l *Location) SetGateStatus(status string) {
	entity.SetField(&l.Base, "gate_status", &l.gateStatus, status)
}

func (l *Location) setWealthLevel(level int) {
	entity.SetField(&l.Base, "wealth_level", &l.wealthLevel, level)
}

func (l *Location) setPopulation(population int) {
	entity.SetField(&l.Base, "population", &l.population, population)
}

func (l *Location) setDerelict(derelict bool) {
	entity.SetField(&l.Base, "is_derelict", &l.derelict, derelict)
}

func (l *Location) initializeServices() {
	if l.Type != LocDerelict {
		l.services[ServiceJobs] = struct{}{}
		l.services[ServiceComms] = struct{}{}
	}

	if l.wealthLevel >= 3 {
		l.services[ServiceShops] = struct{}{}
		l.services[ServiceFuel] = struct{}{}
	}
	if l.wealthLevel >= 5 {
		l.services[ServiceMedical] = struct{}{}
		l.services[ServiceRepairs] = struct{}{}
	}
	if l.wealthLevel >= 7 {
		l.services[ServiceUpgrades] = struct{}{}
		l.services[ServiceBank] = struct{}{}
	}

	switch l.Type {
	case LocColony:
		l.services[ServiceHomes] = struct{}{}
		if l.wealthLevel >= 6 {
			l.services[ServiceShipyard] = struct{}{}
		}
	case LocSpaceStation:
		l.services[ServiceRepairs] = struct{}{}
		l.services[ServiceFuel] = struct{}{}
		if l.wealthLevel >= 8 {
			l.services[ServiceFederalSupplies] = struct{}{}
		}
	case LocOutpost:
		if l.wealthLevel <= 4 {
			l.services[ServiceBlackMarket] = struct{}{}
		}
	}
}

// Services returns the available services, sorted for stable output.
func (l *Location) Services() []Service {
	out := make([]Service, 0, len(l.services))
	for svc := range l.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasService reports whether a service is available here.
func (l *Location) HasService(service Service) bool {
	_, ok := l.services[service]
	return ok
}

// AddService grants an extra service outside the derived set. Publishes
// service_added when the service was not already present.
func (l *Location) AddService(service Service) {
	if _, ok := l.services[service]; ok {
		return
	}
	l.services[service] = struct{}{}
	l.Events().Publish("service_added", map[string]any{"service": string(service)})
}

// RemoveService withdraws a service. Publishes service_removed when the
// service was present.
func (l *Location) RemoveService(service Service) {
	if _, ok := l.services[service]; !ok {
		return
	}
	delete(l.services, service)
	l.Events().Publish("service_removed", map[string]any{"service": string(service)})
}

// CalculatePopulation derives an effective population from the base
// population, wealth, location type, and service count. Derelict locations
// always come out at zero.
func (l *Location) CalculatePopulation() int {
	wealthModifier := 1 + float64(l.wealthLevel-5)*0.1

	typeModifier, ok := populationTypeModifiers[l.Type]
	if !ok {
		typeModifier = 1.0
	}

	serviceModifier := 1 + float64(len(l.services))*0.05

	calculated := int(float64(l.population) * wealthModifier * typeModifier * serviceModifier)
	if l.derelict {
		calculated = 0
	}
	return max(0, calculated)
}

// UpdateWealth shifts the wealth level by change, clamped to [1, 10]. A real
// change rebuilds the service set from scratch.
func (l *Location) UpdateWealth(change int) {
	oldWealth := l.wealthLevel
	l.setWealthLevel(max(1, min(10, l.wealthLevel+change)))

	if oldWealth != l.wealthLevel {
		l.services = make(map[Service]struct{})
		l.initializeServices()
	}
}

// UpdatePopulation shifts the population by change, floored at zero.
func (l *Location) UpdatePopulation(change int) {
	l.setPopulation(max(0, l.population+change))
}

// SetDerelict abandons or restores the location. Abandoning strips every
// service except comms and zeroes the population; restoring re-derives the
// service set from type and wealth.
func (l *Location) SetDerelict(derelict bool) {
	l.setDerelict(derelict)

	if derelict {
		for _, svc := range l.Services() {
			if svc != ServiceComms {
				l.RemoveService(svc)
			}
		}
		l.setPopulation(0)
		if !strings.Contains(strings.ToLower(l.Description), "derelict") {
			l.Description = "Abandoned " + l.Description
		}
	} else {
		l.initializeServices()
	}
}

// PriceModifier returns the price multiplier for an item category at this
// location, clamped to [0.5, 3.0].
func (l *Location) PriceModifier(itemCategory string) float64 {
	modifier := l.BasePriceModifier

	// Poor locations charge more
	modifier *= 1.0 + float64(5-l.wealthLevel)*0.05

	if factor, ok := l.SupplyDemandFactors[itemCategory]; ok {
		modifier *= factor
	}

	typeModifier, ok := priceTypeModifiers[l.Type]
	if !ok {
		typeModifier = 1.0
	}
	modifier *= typeModifier

	return max(0.5, min(3.0, modifier))
}

// Validate checks structural and range invariants.
func (l *Location) Validate() bool {
	if l.Name == "" {
		return false
	}
	if l.wealthLevel < 1 || l.wealthLevel > 10 {
		return false
	}
	if l.population < 0 {
		return false
	}
	switch l.Type {
	case LocColony, LocSpaceStation, LocOutpost, LocGate, LocDerelict, LocHidden:
	default:
		return false
	}
	return true
}

// ToRecord returns a complete snapshot of the location.
func (l *Location) ToRecord() entity.Record {
	services := make([]string, 0, len(l.services))
	for _, svc := range l.Services() {
		services = append(services, string(svc))
	}

	factors := make(map[string]float64, len(l.SupplyDemandFactors))
	for key, value := range l.SupplyDemandFactors {
		factors[key] = value
	}

	rec := l.BaseRecord()
	rec["name"] = l.Name
	rec["type"] = string(l.Type)
	rec["coordinates"] = l.Coordinates.toRecord()
	rec["wealth_level"] = l.wealthLevel
	rec["population"] = l.population
	rec["description"] = l.Description
	rec["services"] = services
	rec["location_ref"] = l.LocationRef
	rec["system_name"] = l.SystemName
	rec["faction"] = l.Faction
	rec["is_derelict"] = l.derelict
	rec["gate_status"] = l.gateStatus
	rec["establishment_date"] = l.EstablishmentDate
	rec["base_price_modifier"] = l.BasePriceModifier
	rec["supply_demand_factors"] = factors
	return rec
}

// LocationFromRecord rebuilds a location from a snapshot. The result is
// clean and publishes no events.
func LocationFromRecord(rec entity.Record) *Location {
	coords := Coordinates{}
	if sub := rec.Sub("coordinates"); sub != nil {
		coords.X = sub.Float("x")
		coords.Y = sub.Float("y")
		coords.Z = sub.Float("z")
	}

	locationType := LocOutpost
	if v := rec.Str("type"); v != "" {
		locationType = LocationType(v)
	}
	wealthLevel := 5
	if rec.Has("wealth_level") {
		wealthLevel = rec.Int("wealth_level")
	}
	population := 1000
	if rec.Has("population") {
		population = rec.Int("population")
	}

	l := NewLocation(rec.Str("name"), locationType, coords, wealthLevel, population)

	if desc := rec.Str("description"); desc != "" {
		l.Description = desc
	}
	l.LocationRef = rec.Str("location_ref")
	l.SystemName = rec.Str("system_name")
	if rec.Has("faction") {
		l.Faction = rec.Str("faction")
	}
	l.derelict = rec.Bool("is_derelict")
	if v := rec.Str("gate_status"); v != "" {
		l.gateStatus = v
	}
	l.EstablishmentDate = rec.Str("establishment_date")
	if rec.Has("base_price_modifier") {
		l.BasePriceModifier = rec.Float("base_price_modifier")
	}
	if rec.Has("supply_demand_factors") {
		l.SupplyDemandFactors = rec.FloatMap("supply_demand_factors")
	}

	if rec.Has("services") {
		l.services = make(map[Service]struct{})
		for _, svc := range rec.Strs("services") {
			l.services[Service(svc)] = struct{}{}
		}
	}

	l.ApplyBaseRecord(rec)
	return l
}
