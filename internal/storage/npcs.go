package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/thexant/galaxygame/internal/debug"
	"github.com/thexant/galaxygame/internal/entity"
	"github.com/thexant/galaxygame/internal/game"
)

var staticNPCColumns = []string{
	"id", "name", "age", "alignment", "hp", "max_hp",
	"combat_rating", "is_alive", "credits", "location_id",
	"occupation", "personality", "trade_specialty", "trade_goods",
	"reputation_data", "price_modifier", "last_restock",
	"created_at", "updated_at",
}

var staticNPCJSONKeys = []string{"trade_goods", "reputation_data"}

var dynamicNPCColumns = []string{
	"id", "name", "age", "alignment", "hp", "max_hp",
	"combat_rating", "is_alive", "credits", "callsign",
	"ship_name", "ship_type", "current_location",
	"destination_location", "travel_start_time", "travel_duration",
	"ship_hull", "max_ship_hull", "ship_fuel", "max_ship_fuel",
	"cargo_capacity", "current_cargo", "last_radio_broadcast",
	"ai_behavior", "behavior_state", "created_at", "updated_at",
}

var dynamicNPCJSONKeys = []string{"current_cargo", "behavior_state"}

// Travel bookkeeping keys disappear from the record once an NPC
// arrives. Writing NULL for the missing keys keeps a parked NPC from
// reloading as mid-flight.
var dynamicNPCNullableKeys = []string{
	"travel_start_time", "travel_duration", "last_radio_broadcast",
}

func (d *SQLiteDatabase) SaveStaticNPC(n *game.StaticNPC) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	if n.ID() != 0 && !n.Dirty() {
		debug.Log("SaveStaticNPC: npc %d clean, skipping", n.ID())
		return nil
	}

	vals := rowValues(n.ToRecord(), staticNPCJSONKeys, nil)

	if n.ID() == 0 {
		query, args, err := psql.Insert("static_npcs").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build npc insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			debug.Log("SaveStaticNPC: insert failed for %s: %v", n.Name, err)
			return fmt.Errorf("failed to insert npc: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get npc id: %w", err)
		}

		n.SetID(id)
		n.MarkClean()
		return nil
	}

	query, args, err := psql.Update("static_npcs").
		SetMap(vals).
		Where(sq.Eq{"id": n.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build npc update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		debug.Log("SaveStaticNPC: update failed for %d: %v", n.ID(), err)
		return fmt.Errorf("failed to update npc %d: %w", n.ID(), err)
	}

	n.MarkClean()
	return nil
}

// LoadStaticNPCsAt fetches the resident NPCs of one location.
func (d *SQLiteDatabase) LoadStaticNPCsAt(locationID int64) ([]*game.StaticNPC, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadStaticNPCs(sq.Eq{"location_id": locationID})
}

func (d *SQLiteDatabase) LoadAllStaticNPCs() ([]*game.StaticNPC, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadStaticNPCs(nil)
}

func (d *SQLiteDatabase) loadStaticNPCs(where any) ([]*game.StaticNPC, error) {
	builder := psql.Select(staticNPCColumns...).From("static_npcs").OrderBy("id")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build npc query: %w", err)
	}

	rows, err := d.conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load npcs: %w", err)
	}
	defer rows.Close()

	var npcs []*game.StaticNPC
	for rows.Next() {
		n, err := scanStaticNPC(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan npc: %w", err)
		}
		npcs = append(npcs, n)
	}
	return npcs, rows.Err()
}

func scanStaticNPC(row rowScanner) (*game.StaticNPC, error) {
	var (
		id, locationID                    int64
		name, alignment                   string
		age, hp, maxHP, combatRating      int
		isAlive                           bool
		credits                           int
		occupation, personality           string
		tradeSpecialty                    string
		tradeGoodsJSON, reputationJSON    string
		priceModifier                     float64
		lastRestock                       sql.NullString
		createdAt, updatedAt              string
	)

	err := row.Scan(
		&id, &name, &age, &alignment, &hp, &maxHP,
		&combatRating, &isAlive, &credits, &locationID,
		&occupation, &personality, &tradeSpecialty, &tradeGoodsJSON,
		&reputationJSON, &priceModifier, &lastRestock,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := entity.Record{
		"id":              id,
		"name":            name,
		"age":             age,
		"alignment":       alignment,
		"hp":              hp,
		"max_hp":          maxHP,
		"combat_rating":   combatRating,
		"is_alive":        isAlive,
		"credits":         credits,
		"location_id":     locationID,
		"occupation":      occupation,
		"personality":     personality,
		"trade_specialty": tradeSpecialty,
		"trade_goods":     decodeJSON(tradeGoodsJSON),
		"reputation_data": decodeJSON(reputationJSON),
		"price_modifier":  priceModifier,
		"created_at":      createdAt,
		"updated_at":      updatedAt,
	}
	if lastRestock.Valid {
		rec["last_restock"] = lastRestock.String
	}

	return game.StaticNPCFromRecord(rec), nil
}

func (d *SQLiteDatabase) SaveDynamicNPC(n *game.DynamicNPC) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	if n.ID() != 0 && !n.Dirty() {
		debug.Log("SaveDynamicNPC: npc %d clean, skipping", n.ID())
		return nil
	}

	vals := rowValues(n.ToRecord(), dynamicNPCJSONKeys, dynamicNPCNullableKeys)

	if n.ID() == 0 {
		query, args, err := psql.Insert("dynamic_npcs").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build npc insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			debug.Log("SaveDynamicNPC: insert failed for %s: %v", n.Callsign, err)
			return fmt.Errorf("failed to insert npc: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get npc id: %w", err)
		}

		n.SetID(id)
		n.MarkClean()
		return nil
	}

	query, args, err := psql.Update("dynamic_npcs").
		SetMap(vals).
		Where(sq.Eq{"id": n.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build npc update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		debug.Log("SaveDynamicNPC: update failed for %d: %v", n.ID(), err)
		return fmt.Errorf("failed to update npc %d: %w", n.ID(), err)
	}

	n.MarkClean()
	return nil
}

// LoadDynamicNPC fetches a roaming NPC by id, nil when absent.
func (d *SQLiteDatabase) LoadDynamicNPC(id int64) (*game.DynamicNPC, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, args, err := psql.Select(dynamicNPCColumns...).
		From("dynamic_npcs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build npc query: %w", err)
	}

	n, err := scanDynamicNPC(d.conn().QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load npc %d: %w", id, err)
	}
	return n, nil
}

func (d *SQLiteDatabase) LoadAllDynamicNPCs() ([]*game.DynamicNPC, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, _, err := psql.Select(dynamicNPCColumns...).
		From("dynamic_npcs").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build npc query: %w", err)
	}

	rows, err := d.conn().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load npcs: %w", err)
	}
	defer rows.Close()

	var npcs []*game.DynamicNPC
	for rows.Next() {
		n, err := scanDynamicNPC(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan npc: %w", err)
		}
		npcs = append(npcs, n)
	}
	return npcs, rows.Err()
}

func scanDynamicNPC(row rowScanner) (*game.DynamicNPC, error) {
	var (
		id, currentLocation, destination    int64
		name, alignment                     string
		age, hp, maxHP, combatRating        int
		isAlive                             bool
		credits                             int
		callsign, shipName, shipType        string
		travelStart                         sql.NullString
		travelDuration                      sql.NullFloat64
		shipHull, maxShipHull               int
		shipFuel, maxShipFuel               int
		cargoCapacity                       int
		cargoJSON                           string
		lastRadio                           sql.NullString
		aiBehavior, behaviorStateJSON       string
		createdAt, updatedAt                string
	)

	err := row.Scan(
		&id, &name, &age, &alignment, &hp, &maxHP,
		&combatRating, &isAlive, &credits, &callsign,
		&shipName, &shipType, &currentLocation,
		&destination, &travelStart, &travelDuration,
		&shipHull, &maxShipHull, &shipFuel, &maxShipFuel,
		&cargoCapacity, &cargoJSON, &lastRadio,
		&aiBehavior, &behaviorStateJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := entity.Record{
		"id":                   id,
		"name":                 name,
		"age":                  age,
		"alignment":            alignment,
		"hp":                   hp,
		"max_hp":               maxHP,
		"combat_rating":        combatRating,
		"is_alive":             isAlive,
		"credits":              credits,
		"callsign":             callsign,
		"ship_name":            shipName,
		"ship_type":            shipType,
		"current_location":     currentLocation,
		"destination_location": destination,
		"ship_hull":            shipHull,
		"max_ship_hull":        maxShipHull,
		"ship_fuel":            shipFuel,
		"max_ship_fuel":        maxShipFuel,
		"cargo_capacity":       cargoCapacity,
		"current_cargo":        decodeJSON(cargoJSON),
		"ai_behavior":          aiBehavior,
		"behavior_state":       decodeJSON(behaviorStateJSON),
		"created_at":           createdAt,
		"updated_at":           updatedAt,
	}
	if travelStart.Valid {
		rec["travel_start_time"] = travelStart.String
	}
	if travelDuration.Valid {
		rec["travel_duration"] = travelDuration.Float64
	}
	if lastRadio.Valid {
		rec["last_radio_broadcast"] = lastRadio.String
	}

	return game.DynamicNPCFromRecord(rec), nil
}
