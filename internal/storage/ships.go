package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/thexant/galaxygame/internal/debug"
	"github.com/thexant/galaxygame/internal/entity"
	"github.com/thexant/galaxygame/internal/game"
)

var shipColumns = []string{
	"id", "owner_id", "name", "ship_type", "cargo_capacity",
	"fuel_capacity", "hull_points", "max_hull_points", "fuel",
	"engine_level", "shield_level", "weapon_level",
	"interior_description", "docked_at_location", "is_active",
	"cargo_bay", "upgrades", "damage_report",
	"power_available", "power_used", "created_at", "updated_at",
}

var shipJSONKeys = []string{"cargo_bay", "upgrades", "damage_report"}

func (d *SQLiteDatabase) SaveShip(s *game.Ship) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	if s.ID() != 0 && !s.Dirty() {
		debug.Log("SaveShip: ship %d clean, skipping", s.ID())
		return nil
	}

	vals := rowValues(s.ToRecord(), shipJSONKeys, nil)

	if s.ID() == 0 {
		query, args, err := psql.Insert("ships").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build ship insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			debug.Log("SaveShip: insert failed for %s: %v", s.Name, err)
			return fmt.Errorf("failed to insert ship: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get ship id: %w", err)
		}

		s.SetID(id)
		s.MarkClean()
		return nil
	}

	query, args, err := psql.Update("ships").
		SetMap(vals).
		Where(sq.Eq{"id": s.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ship update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		debug.Log("SaveShip: update failed for %d: %v", s.ID(), err)
		return fmt.Errorf("failed to update ship %d: %w", s.ID(), err)
	}

	s.MarkClean()
	return nil
}

// LoadShip fetches a ship by id, nil when absent.
func (d *SQLiteDatabase) LoadShip(id int64) (*game.Ship, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, args, err := psql.Select(shipColumns...).
		From("ships").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ship query: %w", err)
	}

	s, err := scanShip(d.conn().QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load ship %d: %w", id, err)
	}
	return s, nil
}

func (d *SQLiteDatabase) LoadShipsByOwner(ownerID int64) ([]*game.Ship, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadShips(sq.Eq{"owner_id": ownerID})
}

func (d *SQLiteDatabase) LoadAllShips() ([]*game.Ship, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadShips(nil)
}

func (d *SQLiteDatabase) loadShips(where any) ([]*game.Ship, error) {
	builder := psql.Select(shipColumns...).From("ships").OrderBy("id")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ship query: %w", err)
	}

	rows, err := d.conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load ships: %w", err)
	}
	defer rows.Close()

	var ships []*game.Ship
	for rows.Next() {
		s, err := scanShip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ship: %w", err)
		}
		ships = append(ships, s)
	}
	return ships, rows.Err()
}

func scanShip(row rowScanner) (*game.Ship, error) {
	var (
		id, ownerID, dockedAt                     int64
		name, shipType                            string
		cargoCapacity, fuelCapacity               int
		hullPoints, maxHullPoints, fuel           int
		engineLevel, shieldLevel, weaponLevel     int
		interiorDescription                       string
		isActive                                  bool
		cargoBayJSON, upgradesJSON, damageJSON    string
		powerAvailable, powerUsed                 int
		createdAt, updatedAt                      string
	)

	err := row.Scan(
		&id, &ownerID, &name, &shipType, &cargoCapacity,
		&fuelCapacity, &hullPoints, &maxHullPoints, &fuel,
		&engineLevel, &shieldLevel, &weaponLevel,
		&interiorDescription, &dockedAt, &isActive,
		&cargoBayJSON, &upgradesJSON, &damageJSON,
		&powerAvailable, &powerUsed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := entity.Record{
		"id":                   id,
		"owner_id":             ownerID,
		"name":                 name,
		"ship_type":            shipType,
		"cargo_capacity":       cargoCapacity,
		"fuel_capacity":        fuelCapacity,
		"hull_points":          hullPoints,
		"max_hull_points":      maxHullPoints,
		"fuel":                 fuel,
		"engine_level":         engineLevel,
		"shield_level":         shieldLevel,
		"weapon_level":         weaponLevel,
		"interior_description": interiorDescription,
		"docked_at_location":   dockedAt,
		"is_active":            isActive,
		"cargo_bay":            decodeJSON(cargoBayJSON),
		"upgrades":             decodeJSON(upgradesJSON),
		"damage_report":        decodeJSON(damageJSON),
		"power_available":      powerAvailable,
		"power_used":           powerUsed,
		"created_at":           createdAt,
		"updated_at":           updatedAt,
	}

	return game.ShipFromRecord(rec), nil
}
