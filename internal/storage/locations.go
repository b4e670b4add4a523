package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/thexant/galaxygame/internal/debug"
	"github.com/thexant/galaxygame/internal/entity"
	"github.com/thexant/galaxygame/internal/game"
)

var locationColumns = []string{
	"id", "name", "type", "x_coord", "y_coord", "z_coord",
	"wealth_level", "population", "description", "services",
	"location_ref", "system_name", "faction", "is_derelict",
	"gate_status", "establishment_date", "base_price_modifier",
	"supply_demand_factors", "created_at", "updated_at",
}

var locationJSONKeys = []string{"services", "supply_demand_factors"}

// SaveLocation inserts or updates a location. Coordinates flatten to
// their own columns so spatial queries stay possible.
func (d *SQLiteDatabase) SaveLocation(l *game.Location) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	if l.ID() != 0 && !l.Dirty() {
		debug.Log("SaveLocation: location %d clean, skipping", l.ID())
		return nil
	}

	rec := l.ToRecord()
	vals := rowValues(rec, locationJSONKeys, nil)

	coords := rec.Sub("coordinates")
	delete(vals, "coordinates")
	vals["x_coord"] = coords.Float("x")
	vals["y_coord"] = coords.Float("y")
	vals["z_coord"] = coords.Float("z")

	if l.ID() == 0 {
		query, args, err := psql.Insert("locations").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build location insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			debug.Log("SaveLocation: insert failed for %s: %v", l.Name, err)
			return fmt.Errorf("failed to insert location: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get location id: %w", err)
		}

		l.SetID(id)
		l.MarkClean()
		return nil
	}

	query, args, err := psql.Update("locations").
		SetMap(vals).
		Where(sq.Eq{"id": l.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build location update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		debug.Log("SaveLocation: update failed for %d: %v", l.ID(), err)
		return fmt.Errorf("failed to update location %d: %w", l.ID(), err)
	}

	l.MarkClean()
	return nil
}

// LoadLocation fetches a location by id, nil when absent.
func (d *SQLiteDatabase) LoadLocation(id int64) (*game.Location, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, args, err := psql.Select(locationColumns...).
		From("locations").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location query: %w", err)
	}

	l, err := scanLocation(d.conn().QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load location %d: %w", id, err)
	}
	return l, nil
}

// FindLocationByRef fetches a location by its generation-time ref,
// nil when absent.
func (d *SQLiteDatabase) FindLocationByRef(ref string) (*game.Location, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, args, err := psql.Select(locationColumns...).
		From("locations").
		Where(sq.Eq{"location_ref": ref}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location query: %w", err)
	}

	l, err := scanLocation(d.conn().QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to find location %s: %w", ref, err)
	}
	return l, nil
}

func (d *SQLiteDatabase) LoadAllLocations() ([]*game.Location, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, _, err := psql.Select(locationColumns...).
		From("locations").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location query: %w", err)
	}

	rows, err := d.conn().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	defer rows.Close()

	var locations []*game.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func scanLocation(row rowScanner) (*game.Location, error) {
	var (
		id                               int64
		name, locType                    string
		x, y, z                          float64
		wealthLevel, population          int
		description, servicesJSON        string
		locationRef                      sql.NullString
		systemName, faction              string
		isDerelict                       bool
		gateStatus, establishmentDate    string
		basePriceModifier                float64
		supplyDemandJSON                 string
		createdAt, updatedAt             string
	)

	err := row.Scan(
		&id, &name, &locType, &x, &y, &z,
		&wealthLevel, &population, &description, &servicesJSON,
		&locationRef, &systemName, &faction, &isDerelict,
		&gateStatus, &establishmentDate, &basePriceModifier,
		&supplyDemandJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := entity.Record{
		"id":   id,
		"name": name,
		"type": locType,
		"coordinates": map[string]any{
			"x": x, "y": y, "z": z,
		},
		"wealth_level":          wealthLevel,
		"population":            population,
		"description":           description,
		"services":              decodeJSON(servicesJSON),
		"system_name":           systemName,
		"faction":               faction,
		"is_derelict":           isDerelict,
		"gate_status":           gateStatus,
		"establishment_date":    establishmentDate,
		"base_price_modifier":   basePriceModifier,
		"supply_demand_factors": decodeJSON(supplyDemandJSON),
		"created_at":            createdAt,
		"updated_at":            updatedAt,
	}
	if locationRef.Valid {
		rec["location_ref"] = locationRef.String
	}

	return game.LocationFromRecord(rec), nil
}
