package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Corridor is a directed travel link between two locations. Links are
// stored one row per direction; the generator writes both.
type Corridor struct {
	ID            int64
	Name          string
	OriginID      int64
	DestinationID int64

	// TravelTime is the crossing time in seconds.
	TravelTime  int
	FuelCost    int
	DangerLevel int
	IsActive    bool
}

var corridorColumns = []string{
	"id", "name", "origin_id", "destination_id",
	"travel_time", "fuel_cost", "danger_level", "is_active",
}

func (d *SQLiteDatabase) SaveCorridor(c *Corridor) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	vals := map[string]any{
		"name":           c.Name,
		"origin_id":      c.OriginID,
		"destination_id": c.DestinationID,
		"travel_time":    c.TravelTime,
		"fuel_cost":      c.FuelCost,
		"danger_level":   c.DangerLevel,
		"is_active":      c.IsActive,
	}

	if c.ID == 0 {
		query, args, err := psql.Insert("corridors").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build corridor insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert corridor %s: %w", c.Name, err)
		}

		c.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get corridor id: %w", err)
		}
		return nil
	}

	query, args, err := psql.Update("corridors").
		SetMap(vals).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build corridor update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update corridor %d: %w", c.ID, err)
	}
	return nil
}

// LoadCorridorsFrom fetches the active outbound corridors of one
// location, the set a traveller may depart through.
func (d *SQLiteDatabase) LoadCorridorsFrom(originID int64) ([]*Corridor, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadCorridors(sq.Eq{"origin_id": originID, "is_active": true})
}

func (d *SQLiteDatabase) LoadAllCorridors() ([]*Corridor, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadCorridors(nil)
}

func (d *SQLiteDatabase) loadCorridors(where any) ([]*Corridor, error) {
	builder := psql.Select(corridorColumns...).From("corridors").OrderBy("id")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build corridor query: %w", err)
	}

	rows, err := d.conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load corridors: %w", err)
	}
	defer rows.Close()

	var corridors []*Corridor
	for rows.Next() {
		c := &Corridor{}
		err := rows.Scan(
			&c.ID, &c.Name, &c.OriginID, &c.DestinationID,
			&c.TravelTime, &c.FuelCost, &c.DangerLevel, &c.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corridor: %w", err)
		}
		corridors = append(corridors, c)
	}
	return corridors, rows.Err()
}

// DestinationsFrom returns the location ids reachable through active
// corridors out of one location.
func (d *SQLiteDatabase) DestinationsFrom(originID int64) ([]int64, error) {
	corridors, err := d.LoadCorridorsFrom(originID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(corridors))
	for _, c := range corridors {
		ids = append(ids, c.DestinationID)
	}
	return ids, nil
}
