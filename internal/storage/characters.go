package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/thexant/galaxygame/internal/debug"
	"github.com/thexant/galaxygame/internal/entity"
	"github.com/thexant/galaxygame/internal/game"
)

var characterColumns = []string{
	"id", "player_ref", "name", "current_location", "credits",
	"ship_fuel", "ship_hull", "max_ship_hull", "current_ship_id",
	"stats", "karma", "wanted_level", "alignment", "location_status",
	"is_alive", "death_count", "last_death_time", "inventory",
	"experience", "level", "skills", "created_at", "updated_at",
}

var characterJSONKeys = []string{"stats", "inventory", "skills"}

var characterNullableKeys = []string{"last_death_time"}

// SaveCharacter inserts a new character or updates an existing one.
// Clean characters are skipped; a successful save clears the dirty
// flag and, on first save, assigns the id.
func (d *SQLiteDatabase) SaveCharacter(c *game.Character) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	if c.ID() != 0 && !c.Dirty() {
		debug.Log("SaveCharacter: character %d clean, skipping", c.ID())
		return nil
	}

	vals := rowValues(c.ToRecord(), characterJSONKeys, characterNullableKeys)

	if c.ID() == 0 {
		query, args, err := psql.Insert("characters").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build character insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			debug.Log("SaveCharacter: insert failed for %s: %v", c.Name, err)
			return fmt.Errorf("failed to insert character: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get character id: %w", err)
		}

		c.SetID(id)
		c.MarkClean()
		return nil
	}

	query, args, err := psql.Update("characters").
		SetMap(vals).
		Where(sq.Eq{"id": c.ID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build character update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		debug.Log("SaveCharacter: update failed for %d: %v", c.ID(), err)
		return fmt.Errorf("failed to update character %d: %w", c.ID(), err)
	}

	c.MarkClean()
	return nil
}

// LoadCharacter fetches a character by id, nil when absent.
func (d *SQLiteDatabase) LoadCharacter(id int64) (*game.Character, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	var row *sql.Row
	if d.tx != nil {
		row = d.tx.QueryRow(d.loadCharacterSQL, id)
	} else {
		row = d.loadCharacterStmt.QueryRow(id)
	}

	c, err := scanCharacter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load character %d: %w", id, err)
	}
	return c, nil
}

// FindCharacterByPlayerRef fetches the character owned by an external
// player identity, nil when the player has none.
func (d *SQLiteDatabase) FindCharacterByPlayerRef(ref string) (*game.Character, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	var row *sql.Row
	if d.tx != nil {
		row = d.tx.QueryRow(d.findByRefSQL, ref)
	} else {
		row = d.findByRefStmt.QueryRow(ref)
	}

	c, err := scanCharacter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to find character for %s: %w", ref, err)
	}
	return c, nil
}

func (d *SQLiteDatabase) LoadAllCharacters() ([]*game.Character, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, _, err := psql.Select(characterColumns...).
		From("characters").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build character query: %w", err)
	}

	rows, err := d.conn().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load characters: %w", err)
	}
	defer rows.Close()

	var characters []*game.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func scanCharacter(row rowScanner) (*game.Character, error) {
	var (
		id                                     int64
		playerRef, name                        string
		currentLocation, currentShipID         int64
		credits, shipFuel, shipHull            int
		maxShipHull                            int
		statsJSON                              string
		karma, wantedLevel                     int
		alignment, locationStatus              string
		isAlive                                bool
		deathCount                             int
		lastDeathTime                          sql.NullString
		inventoryJSON                          string
		experience, level                      int
		skillsJSON, createdAt, updatedAt       string
	)

	err := row.Scan(
		&id, &playerRef, &name, &currentLocation, &credits,
		&shipFuel, &shipHull, &maxShipHull, &currentShipID,
		&statsJSON, &karma, &wantedLevel, &alignment, &locationStatus,
		&isAlive, &deathCount, &lastDeathTime, &inventoryJSON,
		&experience, &level, &skillsJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := entity.Record{
		"id":               id,
		"player_ref":       playerRef,
		"name":             name,
		"current_location": currentLocation,
		"credits":          credits,
		"ship_fuel":        shipFuel,
		"ship_hull":        shipHull,
		"max_ship_hull":    maxShipHull,
		"current_ship_id":  currentShipID,
		"stats":            decodeJSON(statsJSON),
		"karma":            karma,
		"wanted_level":     wantedLevel,
		"alignment":        alignment,
		"location_status":  locationStatus,
		"is_alive":         isAlive,
		"death_count":      deathCount,
		"inventory":        decodeJSON(inventoryJSON),
		"experience":       experience,
		"level":            level,
		"skills":           decodeJSON(skillsJSON),
		"created_at":       createdAt,
		"updated_at":       updatedAt,
	}
	if lastDeathTime.Valid {
		rec["last_death_time"] = lastDeathTime.String
	}

	return game.CharacterFromRecord(rec), nil
}
