package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/thexant/galaxygame/internal/debug"
)

// GalaxyInfo is the single-row identity of a generated world.
type GalaxyInfo struct {
	GalaxyID  string
	Name      string
	StartDate string
}

// SaveGalaxyInfo writes the world identity, creating the row on first
// save and updating it afterwards.
func (d *SQLiteDatabase) SaveGalaxyInfo(info GalaxyInfo) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	shouldCommit := false
	if d.tx == nil {
		if err := d.BeginTransaction(); err != nil {
			return fmt.Errorf("failed to begin galaxy info transaction: %w", err)
		}
		shouldCommit = true
	}

	_, err := d.tx.Exec(
		"INSERT OR IGNORE INTO galaxy_info (id, galaxy_id, name, start_date) VALUES (1, ?, ?, ?)",
		info.GalaxyID, info.Name, info.StartDate,
	)
	if err != nil {
		debug.Log("SaveGalaxyInfo: ensure failed: %v", err)
		if shouldCommit {
			d.RollbackTransaction()
		}
		return fmt.Errorf("failed to ensure galaxy info: %w", err)
	}

	query, args, err := psql.Update("galaxy_info").
		SetMap(map[string]any{
			"galaxy_id":  info.GalaxyID,
			"name":       info.Name,
			"start_date": info.StartDate,
		}).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		if shouldCommit {
			d.RollbackTransaction()
		}
		return fmt.Errorf("failed to build galaxy info update: %w", err)
	}

	if _, err := d.tx.Exec(query, args...); err != nil {
		debug.Log("SaveGalaxyInfo: update failed: %v", err)
		if shouldCommit {
			d.RollbackTransaction()
		}
		return fmt.Errorf("failed to update galaxy info: %w", err)
	}

	if shouldCommit {
		return d.CommitTransaction()
	}
	return nil
}

// LoadGalaxyInfo fetches the world identity, nil when no galaxy has
// been generated into this file yet.
func (d *SQLiteDatabase) LoadGalaxyInfo() (*GalaxyInfo, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}

	query, args, err := psql.Select("galaxy_id", "name", "start_date").
		From("galaxy_info").
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build galaxy info query: %w", err)
	}

	info := &GalaxyInfo{}
	err = d.conn().QueryRow(query, args...).Scan(&info.GalaxyID, &info.Name, &info.StartDate)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load galaxy info: %w", err)
	}
	return info, nil
}
