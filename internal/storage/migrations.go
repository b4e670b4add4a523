package storage

import (
	"fmt"
	"strings"

	"github.com/thexant/galaxygame/internal/log"
)

// Migration is one versioned schema step. Steps apply in ID order and
// each records itself in schema_version inside its own transaction.
type Migration struct {
	ID          int
	Description string
	SQL         string
}

var migrations = []Migration{
	{
		ID:          1,
		Description: "Initial world schema",
		SQL: `
CREATE TABLE IF NOT EXISTS locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	x_coord REAL DEFAULT 0,
	y_coord REAL DEFAULT 0,
	z_coord REAL DEFAULT 0,
	wealth_level INTEGER DEFAULT 5,
	population INTEGER DEFAULT 0,
	description TEXT DEFAULT '',
	services TEXT DEFAULT '[]',
	location_ref TEXT UNIQUE,
	system_name TEXT DEFAULT '',
	faction TEXT DEFAULT 'Independent',
	is_derelict BOOLEAN DEFAULT 0,
	gate_status TEXT DEFAULT '',
	establishment_date TEXT DEFAULT '',
	base_price_modifier REAL DEFAULT 1.0,
	supply_demand_factors TEXT DEFAULT '{}',
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS corridors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	origin_id INTEGER NOT NULL,
	destination_id INTEGER NOT NULL,
	travel_time INTEGER NOT NULL,
	fuel_cost INTEGER NOT NULL,
	danger_level INTEGER DEFAULT 1,
	is_active BOOLEAN DEFAULT 1,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (origin_id) REFERENCES locations(id),
	FOREIGN KEY (destination_id) REFERENCES locations(id),
	UNIQUE(origin_id, destination_id)
);

CREATE TABLE IF NOT EXISTS characters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_ref TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	current_location INTEGER DEFAULT 0,
	credits INTEGER DEFAULT 0,
	ship_fuel INTEGER DEFAULT 0,
	ship_hull INTEGER DEFAULT 0,
	max_ship_hull INTEGER DEFAULT 0,
	current_ship_id INTEGER DEFAULT 0,
	stats TEXT DEFAULT '{}',
	karma INTEGER DEFAULT 0,
	wanted_level INTEGER DEFAULT 0,
	alignment TEXT DEFAULT 'neutral',
	location_status TEXT DEFAULT 'docked',
	is_alive BOOLEAN DEFAULT 1,
	death_count INTEGER DEFAULT 0,
	last_death_time TEXT,
	inventory TEXT DEFAULT '[]',
	experience INTEGER DEFAULT 0,
	level INTEGER DEFAULT 1,
	skills TEXT DEFAULT '{}',
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	ship_type TEXT DEFAULT '',
	cargo_capacity INTEGER DEFAULT 0,
	fuel_capacity INTEGER DEFAULT 0,
	hull_points INTEGER DEFAULT 0,
	max_hull_points INTEGER DEFAULT 0,
	fuel INTEGER DEFAULT 0,
	engine_level INTEGER DEFAULT 1,
	shield_level INTEGER DEFAULT 0,
	weapon_level INTEGER DEFAULT 0,
	interior_description TEXT DEFAULT '',
	docked_at_location INTEGER DEFAULT 0,
	is_active BOOLEAN DEFAULT 1,
	cargo_bay TEXT DEFAULT '[]',
	upgrades TEXT DEFAULT '[]',
	damage_report TEXT DEFAULT '{}',
	power_available INTEGER DEFAULT 0,
	power_used INTEGER DEFAULT 0,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS static_npcs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age INTEGER DEFAULT 30,
	alignment TEXT DEFAULT 'neutral',
	hp INTEGER DEFAULT 100,
	max_hp INTEGER DEFAULT 100,
	combat_rating INTEGER DEFAULT 5,
	is_alive BOOLEAN DEFAULT 1,
	credits INTEGER DEFAULT 0,
	location_id INTEGER NOT NULL,
	occupation TEXT DEFAULT '',
	personality TEXT DEFAULT '',
	trade_specialty TEXT DEFAULT '',
	trade_goods TEXT DEFAULT '[]',
	reputation_data TEXT DEFAULT '{}',
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (location_id) REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS dynamic_npcs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age INTEGER DEFAULT 30,
	alignment TEXT DEFAULT 'neutral',
	hp INTEGER DEFAULT 100,
	max_hp INTEGER DEFAULT 100,
	combat_rating INTEGER DEFAULT 5,
	is_alive BOOLEAN DEFAULT 1,
	credits INTEGER DEFAULT 0,
	callsign TEXT NOT NULL,
	ship_name TEXT DEFAULT '',
	ship_type TEXT DEFAULT '',
	current_location INTEGER DEFAULT 0,
	destination_location INTEGER DEFAULT 0,
	travel_start_time TEXT,
	travel_duration REAL,
	ship_hull INTEGER DEFAULT 100,
	max_ship_hull INTEGER DEFAULT 100,
	ship_fuel INTEGER DEFAULT 100,
	max_ship_fuel INTEGER DEFAULT 100,
	cargo_capacity INTEGER DEFAULT 100,
	current_cargo TEXT DEFAULT '[]',
	ai_behavior TEXT DEFAULT 'trader',
	behavior_state TEXT DEFAULT 'null',
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS galaxy_info (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	galaxy_id TEXT NOT NULL,
	name TEXT NOT NULL,
	start_date TEXT NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_characters_location ON characters(current_location);
CREATE INDEX IF NOT EXISTS idx_ships_owner ON ships(owner_id);
CREATE INDEX IF NOT EXISTS idx_corridors_origin ON corridors(origin_id);
CREATE INDEX IF NOT EXISTS idx_corridors_destination ON corridors(destination_id);
CREATE INDEX IF NOT EXISTS idx_static_npcs_location ON static_npcs(location_id);
CREATE INDEX IF NOT EXISTS idx_dynamic_npcs_location ON dynamic_npcs(current_location);`,
	},
	{
		ID:          2,
		Description: "Persist NPC restock and radio timers",
		SQL: `
-- Columns added with existence checks, SQLite has no
-- ALTER TABLE ADD COLUMN IF NOT EXISTS`,
	},
	{
		ID:          3,
		Description: "Record founding history events",
		SQL: `
CREATE TABLE IF NOT EXISTS galactic_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_id INTEGER,
	event_title TEXT NOT NULL,
	event_description TEXT NOT NULL,
	historical_figure TEXT DEFAULT '',
	event_date TEXT NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (location_id) REFERENCES locations(id)
);

CREATE INDEX IF NOT EXISTS idx_history_location ON galactic_history(location_id);`,
	},
}

// runMigrations brings the schema up to the latest version.
func (d *SQLiteDatabase) runMigrations() error {
	if err := d.ensureSchemaVersionTable(); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := d.getCurrentSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.ID <= currentVersion {
			continue
		}

		log.Info("applying migration", "id", migration.ID, "description", migration.Description)
		if err := d.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.ID, err)
		}
	}

	return nil
}

func (d *SQLiteDatabase) ensureSchemaVersionTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := d.db.Exec(query)
	return err
}

func (d *SQLiteDatabase) getCurrentSchemaVersion() (int, error) {
	var version int
	err := d.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (d *SQLiteDatabase) applyMigration(migration Migration) error {
	if migration.ID == 2 {
		return d.applyTimerColumnsMigration(migration)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Statements split on ";", comment lines skipped.
	statements := strings.Split(migration.SQL, ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}

		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?);`, migration.ID); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// applyTimerColumnsMigration adds the restock and radio timer columns
// to worlds created before they were persisted. Column checks run
// before the transaction because the pool holds a single connection.
func (d *SQLiteDatabase) applyTimerColumnsMigration(migration Migration) error {
	type newColumn struct {
		table string
		name  string
		ddl   string
	}
	columns := []newColumn{
		{"static_npcs", "price_modifier", "ALTER TABLE static_npcs ADD COLUMN price_modifier REAL DEFAULT 1.0"},
		{"static_npcs", "last_restock", "ALTER TABLE static_npcs ADD COLUMN last_restock TEXT"},
		{"dynamic_npcs", "last_radio_broadcast", "ALTER TABLE dynamic_npcs ADD COLUMN last_radio_broadcast TEXT"},
	}

	var pending []newColumn
	for _, col := range columns {
		var count int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?;`, col.table)
		if err := d.db.QueryRow(query, col.name).Scan(&count); err != nil {
			return fmt.Errorf("failed to check for %s.%s column: %w", col.table, col.name, err)
		}
		if count == 0 {
			pending = append(pending, col)
		}
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, col := range pending {
		if _, err := tx.Exec(col.ddl); err != nil {
			return fmt.Errorf("failed to add %s.%s column: %w", col.table, col.name, err)
		}
		log.Info("added column", "table", col.table, "column", col.name)
	}

	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?);`, migration.ID); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
