package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/thexant/galaxygame/internal/game"
)

// psql builds every query in the package. SQLite uses ? placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Database is the persistence surface the rest of the program works
// against. Entities go in dirty and come back clean; identifiers are
// assigned on first save.
type Database interface {
	CreateDatabase(filename string) error
	OpenDatabase(filename string) error
	CloseDatabase() error
	GetDatabaseOpen() bool

	BeginTransaction() error
	CommitTransaction() error
	RollbackTransaction() error

	SaveCharacter(c *game.Character) error
	LoadCharacter(id int64) (*game.Character, error)
	FindCharacterByPlayerRef(ref string) (*game.Character, error)
	LoadAllCharacters() ([]*game.Character, error)

	SaveShip(s *game.Ship) error
	LoadShip(id int64) (*game.Ship, error)
	LoadShipsByOwner(ownerID int64) ([]*game.Ship, error)
	LoadAllShips() ([]*game.Ship, error)

	SaveLocation(l *game.Location) error
	LoadLocation(id int64) (*game.Location, error)
	FindLocationByRef(ref string) (*game.Location, error)
	LoadAllLocations() ([]*game.Location, error)

	SaveStaticNPC(n *game.StaticNPC) error
	LoadStaticNPCsAt(locationID int64) ([]*game.StaticNPC, error)
	LoadAllStaticNPCs() ([]*game.StaticNPC, error)

	SaveDynamicNPC(n *game.DynamicNPC) error
	LoadDynamicNPC(id int64) (*game.DynamicNPC, error)
	LoadAllDynamicNPCs() ([]*game.DynamicNPC, error)

	SaveCorridor(c *Corridor) error
	LoadCorridorsFrom(originID int64) ([]*Corridor, error)
	LoadAllCorridors() ([]*Corridor, error)
	DestinationsFrom(originID int64) ([]int64, error)

	SaveHistoryEvent(e *HistoryEvent) error
	LoadHistoryAt(locationID int64) ([]*HistoryEvent, error)
	LoadAllHistory() ([]*HistoryEvent, error)

	SaveGalaxyInfo(info GalaxyInfo) error
	LoadGalaxyInfo() (*GalaxyInfo, error)

	WipeWorld() error
}

// SQLiteDatabase stores the whole game world in a single SQLite file.
// Nested collections (inventories, cargo, skill maps) are kept as JSON
// columns; everything queried by id or ref gets its own column.
type SQLiteDatabase struct {
	db       *sql.DB
	tx       *sql.Tx
	dbOpen   bool
	filename string

	// Hot lookups prepared once at open. Character fetches happen on
	// every command a player issues.
	loadCharacterStmt *sql.Stmt
	findByRefStmt     *sql.Stmt
	loadCharacterSQL  string
	findByRefSQL      string
}

func NewDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{}
}

// OpenDatabase opens an existing world file, bringing its schema up to
// the current version before use.
func (d *SQLiteDatabase) OpenDatabase(filename string) error {
	if d.dbOpen {
		return fmt.Errorf("database already open")
	}
	return d.open(filename)
}

// CreateDatabase creates a fresh world file. The schema migrations are
// the same ones OpenDatabase applies, starting from an empty database.
func (d *SQLiteDatabase) CreateDatabase(filename string) error {
	if d.dbOpen {
		return fmt.Errorf("database already open")
	}
	return d.open(filename)
}

func (d *SQLiteDatabase) open(filename string) error {
	var err error
	d.db, err = sql.Open("sqlite", filename+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite permits one writer. Serialising on a single connection
	// avoids SQLITE_BUSY instead of retrying around it.
	d.db.SetMaxOpenConns(1)

	if err = d.db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = d.runMigrations(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err = d.validateSchema(); err != nil {
		return fmt.Errorf("invalid database schema: %w", err)
	}

	if err = d.prepareStatements(); err != nil {
		return fmt.Errorf("failed to prepare statements: %w", err)
	}

	d.filename = filename
	d.dbOpen = true
	return nil
}

func (d *SQLiteDatabase) CloseDatabase() error {
	if !d.dbOpen {
		return nil
	}

	if d.tx != nil {
		d.tx.Rollback()
		d.tx = nil
	}

	if d.loadCharacterStmt != nil {
		d.loadCharacterStmt.Close()
	}
	if d.findByRefStmt != nil {
		d.findByRefStmt.Close()
	}

	if d.db != nil {
		if err := d.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	d.dbOpen = false
	d.filename = ""
	return nil
}

func (d *SQLiteDatabase) GetDatabaseOpen() bool {
	return d.dbOpen
}

func (d *SQLiteDatabase) GetFilename() string {
	return d.filename
}

func (d *SQLiteDatabase) GetDB() *sql.DB {
	return d.db
}

func (d *SQLiteDatabase) BeginTransaction() error {
	if d.tx != nil {
		return fmt.Errorf("transaction already active")
	}

	var err error
	d.tx, err = d.db.Begin()
	return err
}

func (d *SQLiteDatabase) CommitTransaction() error {
	if d.tx == nil {
		return fmt.Errorf("no active transaction")
	}

	err := d.tx.Commit()
	d.tx = nil
	return err
}

func (d *SQLiteDatabase) RollbackTransaction() error {
	if d.tx == nil {
		return fmt.Errorf("no active transaction")
	}

	err := d.tx.Rollback()
	d.tx = nil
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx. With a single
// pooled connection, statements issued outside an open transaction
// would deadlock waiting for it, so every query routes through conn.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (d *SQLiteDatabase) conn() execer {
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

// validateSchema confirms the world tables exist after migration.
func (d *SQLiteDatabase) validateSchema() error {
	tables := []string{
		"characters", "ships", "locations", "corridors",
		"static_npcs", "dynamic_npcs", "galaxy_info", "galactic_history",
	}

	for _, table := range tables {
		var count int
		err := d.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("missing table: %s", table)
		}
	}
	return nil
}

func (d *SQLiteDatabase) prepareStatements() error {
	var err error

	d.loadCharacterSQL, _, err = psql.
		Select(characterColumns...).
		From("characters").
		Where("id = ?").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build character query: %w", err)
	}
	d.loadCharacterStmt, err = d.db.Prepare(d.loadCharacterSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare character load: %w", err)
	}

	d.findByRefSQL, _, err = psql.
		Select(characterColumns...).
		From("characters").
		Where("player_ref = ?").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build player ref query: %w", err)
	}
	d.findByRefStmt, err = d.db.Prepare(d.findByRefSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare player ref lookup: %w", err)
	}

	return nil
}

// WipeWorld removes every world row while keeping the schema, for
// regenerating a galaxy into an existing file. Children go before the
// tables they reference.
func (d *SQLiteDatabase) WipeWorld() error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	shouldCommit := false
	if d.tx == nil {
		if err := d.BeginTransaction(); err != nil {
			return fmt.Errorf("failed to begin wipe transaction: %w", err)
		}
		shouldCommit = true
	}

	tables := []string{
		"galactic_history", "corridors", "static_npcs", "dynamic_npcs",
		"ships", "characters", "locations", "galaxy_info",
	}
	for _, table := range tables {
		if _, err := d.tx.Exec("DELETE FROM " + table); err != nil {
			if shouldCommit {
				d.RollbackTransaction()
			}
			return fmt.Errorf("failed to wipe %s: %w", table, err)
		}
	}

	if shouldCommit {
		return d.CommitTransaction()
	}
	return nil
}
