package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// HistoryEvent is one founding-era event in a location's backstory,
// written during galaxy generation and read back for flavor text.
type HistoryEvent struct {
	ID          int64
	LocationID  int64
	Title       string
	Description string
	Figure      string
	EventDate   string
}

var historyColumns = []string{
	"id", "location_id", "event_title", "event_description",
	"historical_figure", "event_date",
}

// SaveHistoryEvent inserts a new event when ID is zero and updates the
// existing row otherwise, assigning the generated ID back on insert.
func (d *SQLiteDatabase) SaveHistoryEvent(e *HistoryEvent) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}

	vals := map[string]any{
		"location_id":       e.LocationID,
		"event_title":       e.Title,
		"event_description": e.Description,
		"historical_figure": e.Figure,
		"event_date":        e.EventDate,
	}

	if e.ID == 0 {
		query, args, err := psql.Insert("galactic_history").SetMap(vals).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build history insert: %w", err)
		}

		res, err := d.conn().Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert history event %q: %w", e.Title, err)
		}

		e.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read history event id: %w", err)
		}
		return nil
	}

	query, args, err := psql.Update("galactic_history").SetMap(vals).Where(sq.Eq{"id": e.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build history update: %w", err)
	}

	if _, err := d.conn().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update history event %d: %w", e.ID, err)
	}
	return nil
}

// LoadHistoryAt fetches the recorded history of a single location.
func (d *SQLiteDatabase) LoadHistoryAt(locationID int64) ([]*HistoryEvent, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadHistory(sq.Eq{"location_id": locationID})
}

// LoadAllHistory fetches every recorded history event.
func (d *SQLiteDatabase) LoadAllHistory() ([]*HistoryEvent, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	return d.loadHistory(nil)
}

func (d *SQLiteDatabase) loadHistory(where any) ([]*HistoryEvent, error) {
	builder := psql.Select(historyColumns...).From("galactic_history").OrderBy("id")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := d.conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var events []*HistoryEvent
	for rows.Next() {
		e := &HistoryEvent{}
		err = rows.Scan(&e.ID, &e.LocationID, &e.Title, &e.Description, &e.Figure, &e.EventDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
