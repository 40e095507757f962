package storage

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Catalog indexes saved runs in SQLite so they can be queried without
// reading every run directory.
type Catalog struct {
	db *sql.DB
}

// CatalogEntry is one indexed run.
type CatalogEntry struct {
	ID         string
	Preset     string
	CreatedAt  time.Time
	Dt         float64
	FinalTime  float64
	Steps      int
	Tire       string
	FinalX     float64
	FinalY     float64
	FinalPsi   float64
	FinalSpeed float64
	Metrics    map[string]float64
}

func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Record(meta RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO runs
			(id, preset, created_at, dt, final_time, steps, tire,
			 final_x, final_y, final_psi, final_speed, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.Exec(query,
		meta.ID, meta.Preset, meta.Timestamp.UTC().Format(time.RFC3339Nano),
		meta.Dt, meta.FinalTime, meta.Steps, meta.Tire,
		meta.Final.X, meta.Final.Y, meta.Final.Psi, meta.Final.Speed(),
		string(metrics))
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", meta.ID, err)
	}
	return nil
}

func (c *Catalog) Remove(id string) error {
	_, err := c.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}

// Runs returns the indexed runs, oldest first. A non-empty preset filters
// by preset name.
func (c *Catalog) Runs(preset string) ([]CatalogEntry, error) {
	query := `
		SELECT id, preset, created_at, dt, final_time, steps, tire,
		       final_x, final_y, final_psi, final_speed, metrics
		FROM runs
		WHERE ? = '' OR preset = ?
		ORDER BY created_at, id
	`
	rows, err := c.db.Query(query, preset, preset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var (
			e       CatalogEntry
			created string
			metrics string
		)
		if err := rows.Scan(&e.ID, &e.Preset, &created, &e.Dt, &e.FinalTime, &e.Steps, &e.Tire,
			&e.FinalX, &e.FinalY, &e.FinalPsi, &e.FinalSpeed, &metrics); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metrics), &e.Metrics); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
