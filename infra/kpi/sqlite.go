// Package kpi persists daily site records.
package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/energylp/core/metrics/eco"
)

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS site_kpi (
        site TEXT,
        day INTEGER,
        imported REAL,
        exported REAL,
        carbon REAL,
        runs INTEGER,
        PRIMARY KEY(site, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or accumulates into the record of the site and day.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO site_kpi (site, day, imported, exported, carbon, runs)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(site, day) DO UPDATE SET
            imported = imported + excluded.imported,
            exported = exported + excluded.exported,
            carbon = carbon + excluded.carbon,
            runs = runs + excluded.runs`,
		r.Site, d.Unix(), r.ImportedMWh, r.ExportedMWh, r.CarbonTonnes, max(r.Runs, 1))
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(site string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT site, day, imported, exported, carbon, runs
        FROM site_kpi WHERE site = ? AND day >= ? AND day <= ? ORDER BY day`,
		site, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		var ts int64
		if err := rows.Scan(&r.Site, &ts, &r.ImportedMWh, &r.ExportedMWh, &r.CarbonTonnes, &r.Runs); err != nil {
			return nil, err
		}
		r.Date = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
