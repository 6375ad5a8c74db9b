// Package persistence provides an optional SQLite archive of a simulation run.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/biosim/telemetry"
)

// DB wraps a SQLite connection for run archiving.
type DB struct {
	conn *sqlx.DB
}

// YearRecord is one archived year.
type YearRecord struct {
	Year         int     `db:"year"`
	Herbivores   int     `db:"herbivores"`
	Carnivores   int     `db:"carnivores"`
	HerbBirths   int     `db:"herb_births"`
	CarnBirths   int     `db:"carn_births"`
	HerbDeaths   int     `db:"herb_deaths"`
	CarnDeaths   int     `db:"carn_deaths"`
	Kills        int     `db:"kills"`
	FodderEaten  float64 `db:"fodder_eaten"`
	BiomassEaten float64 `db:"biomass_eaten"`
	FodderStock  float64 `db:"fodder_stock"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS years (
		year INTEGER PRIMARY KEY,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		herb_births INTEGER NOT NULL,
		carn_births INTEGER NOT NULL,
		herb_deaths INTEGER NOT NULL,
		carn_deaths INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		fodder_eaten REAL NOT NULL,
		biomass_eaten REAL NOT NULL,
		fodder_stock REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS distribution (
		year INTEGER NOT NULL,
		patch_row INTEGER NOT NULL,
		patch_col INTEGER NOT NULL,
		landscape TEXT NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		PRIMARY KEY (year, patch_row, patch_col)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair describing the run.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO run_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// GetMeta retrieves a run value. Returns "" if the key is absent.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveYear archives one year's statistics, replacing any earlier record
// for the same year.
func (db *DB) SaveYear(s telemetry.YearStats) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO years
		(year, herbivores, carnivores, herb_births, carn_births, herb_deaths, carn_deaths,
		 kills, fodder_eaten, biomass_eaten, fodder_stock)
		VALUES (:year, :herbivores, :carnivores, :herb_births, :carn_births, :herb_deaths, :carn_deaths,
		 :kills, :fodder_eaten, :biomass_eaten, :fodder_stock)`,
		YearRecord{
			Year:         s.Year,
			Herbivores:   s.Herbivores,
			Carnivores:   s.Carnivores,
			HerbBirths:   s.HerbBirths,
			CarnBirths:   s.CarnBirths,
			HerbDeaths:   s.HerbDeaths,
			CarnDeaths:   s.CarnDeaths,
			Kills:        s.Kills,
			FodderEaten:  s.FodderEaten,
			BiomassEaten: s.BiomassEaten,
			FodderStock:  s.FodderStock,
		})
	if err != nil {
		return fmt.Errorf("insert year %d: %w", s.Year, err)
	}
	return nil
}

// SaveDistribution writes the per-patch populations of one year.
func (db *DB) SaveDistribution(rows []telemetry.DistributionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT OR REPLACE INTO distribution
		(year, patch_row, patch_col, landscape, herbivores, carnivores)
		VALUES (:year, :patch_row, :patch_col, :landscape, :herbivores, :carnivores)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r); err != nil {
			return fmt.Errorf("insert distribution (%d,%d): %w", r.Row, r.Col, err)
		}
	}

	return tx.Commit()
}

// Years returns every archived year in order.
func (db *DB) Years() ([]YearRecord, error) {
	var out []YearRecord
	err := db.conn.Select(&out, "SELECT * FROM years ORDER BY year")
	return out, err
}

// Distribution returns the archived patch populations of one year in
// row-major order.
func (db *DB) Distribution(year int) ([]telemetry.DistributionRow, error) {
	var out []telemetry.DistributionRow
	err := db.conn.Select(&out,
		"SELECT * FROM distribution WHERE year = ? ORDER BY patch_row, patch_col", year)
	return out, err
}
