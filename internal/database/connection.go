package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a database for driver ("sqlite3" or "postgres") and makes sure the schema exists
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite3" {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	realType := "REAL"
	if db.DriverName() == "postgres" {
		idColumn = "id BIGSERIAL PRIMARY KEY"
		realType = "DOUBLE PRECISION"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"progress", `
			CREATE TABLE IF NOT EXISTS progress (
				entry_id TEXT PRIMARY KEY,
				source_text TEXT NOT NULL,
				mastery_level ` + realType + ` NOT NULL DEFAULT 0,
				last_reviewed TIMESTAMP NULL,
				review_count INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`},
		{"profile", `
			CREATE TABLE IF NOT EXISTS profile (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL DEFAULT '',
				dark_mode BOOLEAN NOT NULL DEFAULT false,
				daily_goal INTEGER NOT NULL DEFAULT 0,
				streak_days INTEGER NOT NULL DEFAULT 0,
				last_session TIMESTAMP NULL,
				saved_at TIMESTAMP NULL
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				` + idColumn + `,
				session_id TEXT NOT NULL,
				total INTEGER NOT NULL,
				correct INTEGER NOT NULL,
				started_at TIMESTAMP NOT NULL,
				finished_at TIMESTAMP NOT NULL,
				duration INTEGER NOT NULL DEFAULT 0
			)`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
	}
	return nil
}
