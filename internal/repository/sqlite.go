package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'volunteer',
			last_login DATETIME,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS volunteers (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			skills TEXT NOT NULL DEFAULT '[]',
			availability TEXT NOT NULL DEFAULT 'available',
			city TEXT,
			state TEXT,
			country TEXT,
			latitude REAL,
			longitude REAL,
			completed_tasks INTEGER NOT NULL DEFAULT 0,
			total_assigned_tasks INTEGER NOT NULL DEFAULT 0,
			reliability_score REAL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS disasters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			disaster_type TEXT NOT NULL,
			urgency TEXT NOT NULL,
			city TEXT,
			state TEXT,
			country TEXT,
			latitude REAL,
			longitude REAL,
			status TEXT NOT NULL DEFAULT 'active',
			created_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			disaster_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			required_skills TEXT NOT NULL DEFAULT '[]',
			priority TEXT NOT NULL DEFAULT 'medium',
			status TEXT NOT NULL DEFAULT 'open',
			address TEXT,
			latitude REAL,
			longitude REAL,
			created_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (disaster_id) REFERENCES disasters(id)
		);

		CREATE TABLE IF NOT EXISTS task_assignments (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			volunteer_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			match_score INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id),
			FOREIGN KEY (volunteer_id) REFERENCES volunteers(id)
		);

		CREATE TABLE IF NOT EXISTS updates (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			priority TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'General',
			disaster_id TEXT,
			created_by TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_disaster_id ON tasks(disaster_id);
		CREATE INDEX IF NOT EXISTS idx_assignments_task_id ON task_assignments(task_id);
		CREATE INDEX IF NOT EXISTS idx_assignments_volunteer_id ON task_assignments(volunteer_id);
		CREATE INDEX IF NOT EXISTS idx_volunteers_availability ON volunteers(availability);
		CREATE INDEX IF NOT EXISTS idx_updates_created_at ON updates(created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// skills and required_skills live in TEXT columns as JSON arrays.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(b), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	return values, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
