package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:classroom-sync.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/classroom_sync?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  percentage REAL NOT NULL,
  points INTEGER NOT NULL,
  completed_at INTEGER NOT NULL,
  submitted INTEGER NOT NULL DEFAULT 0,
  UNIQUE (student_id, coursework_id, attempt_number)
);

CREATE TABLE IF NOT EXISTS submissions (
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  best_score REAL NOT NULL,
  best_points INTEGER NOT NULL,
  best_attempt INTEGER NOT NULL,
  submitted_to_classroom INTEGER NOT NULL DEFAULT 0,
  last_submitted_at INTEGER,
  reset INTEGER NOT NULL DEFAULT 0,
  reset_at INTEGER,
  PRIMARY KEY (student_id, coursework_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  offset_id INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                           -- e.g., GradeSubmitted
  key TEXT NOT NULL,                           -- natural key: studentID|courseworkID
  data TEXT NOT NULL,                          -- JSON payload
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS status_checks (
  id TEXT PRIMARY KEY,
  client_name TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

-- Offline-mode roster tables, served through classroom.SQLClassroom.
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  owner_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_teachers (
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  PRIMARY KEY (course_id, user_id)
);

CREATE TABLE IF NOT EXISTS course_students (
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  name TEXT,
  email TEXT,
  PRIMARY KEY (course_id, user_id)
);

CREATE TABLE IF NOT EXISTS coursework (
  id TEXT NOT NULL,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  max_points REAL,
  PRIMARY KEY (course_id, id)
);

CREATE TABLE IF NOT EXISTS coursework_grades (
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  assigned_grade REAL NOT NULL,
  state TEXT NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (coursework_id, user_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  percentage DOUBLE PRECISION NOT NULL,
  points INTEGER NOT NULL,
  completed_at BIGINT NOT NULL,
  submitted BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (student_id, coursework_id, attempt_number)
);

CREATE TABLE IF NOT EXISTS submissions (
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  best_score DOUBLE PRECISION NOT NULL,
  best_points INTEGER NOT NULL,
  best_attempt INTEGER NOT NULL,
  submitted_to_classroom BOOLEAN NOT NULL DEFAULT FALSE,
  last_submitted_at BIGINT,
  reset BOOLEAN NOT NULL DEFAULT FALSE,
  reset_at BIGINT,
  PRIMARY KEY (student_id, coursework_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  offset_id BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS status_checks (
  id TEXT PRIMARY KEY,
  client_name TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  owner_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_teachers (
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  PRIMARY KEY (course_id, user_id)
);

CREATE TABLE IF NOT EXISTS course_students (
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  name TEXT,
  email TEXT,
  PRIMARY KEY (course_id, user_id)
);

CREATE TABLE IF NOT EXISTS coursework (
  id TEXT NOT NULL,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  max_points DOUBLE PRECISION,
  PRIMARY KEY (course_id, id)
);

CREATE TABLE IF NOT EXISTS coursework_grades (
  course_id TEXT NOT NULL,
  coursework_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  assigned_grade DOUBLE PRECISION NOT NULL,
  state TEXT NOT NULL,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (coursework_id, user_id)
);
`
