// Package store is the data access layer. Every operation is a single
// parameterized statement (or a short fixed sequence) against sqlite;
// failures are reported through the sentinel errors below so handlers
// can decide recovery per operation instead of catching everything.
package store

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrUserNotFound indicates no user row matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrTaskNotFound indicates no task matched the id for that owner.
	ErrTaskNotFound = errors.New("task not found")
)

// Store wraps the handle to the sqlite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT,
	date TEXT,
	freq INTEGER DEFAULT 0,
	complete INTEGER DEFAULT 0,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
`

// Open opens (and creates, if needed) the database at the given path.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer, and an in-memory database exists
	// per connection; one pooled connection covers both.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Seed executes an external SQL script, used to stage sample data at
// start. The script is trusted input.
func (s *Store) Seed(path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(string(script))
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err comes from sqlite's UNIQUE
// constraint. String matching keeps us off the driver's error types,
// which differ between sqlite bindings.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
