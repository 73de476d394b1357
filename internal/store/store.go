package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureUser returns the ID of the first user row, creating one with the
// given name if the table is empty. The deployment is single-tenant but
// every query below this point still takes an explicit user ID.
func (s *Store) EnsureUser(name string) (int64, error) {
	var id int64
	err := s.conn.QueryRow("SELECT id FROM users ORDER BY id LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		res, err := s.conn.Exec("INSERT INTO users (name) VALUES (?)", name)
		if err != nil {
			return 0, fmt.Errorf("creating default user: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("looking up default user: %w", err)
	}
	return id, nil
}

// GetUserName returns the display name for a user.
func (s *Store) GetUserName(userID int64) (string, error) {
	var name string
	err := s.conn.QueryRow("SELECT name FROM users WHERE id = ?", userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return "", fmt.Errorf("getting user name: %w", err)
	}
	return name, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
