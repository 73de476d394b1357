package store

import (
	"encoding/json"
	"fmt"
)

type Note struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

const noteColumns = `id, user_id, title, content, category, COALESCE(tags,'[]'), created_at, updated_at`

// CreateNote inserts a note for the user and returns the stored record.
func (s *Store) CreateNote(userID int64, title, content, category string, tags []string) (*Note, error) {
	if category == "" {
		category = "Geral"
	}
	var tagsJSON string
	if len(tags) > 0 {
		b, _ := json.Marshal(tags)
		tagsJSON = string(b)
	}
	res, err := s.conn.Exec(
		"INSERT INTO notes (user_id, title, content, category, tags) VALUES (?, ?, ?, ?, ?)",
		userID, title, content, category, nullStr(tagsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	id, _ := res.LastInsertId()
	notes, err := s.scanNotes("SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("note %d not found", id)
	}
	return &notes[0], nil
}

// RecentNotes returns the user's most recently created notes.
func (s *Store) RecentNotes(userID int64, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.scanNotes(
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
}

// CountNotes returns how many notes the user has.
func (s *Store) CountNotes(userID int64) (int, error) {
	var n int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM notes WHERE user_id = ?", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}
	return n, nil
}

func (s *Store) scanNotes(query string, args ...any) ([]Note, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()
	var notes []Note
	for rows.Next() {
		var n Note
		var tagsJSON string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &tagsJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		_ = json.Unmarshal([]byte(tagsJSON), &n.Tags)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
