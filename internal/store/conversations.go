package store

import (
	"database/sql"
	"fmt"
)

type Turn struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"` // user, assistant
	Content   string `json:"content"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EnsureSession creates the session row if it does not exist yet and verifies
// ownership when it does.
func (s *Store) EnsureSession(sessionID string, userID int64) error {
	var owner int64
	err := s.conn.QueryRow("SELECT user_id FROM sessions WHERE id = ?", sessionID).Scan(&owner)
	if err == sql.ErrNoRows {
		if _, err := s.conn.Exec("INSERT INTO sessions (id, user_id) VALUES (?, ?)", sessionID, userID); err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up session: %w", err)
	}
	if owner != userID {
		return fmt.Errorf("session %s belongs to another user", sessionID)
	}
	return nil
}

// AppendTurn stores one turn of the dialogue. Metadata is an opaque JSON blob
// (the serialized execution results for assistant turns) or empty.
func (s *Store) AppendTurn(sessionID, role, content, metadata string) error {
	_, err := s.conn.Exec(
		"INSERT INTO turns (session_id, role, content, metadata) VALUES (?, ?, ?, ?)",
		sessionID, role, content, nullStr(metadata),
	)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	if _, err := s.conn.Exec("UPDATE sessions SET updated_at = datetime('now') WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// GetSession returns the session's turns in insertion order. A missing
// session yields an empty slice, not an error.
func (s *Store) GetSession(sessionID string) ([]Turn, error) {
	rows, err := s.conn.Query(
		"SELECT id, session_id, role, content, COALESCE(metadata,''), created_at FROM turns WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()
	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// PruneSessions deletes sessions idle for more than ttlDays, cascading to
// their turns. Returns how many sessions were removed.
func (s *Store) PruneSessions(ttlDays int) (int64, error) {
	res, err := s.conn.Exec(
		"DELETE FROM sessions WHERE updated_at < datetime('now', '-' || ? || ' days')",
		ttlDays,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return res.RowsAffected()
}
