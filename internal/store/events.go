package store

import "fmt"

type Event struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at,omitempty"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

const eventColumns = `id, user_id, title, COALESCE(description,''), start_at,
	COALESCE(end_at,''), COALESCE(location,''), category, created_at, updated_at`

// CreateEvent inserts a calendar event for the user. Category defaults to
// "Pessoal" when omitted.
func (s *Store) CreateEvent(userID int64, title, description, startAt, endAt, location, category string) (*Event, error) {
	if category == "" {
		category = "Pessoal"
	}
	res, err := s.conn.Exec(
		"INSERT INTO events (user_id, title, description, start_at, end_at, location, category) VALUES (?, ?, ?, ?, ?, ?, ?)",
		userID, title, nullStr(description), startAt, nullStr(endAt), nullStr(location), category,
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	id, _ := res.LastInsertId()
	events, err := s.scanEvents("SELECT "+eventColumns+" FROM events WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %d not found", id)
	}
	return &events[0], nil
}

// UpcomingEvents returns the user's events starting at or after the given
// instant, soonest first.
func (s *Store) UpcomingEvents(userID int64, from string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.scanEvents(
		"SELECT "+eventColumns+" FROM events WHERE user_id = ? AND start_at >= ? ORDER BY start_at LIMIT ?",
		userID, from, limit,
	)
}

func (s *Store) scanEvents(query string, args ...any) ([]Event, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartAt,
			&e.EndAt, &e.Location, &e.Category, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
