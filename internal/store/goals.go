package store

import (
	"fmt"
	"time"
)

// Goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
)

type Goal struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Target      float64 `json:"target"`
	Current     float64 `json:"current"`
	Unit        string  `json:"unit,omitempty"`
	Deadline    string  `json:"deadline,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

const goalColumns = `id, user_id, title, COALESCE(description,''), target, current,
	COALESCE(unit,''), COALESCE(deadline,''), status, created_at, updated_at`

// CreateGoal inserts a goal for the user with progress starting at zero.
func (s *Store) CreateGoal(userID int64, title, description string, target float64, unit, deadline string) (*Goal, error) {
	res, err := s.conn.Exec(
		"INSERT INTO goals (user_id, title, description, target, unit, deadline) VALUES (?, ?, ?, ?, ?, ?)",
		userID, title, nullStr(description), target, nullStr(unit), nullStr(deadline),
	)
	if err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getGoal(userID, id)
}

// UpdateGoalProgress sets a goal's current progress, scoped to the owning
// user. The goal's status flips to completed once current reaches target.
func (s *Store) UpdateGoalProgress(userID, id int64, current float64) (*Goal, error) {
	goal, err := s.getGoal(userID, id)
	if err != nil {
		return nil, err
	}
	status := GoalActive
	if current >= goal.Target {
		status = GoalCompleted
	}
	now := time.Now().UTC().Format(time.DateTime)
	res, err := s.conn.Exec(
		"UPDATE goals SET current = ?, status = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		current, status, now, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating goal progress: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("goal %d not found", id)
	}
	return s.getGoal(userID, id)
}

// ActiveGoals returns the user's goals still in progress.
func (s *Store) ActiveGoals(userID int64, limit int) ([]Goal, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.scanGoals(
		"SELECT "+goalColumns+" FROM goals WHERE user_id = ? AND status = 'active' ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
}

// CountActiveGoals returns how many active goals the user has.
func (s *Store) CountActiveGoals(userID int64) (int, error) {
	var n int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM goals WHERE user_id = ? AND status = 'active'", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active goals: %w", err)
	}
	return n, nil
}

func (s *Store) getGoal(userID, id int64) (*Goal, error) {
	goals, err := s.scanGoals("SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, fmt.Errorf("goal %d not found", id)
	}
	return &goals[0], nil
}

func (s *Store) scanGoals(query string, args ...any) ([]Goal, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()
	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Target, &g.Current,
			&g.Unit, &g.Deadline, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
