package store

import (
	"fmt"
	"time"
)

// Task priorities accepted by the record store.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

const defaultTaskCategory = "Geral"

type Task struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date,omitempty"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TaskFilter narrows ListTasks. A nil Completed means both states.
type TaskFilter struct {
	Completed *bool
	Priority  string
	Limit     int
}

const taskColumns = `id, user_id, title, COALESCE(description,''), priority, category,
	COALESCE(due_date,''), completed, COALESCE(completed_at,''), created_at, updated_at`

// CreateTask inserts a task for the user and returns the stored record.
// Priority defaults to MEDIUM and category to "Geral" when omitted.
func (s *Store) CreateTask(userID int64, title, description, priority, category, dueDate string) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if category == "" {
		category = defaultTaskCategory
	}
	res, err := s.conn.Exec(
		"INSERT INTO tasks (user_id, title, description, priority, category, due_date) VALUES (?, ?, ?, ?, ?, ?)",
		userID, title, nullStr(description), priority, category, nullStr(dueDate),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getTask(userID, id)
}

// ListTasks returns the user's tasks, newest first, capped at filter.Limit
// (default 10).
func (s *Store) ListTasks(userID int64, filter TaskFilter) ([]Task, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []any{userID}
	if filter.Completed != nil {
		query += " AND completed = ?"
		args = append(args, boolInt(*filter.Completed))
	}
	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filter.Priority)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	return s.scanTasks(query, args...)
}

// CompleteTask marks a task done. The update is scoped to the owning user;
// touching another user's task reports not found.
func (s *Store) CompleteTask(userID, id int64) (*Task, error) {
	now := time.Now().UTC().Format(time.DateTime)
	res, err := s.conn.Exec(
		"UPDATE tasks SET completed = 1, completed_at = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		now, now, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("completing task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("task %d not found", id)
	}
	return s.getTask(userID, id)
}

// CountOpenTasks returns how many tasks the user has pending.
func (s *Store) CountOpenTasks(userID int64) (int, error) {
	var n int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM tasks WHERE user_id = ? AND completed = 0", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting open tasks: %w", err)
	}
	return n, nil
}

// RecentTasks returns the user's most recently created tasks.
func (s *Store) RecentTasks(userID int64, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.scanTasks(
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
}

func (s *Store) getTask(userID, id int64) (*Task, error) {
	tasks, err := s.scanTasks("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task %d not found", id)
	}
	return &tasks[0], nil
}

func (s *Store) scanTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		var t Task
		var completed int
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Category,
			&t.DueDate, &completed, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Completed = completed != 0
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
