package store

import (
	"fmt"
	"time"
)

// Transaction kinds.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

type Transaction struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	OccurredAt  string  `json:"occurred_at"`
	CreatedAt   string  `json:"created_at"`
}

const transactionColumns = `id, user_id, description, amount, kind, category, occurred_at, created_at`

// CreateTransaction records an income or expense entry for the user.
func (s *Store) CreateTransaction(userID int64, description string, amount float64, kind, category, occurredAt string) (*Transaction, error) {
	if kind != TransactionIncome && kind != TransactionExpense {
		return nil, fmt.Errorf("invalid transaction kind %q", kind)
	}
	if category == "" {
		category = "Geral"
	}
	if occurredAt == "" {
		occurredAt = time.Now().UTC().Format(time.DateTime)
	}
	res, err := s.conn.Exec(
		"INSERT INTO transactions (user_id, description, amount, kind, category, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, description, amount, kind, category, occurredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	id, _ := res.LastInsertId()
	txs, err := s.scanTransactions("SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("transaction %d not found", id)
	}
	return &txs[0], nil
}

// ListTransactions returns the user's transactions, newest first, optionally
// filtered by kind.
func (s *Store) ListTransactions(userID int64, kind string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	query := "SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?"
	args := []any{userID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	return s.scanTransactions(query, args...)
}

func (s *Store) scanTransactions(query string, args ...any) ([]Transaction, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()
	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.OccurredAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
