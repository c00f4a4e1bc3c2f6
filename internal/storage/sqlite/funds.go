package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

const fundColumns = `id, date, type, amount, from_to, purpose, trx_id, timestamp`

func scanTransaction(row rowScanner) (*models.FundTransaction, error) {
	t := &models.FundTransaction{}
	var typ string
	if err := row.Scan(&t.ID, &t.Date, &typ, &t.Amount, &t.FromTo, &t.Purpose, &t.TrxID, &t.Timestamp); err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(typ)
	return t, nil
}

// AddTransaction persists a new fund transaction, assigning its ID and timestamp.
func (s *SQLiteStore) AddTransaction(ctx context.Context, t *models.FundTransaction) error {
	if t.ID == "" {
		t.ID = newID()
	}
	t.Timestamp = s.stamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mess_funds (`+fundColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date, string(t.Type), t.Amount, t.FromTo, t.Purpose, t.TrxID, t.Timestamp,
	)
	if err != nil {
		return wrap("add", storage.Funds, err)
	}

	s.feed.Publish(storage.Funds)
	return nil
}

// GetTransaction retrieves a fund transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.FundTransaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+fundColumns+` FROM mess_funds WHERE id = ?`, id,
	))
	if err != nil {
		return nil, wrap("get", storage.Funds, err)
	}
	return t, nil
}

// UpdateTransaction applies a partial update. The timestamp never changes.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id string, upd models.TransactionUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("update", storage.Funds, err)
	}
	defer tx.Rollback()

	t, err := scanTransaction(tx.QueryRowContext(ctx,
		`SELECT `+fundColumns+` FROM mess_funds WHERE id = ?`, id,
	))
	if err != nil {
		return wrap("update", storage.Funds, err)
	}

	upd.Apply(t)

	_, err = tx.ExecContext(ctx,
		`UPDATE mess_funds SET date = ?, type = ?, amount = ?, from_to = ?, purpose = ?, trx_id = ?
		 WHERE id = ?`,
		t.Date, string(t.Type), t.Amount, t.FromTo, t.Purpose, t.TrxID, id,
	)
	if err != nil {
		return wrap("update", storage.Funds, err)
	}

	if err := tx.Commit(); err != nil {
		return wrap("update", storage.Funds, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.feed.Publish(storage.Funds)
	return nil
}

// DeleteTransaction removes a fund transaction by ID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if err := execOne(s.db.ExecContext(ctx, "DELETE FROM mess_funds WHERE id = ?", id)); err != nil {
		return wrap("delete", storage.Funds, err)
	}

	s.feed.Publish(storage.Funds)
	return nil
}

// ListTransactions retrieves all fund transactions, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.FundTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fundColumns+` FROM mess_funds ORDER BY timestamp DESC`,
	)
	if err != nil {
		return nil, wrap("list", storage.Funds, err)
	}
	defer rows.Close()

	transactions := []models.FundTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("list", storage.Funds, err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", storage.Funds, err)
	}

	return transactions, nil
}
