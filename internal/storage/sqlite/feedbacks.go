package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

const feedbackColumns = `id, border_uid, border_name, subject, message, rating, category, status,
	created_at, admin_response, responded_at, timestamp`

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	f := &models.Feedback{}
	var category, status string
	if err := row.Scan(
		&f.ID, &f.BorderUID, &f.BorderName, &f.Subject, &f.Message, &f.Rating,
		&category, &status, &f.CreatedAt, &f.AdminResponse, &f.RespondedAt, &f.Timestamp,
	); err != nil {
		return nil, err
	}
	f.Category = models.FeedbackCategory(category)
	f.Status = models.FeedbackStatus(status)
	return f, nil
}

// AddFeedback persists a new feedback, assigning its ID and timestamp.
func (s *SQLiteStore) AddFeedback(ctx context.Context, f *models.Feedback) error {
	if f.ID == "" {
		f.ID = newID()
	}
	f.Timestamp = s.stamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedbacks (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.BorderUID, f.BorderName, f.Subject, f.Message, f.Rating,
		string(f.Category), string(f.Status), f.CreatedAt, f.AdminResponse, f.RespondedAt, f.Timestamp,
	)
	if err != nil {
		return wrap("add", storage.Feedbacks, err)
	}

	s.feed.Publish(storage.Feedbacks)
	return nil
}

// GetFeedback retrieves a feedback by ID.
func (s *SQLiteStore) GetFeedback(ctx context.Context, id string) (*models.Feedback, error) {
	f, err := scanFeedback(s.db.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks WHERE id = ?`, id,
	))
	if err != nil {
		return nil, wrap("get", storage.Feedbacks, err)
	}
	return f, nil
}

// UpdateFeedback applies an admin-side partial update in one transaction.
// The forward-only status rule is checked against the stored row.
func (s *SQLiteStore) UpdateFeedback(ctx context.Context, id string, upd models.FeedbackUpdate) (*models.Feedback, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("update", storage.Feedbacks, err)
	}
	defer tx.Rollback()

	f, err := scanFeedback(tx.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks WHERE id = ?`, id,
	))
	if err != nil {
		return nil, wrap("update", storage.Feedbacks, err)
	}

	if upd.Status != nil && !f.Status.CanMoveTo(*upd.Status) {
		return nil, wrap("update", storage.Feedbacks,
			fmt.Errorf("%w: %s to %s", storage.ErrStatusRegression, f.Status, *upd.Status))
	}
	upd.Apply(f)

	_, err = tx.ExecContext(ctx,
		`UPDATE feedbacks SET status = ?, admin_response = ?, responded_at = ? WHERE id = ?`,
		string(f.Status), f.AdminResponse, f.RespondedAt, id,
	)
	if err != nil {
		return nil, wrap("update", storage.Feedbacks, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("update", storage.Feedbacks, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.feed.Publish(storage.Feedbacks)
	return f, nil
}

// ListFeedbacks retrieves all feedback, newest first.
func (s *SQLiteStore) ListFeedbacks(ctx context.Context) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedbacks ORDER BY timestamp DESC`,
	)
	if err != nil {
		return nil, wrap("list", storage.Feedbacks, err)
	}
	defer rows.Close()

	feedbacks := []models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, wrap("list", storage.Feedbacks, err)
		}
		feedbacks = append(feedbacks, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", storage.Feedbacks, err)
	}

	return feedbacks, nil
}
