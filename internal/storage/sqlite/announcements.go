package sqlite

import (
	"context"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

const announcementColumns = `id, title, content, priority, created_by, created_by_name, created_at, timestamp`

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	a := &models.Announcement{}
	var priority string
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &priority, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt, &a.Timestamp); err != nil {
		return nil, err
	}
	a.Priority = models.Priority(priority)
	return a, nil
}

// AddAnnouncement persists a new announcement, assigning its ID and timestamp.
func (s *SQLiteStore) AddAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = newID()
	}
	a.Timestamp = s.stamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (`+announcementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, string(a.Priority), a.CreatedBy, a.CreatedByName, a.CreatedAt, a.Timestamp,
	)
	if err != nil {
		return wrap("add", storage.Announcements, err)
	}

	s.feed.Publish(storage.Announcements)
	return nil
}

// GetAnnouncement retrieves an announcement by ID.
func (s *SQLiteStore) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	a, err := scanAnnouncement(s.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id,
	))
	if err != nil {
		return nil, wrap("get", storage.Announcements, err)
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement. Notifications already fanned
// out for it are kept.
func (s *SQLiteStore) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := execOne(s.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = ?", id)); err != nil {
		return wrap("delete", storage.Announcements, err)
	}

	s.feed.Publish(storage.Announcements)
	return nil
}

// ListAnnouncements retrieves all announcements, newest first.
func (s *SQLiteStore) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements ORDER BY timestamp DESC`,
	)
	if err != nil {
		return nil, wrap("list", storage.Announcements, err)
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, wrap("list", storage.Announcements, err)
		}
		announcements = append(announcements, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", storage.Announcements, err)
	}

	return announcements, nil
}
