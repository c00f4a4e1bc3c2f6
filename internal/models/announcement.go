package models

// Priority ranks an announcement.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Announcement is an admin broadcast to all members.
type Announcement struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Priority      Priority `json:"priority"`
	CreatedBy     string   `json:"createdBy"`
	CreatedByName string   `json:"createdByName"`
	CreatedAt     string   `json:"createdAt"`
	Timestamp     int64    `json:"timestamp"`
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyAnnouncement NotificationType = "announcement"
	NotifyReminder     NotificationType = "reminder"
	NotifyAlert        NotificationType = "alert"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyAnnouncement, NotifyReminder, NotifyAlert:
		return true
	}
	return false
}

// AnnouncementNotificationTitle is the title of every notification produced
// by an announcement fan-out.
const AnnouncementNotificationTitle = "New Announcement"

// Notification is a per-member message. IsRead only ever moves to true.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	CreatedAt string           `json:"createdAt"`
	CreatedBy string           `json:"createdBy"`
	IsRead    bool             `json:"isRead"`

	// BorderUID is the owning member.
	BorderUID string `json:"borderUid"`

	Timestamp int64 `json:"timestamp"`
}
