// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/messmonitor/internal/models"
)

// Collection names a document collection.
type Collection string

const (
	Users         Collection = "users"
	Funds         Collection = "mess_funds"
	Announcements Collection = "announcements"
	Feedbacks     Collection = "feedbacks"
	Notifications Collection = "notifications"
	Config        Collection = "config"
	Credentials   Collection = "credentials"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrStatusRegression is returned when an update would move a feedback
// status backward.
var ErrStatusRegression = errors.New("feedback status cannot move backward")

// Error is a store failure on one collection.
type Error struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserStore reads and writes user profiles.
type UserStore interface {
	// GetUser returns ErrNotFound if no profile exists for uid.
	GetUser(ctx context.Context, uid string) (*models.User, error)

	// CreateUser stores a profile keyed by user.UID.
	CreateUser(ctx context.Context, user *models.User) error

	// UpdateUser applies a partial update to an existing profile.
	UpdateUser(ctx context.Context, uid string, upd models.UserUpdate) error

	// ListMembers returns every user with the member role.
	ListMembers(ctx context.Context) ([]models.User, error)
}

// FundStore manages the mess_funds collection.
type FundStore interface {
	// AddTransaction assigns ID and Timestamp and stores the transaction.
	AddTransaction(ctx context.Context, t *models.FundTransaction) error
	GetTransaction(ctx context.Context, id string) (*models.FundTransaction, error)
	UpdateTransaction(ctx context.Context, id string, upd models.TransactionUpdate) error
	DeleteTransaction(ctx context.Context, id string) error

	// ListTransactions returns all transactions, newest first.
	ListTransactions(ctx context.Context) ([]models.FundTransaction, error)
}

// AnnouncementStore manages the announcements collection.
type AnnouncementStore interface {
	AddAnnouncement(ctx context.Context, a *models.Announcement) error
	GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	// ListAnnouncements returns all announcements, newest first.
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
}

// NotificationStore manages the notifications collection.
type NotificationStore interface {
	AddNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)

	// MarkNotificationRead sets IsRead. There is no way back to unread.
	MarkNotificationRead(ctx context.Context, id string) error

	// ListNotificationsByMember returns the member's notifications, newest first.
	ListNotificationsByMember(ctx context.Context, borderUID string) ([]models.Notification, error)
}

// FeedbackStore manages the feedbacks collection.
type FeedbackStore interface {
	AddFeedback(ctx context.Context, f *models.Feedback) error
	GetFeedback(ctx context.Context, id string) (*models.Feedback, error)
	// UpdateFeedback applies upd and returns the stored result. A backward
	// status move fails with ErrStatusRegression and changes nothing.
	UpdateFeedback(ctx context.Context, id string, upd models.FeedbackUpdate) (*models.Feedback, error)

	// ListFeedbacks returns all feedback, newest first.
	ListFeedbacks(ctx context.Context) ([]models.Feedback, error)
}

// ConfigStore holds the config collection.
type ConfigStore interface {
	// GetSecrets returns ErrNotFound if config/secrets was never written.
	GetSecrets(ctx context.Context) (*models.Secrets, error)
	SetSecrets(ctx context.Context, s *models.Secrets) error
}

// CredentialStore holds auth provider accounts.
type CredentialStore interface {
	CreateCredential(ctx context.Context, c *models.Credential) error

	// GetCredentialByEmail returns ErrNotFound for an unknown email.
	GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
	DeleteCredential(ctx context.Context, uid string) error
}

// Watcher delivers a signal whenever a collection changes.
type Watcher interface {
	// Watch returns a channel that receives after each mutation of c, and a
	// function that stops the watch and closes the channel. Signals are
	// coalesced: several quick mutations may produce one signal.
	Watch(c Collection) (<-chan struct{}, func())
}

// Store defines the full document store.
// This abstraction allows swapping storage backends (SQLite, a hosted
// document database, etc.) without changing the service layer.
type Store interface {
	UserStore
	FundStore
	AnnouncementStore
	NotificationStore
	FeedbackStore
	ConfigStore
	CredentialStore
	Watcher

	// Close releases any resources held by the store.
	Close() error
}
