package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/messmonitor/internal/auth"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage/sqlite"
	"github.com/mmynk/messmonitor/pkg/api"
)

func TestCreateAnnouncement_FansOutToEveryMember(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	admin, adminToken := env.register(t, "manager", models.RoleAdmin)
	var memberTokens []string
	for _, name := range []string{"karim", "rahim", "salma"} {
		_, token := env.register(t, name, models.RoleMember)
		memberTokens = append(memberTokens, token)
	}

	resp, err := env.as(adminToken).announcements.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{
		Title:   "Water supply off",
		Content: "No water from 10am to 2pm on Friday.",
	}))
	if err != nil {
		t.Fatalf("CreateAnnouncement failed: %v", err)
	}
	a := resp.Msg.Announcement
	if a.Priority != models.PriorityMedium {
		t.Errorf("expected default priority medium, got %s", a.Priority)
	}
	if a.CreatedBy != admin.UID || a.CreatedByName != "manager" {
		t.Errorf("unexpected author fields: %+v", a)
	}
	if resp.Msg.Notified != 3 || len(resp.Msg.FailedRecipients) != 0 {
		t.Errorf("expected 3 notified and none failed, got %d / %v", resp.Msg.Notified, resp.Msg.FailedRecipients)
	}

	for _, token := range memberTokens {
		list, err := env.as(token).notifications.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if len(list.Msg.Notifications) != 1 {
			t.Fatalf("expected exactly 1 notification, got %d", len(list.Msg.Notifications))
		}
		n := list.Msg.Notifications[0]
		if n.Title != models.AnnouncementNotificationTitle || n.Message != "Water supply off" || n.Type != models.NotifyAnnouncement {
			t.Errorf("unexpected notification: %+v", n)
		}
		if n.IsRead || list.Msg.UnreadCount != 1 {
			t.Errorf("expected unread notification, got %+v (unread %d)", n, list.Msg.UnreadCount)
		}
	}

	adminList, err := env.as(adminToken).notifications.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications for admin failed: %v", err)
	}
	if len(adminList.Msg.Notifications) != 0 {
		t.Errorf("admins are not recipients, got %d", len(adminList.Msg.Notifications))
	}

	if got := testutil.ToFloat64(env.metrics.NotificationsCreated.WithLabelValues("ok")); got != 3 {
		t.Errorf("expected 3 notifications counted, got %v", got)
	}
}

func TestCreateAnnouncement_NoMembers(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	resp, err := env.as(adminToken).announcements.CreateAnnouncement(context.Background(), connect.NewRequest(&api.CreateAnnouncementRequest{
		Title:    "Welcome",
		Content:  "First notice",
		Priority: models.PriorityHigh,
	}))
	if err != nil {
		t.Fatalf("CreateAnnouncement failed: %v", err)
	}
	if resp.Msg.Notified != 0 {
		t.Errorf("expected no notifications, got %d", resp.Msg.Notified)
	}
}

func TestAnnouncements_ValidationAndDelete(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	_, memberToken := env.register(t, "karim", models.RoleMember)
	admin := env.as(adminToken).announcements

	_, err := admin.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{Title: "No content"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = admin.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{Title: "T", Content: "C", Priority: "urgent"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.as(memberToken).announcements.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{Title: "T", Content: "C"}))
	assertCode(t, err, connect.CodePermissionDenied)

	created, err := admin.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{Title: "Menu", Content: "Biryani on Friday"}))
	if err != nil {
		t.Fatalf("CreateAnnouncement failed: %v", err)
	}

	list, err := env.as(memberToken).announcements.ListAnnouncements(ctx, connect.NewRequest(&api.ListAnnouncementsRequest{}))
	if err != nil {
		t.Fatalf("ListAnnouncements failed: %v", err)
	}
	if len(list.Msg.Announcements) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(list.Msg.Announcements))
	}

	if _, err := admin.DeleteAnnouncement(ctx, connect.NewRequest(&api.DeleteAnnouncementRequest{ID: created.Msg.Announcement.ID})); err != nil {
		t.Fatalf("DeleteAnnouncement failed: %v", err)
	}

	notifications, err := env.as(memberToken).notifications.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(notifications.Msg.Notifications) != 1 {
		t.Errorf("notifications outlive their announcement, got %d", len(notifications.Msg.Notifications))
	}
}

func TestNotifications_MarkRead(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	_, karimToken := env.register(t, "karim", models.RoleMember)
	_, rahimToken := env.register(t, "rahim", models.RoleMember)

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := env.as(adminToken).announcements.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{Title: title, Content: title})); err != nil {
			t.Fatalf("CreateAnnouncement failed: %v", err)
		}
	}

	karim := env.as(karimToken).notifications
	list, err := karim.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if list.Msg.UnreadCount != 3 {
		t.Fatalf("expected 3 unread, got %d", list.Msg.UnreadCount)
	}
	first := list.Msg.Notifications[0]

	_, err = env.as(rahimToken).notifications.MarkRead(ctx, connect.NewRequest(&api.MarkReadRequest{ID: first.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := karim.MarkRead(ctx, connect.NewRequest(&api.MarkReadRequest{ID: first.ID})); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if _, err := karim.MarkRead(ctx, connect.NewRequest(&api.MarkReadRequest{ID: first.ID})); err != nil {
		t.Fatalf("MarkRead twice failed: %v", err)
	}

	all, err := karim.MarkAllRead(ctx, connect.NewRequest(&api.MarkAllReadRequest{}))
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if all.Msg.Updated != 2 {
		t.Errorf("expected 2 updated, got %d", all.Msg.Updated)
	}

	list, err = karim.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if list.Msg.UnreadCount != 0 {
		t.Errorf("expected 0 unread, got %d", list.Msg.UnreadCount)
	}

	rahim, err := env.as(rahimToken).notifications.ListNotifications(ctx, connect.NewRequest(&api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if rahim.Msg.UnreadCount != 3 {
		t.Errorf("other members are unaffected, got %d unread", rahim.Msg.UnreadCount)
	}

	_, err = karim.MarkRead(ctx, connect.NewRequest(&api.MarkReadRequest{ID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

// flakyNotifications fails notification writes for one member, or the
// member listing as a whole.
type flakyNotifications struct {
	*sqlite.SQLiteStore
	failFor string
	listErr error
}

func (f *flakyNotifications) AddNotification(ctx context.Context, n *models.Notification) error {
	if n.BorderUID == f.failFor {
		return errors.New("write rejected")
	}
	return f.SQLiteStore.AddNotification(ctx, n)
}

func (f *flakyNotifications) ListMembers(ctx context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.SQLiteStore.ListMembers(ctx)
}

func TestCreateAnnouncement_KeepsAnnouncementWhenNotificationsFail(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	admin, _ := env.register(t, "manager", models.RoleAdmin)
	env.register(t, "karim", models.RoleMember)
	rahim, _ := env.register(t, "rahim", models.RoleMember)
	env.register(t, "salma", models.RoleMember)

	ctx := middleware.WithClaims(context.Background(), &auth.Claims{UserID: admin.UID, Role: models.RoleAdmin})
	m := metrics.New()
	svc := NewAnnouncementService(&flakyNotifications{SQLiteStore: env.store, failFor: rahim.UID}, 2, m, discard)

	resp, err := svc.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{
		Title:   "Generator test",
		Content: "Power cut at 6pm.",
	}))
	if err != nil {
		t.Fatalf("CreateAnnouncement failed: %v", err)
	}
	if resp.Msg.Notified != 2 {
		t.Errorf("expected 2 notified, got %d", resp.Msg.Notified)
	}
	if len(resp.Msg.FailedRecipients) != 1 || resp.Msg.FailedRecipients[0] != rahim.UID {
		t.Errorf("expected failed recipients [%s], got %v", rahim.UID, resp.Msg.FailedRecipients)
	}
	if got := testutil.ToFloat64(m.NotificationsCreated.WithLabelValues("failed")); got != 1 {
		t.Errorf("expected 1 failed notification counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.NotificationsCreated.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok notifications counted, got %v", got)
	}

	announcements, err := env.store.ListAnnouncements(context.Background())
	if err != nil {
		t.Fatalf("ListAnnouncements failed: %v", err)
	}
	if len(announcements) != 1 || announcements[0].ID != resp.Msg.Announcement.ID {
		t.Errorf("announcement should be stored, got %+v", announcements)
	}

	missed, err := env.store.ListNotificationsByMember(context.Background(), rahim.UID)
	if err != nil {
		t.Fatalf("ListNotificationsByMember failed: %v", err)
	}
	if len(missed) != 0 {
		t.Errorf("expected no notification for %s, got %d", rahim.UID, len(missed))
	}
}

func TestCreateAnnouncement_SucceedsWhenMembersCannotBeListed(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	admin, _ := env.register(t, "manager", models.RoleAdmin)
	env.register(t, "karim", models.RoleMember)

	ctx := middleware.WithClaims(context.Background(), &auth.Claims{UserID: admin.UID, Role: models.RoleAdmin})
	store := &flakyNotifications{SQLiteStore: env.store, listErr: errors.New("members unavailable")}
	svc := NewAnnouncementService(store, 2, metrics.New(), discard)

	resp, err := svc.CreateAnnouncement(ctx, connect.NewRequest(&api.CreateAnnouncementRequest{
		Title:   "Menu change",
		Content: "Fish on Thursday.",
	}))
	if err != nil {
		t.Fatalf("CreateAnnouncement should not fail, got %v", err)
	}
	if resp.Msg.Notified != 0 || len(resp.Msg.FailedRecipients) != 0 {
		t.Errorf("expected nothing notified, got %d / %v", resp.Msg.Notified, resp.Msg.FailedRecipients)
	}

	announcements, err := env.store.ListAnnouncements(context.Background())
	if err != nil {
		t.Fatalf("ListAnnouncements failed: %v", err)
	}
	if len(announcements) != 1 {
		t.Errorf("expected the announcement to be stored, got %d", len(announcements))
	}
}
