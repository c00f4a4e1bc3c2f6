package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/pkg/api"
)

func TestFeedback_SubmitListRespond(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	karim, karimToken := env.register(t, "karim", models.RoleMember)
	_, rahimToken := env.register(t, "rahim", models.RoleMember)

	submitted, err := env.as(karimToken).feedback.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{
		Subject: "Dinner",
		Message: "Too much salt",
		Rating:  2,
	}))
	if err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}
	f := submitted.Msg.Feedback
	if f.BorderUID != karim.UID || f.BorderName != "karim" {
		t.Errorf("unexpected author: %+v", f)
	}
	if f.Category != models.CategoryOther || f.Status != models.FeedbackPending {
		t.Errorf("unexpected defaults: category %s status %s", f.Category, f.Status)
	}

	if _, err := env.as(rahimToken).feedback.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{
		Subject:  "Cleaning",
		Message:  "Dining hall was clean",
		Rating:   5,
		Category: models.CategoryFacilities,
	})); err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}

	all, err := env.as(adminToken).feedback.ListFeedbacks(ctx, connect.NewRequest(&api.ListFeedbacksRequest{}))
	if err != nil {
		t.Fatalf("ListFeedbacks as admin failed: %v", err)
	}
	if len(all.Msg.Feedbacks) != 2 {
		t.Errorf("admin should see all feedback, got %d", len(all.Msg.Feedbacks))
	}

	own, err := env.as(karimToken).feedback.ListFeedbacks(ctx, connect.NewRequest(&api.ListFeedbacksRequest{}))
	if err != nil {
		t.Fatalf("ListFeedbacks as member failed: %v", err)
	}
	if len(own.Msg.Feedbacks) != 1 || own.Msg.Feedbacks[0].ID != f.ID {
		t.Errorf("member should see only own feedback, got %+v", own.Msg.Feedbacks)
	}

	admin := env.as(adminToken).feedback
	responded, err := admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{
		ID:            f.ID,
		Status:        models.FeedbackReviewed,
		AdminResponse: "We will tell the cook.",
	}))
	if err != nil {
		t.Fatalf("RespondFeedback failed: %v", err)
	}
	if responded.Msg.Feedback.Status != models.FeedbackReviewed || responded.Msg.Feedback.RespondedAt == "" {
		t.Errorf("unexpected feedback after response: %+v", responded.Msg.Feedback)
	}

	_, err = admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: f.ID, Status: models.FeedbackPending}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	resolved, err := admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: f.ID, Status: models.FeedbackResolved}))
	if err != nil {
		t.Fatalf("RespondFeedback resolve failed: %v", err)
	}
	if resolved.Msg.Feedback.AdminResponse != "We will tell the cook." {
		t.Errorf("response should be kept, got %q", resolved.Msg.Feedback.AdminResponse)
	}

	stored, err := env.store.GetFeedback(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFeedback failed: %v", err)
	}
	if stored.Status != models.FeedbackResolved {
		t.Errorf("expected resolved in store, got %s", stored.Status)
	}

	_, err = env.as(karimToken).feedback.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: f.ID, Status: models.FeedbackResolved}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestFeedback_ResponseWithoutStatusResolves(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	_, token := env.register(t, "karim", models.RoleMember)

	submitted, err := env.as(token).feedback.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{
		Subject: "Breakfast",
		Message: "Served late",
		Rating:  3,
	}))
	if err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}

	admin := env.as(adminToken).feedback
	resp, err := admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{
		ID:            submitted.Msg.Feedback.ID,
		AdminResponse: "Cook starts earlier from Monday.",
	}))
	if err != nil {
		t.Fatalf("RespondFeedback failed: %v", err)
	}
	if resp.Msg.Feedback.Status != models.FeedbackResolved {
		t.Errorf("expected resolved, got %s", resp.Msg.Feedback.Status)
	}
	if resp.Msg.Feedback.RespondedAt == "" || resp.Msg.Feedback.Subject != "Breakfast" {
		t.Errorf("unexpected feedback: %+v", resp.Msg.Feedback)
	}

	_, err = admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: submitted.Msg.Feedback.ID, Status: models.FeedbackReviewed}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = admin.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: submitted.Msg.Feedback.ID, AdminResponse: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestFeedback_Validation(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, adminToken := env.register(t, "manager", models.RoleAdmin)
	_, token := env.register(t, "karim", models.RoleMember)

	tests := []struct {
		name string
		req  *api.SubmitFeedbackRequest
	}{
		{name: "rating too high", req: &api.SubmitFeedbackRequest{Subject: "s", Message: "m", Rating: 6}},
		{name: "rating too low", req: &api.SubmitFeedbackRequest{Subject: "s", Message: "m", Rating: 0}},
		{name: "missing subject", req: &api.SubmitFeedbackRequest{Message: "m", Rating: 3}},
		{name: "missing message", req: &api.SubmitFeedbackRequest{Subject: "s", Rating: 3}},
		{name: "unknown category", req: &api.SubmitFeedbackRequest{Subject: "s", Message: "m", Rating: 3, Category: "noise"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.as(token).feedback.SubmitFeedback(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err := env.as(adminToken).feedback.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{Subject: "s", Message: "m", Rating: 3}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.as(adminToken).feedback.RespondFeedback(ctx, connect.NewRequest(&api.RespondFeedbackRequest{ID: "missing", Status: models.FeedbackResolved}))
	assertCode(t, err, connect.CodeNotFound)
}
