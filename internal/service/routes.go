package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/pkg/api"
)

// Services groups every RPC service the server exposes.
type Services struct {
	Auth          *AuthService
	Members       *MemberService
	Funds         *FundService
	Announcements *AnnouncementService
	Notifications *NotificationService
	Feedback      *FeedbackService
	Dashboard     *DashboardService
}

// Mount registers every service handler on mux.
func (s Services) Mount(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(api.NewAuthServiceHandler(s.Auth, opts...))
	mux.Handle(api.NewMemberServiceHandler(s.Members, opts...))
	mux.Handle(api.NewFundServiceHandler(s.Funds, opts...))
	mux.Handle(api.NewAnnouncementServiceHandler(s.Announcements, opts...))
	mux.Handle(api.NewNotificationServiceHandler(s.Notifications, opts...))
	mux.Handle(api.NewFeedbackServiceHandler(s.Feedback, opts...))
	mux.Handle(api.NewDashboardServiceHandler(s.Dashboard, opts...))
}
