package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
)

const MemberServiceName = "MemberService"

const (
	MemberServiceListMembersProcedure      = "/" + Package + "." + MemberServiceName + "/ListMembers"
	MemberServiceGetMemberProcedure        = "/" + Package + "." + MemberServiceName + "/GetMember"
	MemberServiceUpdateMemberProcedure     = "/" + Package + "." + MemberServiceName + "/UpdateMember"
	MemberServiceUpdateOwnProfileProcedure = "/" + Package + "." + MemberServiceName + "/UpdateOwnProfile"
	MemberServiceAddFineProcedure          = "/" + Package + "." + MemberServiceName + "/AddFine"
	MemberServiceSetFineStatusProcedure    = "/" + Package + "." + MemberServiceName + "/SetFineStatus"
)

type ListMembersRequest struct{}

type ListMembersResponse struct {
	Members []models.User `json:"members"`
}

type GetMemberRequest struct {
	UID string `json:"uid"`
}

type GetMemberResponse struct {
	User *models.User `json:"user"`
}

type UpdateMemberRequest struct {
	UID    string            `json:"uid"`
	Update models.UserUpdate `json:"update"`
}

// MemberResponse returns the user after a write.
type MemberResponse struct {
	User *models.User `json:"user"`
}

// UpdateOwnProfileRequest carries the fields a member may edit on their own
// profile. Nil fields are left unchanged.
type UpdateOwnProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
}

type AddFineRequest struct {
	UID    string            `json:"uid"`
	Reason string            `json:"reason"`
	Amount float64           `json:"amount"`
	Date   string            `json:"date,omitempty"`
	Status models.FineStatus `json:"status,omitempty"`
}

type AddFineResponse struct {
	User *models.User `json:"user"`
	Fine models.Fine  `json:"fine"`
}

type SetFineStatusRequest struct {
	UID    string            `json:"uid"`
	FineID string            `json:"fineId"`
	Status models.FineStatus `json:"status"`
}

type MemberServiceHandler interface {
	ListMembers(context.Context, *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error)
	GetMember(context.Context, *connect.Request[GetMemberRequest]) (*connect.Response[GetMemberResponse], error)
	UpdateMember(context.Context, *connect.Request[UpdateMemberRequest]) (*connect.Response[MemberResponse], error)
	UpdateOwnProfile(context.Context, *connect.Request[UpdateOwnProfileRequest]) (*connect.Response[MemberResponse], error)
	AddFine(context.Context, *connect.Request[AddFineRequest]) (*connect.Response[AddFineResponse], error)
	SetFineStatus(context.Context, *connect.Request[SetFineStatusRequest]) (*connect.Response[MemberResponse], error)
}

func NewMemberServiceHandler(svc MemberServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(MemberServiceName, opts)
	unary(s, MemberServiceListMembersProcedure, svc.ListMembers)
	unary(s, MemberServiceGetMemberProcedure, svc.GetMember)
	unary(s, MemberServiceUpdateMemberProcedure, svc.UpdateMember)
	unary(s, MemberServiceUpdateOwnProfileProcedure, svc.UpdateOwnProfile)
	unary(s, MemberServiceAddFineProcedure, svc.AddFine)
	unary(s, MemberServiceSetFineStatusProcedure, svc.SetFineStatus)
	return s.handler()
}

type MemberServiceClient struct {
	listMembers      *connect.Client[ListMembersRequest, ListMembersResponse]
	getMember        *connect.Client[GetMemberRequest, GetMemberResponse]
	updateMember     *connect.Client[UpdateMemberRequest, MemberResponse]
	updateOwnProfile *connect.Client[UpdateOwnProfileRequest, MemberResponse]
	addFine          *connect.Client[AddFineRequest, AddFineResponse]
	setFineStatus    *connect.Client[SetFineStatusRequest, MemberResponse]
}

func NewMemberServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MemberServiceClient {
	return &MemberServiceClient{
		listMembers:      newClient[ListMembersRequest, ListMembersResponse](httpClient, baseURL, MemberServiceListMembersProcedure, opts),
		getMember:        newClient[GetMemberRequest, GetMemberResponse](httpClient, baseURL, MemberServiceGetMemberProcedure, opts),
		updateMember:     newClient[UpdateMemberRequest, MemberResponse](httpClient, baseURL, MemberServiceUpdateMemberProcedure, opts),
		updateOwnProfile: newClient[UpdateOwnProfileRequest, MemberResponse](httpClient, baseURL, MemberServiceUpdateOwnProfileProcedure, opts),
		addFine:          newClient[AddFineRequest, AddFineResponse](httpClient, baseURL, MemberServiceAddFineProcedure, opts),
		setFineStatus:    newClient[SetFineStatusRequest, MemberResponse](httpClient, baseURL, MemberServiceSetFineStatusProcedure, opts),
	}
}

func (c *MemberServiceClient) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *MemberServiceClient) GetMember(ctx context.Context, req *connect.Request[GetMemberRequest]) (*connect.Response[GetMemberResponse], error) {
	return c.getMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) UpdateMember(ctx context.Context, req *connect.Request[UpdateMemberRequest]) (*connect.Response[MemberResponse], error) {
	return c.updateMember.CallUnary(ctx, req)
}

func (c *MemberServiceClient) UpdateOwnProfile(ctx context.Context, req *connect.Request[UpdateOwnProfileRequest]) (*connect.Response[MemberResponse], error) {
	return c.updateOwnProfile.CallUnary(ctx, req)
}

func (c *MemberServiceClient) AddFine(ctx context.Context, req *connect.Request[AddFineRequest]) (*connect.Response[AddFineResponse], error) {
	return c.addFine.CallUnary(ctx, req)
}

func (c *MemberServiceClient) SetFineStatus(ctx context.Context, req *connect.Request[SetFineStatusRequest]) (*connect.Response[MemberResponse], error) {
	return c.setFineStatus.CallUnary(ctx, req)
}
