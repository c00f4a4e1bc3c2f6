// Package session tracks who is signed in and which view they get.
package session

import (
	"errors"
	"sync"

	"github.com/mmynk/messmonitor/internal/models"
)

// State is a session state.
type State int

const (
	Unauthenticated State = iota
	AuthenticatedAdmin
	AuthenticatedMember
)

func (s State) String() string {
	switch s {
	case AuthenticatedAdmin:
		return "authenticated_admin"
	case AuthenticatedMember:
		return "authenticated_member"
	default:
		return "unauthenticated"
	}
}

// StateFor maps a stored role to its authenticated state. Unknown roles stay
// unauthenticated.
func StateFor(role models.Role) State {
	switch role {
	case models.RoleAdmin:
		return AuthenticatedAdmin
	case models.RoleMember:
		return AuthenticatedMember
	default:
		return Unauthenticated
	}
}

// View is the screen a session is routed to.
type View string

const (
	ViewLogin          View = "login"
	ViewAdminDashboard View = "admin_dashboard"
	ViewMemberProfile  View = "member_profile"
)

// Route picks the view for a state. It is a routing decision only; access
// control is enforced by the RPC layer.
func Route(s State) View {
	switch s {
	case AuthenticatedAdmin:
		return ViewAdminDashboard
	case AuthenticatedMember:
		return ViewMemberProfile
	default:
		return ViewLogin
	}
}

// ErrNoUser is returned when signing in without a user.
var ErrNoUser = errors.New("session: sign in requires a user")

// Gate is the session state machine. It is safe for concurrent use.
type Gate struct {
	mu    sync.RWMutex
	state State
	user  *models.User
}

// NewGate returns an unauthenticated gate.
func NewGate() *Gate {
	return &Gate{}
}

// SignIn moves to the state matching the user's stored role. Signing in
// again replaces the current user.
func (g *Gate) SignIn(user *models.User) (State, error) {
	if user == nil || user.UID == "" {
		return Unauthenticated, ErrNoUser
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
	g.state = StateFor(user.Role())
	return g.state, nil
}

// SignOut returns to Unauthenticated.
func (g *Gate) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = nil
	g.state = Unauthenticated
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// User returns the signed-in user, or nil.
func (g *Gate) User() *models.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// View routes the current state.
func (g *Gate) View() View {
	return Route(g.State())
}
