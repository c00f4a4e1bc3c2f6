package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the format of every calendar date stored on a model.
const DateLayout = "2006-01-02"

// Today returns t formatted as a calendar date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// Role is the kind of account a user holds.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents a registered mess user, either an admin or a member.
type User struct {
	// UID is the auth provider's subject identifier and the document key.
	UID string `json:"uid"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the login email address.
	Email string `json:"email"`

	// Phone is a contact number; may be empty.
	Phone string `json:"phone"`

	// Member holds the member-only fields. It is nil for admins.
	Member *MemberProfile `json:"member,omitempty"`
}

// MemberProfile carries the fields only a member ("border") has.
type MemberProfile struct {
	Department string `json:"department"`
	Duty       string `json:"duty"`
	OwesTo     string `json:"owesTo"`
	GetsFrom   string `json:"getsFrom"`

	// MonthlyContribution is the agreed monthly payment; never negative.
	MonthlyContribution float64 `json:"monthlyContribution"`

	// LastPayment is the date of the last recorded payment, empty if none.
	LastPayment string `json:"lastPayment,omitempty"`

	// JoinDate is the registration date. Empty means unknown.
	JoinDate string `json:"joinDate,omitempty"`

	// Fines are kept in the order they were issued.
	Fines []Fine `json:"fines"`
}

// Member profile defaults applied at registration.
const (
	DefaultDepartment = "Not specified"
	DefaultDuty       = "Not assigned"
)

// NewAdmin builds an admin user.
func NewAdmin(uid, name, email, phone string) *User {
	return &User{UID: uid, Name: name, Email: email, Phone: phone}
}

// NewMember builds a member user joining on joinDate with default profile fields.
func NewMember(uid, name, email, phone, joinDate string) *User {
	return &User{
		UID:   uid,
		Name:  name,
		Email: email,
		Phone: phone,
		Member: &MemberProfile{
			Department: DefaultDepartment,
			Duty:       DefaultDuty,
			JoinDate:   joinDate,
			Fines:      []Fine{},
		},
	}
}

// Role reports the user's role, derived from whether a member profile exists.
func (u *User) Role() Role {
	if u.Member != nil {
		return RoleMember
	}
	return RoleAdmin
}

// MarshalJSON adds the derived role to the encoded user.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		Role Role `json:"role"`
	}{plain(u), u.Role()})
}

// IsAdmin reports whether u is an admin.
func (u *User) IsAdmin() bool {
	return u.Member == nil
}

// FineStatus is the payment state of a fine.
type FineStatus string

const (
	FinePending FineStatus = "pending"
	FinePaid    FineStatus = "paid"
)

// Valid reports whether s is a known fine status.
func (s FineStatus) Valid() bool {
	return s == FinePending || s == FinePaid
}

// Fine is a penalty issued to one member.
type Fine struct {
	ID     string     `json:"id"`
	Date   string     `json:"date"`
	Reason string     `json:"reason"`
	Amount float64    `json:"amount"`
	Status FineStatus `json:"status"`
}

// UserUpdate is a partial update of a user. Nil fields are left unchanged.
// Member-only fields are ignored for admins.
type UserUpdate struct {
	Name                *string  `json:"name,omitempty"`
	Phone               *string  `json:"phone,omitempty"`
	Department          *string  `json:"department,omitempty"`
	Duty                *string  `json:"duty,omitempty"`
	OwesTo              *string  `json:"owesTo,omitempty"`
	GetsFrom            *string  `json:"getsFrom,omitempty"`
	MonthlyContribution *float64 `json:"monthlyContribution,omitempty"`
	LastPayment         *string  `json:"lastPayment,omitempty"`
	Fines               *[]Fine  `json:"fines,omitempty"`
}

// Apply copies the set fields of upd onto u.
func (upd UserUpdate) Apply(u *User) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	m := u.Member
	if m == nil {
		return
	}
	if upd.Department != nil {
		m.Department = *upd.Department
	}
	if upd.Duty != nil {
		m.Duty = *upd.Duty
	}
	if upd.OwesTo != nil {
		m.OwesTo = *upd.OwesTo
	}
	if upd.GetsFrom != nil {
		m.GetsFrom = *upd.GetsFrom
	}
	if upd.MonthlyContribution != nil {
		m.MonthlyContribution = *upd.MonthlyContribution
	}
	if upd.LastPayment != nil {
		m.LastPayment = *upd.LastPayment
	}
	if upd.Fines != nil {
		m.Fines = append([]Fine(nil), (*upd.Fines)...)
	}
}

// Credential is an email/password account held by the auth provider.
// It is stored apart from the user profile.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

// Secrets is the config/secrets document.
type Secrets struct {
	AdminKey string `json:"adminKey"`
}
