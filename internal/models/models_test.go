package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday(t *testing.T) {
	at := time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-09", Today(at))
}

func TestUserJSONCarriesRole(t *testing.T) {
	member := NewMember("m1", "Karim", "karim@mess.test", "", "2026-01-05")
	data, err := json.Marshal(member)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "member", decoded["role"])
	assert.Equal(t, "m1", decoded["uid"])
	require.Contains(t, decoded, "member")

	data, err = json.Marshal(NewAdmin("a1", "Manager", "manager@mess.test", ""))
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "admin", decoded["role"])
	assert.NotContains(t, decoded, "member")

	var back User
	require.NoError(t, json.Unmarshal(mustJSON(t, member), &back))
	assert.Equal(t, RoleMember, back.Role())
	assert.Equal(t, DefaultDepartment, back.Member.Department)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestUserUpdateApply(t *testing.T) {
	name := "Rahim"
	dept := "CSE"
	contribution := 250.0
	fines := []Fine{{ID: "f1", Amount: 50, Status: FinePending}}

	member := NewMember("m1", "Karim", "karim@mess.test", "", "2026-01-05")
	UserUpdate{Name: &name, Department: &dept, MonthlyContribution: &contribution, Fines: &fines}.Apply(member)
	assert.Equal(t, "Rahim", member.Name)
	assert.Equal(t, "CSE", member.Member.Department)
	assert.Equal(t, 250.0, member.Member.MonthlyContribution)
	assert.Equal(t, DefaultDuty, member.Member.Duty)
	require.Len(t, member.Member.Fines, 1)

	fines[0].Amount = 999
	assert.Equal(t, 50.0, member.Member.Fines[0].Amount, "fines are copied")

	admin := NewAdmin("a1", "Manager", "manager@mess.test", "")
	UserUpdate{Name: &name, Department: &dept}.Apply(admin)
	assert.Equal(t, "Rahim", admin.Name)
	assert.Nil(t, admin.Member)
}

func TestFeedbackStatusCanMoveTo(t *testing.T) {
	tests := []struct {
		from, to FeedbackStatus
		want     bool
	}{
		{FeedbackPending, FeedbackReviewed, true},
		{FeedbackPending, FeedbackResolved, true},
		{FeedbackReviewed, FeedbackReviewed, true},
		{FeedbackReviewed, FeedbackPending, false},
		{FeedbackResolved, FeedbackReviewed, false},
		{FeedbackPending, "archived", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanMoveTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
	assert.True(t, Income.Valid())
	assert.False(t, TransactionType("refund").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, CategoryFood.Valid())
	assert.False(t, FineStatus("waived").Valid())
}
