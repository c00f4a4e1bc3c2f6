package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/mmynk/messmonitor/internal/models"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func member(uid, joinDate string, fines ...models.Fine) models.User {
	u := models.NewMember(uid, uid, uid+"@example.com", "", joinDate)
	u.Member.Fines = fines
	return *u
}

func TestComputeStatistics(t *testing.T) {
	tests := []struct {
		name         string
		input        Input
		validateFunc func(t *testing.T, stats models.Statistics)
	}{
		{
			name: "income and expense balance",
			input: Input{
				Members: []models.User{member("a", ""), member("b", ""), member("c", "")},
				Transactions: []models.FundTransaction{
					{Type: models.Income, Amount: 500},
					{Type: models.Expense, Amount: 150},
					{Type: models.Income, Amount: 100},
				},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 600.0, stats.TotalIncome)
				assert.Equal(t, 150.0, stats.TotalExpense)
				assert.Equal(t, 450.0, stats.CurrentBalance)
				assert.Equal(t, 3, stats.TotalBorders)
				assert.Equal(t, 600.0, stats.OutstandingDues)
			},
		},
		{
			name: "fines counted regardless of status",
			input: Input{
				Members: []models.User{
					member("a", "",
						models.Fine{Amount: 50, Status: models.FinePending},
						models.Fine{Amount: 30, Status: models.FinePaid},
					),
				},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 80.0, stats.TotalFines)
			},
		},
		{
			name: "pending feedbacks",
			input: Input{
				Feedbacks: []models.Feedback{
					{Status: models.FeedbackPending},
					{Status: models.FeedbackPending},
					{Status: models.FeedbackResolved},
				},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 2, stats.PendingFeedbacks)
			},
		},
		{
			name: "new borders this month",
			input: Input{
				Members: []models.User{
					member("same-month", "2026-10-01"),
					member("last-month", "2026-09-30"),
					member("last-year", "2025-10-14"),
					member("no-date", ""),
					member("garbage", "yesterday"),
				},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 1, stats.NewBordersThisMonth)
				assert.Equal(t, 5, stats.TotalBorders)
			},
		},
		{
			name: "announcements active and unread always zero",
			input: Input{
				Announcements: []models.Announcement{{ID: "1"}, {ID: "2"}},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 2, stats.ActiveAnnouncements)
				assert.Zero(t, stats.UnreadNotifications)
			},
		},
		{
			name: "admins are not borders",
			input: Input{
				Members: []models.User{*models.NewAdmin("admin", "Admin", "a@example.com", ""), member("m", "2026-10-02")},
			},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, 1, stats.TotalBorders)
				assert.Equal(t, 1, stats.NewBordersThisMonth)
			},
		},
		{
			name:  "empty input",
			input: Input{},
			validateFunc: func(t *testing.T, stats models.Statistics) {
				assert.Equal(t, models.Statistics{}, stats)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(tt.input, fixedNow, DuesPolicy{PerMember: DefaultDuesPerMember})
			tt.validateFunc(t, stats)
		})
	}
}

func TestUnreadCount(t *testing.T) {
	notifs := []models.Notification{{IsRead: true}, {IsRead: false}, {IsRead: false}}
	assert.Equal(t, 2, UnreadCount(notifs))
	assert.Zero(t, UnreadCount(nil))
}

func TestPendingFines(t *testing.T) {
	fines := []models.Fine{
		{Amount: 50, Status: models.FinePending},
		{Amount: 30, Status: models.FinePaid},
	}
	assert.Equal(t, 50.0, PendingFines(fines))
	assert.Equal(t, 80.0, TotalFines(fines))
}

func genTransaction() *rapid.Generator[models.FundTransaction] {
	return rapid.Custom(func(t *rapid.T) models.FundTransaction {
		return models.FundTransaction{
			Type:   rapid.SampledFrom([]models.TransactionType{models.Income, models.Expense}).Draw(t, "type"),
			Amount: float64(rapid.IntRange(1, 100000).Draw(t, "amount")),
		}
	})
}

func genFine() *rapid.Generator[models.Fine] {
	return rapid.Custom(func(t *rapid.T) models.Fine {
		return models.Fine{
			Amount: float64(rapid.IntRange(1, 5000).Draw(t, "amount")),
			Status: rapid.SampledFrom([]models.FineStatus{models.FinePending, models.FinePaid}).Draw(t, "status"),
		}
	})
}

func genJoinDate() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		if rapid.Bool().Draw(t, "absent") {
			return ""
		}
		d := time.Date(
			rapid.IntRange(2024, 2027).Draw(t, "year"),
			time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			rapid.IntRange(1, 28).Draw(t, "day"),
			0, 0, 0, 0, time.UTC,
		)
		return d.Format(models.DateLayout)
	})
}

func TestComputeStatisticsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		txs := rapid.SliceOf(genTransaction()).Draw(t, "transactions")
		n := rapid.IntRange(0, 20).Draw(t, "members")
		members := make([]models.User, n)
		var wantFines float64
		wantNew := 0
		for i := range members {
			join := genJoinDate().Draw(t, "joinDate")
			fines := rapid.SliceOf(genFine()).Draw(t, "fines")
			members[i] = member("m", join, fines...)
			for _, f := range fines {
				wantFines += f.Amount
			}
			if len(join) >= 7 && join[:7] == fixedNow.Format("2006-01") {
				wantNew++
			}
		}

		in := Input{Members: members, Transactions: txs}
		stats := ComputeStatistics(in, fixedNow, DuesPolicy{PerMember: DefaultDuesPerMember})

		var income, expense float64
		for _, tx := range txs {
			if tx.Type == models.Income {
				income += tx.Amount
			} else {
				expense += tx.Amount
			}
		}
		if math.Abs(stats.CurrentBalance-(income-expense)) > 1e-6 {
			t.Fatalf("balance = %v, want %v", stats.CurrentBalance, income-expense)
		}
		if math.Abs(stats.TotalFines-wantFines) > 1e-6 {
			t.Fatalf("total fines = %v, want %v", stats.TotalFines, wantFines)
		}
		if stats.NewBordersThisMonth != wantNew {
			t.Fatalf("new borders = %d, want %d", stats.NewBordersThisMonth, wantNew)
		}

		again := ComputeStatistics(in, fixedNow, DuesPolicy{PerMember: DefaultDuesPerMember})
		if again != stats {
			t.Fatalf("not idempotent: %+v != %+v", again, stats)
		}
	})
}
