// Package calculator derives dashboard figures from collection snapshots.
package calculator

import (
	"time"

	"github.com/mmynk/messmonitor/internal/models"
)

// DefaultDuesPerMember is the per-member dues estimate used when no policy
// is configured.
const DefaultDuesPerMember = 200

// DuesPolicy estimates outstanding dues.
type DuesPolicy struct {
	// PerMember is the flat amount assumed owed by every member.
	PerMember float64
}

// Outstanding returns the estimated dues for the given member count.
func (p DuesPolicy) Outstanding(members int) float64 {
	return p.PerMember * float64(members)
}

// Input is the set of snapshots statistics are computed from.
type Input struct {
	Members       []models.User
	Transactions  []models.FundTransaction
	Announcements []models.Announcement
	Feedbacks     []models.Feedback
}

// ComputeStatistics builds the dashboard summary from complete snapshots.
// It is pure: the same input and now always yield the same result, and it is
// meant to be re-run in full on every change rather than updated in place.
//
// Algorithm:
//   - income and expense are summed by transaction type; balance is their difference
//   - fines are summed over every member regardless of status
//   - a member joined this month when its join date falls in now's month and year
//   - dues come from the policy, not from payment records
func ComputeStatistics(in Input, now time.Time, policy DuesPolicy) models.Statistics {
	var stats models.Statistics

	for _, t := range in.Transactions {
		switch t.Type {
		case models.Income:
			stats.TotalIncome += t.Amount
		case models.Expense:
			stats.TotalExpense += t.Amount
		}
	}
	stats.CurrentBalance = stats.TotalIncome - stats.TotalExpense

	year, month, _ := now.Date()
	for _, u := range in.Members {
		if u.Member == nil {
			continue
		}
		stats.TotalBorders++
		stats.TotalFines += TotalFines(u.Member.Fines)
		if joinedIn(u.Member.JoinDate, year, month, now.Location()) {
			stats.NewBordersThisMonth++
		}
	}
	stats.OutstandingDues = policy.Outstanding(stats.TotalBorders)

	for _, f := range in.Feedbacks {
		if f.Status == models.FeedbackPending {
			stats.PendingFeedbacks++
		}
	}

	// No expiry concept: every loaded announcement is active.
	stats.ActiveAnnouncements = len(in.Announcements)

	// Unread counts only make sense per member; see UnreadCount.
	stats.UnreadNotifications = 0

	return stats
}

// TotalFines sums fine amounts of every status.
func TotalFines(fines []models.Fine) float64 {
	var total float64
	for _, f := range fines {
		total += f.Amount
	}
	return total
}

// PendingFines sums fine amounts still awaiting payment.
func PendingFines(fines []models.Fine) float64 {
	var total float64
	for _, f := range fines {
		if f.Status == models.FinePending {
			total += f.Amount
		}
	}
	return total
}

// UnreadCount returns how many notifications have not been read.
func UnreadCount(notifications []models.Notification) int {
	n := 0
	for _, notif := range notifications {
		if !notif.IsRead {
			n++
		}
	}
	return n
}

func joinedIn(joinDate string, year int, month time.Month, loc *time.Location) bool {
	if joinDate == "" {
		return false
	}
	d, err := time.ParseInLocation(models.DateLayout, joinDate, loc)
	if err != nil {
		return false
	}
	y, m, _ := d.Date()
	return y == year && m == month
}
