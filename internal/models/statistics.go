package models

// Statistics is the admin dashboard summary. It is always derived from the
// current collections and never stored.
type Statistics struct {
	TotalBorders   int     `json:"totalBorders"`
	CurrentBalance float64 `json:"currentBalance"`

	// OutstandingDues is an estimate from a per-member policy, not from
	// payment records.
	OutstandingDues float64 `json:"outstandingDues"`

	TotalFines          float64 `json:"totalFines"`
	TotalIncome         float64 `json:"totalIncome"`
	TotalExpense        float64 `json:"totalExpense"`
	NewBordersThisMonth int     `json:"newBordersThisMonth"`
	PendingFeedbacks    int     `json:"pendingFeedbacks"`
	ActiveAnnouncements int     `json:"activeAnnouncements"`

	// UnreadNotifications is always zero here. Unread counts are per member.
	UnreadNotifications int `json:"unreadNotifications"`
}
