package models

// FeedbackCategory groups feedback by topic.
type FeedbackCategory string

const (
	CategoryFood       FeedbackCategory = "food"
	CategoryService    FeedbackCategory = "service"
	CategoryManagement FeedbackCategory = "management"
	CategoryFacilities FeedbackCategory = "facilities"
	CategoryOther      FeedbackCategory = "other"
)

// Valid reports whether c is a known category.
func (c FeedbackCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryService, CategoryManagement, CategoryFacilities, CategoryOther:
		return true
	}
	return false
}

// FeedbackStatus tracks admin handling of a feedback.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackReviewed FeedbackStatus = "reviewed"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackPending, FeedbackReviewed, FeedbackResolved:
		return true
	}
	return false
}

func (s FeedbackStatus) rank() int {
	switch s {
	case FeedbackReviewed:
		return 1
	case FeedbackResolved:
		return 2
	}
	return 0
}

// CanMoveTo reports whether a feedback in status s may be set to next.
// Status only moves forward: pending -> reviewed -> resolved, skipping allowed.
func (s FeedbackStatus) CanMoveTo(next FeedbackStatus) bool {
	return next.Valid() && next.rank() >= s.rank()
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a member's rated comment on the mess.
type Feedback struct {
	ID            string           `json:"id"`
	BorderUID     string           `json:"borderUid"`
	BorderName    string           `json:"borderName"`
	Subject       string           `json:"subject"`
	Message       string           `json:"message"`
	Rating        int              `json:"rating"`
	Category      FeedbackCategory `json:"category"`
	Status        FeedbackStatus   `json:"status"`
	CreatedAt     string           `json:"createdAt"`
	AdminResponse string           `json:"adminResponse,omitempty"`
	RespondedAt   string           `json:"respondedAt,omitempty"`
	Timestamp     int64            `json:"timestamp"`
}

// FeedbackUpdate is the admin-side partial update of a feedback.
type FeedbackUpdate struct {
	Status        *FeedbackStatus `json:"status,omitempty"`
	AdminResponse *string         `json:"adminResponse,omitempty"`
	RespondedAt   *string         `json:"respondedAt,omitempty"`
}

// Apply copies the set fields of upd onto f.
func (upd FeedbackUpdate) Apply(f *Feedback) {
	if upd.Status != nil {
		f.Status = *upd.Status
	}
	if upd.AdminResponse != nil {
		f.AdminResponse = *upd.AdminResponse
	}
	if upd.RespondedAt != nil {
		f.RespondedAt = *upd.RespondedAt
	}
}
