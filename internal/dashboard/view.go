// Package dashboard keeps a live, reconciled view of the mess for one viewer.
//
// A View subscribes to every collection its dashboard depends on, keeps the
// latest full snapshot of each, and recomputes statistics from all of them
// whenever any one changes. Snapshots from different collections arrive in no
// particular order; the latest per collection wins.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/messmonitor/internal/calculator"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

// Source is everything a view reads from the store.
type Source interface {
	storage.NotificationSource
	ListMembers(ctx context.Context) ([]models.User, error)
	ListTransactions(ctx context.Context) ([]models.FundTransaction, error)
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	ListFeedbacks(ctx context.Context) ([]models.Feedback, error)
}

// Kind selects which dashboard a view composes.
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindMember Kind = "member"
)

// Subscription names.
const (
	subMembers       = "members"
	subTransactions  = "transactions"
	subAnnouncements = "announcements"
	subFeedbacks     = "feedbacks"
	subNotifications = "notifications"
)

// State is one reconciled dashboard. Slices are shared with the view and
// must be treated as read-only.
type State struct {
	Kind    Kind   `json:"kind"`
	Version uint64 `json:"version"`
	Loading bool   `json:"loading"`

	// Statistics is the mess-wide aggregate. Admin view only.
	Statistics *models.Statistics `json:"statistics,omitempty"`

	Members       []models.User            `json:"members,omitempty"`
	Transactions  []models.FundTransaction `json:"transactions,omitempty"`
	Announcements []models.Announcement    `json:"announcements,omitempty"`
	Feedbacks     []models.Feedback        `json:"feedbacks,omitempty"`

	// Member view only.
	Profile       *models.User          `json:"profile,omitempty"`
	Notifications []models.Notification `json:"notifications,omitempty"`
	UnreadCount   int                   `json:"unreadCount"`
	PendingFines  float64               `json:"pendingFines"`
}

// Option configures a View.
type Option func(*View)

// WithClock overrides the wall clock used for month-relative figures.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

// WithDuesPolicy sets the outstanding dues estimate.
func WithDuesPolicy(p calculator.DuesPolicy) Option {
	return func(v *View) { v.policy = p }
}

// WithLogger sets the view's logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *View) { v.logger = l }
}

// WithMetrics records reconciliations and subscription errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *View) { v.metrics = m }
}

// View is a per-viewer aggregate of the latest snapshots. All fields below
// the options are owned by the Run loop.
type View struct {
	src    Source
	kind   Kind
	uid    string
	now    func() time.Time
	policy calculator.DuesPolicy
	logger *slog.Logger

	metrics *metrics.Metrics

	members       []models.User
	transactions  []models.FundTransaction
	announcements []models.Announcement
	feedbacks     []models.Feedback
	notifications []models.Notification

	received map[string]bool
	version  uint64
}

func newView(src Source, kind Kind, uid string, opts []Option) *View {
	v := &View{
		src:      src,
		kind:     kind,
		uid:      uid,
		now:      time.Now,
		policy:   calculator.DuesPolicy{PerMember: calculator.DefaultDuesPerMember},
		logger:   slog.Default(),
		received: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("view", string(kind))
	return v
}

// NewAdminView builds the admin dashboard: members, transactions,
// announcements and feedback.
func NewAdminView(src Source, opts ...Option) *View {
	return newView(src, KindAdmin, "", opts)
}

// NewMemberView builds one member's dashboard: the member list (for the own
// profile), announcements and the member's notifications.
func NewMemberView(src Source, uid string, opts ...Option) *View {
	v := newView(src, KindMember, uid, opts)
	v.logger = v.logger.With("user_id", uid)
	return v
}

// update is one snapshot on its way into the Run loop.
type update struct {
	name  string
	err   error
	apply func(*View)
}

// Run subscribes, then reconciles and publishes a State after every snapshot
// until ctx ends. All subscriptions are released before Run returns.
// publish is called from Run's goroutine only.
func (v *View) Run(ctx context.Context, publish func(State)) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	updates := make(chan update)
	expected := v.subscribe(ctx, &wg, updates)

	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			v.apply(u)
			publish(v.reconcile(len(v.received) < expected))
		}
	}
}

// subscribe starts one forwarding goroutine per collection and returns how
// many there are.
func (v *View) subscribe(ctx context.Context, wg *sync.WaitGroup, out chan<- update) int {
	members, stopMembers := storage.Subscribe(ctx, v.src, storage.Users, v.src.ListMembers)
	forward(ctx, wg, subMembers, members, stopMembers, out, func(v *View, items []models.User) { v.members = items })

	announcements, stopAnnouncements := storage.Subscribe(ctx, v.src, storage.Announcements, v.src.ListAnnouncements)
	forward(ctx, wg, subAnnouncements, announcements, stopAnnouncements, out, func(v *View, items []models.Announcement) { v.announcements = items })

	if v.kind == KindMember {
		notifications, stopNotifications := storage.ListenNotifications(ctx, v.src, v.uid, v.logger)
		forward(ctx, wg, subNotifications, notifications, stopNotifications, out, func(v *View, items []models.Notification) { v.notifications = items })
		return 3
	}

	transactions, stopTransactions := storage.Subscribe(ctx, v.src, storage.Funds, v.src.ListTransactions)
	forward(ctx, wg, subTransactions, transactions, stopTransactions, out, func(v *View, items []models.FundTransaction) { v.transactions = items })

	feedbacks, stopFeedbacks := storage.Subscribe(ctx, v.src, storage.Feedbacks, v.src.ListFeedbacks)
	forward(ctx, wg, subFeedbacks, feedbacks, stopFeedbacks, out, func(v *View, items []models.Feedback) { v.feedbacks = items })
	return 4
}

// forward relays snapshots into the Run loop. A failed snapshot becomes an
// empty list for that collection.
func forward[T any](ctx context.Context, wg *sync.WaitGroup, name string, snaps <-chan storage.Snapshot[T], unsubscribe func(), out chan<- update, set func(*View, []T)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		for snap := range snaps {
			items := snap.Items
			if snap.Err != nil || items == nil {
				items = []T{}
			}
			u := update{
				name:  name,
				err:   snap.Err,
				apply: func(v *View) { set(v, items) },
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// apply is the single entry point that mutates view state.
func (v *View) apply(u update) {
	if u.err != nil {
		v.logger.Warn("Subscription failed, using empty snapshot", "subscription", u.name, "error", u.err)
		if v.metrics != nil {
			v.metrics.SubscriptionErrors.WithLabelValues(u.name).Inc()
		}
	}
	u.apply(v)
	v.received[u.name] = true
}

// reconcile builds the next State from every latest snapshot. Statistics
// are only computed for the admin view, which subscribes to every input.
func (v *View) reconcile(loading bool) State {
	v.version++
	if v.metrics != nil {
		v.metrics.Reconciliations.WithLabelValues(string(v.kind)).Inc()
	}

	state := State{
		Kind:          v.kind,
		Version:       v.version,
		Loading:       loading,
		Announcements: v.announcements,
	}

	switch v.kind {
	case KindAdmin:
		stats := calculator.ComputeStatistics(calculator.Input{
			Members:       v.members,
			Transactions:  v.transactions,
			Announcements: v.announcements,
			Feedbacks:     v.feedbacks,
		}, v.now(), v.policy)
		state.Statistics = &stats
		state.Members = v.members
		state.Transactions = v.transactions
		state.Feedbacks = v.feedbacks
	case KindMember:
		state.Profile = findUser(v.members, v.uid)
		if state.Profile != nil && state.Profile.Member != nil {
			state.PendingFines = calculator.PendingFines(state.Profile.Member.Fines)
		}
		state.Notifications = v.notifications
		state.UnreadCount = calculator.UnreadCount(v.notifications)
	}
	return state
}

func findUser(users []models.User, uid string) *models.User {
	for i := range users {
		if users[i].UID == uid {
			return &users[i]
		}
	}
	return nil
}
