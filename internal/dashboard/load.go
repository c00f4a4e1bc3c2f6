package dashboard

import (
	"context"
	"fmt"
)

// Load computes a single State from direct reads, without subscribing.
// Unlike Run, a failed read is returned instead of rendered as empty.
func Load(ctx context.Context, src Source, kind Kind, uid string, opts ...Option) (State, error) {
	v := newView(src, kind, uid, opts)

	members, err := src.ListMembers(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load members: %w", err)
	}
	v.members = members

	announcements, err := src.ListAnnouncements(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load announcements: %w", err)
	}
	v.announcements = announcements

	switch kind {
	case KindAdmin:
		if v.transactions, err = src.ListTransactions(ctx); err != nil {
			return State{}, fmt.Errorf("load transactions: %w", err)
		}
		if v.feedbacks, err = src.ListFeedbacks(ctx); err != nil {
			return State{}, fmt.Errorf("load feedbacks: %w", err)
		}
	case KindMember:
		if uid != "" {
			if v.notifications, err = src.ListNotificationsByMember(ctx, uid); err != nil {
				return State{}, fmt.Errorf("load notifications: %w", err)
			}
		}
	default:
		return State{}, fmt.Errorf("unknown dashboard kind %q", kind)
	}

	return v.reconcile(false), nil
}
