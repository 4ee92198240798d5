package engine

import (
	"context"

	"github.com/marksync/marks/internal/domain"
)

// Store is the durable-store API the engine consumes. Create must echo
// back the permanent id and CreatedAt assigned by the store. Delete of
// an id the store no longer has, or that belongs to a different owner,
// returns domain.ErrNotFound; the engine treats the former as success
// and never sees the latter for its own records.
type Store interface {
	Create(ctx context.Context, owner, url, title string) (*domain.Bookmark, error)
	Delete(ctx context.Context, owner, id string) error
	ListAll(ctx context.Context, owner string) ([]*domain.Bookmark, error)
}

// Subscription is a live registration on the change feed.
type Subscription interface {
	Unsubscribe() error
}

// Feed is the server-pushed change-event stream the engine consumes.
// Events are delivered at-least-once with no ordering guarantee relative
// to the write API's own responses. onEvent and onError may be invoked
// from any goroutine; the engine serializes them onto its own loop.
type Feed interface {
	Subscribe(ctx context.Context, owner string, onEvent func(domain.Change), onError func(error)) (Subscription, error)
}

// FeedState tracks the change listener's subscription lifecycle.
type FeedState int32

const (
	FeedUnsubscribed FeedState = iota
	FeedSubscribing
	FeedSubscribed
	FeedFailed
)

func (s FeedState) String() string {
	switch s {
	case FeedUnsubscribed:
		return "unsubscribed"
	case FeedSubscribing:
		return "subscribing"
	case FeedSubscribed:
		return "subscribed"
	case FeedFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NoticeKind tags user-facing outcomes emitted by the engine.
type NoticeKind string

const (
	// NoticeValidation: the submission was rejected before any state
	// change (malformed URL or empty title).
	NoticeValidation NoticeKind = "validation"
	// NoticeCreateFailed: the optimistic create was rolled back. URL and
	// Title carry the entered values so the form can be repopulated.
	NoticeCreateFailed NoticeKind = "create_failed"
	// NoticeDeleteFailed: the optimistic delete was rolled back.
	NoticeDeleteFailed NoticeKind = "delete_failed"
	// NoticeFeedDown: the change feed errored out; the list degrades to
	// the last known snapshot until a supervisor restarts the engine.
	NoticeFeedDown NoticeKind = "feed_down"
)

// Notice is an inline, user-visible message. Failures never propagate
// out of the engine as panics; they surface here.
type Notice struct {
	Kind   NoticeKind
	Reason string
	URL    string // entered url, for form restoration
	Title  string // entered title, for form restoration
}
