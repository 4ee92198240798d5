// Package engine implements the client-side reconciliation engine: it
// applies user mutations optimistically, folds in the server-pushed
// change feed, and keeps the local bookmark list consistent across
// concurrently open sessions without duplication or lost updates.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/list"
	"github.com/marksync/marks/internal/logger"
)

const (
	taskQueueCapacity = 256
	noticeCapacity    = 16
)

// Engine owns the local list state for one user session. All state
// mutations are funneled through a single-consumer task queue drained by
// one goroutine, so no two mutations ever execute simultaneously: the
// only races left are semantic (duplicate or redundant events), and the
// list's idempotent operations absorb those.
type Engine struct {
	owner  string
	store  Store
	feed   Feed
	logger logger.Logger
	now    func() time.Time

	state *list.List

	tasks   chan func()
	notices chan Notice
	done    chan struct{}

	feedState atomic.Int32

	mu     sync.Mutex
	alive  bool
	sub    Subscription
	ctx    context.Context
	cancel context.CancelFunc

	// writeCtx backs the durable create/delete requests. It is detached
	// from cancel so that Stop never aborts a write already in flight;
	// the late resolution is discarded by post() instead.
	writeCtx context.Context
}

// New builds an engine for the given user. Start must be called before
// the engine accepts mutations.
func New(owner string, store Store, feed Feed, log logger.Logger) *Engine {
	return &Engine{
		owner:   owner,
		store:   store,
		feed:    feed,
		logger:  log,
		now:     time.Now,
		state:   list.New(),
		tasks:   make(chan func(), taskQueueCapacity),
		notices: make(chan Notice, noticeCapacity),
		done:    make(chan struct{}),
	}
}

// Start seeds the list from a full snapshot, opens the change-feed
// subscription and launches the event loop. A store error aborts the
// start; a feed error does not — real-time sync degrades to the snapshot
// and the listener parks in the failed state.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.alive {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.writeCtx = context.WithoutCancel(ctx)
	e.alive = true
	e.mu.Unlock()

	records, err := e.store.ListAll(e.ctx, e.owner)
	if err != nil {
		e.mu.Lock()
		e.alive = false
		e.cancel()
		e.mu.Unlock()
		return fmt.Errorf("failed to load initial snapshot: %w", err)
	}
	e.state.Reset(records)
	e.logger.Info("list seeded from store",
		logger.String("owner", e.owner),
		logger.Int("records", len(records)))

	go e.loop()

	e.feedState.Store(int32(FeedSubscribing))
	sub, err := e.feed.Subscribe(e.ctx, e.owner, e.onFeedEvent, e.onFeedError)
	if err != nil {
		e.feedState.Store(int32(FeedFailed))
		e.logger.Error("change feed subscription failed", logger.Error(err))
		e.notify(Notice{Kind: NoticeFeedDown, Reason: err.Error()})
		return nil
	}
	e.mu.Lock()
	if !e.alive {
		// Stopped while subscribing; release immediately so no live
		// subscription outlives the engine.
		e.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	e.sub = sub
	e.mu.Unlock()
	e.feedState.Store(int32(FeedSubscribed))
	e.logger.Info("change feed subscribed", logger.String("owner", e.owner))
	return nil
}

// Stop releases the change-feed subscription synchronously and shuts
// down the loop. In-flight create/delete requests keep running to
// completion on the detached write context; their resolutions and any
// straggling feed events become safe no-ops afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.alive = false
	sub := e.sub
	e.sub = nil
	cancel := e.cancel
	e.mu.Unlock()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			e.logger.Warnf("failed to release change feed subscription: %v", err)
		}
	}
	cancel()

	// No goroutine can enqueue past the alive check above, so closing
	// the queue here is safe; the loop drains what is left and exits.
	close(e.tasks)
	<-e.done

	e.feedState.Store(int32(FeedUnsubscribed))
	e.logger.Info("engine stopped", logger.String("owner", e.owner))
}

// Snapshot returns the current list in display order. Safe from any
// goroutine.
func (e *Engine) Snapshot() []domain.Bookmark {
	return e.state.Snapshot()
}

// FeedState reports the change listener's lifecycle state.
func (e *Engine) FeedState() FeedState {
	return FeedState(e.feedState.Load())
}

// Notices exposes the stream of user-visible outcomes (validation
// failures, rollbacks, feed loss). The channel is buffered; the engine
// drops notices rather than block when nobody is reading.
func (e *Engine) Notices() <-chan Notice {
	return e.notices
}

// loop is the single consumer of the task queue. Every mutation of the
// list state runs here.
func (e *Engine) loop() {
	defer close(e.done)
	for task := range e.tasks {
		task()
	}
}

// post enqueues a state mutation. It reports false once the engine has
// stopped, which is how late-arriving callbacks become no-ops.
func (e *Engine) post(task func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return false
	}
	e.tasks <- task
	return true
}

func (e *Engine) notify(n Notice) {
	select {
	case e.notices <- n:
	default:
		e.logger.Warn("notice dropped, nobody reading",
			logger.String("kind", string(n.Kind)),
			logger.String("reason", n.Reason))
	}
}

// onFeedEvent folds one pushed change into the list. The at-most-once
// insert check is the sole mechanism preventing a duplicate row when the
// local create's response and its remote echo both arrive.
func (e *Engine) onFeedEvent(c domain.Change) {
	posted := e.post(func() {
		switch c.Kind {
		case domain.ChangeCreated:
			if e.state.Has(c.Bookmark.ID) {
				e.logger.Debug("duplicate create echo suppressed",
					logger.String("id", c.Bookmark.ID))
				return
			}
			e.state.InsertAtFront(c.Bookmark)
		case domain.ChangeDeleted:
			e.state.RemoveByID(c.ID)
		}
	})
	if !posted {
		e.logger.Debug("feed event after teardown ignored")
	}
}

// onFeedError parks the listener in the failed state. The engine does
// not retry the subscription; an external supervisor may restart it.
func (e *Engine) onFeedError(err error) {
	e.feedState.Store(int32(FeedFailed))
	e.logger.Error("change feed failed", logger.Error(err))
	e.notify(Notice{Kind: NoticeFeedDown, Reason: err.Error()})
}
