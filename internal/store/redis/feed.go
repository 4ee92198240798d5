package redis

import (
	"context"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

// Feed implements the engine's change-feed contract on top of redis
// pub/sub: one channel per owner, carrying encoded change events.
type Feed struct {
	client *redis.Client
	logger logger.Logger
}

// NewFeed creates a pub/sub backed change feed
func NewFeed(client *redis.Client, log logger.Logger) *Feed {
	return &Feed{
		client: client,
		logger: log,
	}
}

type subscription struct {
	pubsub *redis.PubSub
	closed atomic.Bool
}

// Unsubscribe releases the pub/sub registration. Safe to call more than
// once; events stop being delivered as soon as it returns.
func (s *subscription) Unsubscribe() error {
	s.closed.Store(true)
	return s.pubsub.Close()
}

// Subscribe opens the owner's feed channel. The returned subscription is
// acknowledged by the broker before Subscribe returns. onEvent is called
// per decoded event from a dedicated goroutine; onError is called once
// if the stream dies for any reason other than Unsubscribe.
func (f *Feed) Subscribe(ctx context.Context, owner string, onEvent func(domain.Change), onError func(error)) (engine.Subscription, error) {
	pubsub := f.client.Subscribe(ctx, FeedChannel(owner))

	// Receive forces the SUBSCRIBE round trip so a broken broker fails
	// here instead of silently delivering nothing.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &subscription{pubsub: pubsub}
	go f.deliver(ctx, owner, sub, onEvent, onError)
	return sub, nil
}

func (f *Feed) deliver(ctx context.Context, owner string, sub *subscription, onEvent func(domain.Change), onError func(error)) {
	for {
		msg, err := sub.pubsub.ReceiveMessage(ctx)
		if err != nil {
			if sub.closed.Load() || ctx.Err() != nil {
				return
			}
			f.logger.Error("change feed stream failed",
				logger.String("owner", owner),
				logger.Error(err))
			onError(err)
			return
		}

		change, err := domain.DecodeChange([]byte(msg.Payload))
		if err != nil {
			f.logger.Warn("dropping malformed change event",
				logger.String("owner", owner),
				logger.Error(err))
			continue
		}
		onEvent(change)
	}
}
