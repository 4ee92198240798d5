package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marksync/marks/internal/api"
	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
	"github.com/marksync/marks/internal/logger"
)

const dialTimeout = 10 * time.Second

// Feed subscribes to the server's websocket change stream.
type Feed struct {
	base   string
	logger logger.Logger
}

var _ engine.Feed = (*Feed)(nil)

func NewFeed(baseURL string, log logger.Logger) (*Feed, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/feed"
	return &Feed{base: u.String(), logger: log}, nil
}

func (f *Feed) Subscribe(ctx context.Context, owner string, onEvent func(domain.Change), onError func(error)) (engine.Subscription, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	header := http.Header{}
	header.Set(api.OwnerHeader, owner)

	conn, resp, err := dialer.DialContext(ctx, f.base, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("client: feed dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("client: feed dial: %w", err)
	}

	sub := &feedSubscription{conn: conn}
	go f.readPump(sub, onEvent, onError)
	return sub, nil
}

// readPump delivers decoded events until the connection drops. Errors
// after Unsubscribe are the expected local close and stay silent.
func (f *Feed) readPump(sub *feedSubscription, onEvent func(domain.Change), onError func(error)) {
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if !sub.closed.Load() {
				onError(fmt.Errorf("client: feed read: %w", err))
			}
			return
		}
		change, err := domain.DecodeChange(data)
		if err != nil {
			f.logger.Warn("dropping malformed feed event", logger.Error(err))
			continue
		}
		onEvent(change)
	}
}

type feedSubscription struct {
	conn   *websocket.Conn
	closed atomic.Bool
}

func (s *feedSubscription) Unsubscribe() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
