package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marksync/marks/internal/api"
	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/logger"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPingInterval = 30 * time.Second
	// feedEventBuffer absorbs bursts; a session that cannot keep up for
	// this many events is cut off rather than allowed to stall the feed.
	feedEventBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement belongs to the identity-aware proxy in front.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Feed upgrades the connection to a websocket and pushes the owner's
// change events until the client disconnects. One event per message,
// JSON-encoded, same tagged shape the redis feed carries.
func Feed(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+api.OwnerHeader+" header")
			return
		}

		// Subscribe before upgrading so a dead broker yields a plain
		// HTTP error instead of an immediately-closed socket.
		events := make(chan domain.Change, feedEventBuffer)
		feedErr := make(chan error, 1)
		overflow := make(chan struct{}, 1)

		sub, err := d.Feed.Subscribe(r.Context(), owner,
			func(c domain.Change) {
				select {
				case events <- c:
				default:
					select {
					case overflow <- struct{}{}:
					default:
					}
				}
			},
			func(err error) {
				select {
				case feedErr <- err:
				default:
				}
			},
		)
		if err != nil {
			d.Logger.Error("feed subscription failed",
				logger.String("owner", owner),
				logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "change feed unavailable")
			return
		}
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				d.Logger.Warnf("failed to release feed subscription: %v", err)
			}
		}()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			d.Logger.Warnf("websocket upgrade failed: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()

		d.Logger.Info("feed session opened", logger.String("owner", owner))

		// Read pump: we expect no client messages, but reading is what
		// detects the peer going away.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(feedPingInterval)
		defer ticker.Stop()

		for {
			select {
			case c := <-events:
				_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
				if err := conn.WriteJSON(c); err != nil {
					d.Logger.Debugf("feed write failed, closing session: %v", err)
					return
				}
			case <-overflow:
				d.Logger.Warn("feed session too slow, closing",
					logger.String("owner", owner))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "event backlog overflow"),
					time.Now().Add(feedWriteTimeout))
				return
			case err := <-feedErr:
				d.Logger.Error("feed source failed, closing session",
					logger.String("owner", owner),
					logger.Error(err))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "change feed failed"),
					time.Now().Add(feedWriteTimeout))
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-clientGone:
				d.Logger.Info("feed session closed by client",
					logger.String("owner", owner))
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
