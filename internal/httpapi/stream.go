package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rbright/predicweb/internal/poll"
	"github.com/rbright/predicweb/internal/status"
)

const (
	streamConsumer  = "websocket"
	streamWriteWait = 5 * time.Second
	streamReadLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// handleStatusStream pushes the snapshot whenever it changes, polling once per interval.
func (s *server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "request_id", RequestID(r.Context()), "error", err.Error())
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything useful; reading surfaces its close.
	conn.SetReadLimit(streamReadLimit)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("status stream opened", "request_id", RequestID(r.Context()))
	var last *status.Snapshot
	poll.Run(ctx, s.interval, func(ctx context.Context) {
		snap, err := s.gateway.Snapshot(ctx)
		if s.metrics != nil {
			s.metrics.StatusPoll(streamConsumer, err)
		}
		if err != nil {
			return
		}
		if last != nil && last.Equal(snap) {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(snap); err != nil {
			cancel()
			return
		}
		last = &snap
	})
	s.logger.Debug("status stream closed", "request_id", RequestID(r.Context()))
}
