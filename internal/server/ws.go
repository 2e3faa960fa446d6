package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/bus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// handleWS streams a game's events to the client as JSON text frames.
// The connection stays open until the client goes away or the bus shuts
// down; clients replay state via GET before subscribing.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if _, err := s.orch.Get(kind, id); err != nil {
		s.writeError(w, err)
		return
	}

	// Subscribe before the handshake completes so no event published
	// after the client's dial returns can be missed.
	topic := bus.Topic(kind, id)
	events := s.bus.Subscribe(topic)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.bus.Unsubscribe(events, topic)
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	log := s.log.With(zap.String("topic", topic))

	// Reader drives connection liveness; we never expect client frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		s.bus.Unsubscribe(events, topic)
	}()

	for {
		select {
		case raw, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			ev, ok := raw.(bus.Event)
			if !ok {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
