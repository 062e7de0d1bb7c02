package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ubastic/JDfund/internal/broadcast"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second

	priceBuffer    = 64
	settingsBuffer = 8
)

// wsEvent is one pushed message. Payload stays a string because feed
// frames are opaque text, not guaranteed to be JSON.
type wsEvent struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

// handleWS upgrades the connection and streams both broadcast topics to
// the UI until it disconnects. A UI that cannot keep up loses frames
// rather than growing a queue.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	prices, cancelPrices := s.broker.Subscribe(broadcast.TopicPriceUpdate, priceBuffer)
	defer cancelPrices()
	updates, cancelUpdates := s.broker.Subscribe(broadcast.TopicSettingsUpdated, settingsBuffer)
	defer cancelUpdates()

	s.logger.Info("ui client connected", "remote", r.RemoteAddr)

	// Drain client frames so close and ping/pong processing happens.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			s.logger.Info("ui client disconnected", "remote", r.RemoteAddr)
			return

		case <-r.Context().Done():
			return

		case msg, ok := <-prices:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, msg); err != nil {
				return
			}

		case msg, ok := <-updates:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, msg); err != nil {
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, msg broadcast.Message) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	err := conn.WriteJSON(wsEvent{
		Topic:   msg.Topic,
		Payload: string(msg.Payload),
	})
	if err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
	return err
}
