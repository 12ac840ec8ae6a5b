package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsReadLimit  = maxCommandBytes
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The form is served to a local UI
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS runs a request/response loop: the client sends one command per
// message and receives the resulting state. The current snapshot is sent
// right after the upgrade.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	if err := s.writeWS(conn, domain.CommandResult{Snapshot: s.snapshot(), Accepted: true}); err != nil {
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var reply any
		var cmd domain.Command
		if !s.allow() {
			reply = errorResponse{Error: "too many requests"}
		} else if err := json.Unmarshal(msg, &cmd); err != nil {
			reply = errorResponse{Error: err.Error()}
		} else if res, err := s.apply(cmd); err != nil {
			s.logger.Warn("Command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
			reply = errorResponse{Error: err.Error()}
		} else {
			reply = res
		}

		if err := s.writeWS(conn, reply); err != nil {
			return
		}
	}
}

// Only the read loop writes data frames; pings go through WriteControl.
// An unencodable reply is sent as an error message and keeps the connection.
func (s *Server) writeWS(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode WebSocket reply", zap.Error(err))
		data, _ = json.Marshal(errorResponse{Error: "failed to encode reply"})
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("WebSocket write failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
