package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Zanex/poker-planning/internal/domain"
	"github.com/Zanex/poker-planning/internal/metrics"
	"github.com/Zanex/poker-planning/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // rooms are joined by shared link, any origin may connect
	},
}

func (s *Server) handleRoomWebSocket(c echo.Context) error {
	roomID := c.Param("id")
	if roomID == "" {
		return c.String(http.StatusBadRequest, "Room ID required")
	}

	ip := c.RealIP()
	allowed, reason := s.limits.acquire(ip)
	if !allowed {
		metrics.ConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		slog.Warn("Rejecting websocket connection", "room_id", roomID, "ip", ip, "reason", reason)
		return c.String(http.StatusTooManyRequests, "Too many connections")
	}
	defer s.limits.release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	rm := s.rooms.Get(roomID)
	sender, err := rm.Attach(conn)
	if err != nil {
		slog.Warn("Failed to attach to room", "room_id", roomID, "error", err)
		return nil
	}

	// Read pump - blocks until the connection closes. Any close or error is
	// a silent detach; there is no longer a channel to report on.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.dispatch(rm, sender, data)
	}

	rm.Detach(sender)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}

// dispatch decodes one inbound message and forwards it to the room actor. A
// payload that does not decode gets a generic error back; the connection
// stays open.
func (s *Server) dispatch(rm *room.Room, sender room.Sender, data []byte) {
	var msg domain.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.InboundMessagesTotal.WithLabelValues("malformed").Inc()
		rm.SendError(sender, "Invalid message format")
		return
	}

	metrics.InboundMessagesTotal.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case domain.MessageJoin:
		rm.Join(sender, msg.ID, msg.Name, msg.CardType, msg.IsSpectator)
	case domain.MessageVote:
		rm.Vote(sender, msg.Card)
	case domain.MessageReveal:
		rm.Reveal()
	case domain.MessageReset:
		rm.Reset()
	case domain.MessageLeave:
		rm.Detach(sender)
	default:
		rm.SendError(sender, "Unknown message type")
	}
}
