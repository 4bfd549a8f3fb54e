package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client actions accepted over the socket
const (
	ActionJoinBookingRoom  = "join-booking-room"
	ActionLeaveBookingRoom = "leave-booking-room"
	ActionJoinBookingsFeed = "join-bookings-feed"
)

// ClientFrame is a message sent by the client
type ClientFrame struct {
	Action    string `json:"action"`
	BookingID string `json:"bookingId,omitempty"`
}

type SessionConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// Serve runs one WebSocket session for userID until the connection drops
// or ctx is cancelled. The session is always joined to the user's own
// topic; booking rooms and the global feed are joined on request.
func Serve(ctx context.Context, conn *websocket.Conn, hub *Hub, userID string, cfg SessionConfig) {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	pongWait := 2 * cfg.PingInterval

	sub := hub.Subscribe()
	defer sub.Close()
	sub.Join(UserTopic(userID))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		readFrames(conn, sub, userID, pongWait)
	}()

	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteTimeout))
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Realtime write failed: %v (user_id=%s)", err, userID)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readFrames(conn *websocket.Conn, sub *Subscription, userID string, pongWait time.Duration) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Realtime read failed: %v (user_id=%s)", err, userID)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("Warning: ignoring malformed client frame (user_id=%s)", userID)
			continue
		}
		applyFrame(sub, frame)
	}
}

// applyFrame updates the subscription's topics. Unknown actions and
// malformed booking ids are ignored.
func applyFrame(sub *Subscription, frame ClientFrame) {
	switch frame.Action {
	case ActionJoinBookingsFeed:
		sub.Join(TopicAllBookings)
	case ActionJoinBookingRoom, ActionLeaveBookingRoom:
		id, err := uuid.Parse(frame.BookingID)
		if err != nil {
			return
		}
		if frame.Action == ActionJoinBookingRoom {
			sub.Join(BookingTopic(id))
		} else {
			sub.Leave(BookingTopic(id))
		}
	}
}
