package reconcile

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"traveldesk-backend/internal/realtime"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Stream feeds realtime events into a Cache, reconnecting until its
// context ends. Every successful (re)connect raises the changed signal,
// since events sent while disconnected are lost.
type Stream struct {
	url    string
	token  string
	cache  *Cache
	dialer *websocket.Dialer

	mu    sync.Mutex
	rooms map[uuid.UUID]struct{}
	conn  *websocket.Conn

	// OnEvent, when set, sees every applied event
	OnEvent func(realtime.Message)
}

// NewStream targets the realtime endpoint of the API at baseURL
func NewStream(baseURL, token string, cache *Cache) (*Stream, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u = u.JoinPath("/api/realtime")

	return &Stream{
		url:    u.String(),
		token:  token,
		cache:  cache,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		rooms:  make(map[uuid.UUID]struct{}),
	}, nil
}

// Watch joins a booking room now, if connected, and on every reconnect
func (s *Stream) Watch(bookingID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[bookingID] = struct{}{}
	if s.conn != nil {
		_ = s.conn.WriteJSON(realtime.ClientFrame{Action: realtime.ActionJoinBookingRoom, BookingID: bookingID.String()})
	}
}

// Unwatch leaves a booking room
func (s *Stream) Unwatch(bookingID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, bookingID)
	if s.conn != nil {
		_ = s.conn.WriteJSON(realtime.ClientFrame{Action: realtime.ActionLeaveBookingRoom, BookingID: bookingID.String()})
	}
}

// Run blocks until ctx is done
func (s *Stream) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = minBackoff
		}
		log.Printf("Realtime stream disconnected: %v (retry in %s)", err, backoff)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// session runs one connection. connected reports whether the handshake
// succeeded.
func (s *Stream) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}
	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial: %w (status %d)", err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := s.attach(conn); err != nil {
		return true, err
	}
	defer s.detach()
	s.cache.SignalChanged()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg realtime.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return true, err
		}
		if err := s.cache.Apply(msg); err != nil {
			log.Printf("Realtime event dropped: %v", err)
			continue
		}
		if s.OnEvent != nil {
			s.OnEvent(msg)
		}
	}
}

func (s *Stream) attach(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := conn.WriteJSON(realtime.ClientFrame{Action: realtime.ActionJoinBookingsFeed}); err != nil {
		return err
	}
	for id := range s.rooms {
		if err := conn.WriteJSON(realtime.ClientFrame{Action: realtime.ActionJoinBookingRoom, BookingID: id.String()}); err != nil {
			return err
		}
	}
	s.conn = conn
	return nil
}

func (s *Stream) detach() {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
}
