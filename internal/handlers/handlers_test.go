package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/handlers"
	"traveldesk-backend/internal/middleware"
	"traveldesk-backend/internal/models"
	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/routes"
	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/store"
)

type testServer struct {
	*httptest.Server
	cfg *config.Config
	hub *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "traveldesk", AccessTokenTTL: time.Hour},
		Realtime: config.RealtimeConfig{QueueSize: 64, ClientBuffer: 16, PublishTimeout: time.Second, PingInterval: time.Second, WriteTimeout: time.Second},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st := store.NewMemory()
	hub := realtime.NewHub(cfg.Realtime.ClientBuffer)
	broker := realtime.NewLocalBroker(hub)
	dispatcher := realtime.NewDispatcher(broker, cfg.Realtime.QueueSize, cfg.Realtime.PublishTimeout)
	go dispatcher.Run(ctx)

	notes := services.NewNotificationService(st, dispatcher)
	mux := http.NewServeMux()
	routes.SetupRoutes(mux, routes.Handlers{
		Health:        handlers.NewHealthHandler(st, broker),
		Auth:          handlers.NewAuthHandler(),
		Bookings:      handlers.NewBookingsHandler(services.NewBookingService(st, dispatcher)),
		EditRequests:  handlers.NewEditRequestsHandler(services.NewEditRequestService(st, notes, dispatcher)),
		Notifications: handlers.NewNotificationsHandler(notes),
		Realtime:      handlers.NewRealtimeHandler(hub, cfg),
	}, cfg)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, cfg: cfg, hub: hub}
}

func (s *testServer) token(t *testing.T, userID, name string) string {
	t.Helper()
	tok, err := middleware.GenerateToken(userID, name, userID+"@example.com", &s.cfg.JWT)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, token, method, path string, body any, out any) int {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rdr = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, s.URL+path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type errorBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	NeedsApproval bool   `json:"needsApproval"`
}

func createBooking(t *testing.T, s *testServer, token string) models.Booking {
	t.Helper()
	var b models.Booking
	code := s.do(t, token, http.MethodPost, "/api/bookings", map[string]any{
		"customerName":  "Grace Hopper",
		"customerEmail": "grace@example.com",
		"customerPhone": "+1 555 0100",
		"type":          "hotel",
		"hotelName":     "Seaside",
		"totalAmount":   500,
		"status":        "pending",
	}, &b)
	if code != http.StatusCreated {
		t.Fatalf("create booking: status %d", code)
	}
	return b
}

func notificationsOfType(t *testing.T, s *testServer, token string, typ models.NotificationType) []models.Notification {
	t.Helper()
	var items []models.Notification
	if code := s.do(t, token, http.MethodGet, "/api/notifications", nil, &items); code != http.StatusOK {
		t.Fatalf("list notifications: status %d", code)
	}
	var out []models.Notification
	for _, n := range items {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func TestApproveScenario(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice Owner")
	tokC := s.token(t, "user-c", "Carol Clerk")
	b1 := createBooking(t, s, tokA)

	var req models.EditRequest
	code := s.do(t, tokC, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests",
		map[string]string{"reason": "need to fix dates"}, &req)
	if code != http.StatusCreated {
		t.Fatalf("request edit: status %d", code)
	}
	if req.RequesterID != "user-c" || req.OwnerID != "user-a" || req.Status != models.EditRequestPending {
		t.Fatalf("unexpected request %+v", req)
	}

	var again models.EditRequest
	if code := s.do(t, tokC, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests", nil, &again); code != http.StatusOK {
		t.Fatalf("repeat request: status %d", code)
	}
	if again.ID != req.ID {
		t.Fatal("repeat request returned a different request")
	}

	if got := notificationsOfType(t, s, tokA, models.NotificationEditRequest); len(got) != 1 || got[0].UserID != "user-a" {
		t.Fatalf("owner notifications = %+v", got)
	}

	var resolved models.EditRequest
	code = s.do(t, tokA, http.MethodPut, "/api/bookings/edit-requests/"+req.ID.String(),
		map[string]string{"action": "approved"}, &resolved)
	if code != http.StatusOK || resolved.Status != models.EditRequestApproved {
		t.Fatalf("resolve: status %d, request %+v", code, resolved)
	}

	var detail struct {
		models.Booking
		CanEdit bool `json:"canEdit"`
	}
	s.do(t, tokC, http.MethodGet, "/api/bookings/"+b1.ID.String(), nil, &detail)
	if !detail.CanEdit || len(detail.ApprovedEditors) != 1 || detail.ApprovedEditors[0] != "user-c" {
		t.Fatalf("detail after approval = %+v", detail)
	}

	if got := notificationsOfType(t, s, tokC, models.NotificationEditApproved); len(got) != 1 || got[0].UserID != "user-c" {
		t.Fatalf("requester notifications = %+v", got)
	}

	var updated models.Booking
	if code := s.do(t, tokC, http.MethodPut, "/api/bookings/"+b1.ID.String(),
		map[string]any{"notes": "dates fixed"}, &updated); code != http.StatusOK {
		t.Fatalf("approved editor update: status %d", code)
	}
	if updated.Notes != "dates fixed" {
		t.Fatalf("notes = %q", updated.Notes)
	}

	var conflict errorBody
	if code := s.do(t, tokA, http.MethodPut, "/api/bookings/edit-requests/"+req.ID.String(),
		map[string]string{"action": "rejected"}, &conflict); code != http.StatusConflict {
		t.Fatalf("re-resolution: status %d", code)
	}
}

func TestRejectScenario(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice Owner")
	tokD := s.token(t, "user-d", "Dan Desk")
	b1 := createBooking(t, s, tokA)

	var req models.EditRequest
	if code := s.do(t, tokD, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests", nil, &req); code != http.StatusCreated {
		t.Fatalf("request edit: status %d", code)
	}
	if code := s.do(t, tokA, http.MethodPut, "/api/bookings/edit-requests/"+req.ID.String(),
		map[string]string{"action": "rejected"}, nil); code != http.StatusOK {
		t.Fatalf("reject: status %d", code)
	}

	var detail models.Booking
	s.do(t, tokA, http.MethodGet, "/api/bookings/"+b1.ID.String(), nil, &detail)
	for _, e := range detail.ApprovedEditors {
		if e == "user-d" {
			t.Fatal("rejected requester was added to editors")
		}
	}
	if got := notificationsOfType(t, s, tokD, models.NotificationEditRejected); len(got) != 1 {
		t.Fatalf("expected one edit_rejected notification, got %d", len(got))
	}

	var body errorBody
	code := s.do(t, tokD, http.MethodPut, "/api/bookings/"+b1.ID.String(), map[string]any{"notes": "x"}, &body)
	if code != http.StatusForbidden || !body.NeedsApproval {
		t.Fatalf("mutation by rejected user: status %d body %+v", code, body)
	}

	body = errorBody{}
	code = s.do(t, tokD, http.MethodPut, "/api/bookings/"+b1.ID.String(), map[string]any{"status": "lost"}, &body)
	if code != http.StatusForbidden || !body.NeedsApproval {
		t.Fatalf("invalid mutation by rejected user: status %d body %+v", code, body)
	}
}

func TestEditRequestErrors(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")
	tokC := s.token(t, "user-c", "Carol")
	b1 := createBooking(t, s, tokA)

	tests := []struct {
		name   string
		token  string
		method string
		path   string
		body   any
		want   int
	}{
		{"unauthenticated", "", http.MethodPost, "/api/bookings/" + b1.ID.String() + "/edit-requests", nil, http.StatusUnauthorized},
		{"own booking", tokA, http.MethodPost, "/api/bookings/" + b1.ID.String() + "/edit-requests", nil, http.StatusBadRequest},
		{"missing booking", tokC, http.MethodPost, "/api/bookings/" + uuid.NewString() + "/edit-requests", nil, http.StatusNotFound},
		{"malformed id", tokC, http.MethodPost, "/api/bookings/nope/edit-requests", nil, http.StatusBadRequest},
		{"missing request", tokA, http.MethodPut, "/api/bookings/edit-requests/" + uuid.NewString(), map[string]string{"action": "approved"}, http.StatusNotFound},
		{"bad action", tokA, http.MethodPut, "/api/bookings/edit-requests/" + uuid.NewString(), map[string]string{"action": "maybe"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.do(t, tt.token, tt.method, tt.path, tt.body, nil); code != tt.want {
				t.Fatalf("status %d, want %d", code, tt.want)
			}
		})
	}

	var req models.EditRequest
	s.do(t, tokC, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests", nil, &req)
	tokX := s.token(t, "user-x", "Mallory")
	if code := s.do(t, tokX, http.MethodPut, "/api/bookings/edit-requests/"+req.ID.String(),
		map[string]string{"action": "approved"}, nil); code != http.StatusForbidden {
		t.Fatalf("non-owner resolve: status %d", code)
	}
}

func TestMarkNotificationsAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")
	tokC := s.token(t, "user-c", "Carol")
	b1 := createBooking(t, s, tokA)
	s.do(t, tokC, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests", nil, nil)
	owned := notificationsOfType(t, s, tokA, models.NotificationEditRequest)[0]

	var ok struct {
		Success bool `json:"success"`
	}
	// foreign and malformed ids are ignored
	if code := s.do(t, tokC, http.MethodPut, "/api/notifications",
		map[string]any{"notificationIds": []string{owned.ID.String(), "garbage"}}, &ok); code != http.StatusOK || !ok.Success {
		t.Fatalf("foreign mark: status %d", code)
	}
	if notificationsOfType(t, s, tokA, models.NotificationEditRequest)[0].IsRead {
		t.Fatal("another user's notification was marked read")
	}

	if code := s.do(t, tokA, http.MethodPut, "/api/notifications", map[string]any{"markAll": true}, &ok); code != http.StatusOK {
		t.Fatalf("mark all: status %d", code)
	}
	if !notificationsOfType(t, s, tokA, models.NotificationEditRequest)[0].IsRead {
		t.Fatal("markAll left unread notifications")
	}

	if code := s.do(t, tokA, http.MethodPut, "/api/notifications", nil, &ok); code != http.StatusOK {
		t.Fatalf("empty body: status %d", code)
	}
}

func TestDeleteBookingOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")
	tokC := s.token(t, "user-c", "Carol")
	b1 := createBooking(t, s, tokA)

	if code := s.do(t, tokC, http.MethodDelete, "/api/bookings/"+b1.ID.String(), nil, nil); code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status %d", code)
	}
	if code := s.do(t, tokA, http.MethodDelete, "/api/bookings/"+b1.ID.String(), nil, nil); code != http.StatusOK {
		t.Fatalf("owner delete: status %d", code)
	}
	if code := s.do(t, tokA, http.MethodGet, "/api/bookings/"+b1.ID.String()+"/activities", nil, nil); code != http.StatusNotFound {
		t.Fatalf("activities of deleted booking: status %d", code)
	}
}

func TestListBookingsFilter(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")
	createBooking(t, s, tokA)

	var items []models.Booking
	if code := s.do(t, tokA, http.MethodGet, "/api/bookings?type=hotel", nil, &items); code != http.StatusOK || len(items) != 1 {
		t.Fatalf("hotel list: status %d, %d items", code, len(items))
	}
	if items[0].CreatorName != "Alice" {
		t.Fatalf("creatorName = %q", items[0].CreatorName)
	}
	if code := s.do(t, tokA, http.MethodGet, "/api/bookings?type=flight", nil, &items); code != http.StatusOK || len(items) != 0 {
		t.Fatalf("flight list: status %d, %d items", code, len(items))
	}
	if code := s.do(t, tokA, http.MethodGet, "/api/bookings?type=boat", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad filter: status %d", code)
	}
}

func TestRealtimeDeliversOwnerNotification(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")
	tokC := s.token(t, "user-c", "Carol")
	b1 := createBooking(t, s, tokA)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/realtime?token=" + tokA
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Subscribers(realtime.UserTopic("user-a")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("socket never joined its user topic")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.do(t, tokC, http.MethodPost, "/api/bookings/"+b1.ID.String()+"/edit-requests", nil, nil)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg realtime.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != realtime.EventNewNotification || msg.Topic != realtime.UserTopic("user-a") {
		t.Fatalf("unexpected frame %+v", msg)
	}
	var n models.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil || n.Type != models.NotificationEditRequest {
		t.Fatalf("payload = %s (%v)", msg.Payload, err)
	}
}

func TestRealtimeRequiresToken(t *testing.T) {
	s := newTestServer(t)
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/api/realtime", nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestQueryTokenOnlyForRealtime(t *testing.T) {
	s := newTestServer(t)
	tokA := s.token(t, "user-a", "Alice")

	if code := s.do(t, "", http.MethodGet, "/api/notifications?token="+tokA, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("rest route with query token: status %d, want 401", code)
	}
	if code := s.do(t, "", http.MethodGet, "/api/bookings?token="+tokA, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("bookings with query token: status %d, want 401", code)
	}
}

func TestReadiness(t *testing.T) {
	s := newTestServer(t)
	if code := s.do(t, "", http.MethodGet, "/readyz", nil, nil); code != http.StatusOK {
		t.Fatalf("readyz: status %d", code)
	}
}
