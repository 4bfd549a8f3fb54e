package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/models"
)

// Fetcher loads authoritative snapshots for a re-fetch
type Fetcher interface {
	Bookings(ctx context.Context) ([]models.Booking, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
}

// APIError is a non-2xx response from the API
type APIError struct {
	Status        int
	Title         string
	Message       string
	NeedsApproval bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// APIClient talks to the booking API with a bearer token
type APIClient struct {
	base  *url.URL
	token string
	http  *http.Client
}

// NewAPIClient builds a client for baseURL (scheme and host, optionally a
// path prefix). A nil httpClient gets a 15 second timeout.
func NewAPIClient(baseURL, token string, httpClient *http.Client) (*APIClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{base: u, token: token, http: httpClient}, nil
}

func (c *APIClient) Bookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Me resolves the identity behind the token
func (c *APIClient) Me(ctx context.Context) (*dto.MeResponse, error) {
	var out dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestEdit asks the owner of bookingID for edit access
func (c *APIClient) RequestEdit(ctx context.Context, bookingID uuid.UUID, reason string) (*models.EditRequest, error) {
	var out models.EditRequest
	body := dto.CreateEditRequestBody{Reason: reason}
	if err := c.do(ctx, http.MethodPost, "/api/bookings/"+bookingID.String()+"/edit-requests", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllRead clears the caller's unread notifications
func (c *APIClient) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/notifications", dto.MarkNotificationsRequest{MarkAll: true}, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
		var e dto.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e); err == nil {
			if e.Error != "" {
				apiErr.Title = e.Error
			}
			apiErr.Message = e.Message
			apiErr.NeedsApproval = e.NeedsApproval
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
