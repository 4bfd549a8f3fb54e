package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/middleware"
)

func newGoogleTestHandler(t *testing.T) *GoogleAuthHandler {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "s", Issuer: "traveldesk", AccessTokenTTL: time.Hour},
		GoogleOAuth: config.GoogleOAuthConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/api/auth/google/callback",
			FrontendURL:  "http://frontend.local/auth/callback",
		},
	}
	h := NewGoogleAuthHandler(cfg)
	h.oauth2Config.Endpoint = oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"}
	h.userInfo = func(ctx context.Context, token *oauth2.Token) (*dto.GoogleIdentity, error) {
		return &dto.GoogleIdentity{Subject: "google:42", Email: "ada@example.com", Name: "Ada", Verified: true}, nil
	}
	return h
}

func TestGoogleCallbackIssuesToken(t *testing.T) {
	h := newGoogleTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "xyz"})
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Host != "frontend.local" || loc.Query().Get("user_id") != "google:42" {
		t.Fatalf("redirect = %s", loc)
	}
	claims, err := middleware.ValidateToken(loc.Query().Get("token"), &h.config.JWT)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.UserID != "google:42" || claims.Name != "Ada" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	h := newGoogleTestHandler(t)

	tests := []struct {
		name   string
		target string
		cookie string
	}{
		{"missing code", "/api/auth/google/callback?state=xyz", "xyz"},
		{"missing cookie", "/api/auth/google/callback?code=abc&state=xyz", ""},
		{"mismatch", "/api/auth/google/callback?code=abc&state=xyz", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.GoogleCallback(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
		})
	}
}

func TestGoogleLoginSetsState(t *testing.T) {
	h := newGoogleTestHandler(t)
	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != oauthStateCookie || cookies[0].Value == "" {
		t.Fatalf("cookies = %v", cookies)
	}
}
