package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/middleware"
	"traveldesk-backend/internal/utils"
)

const oauthStateCookie = "oauth_state"

// GoogleAuthHandler signs staff in with Google and issues the bearer
// token the rest of the API expects. No user table is kept: the Google
// subject becomes the opaque user id.
type GoogleAuthHandler struct {
	oauth2Config *oauth2.Config
	config       *config.Config
	userInfo     func(ctx context.Context, token *oauth2.Token) (*dto.GoogleIdentity, error)
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(cfg *config.Config) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	h := &GoogleAuthHandler{oauth2Config: oauth2Config, config: cfg}
	h.userInfo = h.fetchGoogleIdentity
	return h
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.config.IsGoogleOAuthConfigured() {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Unavailable", "Google login is not configured")
		return
	}

	// Generate state parameter for CSRF protection
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline),
		State:   state,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchanges the code, then redirects to the frontend with the bearer token.
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State parameter for CSRF protection"
// @Success 302
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state mismatch")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Exchange authorization code for token
	token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", err.Error())
		return
	}

	identity, err := h.userInfo(ctx, token)
	if err != nil {
		log.Printf("Error fetching Google profile: %v", err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", "Could not read Google profile")
		return
	}

	jwtToken, err := middleware.GenerateToken(identity.Subject, identity.Name, identity.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	redirect, err := url.Parse(h.config.GoogleOAuth.FrontendURL)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Misconfigured", "invalid frontend callback URL")
		return
	}
	q := redirect.Query()
	q.Set("token", jwtToken)
	q.Set("user_id", identity.Subject)
	q.Set("display_name", identity.Name)
	q.Set("provider", "google")
	redirect.RawQuery = q.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// fetchGoogleIdentity fetches user information from Google
func (h *GoogleAuthHandler) fetchGoogleIdentity(ctx context.Context, token *oauth2.Token) (*dto.GoogleIdentity, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(h.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if info.VerifiedEmail != nil {
		verified = *info.VerifiedEmail
	}
	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &dto.GoogleIdentity{
		Subject:  "google:" + info.Id,
		Email:    info.Email,
		Name:     name,
		Verified: verified,
	}, nil
}
