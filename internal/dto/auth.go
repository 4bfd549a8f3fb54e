package dto

// MeResponse echoes the identity carried by the bearer token
type MeResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// ErrorResponse represents an error response. NeedsApproval is set when
// the caller may ask the owner for edit access instead.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	NeedsApproval bool   `json:"needsApproval,omitempty"`
}

// GoogleLoginResponse is returned when the login flow starts
type GoogleLoginResponse struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

// GoogleIdentity is the subset of the Google profile used to issue a token
type GoogleIdentity struct {
	Subject  string
	Email    string
	Name     string
	Verified bool
}
