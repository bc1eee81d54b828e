package upstream

// StatusResponse is the upstream's generic success/failure envelope.
type StatusResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// LoginMethodsResponse lists the login methods available for an email.
type LoginMethodsResponse struct {
	Success bool     `json:"success"`
	Methods []string `json:"methods,omitempty"`
	Message string   `json:"message,omitempty"`
}

// RefreshResponse is a fresh access/refresh token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
