package gateway

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Credential flows
	RouteLoginMethods = "/auth/login-methods"
	RouteRefresh      = "/auth/refresh"
	RouteSignout      = "/auth/signout"

	// Auth Routes - SSO handshake
	RouteSSO          = "/auth/sso"
	RouteSSOAuthorize = "/auth/sso/authorize"
	RouteSSOCallback  = "/auth/sso/callback"

	// Streaming
	RouteNotifications = "/notifications"

	// Operational
	RouteHealthz = "/healthz"
)
