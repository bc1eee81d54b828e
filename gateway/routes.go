package gateway

import "net/http"

func (s *Server) initRoutes() {
	// Credential flows
	s.RegisterRouteHandler("POST "+RouteLoginMethods, ChainMiddleware(s.LoginMethodsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSignout, ChainMiddleware(s.SignoutHandler(), s.APIMiddleware()...))

	// SSO handshake
	s.RegisterRouteHandler("POST "+RouteSSO, ChainMiddleware(s.SSOLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSOAuthorize, ChainMiddleware(s.SSOAuthorizeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSOCallback, ChainMiddleware(s.SSOCallbackHandler(), s.APIMiddleware()...))

	// Streaming
	s.RegisterRouteHandler("GET "+RouteNotifications, ChainMiddleware(s.NotificationsHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
}

// HealthzHandler is the liveness probe.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
