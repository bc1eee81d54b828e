package gateway

import (
	"net/http"

	"github.com/complyward/console-gateway/session"
	"github.com/complyward/console-gateway/upstream"
)

// LoginMethodsHandler forwards the credential-discovery call: given an
// email, the upstream answers which login methods apply to it.
func (s *Server) LoginMethodsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeJSONBody(r, &req); err != nil || req.Email == "" {
			s.writeBadRequest(w, "Missing email")
			return
		}

		resp, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method: http.MethodPost,
			Path:   upstream.PathLoginMethods,
			Body:   map[string]string{"email": req.Email},
		})
		if err != nil {
			s.writeUpstreamFailure(w, err)
			return
		}

		s.passthrough(w, resp)
	}
}

// RefreshHandler exchanges a refresh token for a new access/refresh pair.
// The gateway holds no session record of its own, but it does enforce
// single use: a token seen once is refused on replay without ever reaching
// the upstream.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := decodeJSONBody(r, &req); err != nil || req.RefreshToken == "" {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing refresh token"})
			return
		}

		if !s.refreshGuard.Consume(req.RefreshToken) {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Refresh token already used"})
			return
		}

		resp, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method: http.MethodPost,
			Path:   upstream.PathRefresh,
			Body:   map[string]string{"refresh_token": req.RefreshToken},
		})
		if err != nil {
			s.log.Error().Err(err).Msg("refresh call failed")
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upstream service unavailable"})
			return
		}
		if !resp.OK() {
			s.passthrough(w, resp)
			return
		}

		var pair upstream.RefreshResponse
		if err := resp.Decode(&pair); err != nil {
			s.log.Error().Err(err).Msg("refresh response malformed")
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upstream service unavailable"})
			return
		}

		s.writeJSON(w, http.StatusOK, pair)
	}
}

// SignoutHandler clears the session cookies and tells the upstream. The
// local cookies are cleared regardless of the upstream outcome; a browser
// must never keep credentials the user asked to drop.
func (s *Server) SignoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, name := range []string{
			session.AccessTokenCookie,
			session.RefreshTokenCookie,
			session.SessionCookie,
			session.OrganizationCookie,
			upstream.CSRFCookie,
		} {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: name != session.OrganizationCookie,
				Secure:   s.config.GetCookieSecure(),
				SameSite: http.SameSiteLaxMode,
			})
		}

		// SkipCSRF: fetching a fresh token here would re-issue the cookie
		// cleared above.
		if _, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method:   http.MethodPost,
			Path:     upstream.PathSignout,
			SkipCSRF: true,
		}); err != nil {
			s.log.Warn().Err(err).Msg("upstream signout failed, local cookies cleared anyway")
		}

		s.writeJSON(w, http.StatusOK, upstream.StatusResponse{Success: true})
	}
}
