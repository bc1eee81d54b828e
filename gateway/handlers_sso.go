package gateway

import (
	"net/http"

	"github.com/complyward/console-gateway/cookies"
	"github.com/complyward/console-gateway/session"
	"github.com/complyward/console-gateway/sso"
	"github.com/complyward/console-gateway/upstream"
)

func (s *Server) cookieAttrs() cookies.Attributes {
	return cookies.Attributes{
		Secure: s.config.GetCookieSecure(),
		MaxAge: s.config.GetCorrelationMaxAge(),
	}
}

// SSOLoginHandler starts the SSO handshake. The upstream returns the
// redirect target plus the correlation cookies; only the allow-listed
// correlation subset reaches the browser.
func (s *Server) SSOLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrganizationID string `json:"organization_id"`
			IsTest         bool   `json:"is_test,omitempty"`
		}
		if err := decodeJSONBody(r, &req); err != nil || req.OrganizationID == "" {
			s.writeBadRequest(w, "Missing organization_id")
			return
		}

		resp, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method: http.MethodPost,
			Path:   upstream.PathSSOLogin,
			Body: map[string]any{
				"organization_id": req.OrganizationID,
				"is_test":         req.IsTest,
			},
		})
		if err != nil {
			s.writeUpstreamFailure(w, err)
			return
		}
		if !resp.OK() {
			s.passthrough(w, resp)
			return
		}

		emitted := cookies.Relay(w, resp.SetCookieHeaders(), cookies.LoginStage, s.cookieAttrs())

		// The callback can only succeed if the upstream issued a complete
		// correlation; report the broken handshake now rather than there.
		if err := sso.FromAssignments(emitted).Validate(); err != nil {
			s.log.Error().Err(err).Msg("upstream SSO login issued incomplete correlation")
			s.writeJSON(w, http.StatusBadGateway, upstream.StatusResponse{Success: false, Message: "SSO login could not be initiated"})
			return
		}

		s.passthrough(w, resp)
	}
}

// SSOAuthorizeHandler mints an API or personal token for an authenticated
// session. This stage needs the full upstream-issued cookie set, so the
// caller's raw cookie header travels unfiltered and the reply cookies use
// the widest allow-list.
func (s *Server) SSOAuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromRequest(r)
		if err != nil {
			s.writeUnauthorized(w, "Unauthorized")
			return
		}

		var req struct {
			OrganizationID string `json:"organization_id"`
			TokenID        string `json:"token_id"`
			TokenType      string `json:"token_type"`
		}
		if err := decodeJSONBody(r, &req); err != nil || req.OrganizationID == "" || req.TokenID == "" {
			s.writeBadRequest(w, "Missing organization_id or token_id")
			return
		}
		if !sso.TokenType(req.TokenType).Valid() {
			s.writeBadRequest(w, "token_type must be 'api' or 'personal'")
			return
		}

		header := http.Header{}
		header.Set("Authorization", "Bearer "+sess.AccessToken)

		resp, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method: http.MethodPost,
			Path:   upstream.PathSSOAuthorize,
			Header: header,
			Body: map[string]string{
				"organization_id": req.OrganizationID,
				"token_id":        req.TokenID,
				"token_type":      req.TokenType,
			},
		})
		if err != nil {
			s.writeUpstreamFailure(w, err)
			return
		}

		cookies.Relay(w, resp.SetCookieHeaders(), cookies.AuthorizeStage, s.cookieAttrs())
		s.passthrough(w, resp)
	}
}

// SSOCallbackHandler completes the handshake. The correlation cookies
// written at the login stage must be present and are forwarded verbatim; no
// fresh CSRF token is derived, because the login stage already narrowed the
// jar to exactly what the upstream expects back.
func (s *Server) SSOCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code           string `json:"code"`
			State          string `json:"state"`
			OrganizationID string `json:"organization_id"`
		}
		if err := decodeJSONBody(r, &req); err != nil || req.Code == "" || req.State == "" || req.OrganizationID == "" {
			s.writeBadRequest(w, "Missing code, state or organization_id")
			return
		}

		corr := sso.FromRequest(r)
		if err := corr.Validate(); err != nil {
			s.writeBadRequest(w, "Missing SSO correlation cookies")
			return
		}
		if corr.State != req.State {
			s.writeBadRequest(w, "SSO state mismatch")
			return
		}

		resp, err := s.upstream.Forward(r.Context(), w, r, upstream.Request{
			Method:   http.MethodPost,
			Path:     upstream.PathSSOCallback,
			SkipCSRF: true,
			Body: map[string]string{
				"code":            req.Code,
				"state":           req.State,
				"organization_id": req.OrganizationID,
			},
		})
		if err != nil {
			s.writeUpstreamFailure(w, err)
			return
		}
		if !resp.OK() {
			message := "SSO callback rejected"
			var status upstream.StatusResponse
			if err := resp.Decode(&status); err == nil && status.Message != "" {
				message = status.Message
			}
			s.writeJSON(w, resp.StatusCode, upstream.StatusResponse{Success: false, Message: message})
			return
		}

		// Terminal stage: session cookie issuance happens upstream, the
		// gateway sets nothing here.
		s.passthrough(w, resp)
	}
}
