// Package session resolves the caller's current session from an inbound
// request's cookie jar. It is a pure read: nothing here writes cookies or
// talks to the upstream. The gateway is not the token authority, so access
// token claims are decoded without signature verification; the upstream
// validates the token on every forwarded call.
package session

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/complyward/console-gateway/internal/errors"
)

// Cookie names owned by the upstream-issued session.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionCookie      = "session"
	OrganizationCookie = "organization_id"
)

// Session is the caller's current authentication state as visible to the
// gateway.
type Session struct {
	AccessToken          string
	RefreshToken         string
	SessionID            string
	ActiveOrganizationID string
	UserID               string
}

// FromRequest resolves a session from the request's cookies. Returns
// errors.ErrNoSession when no access token cookie is present; everything
// else is best-effort since only the upstream can judge token validity.
func FromRequest(r *http.Request) (*Session, error) {
	accessToken := cookieValue(r, AccessTokenCookie)
	if accessToken == "" {
		return nil, errors.ErrNoSession
	}

	s := &Session{
		AccessToken:          accessToken,
		RefreshToken:         cookieValue(r, RefreshTokenCookie),
		SessionID:            cookieValue(r, SessionCookie),
		ActiveOrganizationID: cookieValue(r, OrganizationCookie),
	}

	if claims := decodeClaims(accessToken); claims != nil {
		if sub, err := claims.GetSubject(); err == nil {
			s.UserID = sub
		}
		if s.ActiveOrganizationID == "" {
			if org, ok := claims["org"].(string); ok {
				s.ActiveOrganizationID = org
			}
		}
	}

	return s, nil
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// decodeClaims extracts the claim set without verifying the signature.
// A malformed token yields nil, the session is still usable as an opaque
// credential.
func decodeClaims(accessToken string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil
	}
	return claims
}
