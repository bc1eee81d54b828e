// Package sso carries the correlation state that binds an SSO login attempt
// to its later callback. The values live in short-lived cookies written at
// the login stage and must be replayed, unmodified, at the callback stage.
package sso

import (
	"net/http"

	"github.com/complyward/console-gateway/cookies"
	"github.com/complyward/console-gateway/internal/errors"
)

// TokenType selects what kind of token the authorize stage mints.
type TokenType string

const (
	TokenTypeAPI      TokenType = "api"
	TokenTypePersonal TokenType = "personal"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeAPI || t == TokenTypePersonal
}

// Correlation is the SSO session value object. State and Nonce are
// mandatory; the remaining fields appear only at later flow stages.
type Correlation struct {
	State          string
	Nonce          string
	TokenID        string
	TokenType      TokenType
	OrganizationID string
}

// FromRequest reads the correlation cookies replayed by the browser.
func FromRequest(r *http.Request) Correlation {
	return fromLookup(func(name string) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	})
}

// FromAssignments builds the correlation from cookies just relayed off an
// upstream response, so the login stage can confirm the upstream actually
// issued a complete correlation before reporting success.
func FromAssignments(assignments []cookies.Assignment) Correlation {
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		values[a.Name] = a.Value
	}
	return fromLookup(func(name string) string { return values[name] })
}

func fromLookup(get func(name string) string) Correlation {
	return Correlation{
		State:          get(cookies.CookieState),
		Nonce:          get(cookies.CookieNonce),
		TokenID:        get(cookies.CookieTokenID),
		TokenType:      TokenType(get(cookies.CookieTokenType)),
		OrganizationID: get(cookies.CookieOrganizationID),
	}
}

// Validate fails closed when the state or nonce is missing. Both the login
// and callback endpoints validate through here; the callback must never
// proceed on a partial correlation.
func (c Correlation) Validate() error {
	if c.State == "" || c.Nonce == "" {
		return errors.ErrMissingCorrelation
	}
	return nil
}
