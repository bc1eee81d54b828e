// Package cookies parses raw upstream Set-Cookie headers and re-emits an
// allow-listed subset of them on a browser response with hardened
// attributes. Upstream cookies outside the active allow-list are dropped so
// that unrelated upstream state never leaks into the browser during a
// partial SSO stage.
package cookies

import (
	"net/http"
	"strings"
)

// Cookie names the gateway is permitted to re-emit, depending on flow stage.
const (
	CookieState          = "state"
	CookieNonce          = "nonce"
	CookieIsTest         = "is_test"
	CookieUserSSO        = "user_sso"
	CookieTokenID        = "token_id"
	CookieTokenType      = "token_type"
	CookieOrganizationID = "organization_id"
)

// Assignment is a single name=value pair extracted from a Set-Cookie header.
// Attributes of the upstream assignment are discarded; the gateway applies
// its own on re-emit.
type Assignment struct {
	Name  string
	Value string
}

// ParseSetCookie splits a combined Set-Cookie header value into discrete
// assignments.
//
// Grammar: assignments are joined by commas, but a comma is a separator only
// when, after optional whitespace, it is followed by a cookie-name token and
// an equals sign. Commas elsewhere (typically inside an Expires attribute)
// belong to the current assignment. Within one assignment, everything after
// the first semicolon is attribute text and is ignored. An assignment with
// no equals sign in its cookie-pair is malformed and skipped.
func ParseSetCookie(raw string) []Assignment {
	var out []Assignment
	for _, part := range splitAssignments(raw) {
		pair := part
		if semi := strings.IndexByte(pair, ';'); semi >= 0 {
			pair = pair[:semi]
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(pair[:eq])
		if name == "" || !isToken(name) {
			continue
		}
		value := strings.TrimSpace(pair[eq+1:])
		value = strings.Trim(value, `"`)
		out = append(out, Assignment{Name: name, Value: value})
	}
	return out
}

func splitAssignments(raw string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == ',' && startsNewAssignment(raw[i+1:]) {
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	return append(parts, raw[start:])
}

// startsNewAssignment is the separator lookahead: optional whitespace, then
// at least one token byte, then '='.
func startsNewAssignment(s string) bool {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	nameStart := i
	for i < len(s) && isTokenByte(s[i]) {
		i++
	}
	return i > nameStart && i < len(s) && s[i] == '='
}

func isToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

// isTokenByte reports whether b is an RFC 6265 cookie-name token byte.
func isTokenByte(b byte) bool {
	if b <= ' ' || b >= 0x7f {
		return false
	}
	switch b {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=', '{', '}':
		return false
	}
	return true
}

// Attributes are the hardened attributes applied to every re-emitted cookie.
type Attributes struct {
	Secure bool
	MaxAge int
}

// Relay parses each raw Set-Cookie header, drops assignments outside the
// allow-list, and writes the remainder to w. Every emitted cookie is
// HttpOnly (organization_id excepted, the UI reads it), SameSite=Lax and
// scoped to the whole site. Returns the assignments emitted, in order.
func Relay(w http.ResponseWriter, rawHeaders []string, allow AllowList, attrs Attributes) []Assignment {
	var emitted []Assignment
	for _, raw := range rawHeaders {
		for _, a := range ParseSetCookie(raw) {
			if !allow.Contains(a.Name) {
				continue
			}
			http.SetCookie(w, &http.Cookie{
				Name:     a.Name,
				Value:    a.Value,
				Path:     "/",
				MaxAge:   attrs.MaxAge,
				HttpOnly: a.Name != CookieOrganizationID,
				Secure:   attrs.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			emitted = append(emitted, a)
		}
	}
	return emitted
}
