package config

import "os"

type CookieConfig interface {
	GetCookieSecure() bool
	GetCorrelationMaxAge() int
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

// GetCookieSecure controls the Secure attribute on cookies the gateway
// writes. Defaults to on; COOKIE_SECURE=false is for local development
// over plain HTTP only.
func (Cookies) GetCookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") != "false"
}

// GetCorrelationMaxAge is the lifetime, in seconds, of the short-lived SSO
// correlation cookies. Just long enough for the redirect round trip.
func (Cookies) GetCorrelationMaxAge() int {
	return 60
}
