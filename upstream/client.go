// Package upstream wraps outbound calls to the identity/API backend. The
// backend is an opaque HTTP service returning JSON and Set-Cookie headers;
// every mutating call carries a CSRF token under the double-submit pattern,
// sourced from the caller's cookie jar or fetched lazily when absent.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/complyward/console-gateway/cookies"
	"github.com/complyward/console-gateway/internal/errors"
)

// CSRF double-submit pair: the cookie and the header that must mirror it.
const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"

	// csrfCookieMaxAge keeps a lazily-fetched token around long enough to
	// span a login flow.
	csrfCookieMaxAge = 1800
)

// Upstream route paths.
const (
	PathCSRF               = "/v1/csrf"
	PathLoginMethods       = "/v1/auth/login-methods"
	PathRefresh            = "/v1/refresh"
	PathSSOLogin           = "/v1/auth/sso/login"
	PathSSOAuthorize       = "/v1/auth/sso/authorize"
	PathSSOCallback        = "/v1/auth/sso/callback"
	PathSignout            = "/v1/auth/signout"
	PathNotificationStream = "/v1/notifications/stream"
)

// Client is the secure request forwarder.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	streamClient  *http.Client
	secureCookies bool
	log           zerolog.Logger
}

func New(baseURL string, timeout time.Duration, secureCookies bool, log zerolog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		streamClient:  &http.Client{}, // long-lived calls are context-cancelled, never timed out
		secureCookies: secureCookies,
		log:           log,
	}
}

// Request describes a single forwarded call.
type Request struct {
	Method string
	Path   string
	Body   any // JSON-marshalled when non-nil
	Header http.Header

	// SkipCSRF suppresses the lazy CSRF fetch. The SSO callback sets this:
	// the login stage already narrowed the cookie jar via the allow-list,
	// so the callback must forward the jar verbatim rather than derive a
	// fresh token.
	SkipCSRF bool
}

// Response is the raw upstream response. Callers reinterpret it where a
// specific endpoint needs to.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SetCookieHeaders returns the raw Set-Cookie header values for the cookie
// codec.
func (r *Response) SetCookieHeaders() []string {
	return r.Header.Values("Set-Cookie")
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrapf(errors.ErrUpstreamRejected, "decoding upstream body (%v)", err)
	}
	return nil
}

// Forward issues the upstream call on behalf of the inbound request r. The
// caller's own Cookie header is always forwarded. Unless the request opts
// out, a CSRF token is attached: read from the caller's jar, or fetched from
// the upstream first and written back to w as a cookie before the primary
// request proceeds.
func (c *Client) Forward(ctx context.Context, w http.ResponseWriter, r *http.Request, freq Request) (*Response, error) {
	cookieHeader := r.Header.Get("Cookie")

	var csrfToken string
	if !freq.SkipCSRF {
		csrfToken = requestCookieValue(r, CSRFCookie)
		if csrfToken == "" {
			token, err := c.fetchCSRFToken(ctx, w)
			if err != nil {
				return nil, err
			}
			csrfToken = token
			// The upstream side of the double submit needs the cookie too.
			if cookieHeader != "" {
				cookieHeader += "; "
			}
			cookieHeader += CSRFCookie + "=" + csrfToken
		}
	}

	return c.do(ctx, freq, cookieHeader, csrfToken)
}

func (c *Client) do(ctx context.Context, freq Request, cookieHeader, csrfToken string) (*Response, error) {
	var body io.Reader
	if freq.Body != nil {
		encoded, err := json.Marshal(freq.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "marshalling upstream request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, freq.Method, c.baseURL+freq.Path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building upstream request")
	}
	if freq.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	if csrfToken != "" {
		req.Header.Set(CSRFHeader, csrfToken)
	}
	for name, values := range freq.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnreachable, "%s %s (%v)", freq.Method, freq.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnreachable, "reading %s %s response (%v)", freq.Method, freq.Path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       payload,
		Header:     resp.Header,
	}, nil
}

// Stream opens a long-lived upstream call and hands the raw response to the
// caller, which owns resp.Body and must close it. No timeout applies; the
// context cancels the connection.
func (c *Client) Stream(ctx context.Context, freq Request, cookieHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, freq.Method, c.baseURL+freq.Path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building upstream stream request")
	}
	req.Header.Set("Accept", "text/event-stream")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	for name, values := range freq.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnreachable, "%s %s (%v)", freq.Method, freq.Path, err)
	}
	return resp, nil
}

// fetchCSRFToken obtains a fresh token from the upstream and stores it on
// the browser response so later calls find it in the jar.
func (c *Client) fetchCSRFToken(ctx context.Context, w http.ResponseWriter) (string, error) {
	resp, err := c.do(ctx, Request{Method: http.MethodGet, Path: PathCSRF}, "", "")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", errors.Wrapf(errors.ErrMissingCSRFToken, "upstream csrf fetch returned %d", resp.StatusCode)
	}

	token := ""
	for _, raw := range resp.SetCookieHeaders() {
		for _, a := range cookies.ParseSetCookie(raw) {
			if a.Name == CSRFCookie {
				token = a.Value
			}
		}
	}
	if token == "" {
		var payload struct {
			CSRFToken string `json:"csrf_token"`
		}
		if err := resp.Decode(&payload); err == nil {
			token = payload.CSRFToken
		}
	}
	if token == "" {
		return "", errors.ErrMissingCSRFToken
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieMaxAge,
		HttpOnly: true,
		Secure:   c.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	c.log.Debug().Msg("fetched fresh CSRF token from upstream")
	return token, nil
}

func requestCookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
