package gateway_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/complyward/console-gateway/gateway"
	"github.com/complyward/console-gateway/internal/config"
	"github.com/complyward/console-gateway/session"
)

// newGateway builds a gateway wired to the given fake upstream.
func newGateway(t *testing.T, upstreamURL string) *gateway.Server {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("UPSTREAM_BASE_URL", upstreamURL)
	t.Setenv("COOKIE_SECURE", "false")

	gw := gateway.New(config.New(), zerolog.Nop())
	t.Cleanup(gw.Close)
	return gw
}

func postJSON(gw *gateway.Server, path string, body any, reqCookies ...*http.Cookie) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range reqCookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// responseCookies returns the cookies set on the recorded response, by name.
func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

// sessionCookies returns a full browser session cookie set for an
// authenticated caller.
func sessionCookies(t *testing.T) []*http.Cookie {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_42",
		"org": "org_7",
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return []*http.Cookie{
		{Name: session.AccessTokenCookie, Value: token},
		{Name: session.SessionCookie, Value: "sess-1"},
		{Name: session.OrganizationCookie, Value: "org_7"},
	}
}
