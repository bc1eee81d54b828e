package gateway_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyward/console-gateway/upstream"
)

func TestLoginMethodsMissingEmail(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:0")

	rec := postJSON(gw, "/auth/login-methods", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body upstream.StatusResponse
	decodeBody(t, rec, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "Missing email", body.Message)
}

func TestLoginMethodsForwardsWithExistingCSRFToken(t *testing.T) {
	var csrfFetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/csrf", func(w http.ResponseWriter, r *http.Request) {
		csrfFetches.Add(1)
	})
	mux.HandleFunc("POST /v1/auth/login-methods", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.Header.Get("X-CSRF-Token"))
		cookie, err := r.Cookie("csrf_token")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", cookie.Value)

		var req struct {
			Email string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@example.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"methods":["password","sso"]}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	rec := postJSON(gw, "/auth/login-methods",
		map[string]string{"email": "jane@example.com"},
		&http.Cookie{Name: "csrf_token", Value: "tok-1"},
	)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body upstream.LoginMethodsResponse
	decodeBody(t, rec, &body)
	assert.True(t, body.Success)
	assert.Equal(t, []string{"password", "sso"}, body.Methods)
	assert.Equal(t, int32(0), csrfFetches.Load(), "no fetch when the jar already has a token")
}

func TestLoginMethodsFetchesCSRFTokenLazily(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/csrf", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "fresh-tok"})
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /v1/auth/login-methods", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fresh-tok", r.Header.Get("X-CSRF-Token"))
		cookie, err := r.Cookie("csrf_token")
		require.NoError(t, err)
		assert.Equal(t, "fresh-tok", cookie.Value)
		fmt.Fprint(w, `{"success":true,"methods":["password"]}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	rec := postJSON(gw, "/auth/login-methods", map[string]string{"email": "jane@example.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	set := responseCookies(rec)
	require.Contains(t, set, "csrf_token", "freshly fetched token is stored on the browser")
	assert.Equal(t, "fresh-tok", set["csrf_token"].Value)
	assert.True(t, set["csrf_token"].HttpOnly)
}

func TestLoginMethodsUpstreamUnreachable(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:0")

	rec := postJSON(gw, "/auth/login-methods",
		map[string]string{"email": "jane@example.com"},
		&http.Cookie{Name: "csrf_token", Value: "tok-1"},
	)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body upstream.StatusResponse
	decodeBody(t, rec, &body)
	assert.False(t, body.Success)
	assert.NotContains(t, body.Message, "127.0.0.1", "transport detail stays out of the response")
}

func TestRefreshMissingToken(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:0")

	rec := postJSON(gw, "/auth/refresh", map[string]string{"refresh_token": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Missing refresh token", body["error"])
}

func TestRefreshExchangesTokenPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-refresh", req.RefreshToken)
		fmt.Fprint(w, `{"access_token":"new-access","refresh_token":"new-refresh"}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	rec := postJSON(gw, "/auth/refresh",
		map[string]string{"refresh_token": "old-refresh"},
		&http.Cookie{Name: "csrf_token", Value: "tok-1"},
	)

	assert.Equal(t, http.StatusOK, rec.Code)
	var pair upstream.RefreshResponse
	decodeBody(t, rec, &pair)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestRefreshRefusesReplayWithoutUpstreamCall(t *testing.T) {
	var upstreamCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		fmt.Fprint(w, `{"access_token":"a","refresh_token":"b"}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	csrf := &http.Cookie{Name: "csrf_token", Value: "tok-1"}

	first := postJSON(gw, "/auth/refresh", map[string]string{"refresh_token": "contested"}, csrf)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postJSON(gw, "/auth/refresh", map[string]string{"refresh_token": "contested"}, csrf)
	assert.Equal(t, http.StatusUnauthorized, second.Code)
	var body map[string]string
	decodeBody(t, second, &body)
	assert.Equal(t, "Refresh token already used", body["error"])

	assert.Equal(t, int32(1), upstreamCalls.Load(), "replay never reaches the upstream")
}

func TestRefreshPassesThroughUpstreamRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"refresh token expired"}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	rec := postJSON(gw, "/auth/refresh",
		map[string]string{"refresh_token": "stale"},
		&http.Cookie{Name: "csrf_token", Value: "tok-1"},
	)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "refresh token expired", body["error"])
}

func TestSignoutClearsSessionCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	gw := newGateway(t, ts.URL)
	rec := postJSON(gw, "/auth/signout", nil, sessionCookies(t)...)

	assert.Equal(t, http.StatusOK, rec.Code)
	set := responseCookies(rec)
	for _, name := range []string{"access_token", "refresh_token", "session", "organization_id", "csrf_token"} {
		require.Contains(t, set, name)
		assert.Less(t, set[name].MaxAge, 0, "%s must be expired", name)
		assert.Empty(t, set[name].Value)
	}
}

func TestSignoutClearsCookiesEvenWhenUpstreamIsDown(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:0")

	rec := postJSON(gw, "/auth/signout", nil, sessionCookies(t)...)

	assert.Equal(t, http.StatusOK, rec.Code)
	set := responseCookies(rec)
	require.Contains(t, set, "access_token")
	assert.Less(t, set["access_token"].MaxAge, 0)
}

func TestHealthz(t *testing.T) {
	gw := newGateway(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}
