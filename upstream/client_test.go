package upstream_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyward/console-gateway/internal/errors"
	"github.com/complyward/console-gateway/upstream"
)

func newClient(baseURL string) *upstream.Client {
	return upstream.New(baseURL, 5*time.Second, false, zerolog.Nop())
}

func forward(t *testing.T, c *upstream.Client, freq upstream.Request, reqCookies ...*http.Cookie) (*upstream.Response, *httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for _, cookie := range reqCookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	resp, err := c.Forward(req.Context(), rec, req, freq)
	return resp, rec, err
}

func TestForwardUnreachableUpstream(t *testing.T) {
	c := newClient("http://127.0.0.1:0")

	_, _, err := forward(t, c, upstream.Request{Method: http.MethodPost, Path: "/v1/x", SkipCSRF: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamUnreachable))
}

func TestForwardCSRFTokenFromJSONBody(t *testing.T) {
	// Some upstream deployments return the token in the body instead of a
	// Set-Cookie header.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/csrf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"csrf_token":"body-tok"}`)
	})
	mux.HandleFunc("POST /v1/x", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "body-tok", r.Header.Get(upstream.CSRFHeader))
		fmt.Fprint(w, `{"success":true}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts.URL)
	resp, rec, err := forward(t, c, upstream.Request{Method: http.MethodPost, Path: "/v1/x"})

	require.NoError(t, err)
	assert.True(t, resp.OK())

	stored := rec.Result().Cookies()
	require.Len(t, stored, 1)
	assert.Equal(t, upstream.CSRFCookie, stored[0].Name)
	assert.Equal(t, "body-tok", stored[0].Value)
}

func TestForwardFailsWhenNoCSRFTokenAvailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/csrf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts.URL)
	_, _, err := forward(t, c, upstream.Request{Method: http.MethodPost, Path: "/v1/x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingCSRFToken))
}

func TestForwardPropagatesCallerCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/x", func(w http.ResponseWriter, r *http.Request) {
		session, err := r.Cookie("session")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", session.Value)
		fmt.Fprint(w, `{"success":true}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newClient(ts.URL)
	resp, _, err := forward(t, c,
		upstream.Request{Method: http.MethodPost, Path: "/v1/x", SkipCSRF: true},
		&http.Cookie{Name: "session", Value: "sess-1"},
	)

	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestResponseDecodeMalformedBody(t *testing.T) {
	resp := &upstream.Response{StatusCode: http.StatusOK, Body: []byte("not json")}

	var v map[string]any
	err := resp.Decode(&v)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamRejected))
}

func TestResponseOK(t *testing.T) {
	assert.True(t, (&upstream.Response{StatusCode: 200}).OK())
	assert.True(t, (&upstream.Response{StatusCode: 204}).OK())
	assert.False(t, (&upstream.Response{StatusCode: 302}).OK())
	assert.False(t, (&upstream.Response{StatusCode: 500}).OK())
}
