package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	c := NewHTTPClient("http://api.local:5000/", time.Second)

	assert.Equal(t, "http://api.local:5000", c.BaseURL())
	assert.Equal(t, "http://api.local:5000/auth/login", c.URL("/auth/login"))
	assert.Equal(t, "http://api.local:5000/auth/login", c.URL("auth/login"))
	assert.Equal(t, "https://cdn.local/x.pdf", c.URL("https://cdn.local/x.pdf"))
}

func TestNewRequest_Headers(t *testing.T) {
	c := NewHTTPClient("http://api.local", 0)
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     []RequestOption
		wantAuth string
		wantType string
	}{
		{
			name:     "defaults to json, no auth",
			wantType: ContentTypeJSON,
		},
		{
			name:     "bearer token",
			opts:     []RequestOption{WithBearerToken("tok")},
			wantAuth: "Bearer tok",
			wantType: ContentTypeJSON,
		},
		{
			name:     "empty token leaves header out",
			opts:     []RequestOption{WithBearerToken("")},
			wantType: ContentTypeJSON,
		},
		{
			name:     "raw body has no content type",
			opts:     []RequestOption{WithRawBody()},
			wantType: "",
		},
		{
			name:     "explicit content type",
			opts:     []RequestOption{WithContentType("multipart/form-data; boundary=xyz")},
			wantType: "multipart/form-data; boundary=xyz",
		},
		{
			name:     "caller content type header wins over default",
			opts:     []RequestOption{WithHeader("Content-Type", "text/plain")},
			wantType: "text/plain",
		},
		{
			name:     "caller authorization is not clobbered",
			opts:     []RequestOption{WithBearerToken("tok"), WithHeader("Authorization", "Basic abc")},
			wantAuth: "Basic abc",
			wantType: ContentTypeJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := c.NewRequest(ctx, http.MethodGet, "/x", nil, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, req.Header.Get("Authorization"))
			assert.Equal(t, tt.wantType, req.Header.Get("Content-Type"))
		})
	}
}

func TestNewRequest_KeepsOtherCallerHeaders(t *testing.T) {
	c := NewHTTPClient("http://api.local", 0)
	req, err := c.NewRequest(context.Background(), http.MethodPost, "/x", nil,
		WithBearerToken("tok"), WithHeader("X-Trace", "1"), WithHeader("X-Trace", "2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, req.Header.Values("X-Trace"))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestDo_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	_, err := c.Send(context.Background(), http.MethodGet, "/ping", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, "Network error", apiErr.Message)
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestErrorFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantKind ErrorKind
	}{
		{name: "message field", status: 400, body: `{"message":"Team name taken"}`, wantMsg: "Team name taken", wantKind: KindServerRejected},
		{name: "error field", status: 409, body: `{"error":"already joined"}`, wantMsg: "already joined", wantKind: KindServerRejected},
		{name: "message preferred", status: 400, body: `{"message":"m","error":"e"}`, wantMsg: "m", wantKind: KindServerRejected},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantMsg: "Failed", wantKind: KindServerRejected},
		{name: "empty", status: 500, body: ``, wantMsg: "Failed", wantKind: KindServerRejected},
		{name: "401", status: 401, body: `{"message":"Token has expired"}`, wantMsg: "Token has expired", wantKind: KindSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrorFromResponse(newResponse(tt.status, tt.body), "Failed")
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	expired := &APIError{Kind: KindSessionExpired, Status: 401, Message: "x"}
	rejected := &APIError{Kind: KindServerRejected, Status: 403, Message: "x"}
	badLogin := &APIError{Kind: KindServerRejected, Status: 401, Message: "x"}

	assert.ErrorIs(t, expired, ErrUnauthorized)
	assert.NotErrorIs(t, expired, ErrRejected)
	assert.ErrorIs(t, rejected, ErrRejected)
	assert.NotErrorIs(t, rejected, ErrUnauthorized)
	assert.ErrorIs(t, badLogin, ErrUnauthorized)
	assert.NotErrorIs(t, rejected, ErrUnavailable)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, DecodeJSON(newResponse(200, `{"token":"abc"}`), &out))
	assert.Equal(t, "abc", out.Token)

	require.NoError(t, DecodeJSON(newResponse(200, ``), &out), "empty body is not an error")

	err := DecodeJSON(newResponse(200, `{"token":`), &out)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Team full", Message(&APIError{Message: "Team full"}, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}

func TestJSONBody(t *testing.T) {
	r, err := JSONBody(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = JSONBody(map[string]string{"team_name": "A"})
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	assert.JSONEq(t, `{"team_name":"A"}`, string(b))
}
