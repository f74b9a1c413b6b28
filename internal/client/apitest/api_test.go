package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginAndVerify(t *testing.T) {
	api, srv := NewTestServer(t, nil)
	api.AddUser("alice", "pw")

	resp := post(t, srv.URL+"/auth/login", map[string]string{"username": "alice", "password": "pw"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	resp = post(t, srv.URL+"/auth/login", map[string]string{"username": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var v struct {
		Valid bool `json:"valid"`
	}
	resp = post(t, srv.URL+"/auth/verify", map[string]string{"token": out.Token}, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.True(t, v.Valid)
}

func TestExpireTokens(t *testing.T) {
	api, srv := NewTestServer(t, nil)
	Seed(api, time.Now())
	tok := api.IssueToken("demo")

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/submission/all", tok).StatusCode)

	api.ExpireTokens()
	assert.Equal(t, http.StatusUnauthorized, get(t, srv.URL+"/submission/all", tok).StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/submission/all", api.IssueToken("demo")).StatusCode)
}

func TestRequireAuth(t *testing.T) {
	api, srv := NewTestServer(t, nil)
	Seed(api, time.Now())

	assert.Equal(t, http.StatusUnauthorized, get(t, srv.URL+"/contest/1", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, srv.URL+"/contest/1", "garbage").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/general/problems", "").StatusCode, "problems are public")
}

func TestFailRecoverAndHits(t *testing.T) {
	api, srv := NewTestServer(t, nil)
	Seed(api, time.Now())

	api.Fail(http.MethodGet, "/general/problems", http.StatusBadGateway, "upstream down")
	resp := get(t, srv.URL+"/general/problems", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "upstream down", body["message"])

	api.Recover(http.MethodGet, "/general/problems")
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/general/problems", "").StatusCode)

	assert.Equal(t, 2, api.Hits(http.MethodGet, "/general/problems"))
	assert.Equal(t, 2, api.TotalHits())
}

func TestLastHeaders(t *testing.T) {
	api, srv := NewTestServer(t, nil)

	get(t, srv.URL+"/general/problems", "abc")
	assert.Equal(t, "Bearer abc", api.LastHeaders().Get("Authorization"))
}

func TestSeed(t *testing.T) {
	api, srv := NewTestServer(t, nil)
	Seed(api, time.Now())

	resp := get(t, srv.URL+"/general/problem/1/statement", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.Contains(resp.Header.Get("Content-Disposition"), `filename="1.pdf"`))

	tok := api.IssueToken("demo")
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/contest/1", tok).StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/contest/9", tok).StatusCode)
}
