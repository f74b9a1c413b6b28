package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPClient talks JSON to the contest platform API. It knows nothing about
// sessions; the auth service layers the bearer token on top.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for baseURL (scheme://host[:port][/prefix]).
// A zero timeout means no client-side timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewHTTPClientWith wraps an existing *http.Client, e.g. httptest's.
func NewHTTPClientWith(baseURL string, hc *http.Client) *HTTPClient {
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// URL resolves an API path against the base URL.
func (c *HTTPClient) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// NewRequest builds a request for path with the headers described by opts.
func (c *HTTPClient) NewRequest(ctx context.Context, method, path string, body io.Reader, opts ...RequestOption) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	o := &requestOptions{}
	for _, opt := range opts {
		opt(o)
	}
	o.applyHeaders(req.Header)

	return req, nil
}

// Do sends req. Transport failures are returned as a KindNetwork APIError;
// any HTTP status, including 4xx/5xx, is returned as a response.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	return resp, nil
}

// Send is NewRequest followed by Do.
func (c *HTTPClient) Send(ctx context.Context, method, path string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	req, err := c.NewRequest(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// JSONBody marshals v into a request body. A nil v yields a nil body.
func JSONBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// DecodeJSON decodes resp's body into v and closes it. An empty body leaves
// v untouched.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return NewMalformedError(resp.StatusCode, err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ErrorFromResponse turns a non-2xx response into an APIError, using the
// server's "message" (or "error") field and fallback otherwise. The body is
// consumed and closed.
func ErrorFromResponse(resp *http.Response, fallback string) *APIError {
	defer resp.Body.Close()

	kind := KindServerRejected
	if resp.StatusCode == http.StatusUnauthorized {
		kind = KindSessionExpired
	}

	msg := fallback
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			switch {
			case eb.Message != "":
				msg = eb.Message
			case eb.Error != "":
				msg = eb.Error
			}
		}
	}

	return &APIError{Kind: kind, Status: resp.StatusCode, Message: msg}
}
