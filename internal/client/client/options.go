package client

import "net/http"

const (
	ContentTypeJSON = "application/json"
	headerAuth      = "Authorization"
	headerType      = "Content-Type"
)

type requestOptions struct {
	bearer      string
	contentType string
	raw         bool
	headers     http.Header
}

// RequestOption customises a single request.
type RequestOption func(*requestOptions)

// WithBearerToken attaches "Authorization: Bearer <token>". An empty token
// leaves the header out.
func WithBearerToken(token string) RequestOption {
	return func(o *requestOptions) {
		o.bearer = token
	}
}

// WithContentType sets an explicit content type, e.g. the boundary-carrying
// type of a multipart body.
func WithContentType(contentType string) RequestOption {
	return func(o *requestOptions) {
		o.contentType = contentType
	}
}

// WithRawBody suppresses the default JSON content type. Use it for calls
// that download non-JSON documents.
func WithRawBody() RequestOption {
	return func(o *requestOptions) {
		o.raw = true
	}
}

// WithHeader adds a caller header. Caller headers are applied last and are
// never overwritten by the defaults.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Add(key, value)
	}
}

// applyHeaders merges, in order: bearer token, default content type, caller
// headers.
func (o *requestOptions) applyHeaders(h http.Header) {
	if o.bearer != "" {
		h.Set(headerAuth, "Bearer "+o.bearer)
	}

	switch {
	case o.contentType != "":
		h.Set(headerType, o.contentType)
	case !o.raw && o.headers.Get(headerType) == "":
		h.Set(headerType, ContentTypeJSON)
	}

	for k, vs := range o.headers {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
}
