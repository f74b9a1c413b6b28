package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

// Requester sends a request on behalf of the logged-in user. AuthService is
// the only production implementation.
type Requester interface {
	AuthenticatedRequest(ctx context.Context, method, path string, body io.Reader, opts ...client.RequestOption) (*http.Response, error)
}

// doJSON sends in (if any) as JSON through r and decodes a 2xx answer into
// out. Non-2xx answers become an APIError with fallback as the default
// message. The response status is returned even on failure.
func doJSON(ctx context.Context, r Requester, method, path string, in, out any, fallback string) (int, error) {
	body, err := client.JSONBody(in)
	if err != nil {
		return 0, err
	}

	resp, err := r.AuthenticatedRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}

	if !client.IsSuccess(resp.StatusCode) {
		return resp.StatusCode, client.ErrorFromResponse(resp, fallback)
	}

	return resp.StatusCode, client.DecodeJSON(resp, out)
}

func logFailure(ctx context.Context, logger logging.Logger, op string, err error) {
	logger.Error(ctx, op+" failed", "error", err)
}

func seg(s string) string {
	return url.PathEscape(s)
}

func idSeg(id int64) string {
	return strconv.FormatInt(id, 10)
}
