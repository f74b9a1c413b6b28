// Package client is the transport layer of the contest platform client.
//
// # Overview
//
//  1. HTTPClient builds and sends JSON-over-HTTP requests against the API
//     base URL. Per-request behaviour is selected with RequestOption values:
//     WithBearerToken, WithContentType, WithRawBody, WithHeader.
//  2. APIError is the single failure type returned by every operation built
//     on this package. Its Kind separates transport failures, server
//     rejections, expired sessions, and undecodable responses.
//  3. InitDatabase / RunMigrations open the local SQLite database that keeps
//     the session between runs and apply the embedded goose migrations.
//
// # Error Handling
//
// APIError matches the sentinels with errors.Is: ErrUnavailable (network),
// ErrUnauthorized (401), ErrRejected (other non-2xx), ErrMalformed.
//
// The package is session-agnostic; see services.AuthService for the
// authenticated request path.
package client
