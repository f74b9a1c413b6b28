// Package services contains the application services of the contest client.
// This file defines the authentication service: login, register, logout,
// token verification, and the authenticated request chokepoint every other
// service goes through.
package services

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/client/session"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// AuthResult is the success variant of Login and Register.
type AuthResult struct {
	User models.User
	// Token is empty when the server registered the account without
	// issuing a session.
	Token string
	// Authenticated reports whether the call switched the session to User.
	Authenticated bool
	Message       string
}

// AuthService defines authentication operations.
//
// Contract:
//   - Login: authenticate and, on success, store the session.
//   - Register: create an account; log in only when the server hands out a token.
//   - Logout: forget the local session. No network call.
//   - VerifyToken: ask the server whether the stored token is still valid.
//   - ValidateSession: VerifyToken, tearing the session down on a definite "no".
//   - AuthenticatedRequest: send a request with the session token; a 401
//     clears the session and redirects to login.
//
// Failures are *client.APIError values; nothing panics.
type AuthService interface {
	Requester

	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Register(ctx context.Context, username, password, email string) (*AuthResult, error)
	Logout(ctx context.Context) error
	VerifyToken(ctx context.Context) bool
	ValidateSession(ctx context.Context) (bool, error)
	Session() *session.Store
}

type authService struct {
	http     *client.HTTPClient
	store    *session.Store
	nav      Navigator
	logger   logging.Logger
	timezone func() string
}

// NewAuthService constructs an AuthService bound to the API client and the
// session store. nav may be nil.
func NewAuthService(hc *client.HTTPClient, store *session.Store, nav Navigator, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{
		http:     hc,
		store:    store,
		nav:      nav,
		logger:   logger.With("component", "auth"),
		timezone: localTimezone,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Timezone string `json:"timezone,omitempty"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func (a *authService) Session() *session.Store {
	return a.store
}

func (a *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	out, status, err := a.post(ctx, "/auth/login", loginRequest{
		Username: username,
		Password: password,
		Timezone: a.timezone(),
	}, msgLoginFailed)
	if err != nil {
		a.logger.Warn(ctx, "login failed", "user", username, "error", err)
		return nil, err
	}

	if out.Token == "" || out.User == nil {
		return nil, &client.APIError{Kind: client.KindServerRejected, Status: status, Message: msgLoginFailed}
	}

	if err := a.store.SetAuthenticated(ctx, *out.User, out.Token); err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "logged in", "user", out.User.Username)
	return &AuthResult{User: *out.User, Token: out.Token, Authenticated: true, Message: out.Message}, nil
}

func (a *authService) Register(ctx context.Context, username, password, email string) (*AuthResult, error) {
	out, status, err := a.post(ctx, "/auth/register", registerRequest{
		Username: username,
		Password: password,
		Email:    email,
	}, msgRegistrationFailed)
	if err != nil {
		a.logger.Warn(ctx, "registration failed", "user", username, "error", err)
		return nil, err
	}

	if out.User == nil {
		return nil, &client.APIError{Kind: client.KindServerRejected, Status: status, Message: msgRegistrationFailed}
	}

	res := &AuthResult{User: *out.User, Message: out.Message}
	if out.Token != "" {
		if err := a.store.SetAuthenticated(ctx, *out.User, out.Token); err != nil {
			return nil, err
		}
		res.Token = out.Token
		res.Authenticated = true
	}

	a.logger.Info(ctx, "registered", "user", out.User.Username, "authenticated", res.Authenticated)
	return res, nil
}

// post sends an unauthenticated JSON request to an auth endpoint. A non-2xx
// answer is a rejection of the submitted credentials, never an expired
// session.
func (a *authService) post(ctx context.Context, path string, in any, fallback string) (*authResponse, int, error) {
	body, err := client.JSONBody(in)
	if err != nil {
		return nil, 0, err
	}

	resp, err := a.http.Send(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, 0, err
	}

	if !client.IsSuccess(resp.StatusCode) {
		apiErr := client.ErrorFromResponse(resp, fallback)
		apiErr.Kind = client.KindServerRejected
		return nil, resp.StatusCode, apiErr
	}

	var out authResponse
	if err := client.DecodeJSON(resp, &out); err != nil {
		return nil, resp.StatusCode, err
	}
	return &out, resp.StatusCode, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

func (a *authService) VerifyToken(ctx context.Context) bool {
	valid, err := a.verify(ctx)
	return err == nil && valid
}

// ValidateSession reports whether the stored session is still accepted.
// Only a definite answer from the server ends the session; when the server
// cannot be asked the session is kept and the error returned.
func (a *authService) ValidateSession(ctx context.Context) (bool, error) {
	valid, err := a.verify(ctx)
	if err != nil {
		return false, err
	}
	if !valid && a.store.Snapshot().IsAuthenticated {
		a.logger.Info(ctx, "session rejected by server")
		a.expire(ctx)
	}
	return valid, nil
}

// verify asks /auth/verify about the current token. No token means no
// request and (false, nil).
func (a *authService) verify(ctx context.Context) (bool, error) {
	token := a.store.Token()
	if token == "" {
		return false, nil
	}

	body, err := client.JSONBody(map[string]string{"token": token})
	if err != nil {
		return false, err
	}

	resp, err := a.http.Send(ctx, http.MethodPost, "/auth/verify", body)
	if err != nil {
		return false, err
	}

	// the server answers an invalid token with {"valid": false} and a 4xx
	if resp.StatusCode >= http.StatusInternalServerError {
		return false, client.ErrorFromResponse(resp, "Token verification failed")
	}

	var out verifyResponse
	if err := client.DecodeJSON(resp, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (a *authService) AuthenticatedRequest(ctx context.Context, method, path string, body io.Reader, opts ...client.RequestOption) (*http.Response, error) {
	opts = append([]client.RequestOption{client.WithBearerToken(a.store.Token())}, opts...)

	resp, err := a.http.Send(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		a.logger.Warn(ctx, "request rejected as unauthorized, ending session", "method", method, "path", path)
		a.expire(ctx)
	}
	return resp, nil
}

func (a *authService) expire(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		a.logger.Error(ctx, "failed to clear session", "error", err)
	}
	if a.nav != nil {
		a.nav.RedirectToLogin(ctx)
	}
}

// localTimezone returns the IANA name of the local zone, or "" when the
// process only knows it as "Local".
func localTimezone() string {
	name := time.Local.String()
	if name == "Local" {
		return ""
	}
	return name
}
