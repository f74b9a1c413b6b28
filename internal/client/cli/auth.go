package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, an email and a password and creates the
// account. When the server hands out a token right away the new account is
// also logged in; otherwise the user is asked to log in.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	res, err := a.auth.Register(ctx, username, string(password), email)
	if err != nil {
		return err
	}

	if res.Authenticated {
		a.setMode(ModeOnline)
		fmt.Fprintf(a.out, "Registered and logged in as %s\n", res.User.Username)
		return nil
	}

	msg := res.Message
	if msg == "" {
		msg = "Registration successful"
	}
	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, "Please log in.")
	return nil
}

// Login prompts the user for credentials and authenticates against the API.
// A server that cannot be reached switches the client to offline mode; the
// previous session, if any, is left untouched in that case.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	res, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.Username)
	return nil
}

// Logout forgets the local session. The server is not contacted.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the user held by the session.
func (a *App) WhoAmI(context.Context) error {
	s := a.store.Snapshot()
	if !s.IsAuthenticated || s.User == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	u := s.User
	fmt.Fprintf(a.out, "%s (id %d)\n", u.Username, u.ID)
	if u.Email != "" {
		fmt.Fprintf(a.out, "  email: %s\n", u.Email)
	}
	if u.Role != "" {
		fmt.Fprintf(a.out, "  role:  %s\n", u.Role)
	}
	return nil
}

// Verify asks the server whether the stored token is still accepted.
func (a *App) Verify(ctx context.Context) error {
	valid, err := a.auth.ValidateSession(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	a.setMode(ModeOnline)
	if valid {
		fmt.Fprintln(a.out, "Session is valid")
	}
	// an invalid session was announced by the navigator
	return nil
}
