package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Verify(ctx context.Context) error

	Problems(ctx context.Context) error
	Statement(ctx context.Context, args []string) error
	Submit(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Submissions(ctx context.Context) error

	Contest(ctx context.Context, args []string) error
	Timer(ctx context.Context, args []string) error
	Enroll(ctx context.Context, args []string) error
	Teams(ctx context.Context, args []string) error
	CreateTeam(ctx context.Context, args []string) error
	JoinTeam(ctx context.Context, args []string) error
	LeaveTeam(ctx context.Context, args []string) error
	MyTeam(ctx context.Context, args []string) error
	Members(ctx context.Context, args []string) error
}

const (
	msgLoginFirst = "Please log in first (use 'login')."
	helpLoggedOut = "Available commands: register, login, problems, statement, exit"
	helpLoggedIn  = "Available commands: whoami, verify, logout, problems, statement, submit, status, submissions, " +
		"contest, timer, enroll, teams, createteam, jointeam, leaveteam, myteam, members, exit"
)

// authRequired lists the commands that only make sense with a session.
var authRequired = map[string]bool{
	"whoami": true, "verify": true, "logout": true,
	"submit": true, "status": true, "submissions": true,
	"contest": true, "timer": true, "enroll": true,
	"teams": true, "createteam": true, "jointeam": true, "leaveteam": true,
	"myteam": true, "members": true,
}

// runREPL starts a simple read–eval–print loop for the contest CLI.
//
// It reads a line from reader, parses the first token as the command and
// the rest as its arguments, and dispatches to methods on 'a'. Unknown
// commands are reported back to the user. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Errors returned by handlers are printed with their user-facing message;
// the loop itself never stops on a command failure.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("contest %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if authRequired[cmd] && !a.isLoggedIn() {
			printlnFn(msgLoginFirst)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			report(a.Register(ctx))
		case "login":
			report(a.Login(ctx))
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.WhoAmI(ctx))
		case "verify":
			report(a.Verify(ctx))

		case "problems":
			report(a.Problems(ctx))
		case "statement":
			report(a.Statement(ctx, args))
		case "submit":
			report(a.Submit(ctx, args))
		case "status":
			report(a.Status(ctx, args))
		case "submissions":
			report(a.Submissions(ctx))

		case "contest":
			report(a.Contest(ctx, args))
		case "timer":
			report(a.Timer(ctx, args))
		case "enroll":
			report(a.Enroll(ctx, args))
		case "teams":
			report(a.Teams(ctx, args))
		case "createteam":
			report(a.CreateTeam(ctx, args))
		case "jointeam":
			report(a.JoinTeam(ctx, args))
		case "leaveteam":
			report(a.LeaveTeam(ctx, args))
		case "myteam":
			report(a.MyTeam(ctx, args))
		case "members":
			report(a.Members(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			// EOF after a final unterminated line
			return
		}
	}
}

// usageError is returned by handlers invoked with the wrong arguments.
type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "Usage: " + e.usage
}

func usage(u string) error {
	return &usageError{usage: u}
}

// report prints a handler failure. Session expiry is announced by the
// navigator already, so it is not repeated here.
func report(err error) {
	if err == nil {
		return
	}

	var ue *usageError
	switch {
	case errors.As(err, &ue):
		printlnFn(ue.Error())
	case isSessionExpiry(err):
	default:
		printlnFn("Error:", client.Message(err, err.Error()))
	}
}

func isSessionExpiry(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Kind == client.KindSessionExpired
}
