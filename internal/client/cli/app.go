package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/client/config"
	"github.com/dmitrijs2005/contestclient/internal/client/services"
	"github.com/dmitrijs2005/contestclient/internal/client/session"
	"github.com/dmitrijs2005/contestclient/internal/filex"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const msgSessionExpired = "Your session has expired. Please log in again."

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	store       *session.Store
	auth        services.AuthService
	contests    services.ContestService
	problems    services.ProblemService
	submissions services.SubmissionService
	reader      *bufio.Reader
	out         io.Writer
	now         func() time.Time
	unsubscribe func()

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database, restores the previous session and wires
// the API services. Close releases what NewApp acquired.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	a := newApp(c, db, logger, os.Stdin, os.Stdout)

	if err := a.store.Restore(ctx); err != nil {
		logger.Warn(ctx, "could not restore session", "error", err)
	}
	return a, nil
}

func newApp(c *config.Config, db *sql.DB, logger logging.Logger, in io.Reader, out io.Writer) *App {
	store := session.NewStore(session.NewDBStorage(db), logger)
	hc := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)

	a := &App{
		config: c,
		logger: logger,
		db:     db,
		store:  store,
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}

	a.auth = services.NewAuthService(hc, store, services.NavigatorFunc(a.sessionExpired), logger)
	a.contests = services.NewContestService(a.auth, logger)
	a.problems = services.NewProblemService(a.auth, logger)
	a.submissions = services.NewSubmissionService(a.auth, logger)
	a.unsubscribe = store.Subscribe(a.sessionChanged)

	return a
}

// Close detaches from the session store and closes the database.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.store.Close()
	return a.db.Close()
}

func (a *App) sessionChanged(s session.State) {
	user := ""
	if s.User != nil {
		user = s.User.Username
	}
	a.logger.Debug(context.Background(), "session changed",
		"authenticated", s.IsAuthenticated, "loading", s.Loading, "user", user)
}

// sessionExpired is the navigator behind AuthService: the store is already
// cleared, so the prompt falls back to the logged-out command set.
func (a *App) sessionExpired(context.Context) {
	fmt.Fprintln(a.out, msgSessionExpired)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().IsAuthenticated
}

// Run starts the REPL and blocks until the user leaves it.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to the contest client (type 'help' for commands)")
	if s := a.store.Snapshot(); s.IsAuthenticated {
		fmt.Fprintf(a.out, "Logged in as %s\n", s.User.Username)
	}

	go a.StartSessionWatcher(ctx, a.config.SessionCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// StartSessionWatcher re-validates the stored token every interval. A
// server that cannot be reached switches the client to offline mode; a token
// the server no longer accepts ends the session.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkSession(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkSession(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := a.auth.ValidateSession(ctx)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
	case err == nil:
		a.setMode(ModeOnline)
	default:
		a.logger.Warn(ctx, "session check failed", "error", err)
	}
}

func (a *App) getStatus() string {
	s := ""
	if st := a.store.Snapshot(); st.IsAuthenticated && st.User != nil {
		s = st.User.Username + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
