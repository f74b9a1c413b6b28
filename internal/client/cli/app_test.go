package cli

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/apitest"
	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/client/config"
	"github.com/dmitrijs2005/contestclient/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app *App
	api *apitest.API
	out *bytes.Buffer
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = baseURL
	cfg.RequestTimeout = 2 * time.Second
	cfg.PollInterval = 5 * time.Millisecond
	cfg.PollMaxAttempts = 20
	cfg.TimerTick = 5 * time.Millisecond
	return cfg
}

// newEnv starts a seeded fake API and an App talking to it. input feeds the
// interactive prompts.
func newEnv(t *testing.T, api *apitest.API, input string) *testEnv {
	t.Helper()

	api, srv := apitest.NewTestServer(t, api)
	apitest.Seed(api, time.Now())

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := newApp(testConfig(srv.URL), db, logging.Nop(), strings.NewReader(input), out)
	require.NoError(t, a.store.Restore(context.Background()))
	t.Cleanup(func() { _ = a.Close() })

	return &testEnv{app: a, api: api, out: out}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := e.app.auth.Login(context.Background(), "demo", "demo")
	require.NoError(t, err)
}

func stubPassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

func silenceLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := log.Default().Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(old) })
	return &buf
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	app := &App{}
	buf := silenceLog(t)

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.NotEmpty(t, buf.String(), "expected log output on mode change")

	buf.Reset()
	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.Empty(t, buf.String(), "no log output when mode doesn't change")

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.Mode())
	assert.NotEmpty(t, buf.String())
}

func TestGetStatus(t *testing.T) {
	silenceLog(t)
	e := newEnv(t, nil, "")

	assert.Equal(t, "", e.app.getStatus())

	e.app.setMode(ModeOffline)
	assert.Equal(t, "(offline)", e.app.getStatus())

	e.login(t)
	e.app.setMode(ModeOnline)
	assert.Equal(t, "(demo online)", e.app.getStatus())
}

func TestLogin(t *testing.T) {
	silenceLog(t)

	t.Run("success", func(t *testing.T) {
		e := newEnv(t, nil, "demo\n")
		pw := []byte("demo")
		stubPassword(t, pw)

		require.NoError(t, e.app.Login(context.Background()))

		assert.True(t, e.app.isLoggedIn())
		assert.Equal(t, ModeOnline, e.app.Mode())
		assert.Contains(t, e.out.String(), "Welcome, demo!")
		assert.Equal(t, make([]byte, 4), pw, "password must be wiped")
	})

	t.Run("wrong password", func(t *testing.T) {
		e := newEnv(t, nil, "demo\n")
		stubPassword(t, []byte("nope"))

		err := e.app.Login(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Invalid username or password", client.Message(err, ""))
		assert.False(t, e.app.isLoggedIn())
	})

	t.Run("server unreachable", func(t *testing.T) {
		e := newEnv(t, nil, "demo\n")
		stubPassword(t, []byte("demo"))

		_, srv := apitest.NewTestServer(t, nil)
		srv.Close()
		e.app = newApp(testConfig(srv.URL), e.app.db, logging.Nop(), strings.NewReader("demo\n"), e.out)

		err := e.app.Login(context.Background())
		require.ErrorIs(t, err, client.ErrUnavailable)
		assert.Equal(t, ModeOffline, e.app.Mode())
	})
}

func TestRegister(t *testing.T) {
	silenceLog(t)

	t.Run("without token asks to log in", func(t *testing.T) {
		e := newEnv(t, nil, "alice\nalice@example.com\n")
		stubPassword(t, []byte("secret"))

		require.NoError(t, e.app.Register(context.Background()))

		assert.False(t, e.app.isLoggedIn())
		assert.Contains(t, e.out.String(), "User created successfully\nPlease log in.")
	})

	t.Run("with token logs in", func(t *testing.T) {
		e := newEnv(t, apitest.New(apitest.WithRegisterToken()), "bob\n\n")
		stubPassword(t, []byte("secret"))

		require.NoError(t, e.app.Register(context.Background()))

		assert.True(t, e.app.isLoggedIn())
		assert.Contains(t, e.out.String(), "Registered and logged in as bob")
	})

	t.Run("duplicate", func(t *testing.T) {
		e := newEnv(t, nil, "demo\n\n")
		stubPassword(t, []byte("secret"))

		err := e.app.Register(context.Background())
		require.Error(t, err)
		assert.Equal(t, "User already exists", client.Message(err, ""))
	})
}

func TestLogoutAndWhoAmI(t *testing.T) {
	e := newEnv(t, nil, "")
	ctx := context.Background()

	require.NoError(t, e.app.WhoAmI(ctx))
	assert.Contains(t, e.out.String(), "Not logged in")

	e.login(t)
	e.out.Reset()
	require.NoError(t, e.app.WhoAmI(ctx))
	assert.Contains(t, e.out.String(), "demo (id ")

	require.NoError(t, e.app.Logout(ctx))
	assert.False(t, e.app.isLoggedIn())
	assert.Contains(t, e.out.String(), "Logged out")
}

func TestVerify(t *testing.T) {
	silenceLog(t)
	e := newEnv(t, nil, "")
	e.login(t)

	require.NoError(t, e.app.Verify(context.Background()))
	assert.Contains(t, e.out.String(), "Session is valid")

	e.api.ExpireTokens()
	e.out.Reset()
	require.NoError(t, e.app.Verify(context.Background()))
	assert.False(t, e.app.isLoggedIn())
	assert.Contains(t, e.out.String(), msgSessionExpired)
}

func TestCheckSession(t *testing.T) {
	silenceLog(t)
	e := newEnv(t, nil, "")
	ctx := context.Background()

	// logged out: nothing to check, mode untouched
	e.app.checkSession(ctx)
	assert.Equal(t, Mode(""), e.app.Mode())

	e.login(t)
	e.app.checkSession(ctx)
	assert.Equal(t, ModeOnline, e.app.Mode())
	assert.True(t, e.app.isLoggedIn())

	e.api.ExpireTokens()
	e.app.checkSession(ctx)
	assert.False(t, e.app.isLoggedIn())
	assert.Contains(t, e.out.String(), msgSessionExpired)
}

func TestStartSessionWatcher_StopsWithContext(t *testing.T) {
	e := newEnv(t, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.app.StartSessionWatcher(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSessionExpiredDuringCommand(t *testing.T) {
	e := newEnv(t, nil, "")
	e.login(t)
	e.api.ExpireTokens()

	err := e.app.Submissions(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, isSessionExpiry(err))
	assert.False(t, e.app.isLoggedIn())
	assert.Equal(t, 1, strings.Count(e.out.String(), msgSessionExpired))
}

func TestSessionSurvivesRestart(t *testing.T) {
	silenceLog(t)
	ctx := context.Background()

	api, srv := apitest.NewTestServer(t, nil)
	apitest.Seed(api, time.Now())

	cfg := testConfig(srv.URL)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "state", "client.db")
	cfg.LogFormat = "json"

	first, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	_, err = first.auth.Login(ctx, "demo", "demo")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = os.Stat(cfg.DatabasePath)
	require.NoError(t, err)

	second, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	s := second.store.Snapshot()
	require.True(t, s.IsAuthenticated)
	assert.Equal(t, "demo", s.User.Username)
	assert.False(t, s.Loading)
}

func TestNewApp_BadLogFormat(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.LogFormat = "xml"

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
}
