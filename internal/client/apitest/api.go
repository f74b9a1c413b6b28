// Package apitest is an in-memory stand-in for the contest platform API.
//
// It speaks the same REST dialect as the real platform (JSON bodies, errors
// as {"message": ...}, bearer JWTs, 401 for rejected credentials) and keeps
// enough state to drive the client end to end: users, contests, teams,
// registrations, problems, and submissions with scripted judge statuses.
// Tests start it with NewTestServer; cmd/server runs it for local trials.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = 24 * time.Hour

type user struct {
	models.User
	hash []byte
}

type team struct {
	models.ContestTeam
	members []models.TeamMember
}

type contest struct {
	models.Contest
	teams         map[int64]*team
	membership    map[int64]int64     // user id -> team id
	registrations map[int64]time.Time // user id -> registration time
}

type submission struct {
	models.Submission
	userID int64
	script []string
}

// API is the fake platform. The zero value is not usable; call New.
type API struct {
	mu     sync.Mutex
	secret []byte
	logger logging.Logger

	users      map[string]*user
	nextUserID int64
	generation int

	contests   map[string]*contest
	nextTeamID int64

	problems   map[string]models.ProblemMetadata
	statements map[string][]byte
	order      []string

	submissions map[int64]*submission
	nextSubID   int64
	script      []string

	registerIssuesToken bool
	failures            map[string]failure

	hits        map[string]int
	lastHeaders http.Header
}

type failure struct {
	status  int
	message string
}

type Option func(*API)

// WithSecret sets the JWT signing key.
func WithSecret(secret []byte) Option {
	return func(a *API) { a.secret = secret }
}

func WithLogger(l logging.Logger) Option {
	return func(a *API) { a.logger = l }
}

// WithRegisterToken makes /auth/register also hand out a session token.
func WithRegisterToken() Option {
	return func(a *API) { a.registerIssuesToken = true }
}

func New(opts ...Option) *API {
	a := &API{
		secret:      []byte("apitest-secret"),
		logger:      logging.Nop(),
		users:       make(map[string]*user),
		contests:    make(map[string]*contest),
		problems:    make(map[string]models.ProblemMetadata),
		statements:  make(map[string][]byte),
		submissions: make(map[int64]*submission),
		failures:    make(map[string]failure),
		hits:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the router serving the API.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(a.record)

	r.Post("/auth/login", a.login)
	r.Post("/auth/register", a.register)
	r.Post("/auth/verify", a.verify)

	r.Get("/general/problems", a.listProblems)
	r.Get("/general/problem/{pid}/metadata", a.problemMetadata)
	r.Get("/general/problem/{pid}/statement", a.problemStatement)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth)

		r.Route("/contest/{cid}", func(r chi.Router) {
			r.Get("/", a.getContest)
			r.Get("/teams", a.listTeams)
			r.Post("/teams", a.createTeam)
			r.Post("/teams/leave", a.leaveTeam)
			r.Post("/teams/{tid}/join", a.joinTeam)
			r.Get("/teams/{tid}/members", a.teamMembers)
			r.Get("/my-team", a.myTeam)
			r.Post("/register", a.registerForContest)
			r.Get("/registration-status", a.registrationStatus)
			r.Get("/access-status", a.accessStatus)
		})

		r.Post("/submission/submit", a.submit)
		r.Get("/submission/status/{sid}", a.submissionStatus)
		r.Get("/submission/all", a.listSubmissions)
	})

	return r
}

// record counts requests per "METHOD /path", remembers the last request's
// headers, and serves forced failures.
func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		a.mu.Lock()
		a.hits[key]++
		a.lastHeaders = r.Header.Clone()
		f, forced := a.failures[key]
		a.mu.Unlock()

		a.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)

		if forced {
			writeMessage(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- test controls ----

// AddUser creates an account and returns it.
func (a *API) AddUser(username, password string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addUserLocked(username, "", hash)
}

func (a *API) addUserLocked(username, email string, hash []byte) models.User {
	a.nextUserID++
	u := &user{
		User: models.User{ID: a.nextUserID, Username: username, Email: email, Role: "user"},
		hash: hash,
	}
	a.users[username] = u
	return u.User
}

// IssueToken mints a valid token for an existing user.
func (a *API) IssueToken(username string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[username]
	if !ok {
		panic("apitest: unknown user " + username)
	}
	tok, err := a.tokenLocked(u)
	if err != nil {
		panic(err)
	}
	return tok
}

func (a *API) tokenLocked(u *user) (string, error) {
	return generateToken(Claims{UserID: u.ID, Username: u.Username, Generation: a.generation}, a.secret, tokenValidity)
}

// ExpireTokens revokes every token issued so far.
func (a *API) ExpireTokens() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
}

// Fail makes every "method path" request answer status with message until
// cleared with Recover.
func (a *API) Fail(method, path string, status int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[method+" "+path] = failure{status: status, message: message}
}

func (a *API) Recover(method, path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, method+" "+path)
}

// Hits returns how many "method path" requests were served.
func (a *API) Hits(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[method+" "+path]
}

// TotalHits returns the number of requests served.
func (a *API) TotalHits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.hits {
		n += c
	}
	return n
}

// LastHeaders returns the headers of the most recent request.
func (a *API) LastHeaders() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastHeaders.Clone()
}

// ---- auth middleware ----

type ctxKey struct{}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeMessage(w, http.StatusUnauthorized, "Token is missing")
			return
		}

		tokenString := header
		if len(header) > 7 && header[:7] == "Bearer " {
			tokenString = header[7:]
		}

		u, err := a.userFromToken(tokenString)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func (a *API) userFromToken(tokenString string) (models.User, error) {
	claims, err := parseToken(tokenString, a.secret)
	if err != nil {
		return models.User{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if claims.Generation != a.generation {
		return models.User{}, errInvalidToken
	}
	u, ok := a.users[claims.Username]
	if !ok || u.ID != claims.UserID {
		return models.User{}, errInvalidToken
	}
	return u.User, nil
}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decodeBody(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}
