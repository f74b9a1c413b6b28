// Package poller repeatedly fetches a submission's status until it reaches
// a terminal value, is cancelled, or runs out of attempts.
//
// Fetches are strictly sequential: the next one starts Interval after the
// previous one completed. Once the poller is Stopped no further fetch is
// issued. Cancel does not abort a fetch in flight; its result is discarded
// when it arrives.
package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

type State int

const (
	StatePending State = iota
	StatePolling
	StateTerminal
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePolling:
		return "polling"
	case StateTerminal:
		return "terminal"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	// ErrAttemptsExceeded is returned when MaxAttempts fetches completed
	// without a terminal status.
	ErrAttemptsExceeded = errors.New("submission still not judged after max attempts")

	// ErrStopped is returned by Run when the poller was cancelled.
	ErrStopped = errors.New("polling stopped")

	ErrAlreadyStarted = errors.New("poller already started")
)

// DefaultTerminalStatuses are the judge verdicts after which a submission
// never changes again.
var DefaultTerminalStatuses = []string{
	"accepted",
	"wrong_answer",
	"time_limit_exceeded",
	"memory_limit_exceeded",
	"runtime_error",
	"compilation_error",
	"rejected",
	"error",
	"failed",
	"completed",
}

// FetchFunc returns the current status of the polled submission.
type FetchFunc func(ctx context.Context) (string, error)

type Config struct {
	Interval time.Duration
	// MaxAttempts bounds the number of fetches; zero means unbounded.
	MaxAttempts int
	// TerminalStatuses are matched case-insensitively. Nil selects
	// DefaultTerminalStatuses.
	TerminalStatuses []string
}

// Snapshot describes the poller at one point in time.
type Snapshot struct {
	State State
	// Status is the last status fetched; in StateTerminal it is the verdict.
	Status   string
	Attempts int
	Err      error
}

type Option func(*Poller)

// OnChange registers fn to observe every snapshot change. fn runs on the
// polling goroutine.
func OnChange(fn func(Snapshot)) Option {
	return func(p *Poller) { p.onChange = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// Poller polls one submission. It is single-use.
type Poller struct {
	fetch    FetchFunc
	cfg      Config
	terminal map[string]struct{}
	onChange func(Snapshot)
	logger   logging.Logger

	mu      sync.Mutex
	snap    Snapshot
	started bool
	stopped chan struct{}
}

func New(fetch FetchFunc, cfg Config, opts ...Option) *Poller {
	statuses := cfg.TerminalStatuses
	if statuses == nil {
		statuses = DefaultTerminalStatuses
	}
	terminal := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		terminal[strings.ToLower(s)] = struct{}{}
	}

	p := &Poller{
		fetch:    fetch,
		cfg:      cfg,
		terminal: terminal,
		logger:   logging.Nop(),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsTerminal reports whether status ends polling.
func (p *Poller) IsTerminal(status string) bool {
	_, ok := p.terminal[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Cancel stops the poller. It is safe to call at any time, from any
// goroutine, any number of times.
func (p *Poller) Cancel() {
	p.mu.Lock()
	if p.snap.State == StateTerminal || p.snap.State == StateStopped {
		p.mu.Unlock()
		return
	}
	p.snap.State = StateStopped
	p.snap.Err = ErrStopped
	snap := p.snap
	p.mu.Unlock()

	close(p.stopped)
	p.notify(snap)
}

// Run polls until a terminal status, cancellation (Cancel or ctx), or the
// attempt bound, and returns the final snapshot. The error is nil only for
// StateTerminal.
func (p *Poller) Run(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.started {
		snap := p.snap
		p.mu.Unlock()
		return snap, ErrAlreadyStarted
	}
	p.started = true
	if p.snap.State == StateStopped {
		snap := p.snap
		p.mu.Unlock()
		return snap, ErrStopped
	}
	p.snap.State = StatePolling
	snap := p.snap
	p.mu.Unlock()
	p.notify(snap)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-p.stopped:
			return p.Snapshot(), ErrStopped
		case <-ctx.Done():
			p.Cancel()
			return p.Snapshot(), ErrStopped
		case <-timer.C:
		}

		// select picks among ready cases at random, so timer.C may win
		// over a Cancel that already happened
		if !p.polling() {
			return p.Snapshot(), ErrStopped
		}

		status, err := p.fetch(ctx)
		if ctx.Err() != nil {
			p.Cancel()
			return p.Snapshot(), ErrStopped
		}

		snap, done := p.observe(status, err)
		if snap == nil {
			// cancelled while the fetch was in flight
			return p.Snapshot(), ErrStopped
		}
		p.notify(*snap)
		if done {
			return *snap, snap.Err
		}

		timer.Reset(p.cfg.Interval)
	}
}

func (p *Poller) polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.State == StatePolling
}

// observe folds one fetch result into the state. It returns nil when the
// poller was stopped meanwhile, and done when polling is over.
func (p *Poller) observe(status string, err error) (*Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snap.State != StatePolling {
		return nil, true
	}

	p.snap.Attempts++

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		p.logger.Warn(context.Background(), "status poll rejected, stopping", "error", err)
		p.stopLocked(err)
	case err != nil:
		p.logger.Warn(context.Background(), "status poll failed", "attempt", p.snap.Attempts, "error", err)
		p.snap.Err = err
	case p.IsTerminal(status):
		p.snap.State = StateTerminal
		p.snap.Status = status
		p.snap.Err = nil
	default:
		p.snap.Status = status
		p.snap.Err = nil
	}

	if p.snap.State == StatePolling && p.cfg.MaxAttempts > 0 && p.snap.Attempts >= p.cfg.MaxAttempts {
		p.stopLocked(ErrAttemptsExceeded)
	}

	snap := p.snap
	return &snap, snap.State != StatePolling
}

func (p *Poller) stopLocked(err error) {
	p.snap.State = StateStopped
	p.snap.Err = err
	close(p.stopped)
}

func (p *Poller) notify(s Snapshot) {
	if p.onChange != nil {
		p.onChange(s)
	}
}
