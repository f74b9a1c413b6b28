package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the statuses in order, repeating the last one, and counts
// calls.
func scripted(calls *atomic.Int32, statuses ...string) FetchFunc {
	return func(ctx context.Context) (string, error) {
		n := int(calls.Add(1))
		if n > len(statuses) {
			n = len(statuses)
		}
		return statuses[n-1], nil
	}
}

func TestRun_StopsAtTerminalStatus(t *testing.T) {
	var calls atomic.Int32
	var states []State

	p := New(scripted(&calls, "Pending", "Pending", "Accepted"),
		Config{Interval: 5 * time.Millisecond},
		OnChange(func(s Snapshot) { states = append(states, s.State) }),
	)

	snap, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, StateTerminal, snap.State)
	assert.Equal(t, "Accepted", snap.Status)
	assert.Equal(t, 3, snap.Attempts)
	assert.Equal(t, snap, p.Snapshot())
	assert.Equal(t, []State{StatePolling, StatePolling, StatePolling, StateTerminal}, states)
}

func TestRun_WaitsIntervalBetweenFetches(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	fetch := func(context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		times = append(times, time.Now())
		if len(times) == 3 {
			return "wrong_answer", nil
		}
		return "running", nil
	}

	interval := 20 * time.Millisecond
	_, err := New(fetch, Config{Interval: interval}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, times, 3)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), interval)
	}
}

func TestRun_CancelDuringFetchDiscardsLateResult(t *testing.T) {
	var calls atomic.Int32
	var aborted atomic.Bool
	inSecond := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "pending", nil
		}
		close(inSecond)
		<-release
		aborted.Store(ctx.Err() != nil)
		return "accepted", nil
	}

	p := New(fetch, Config{Interval: time.Millisecond})

	type result struct {
		snap Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := p.Run(context.Background())
		done <- result{snap, err}
	}()

	<-inSecond
	p.Cancel()
	assert.Equal(t, StateStopped, p.Snapshot().State)
	close(release)

	res := <-done
	require.ErrorIs(t, res.err, ErrStopped)
	assert.Equal(t, StateStopped, res.snap.State)
	assert.Equal(t, "pending", res.snap.Status, "late accepted must be dropped")
	assert.Equal(t, StateStopped, p.Snapshot().State)
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, aborted.Load(), "Cancel must let the in-flight fetch finish")

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load(), "no fetch after cancellation")
}

func TestRun_CancelFromOnChangeIssuesNoFetch(t *testing.T) {
	for i := 0; i < 300; i++ {
		var calls atomic.Int32
		var p *Poller
		p = New(scripted(&calls, "pending"), Config{Interval: time.Millisecond},
			OnChange(func(s Snapshot) {
				if s.State == StatePolling && s.Attempts == 0 {
					p.Cancel()
				}
			}),
		)

		snap, err := p.Run(context.Background())
		require.ErrorIs(t, err, ErrStopped)
		require.Equal(t, StateStopped, snap.State)
		require.Zero(t, calls.Load(), "run %d fetched after Cancel", i)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	p := New(func(context.Context) (string, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return "pending", nil
	}, Config{Interval: 50 * time.Millisecond})

	snap, err := p.Run(ctx)
	require.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateStopped, snap.State)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestRun_MaxAttempts(t *testing.T) {
	var calls atomic.Int32
	p := New(scripted(&calls, "queued"), Config{Interval: time.Millisecond, MaxAttempts: 4})

	snap, err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrAttemptsExceeded)
	assert.Equal(t, StateStopped, snap.State)
	assert.Equal(t, 4, snap.Attempts)
	assert.Equal(t, int32(4), calls.Load())
}

func TestRun_FetchErrorsCountAsAttempts(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")

	p := New(func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", boom
		}
		return "compilation_error", nil
	}, Config{Interval: time.Millisecond, MaxAttempts: 5})

	snap, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateTerminal, snap.State)
	assert.Equal(t, "compilation_error", snap.Status)
	assert.Equal(t, 3, snap.Attempts)
}

func TestRun_UnauthorizedStopsImmediately(t *testing.T) {
	var calls atomic.Int32
	expired := &client.APIError{Kind: client.KindSessionExpired, Status: 401, Message: "Token expired"}

	p := New(func(context.Context) (string, error) {
		calls.Add(1)
		return "", expired
	}, Config{Interval: time.Millisecond, MaxAttempts: 10})

	snap, err := p.Run(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, StateStopped, snap.State)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelBeforeRun(t *testing.T) {
	var calls atomic.Int32
	p := New(scripted(&calls, "accepted"), Config{})

	p.Cancel()
	p.Cancel()

	snap, err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StateStopped, snap.State)
	assert.Zero(t, calls.Load())
}

func TestRun_SingleUse(t *testing.T) {
	var calls atomic.Int32
	p := New(scripted(&calls, "accepted"), Config{})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, int32(1), calls.Load())

	p.Cancel()
	assert.Equal(t, StateTerminal, p.Snapshot().State, "cancel after a verdict is a no-op")
}

func TestIsTerminal(t *testing.T) {
	p := New(nil, Config{})
	assert.True(t, p.IsTerminal("ACCEPTED"))
	assert.True(t, p.IsTerminal(" time_limit_exceeded "))
	assert.False(t, p.IsTerminal("pending"))
	assert.False(t, p.IsTerminal(""))

	custom := New(nil, Config{TerminalStatuses: []string{"Done"}})
	assert.True(t, custom.IsTerminal("done"))
	assert.False(t, custom.IsTerminal("accepted"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "terminal", StateTerminal.String())
	assert.Equal(t, "stopped", StateStopped.String())
}
