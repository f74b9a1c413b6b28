package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
)

type ContestPhase int

const (
	PhaseUpcoming ContestPhase = iota
	PhaseRunning
	PhaseEnded
)

func (p ContestPhase) String() string {
	switch p {
	case PhaseUpcoming:
		return "upcoming"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ContestTimer derives a contest's phase and countdown from its window.
// Start is inclusive and End exclusive.
type ContestTimer struct {
	Start time.Time
	End   time.Time
}

func NewContestTimer(c models.Contest) ContestTimer {
	return ContestTimer{Start: c.StartTime, End: c.EndTime}
}

func (t ContestTimer) Phase(now time.Time) ContestPhase {
	switch {
	case now.Before(t.Start):
		return PhaseUpcoming
	case now.Before(t.End):
		return PhaseRunning
	default:
		return PhaseEnded
	}
}

// Remaining is the time until the contest starts (upcoming), until it ends
// (running), or zero once it is over.
func (t ContestTimer) Remaining(now time.Time) time.Duration {
	switch t.Phase(now) {
	case PhaseUpcoming:
		return t.Start.Sub(now)
	case PhaseRunning:
		return t.End.Sub(now)
	default:
		return 0
	}
}

// Describe renders the timer line shown to contestants.
func (t ContestTimer) Describe(now time.Time) string {
	switch t.Phase(now) {
	case PhaseUpcoming:
		return "starts in " + FormatCountdown(t.Remaining(now))
	case PhaseRunning:
		return "ends in " + FormatCountdown(t.Remaining(now))
	default:
		return "contest has ended"
	}
}

// FormatCountdown prints d as [Nd ]HH:MM:SS, rounding down to the second.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	h := (total % 86400) / 3600
	m := (total % 3600) / 60
	s := total % 60

	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
