package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/services"
)

func parseTeamID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid team id %q", s)
	}
	return id, nil
}

// Contest prints the contest, its phase and what the user may do in it.
func (a *App) Contest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("contest <contest-id>")
	}

	c, err := a.contests.Contest(ctx, args[0])
	if err != nil {
		return err
	}
	access, err := a.contests.AccessStatus(ctx, args[0])
	if err != nil {
		return err
	}

	timer := services.NewContestTimer(*c)
	now := a.now()

	fmt.Fprintf(a.out, "%s (#%s)\n", c.Name, c.ID)
	fmt.Fprintf(a.out, "  starts:  %s\n", c.StartTime.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "  ends:    %s\n", c.EndTime.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "  status:  %s, %s\n", timer.Phase(now), timer.Describe(now))
	fmt.Fprintf(a.out, "  access:  registered=%t can_access=%t can_register=%t\n",
		access.IsRegistered, access.CanAccess, access.CanRegister)

	if len(c.Problems) > 0 {
		w := a.table()
		fmt.Fprintln(w, "  ID\tTITLE")
		for _, p := range c.Problems {
			fmt.Fprintf(w, "  %s\t%s\n", p.ID, p.Title)
		}
		return w.Flush()
	}
	return nil
}

// Timer prints the contest countdown. With -f it keeps printing every
// TimerTick until the contest phase changes or the user presses Ctrl-C.
func (a *App) Timer(ctx context.Context, args []string) error {
	follow := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-f" || arg == "--follow" {
			follow = true
			continue
		}
		rest = append(rest, arg)
	}
	if len(rest) != 1 {
		return usage("timer <contest-id> [-f]")
	}

	c, err := a.contests.Contest(ctx, rest[0])
	if err != nil {
		return err
	}
	timer := services.NewContestTimer(*c)

	phase := timer.Phase(a.now())
	fmt.Fprintf(a.out, "%s: %s\n", c.Name, timer.Describe(a.now()))
	if !follow || phase == services.PhaseEnded {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	tick := a.config.TimerTick
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		now := a.now()
		fmt.Fprintf(a.out, "%s: %s\n", c.Name, timer.Describe(now))
		if timer.Phase(now) != phase {
			return nil
		}
	}
}

// Enroll registers the user for a contest and prints the resulting status.
func (a *App) Enroll(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("enroll <contest-id>")
	}

	if err := a.contests.RegisterForContest(ctx, args[0]); err != nil {
		return err
	}
	st, err := a.contests.RegistrationStatus(ctx, args[0])
	if err != nil {
		return err
	}

	if st.IsRegistered {
		fmt.Fprintf(a.out, "Registered for contest %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Registration for contest %s is pending\n", args[0])
	}
	return nil
}

func (a *App) Teams(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("teams <contest-id>")
	}

	teams, err := a.contests.ListTeams(ctx, args[0])
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		fmt.Fprintln(a.out, "No teams yet")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tLEADER\tMEMBERS")
	for _, t := range teams {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", t.ID, t.TeamName, t.LeaderUsername, t.MemberCount)
	}
	return w.Flush()
}

func (a *App) CreateTeam(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("createteam <contest-id> <team name>")
	}

	name := strings.Join(args[1:], " ")
	id, err := a.contests.CreateTeam(ctx, args[0], name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created team %q (#%d)\n", name, id)
	return nil
}

func (a *App) JoinTeam(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("jointeam <contest-id> <team-id>")
	}
	teamID, err := parseTeamID(args[1])
	if err != nil {
		return err
	}

	if err := a.contests.JoinTeam(ctx, args[0], teamID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Joined team #%d\n", teamID)
	return nil
}

// LeaveTeam asks for confirmation before leaving the current team.
func (a *App) LeaveTeam(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("leaveteam <contest-id>")
	}

	ok, err := GetConfirmation(a.reader, "Leave your team in contest "+args[0]+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.contests.LeaveTeam(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Left the team")
	return nil
}

func (a *App) MyTeam(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("myteam <contest-id>")
	}

	team, err := a.contests.MyTeam(ctx, args[0])
	if err != nil {
		return err
	}
	if team == nil {
		fmt.Fprintln(a.out, "You are not in a team")
		return nil
	}

	fmt.Fprintf(a.out, "%s (#%d), leader %s, %d member(s)\n", team.TeamName, team.ID, team.LeaderUsername, team.MemberCount)
	return nil
}

// Members lists a team's members; without a team id, the user's own team.
func (a *App) Members(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("members <contest-id> [team-id]")
	}

	var teamID int64
	if len(args) == 2 {
		id, err := parseTeamID(args[1])
		if err != nil {
			return err
		}
		teamID = id
	} else {
		team, err := a.contests.MyTeam(ctx, args[0])
		if err != nil {
			return err
		}
		if team == nil {
			fmt.Fprintln(a.out, "You are not in a team")
			return nil
		}
		teamID = team.ID
	}

	members, err := a.contests.TeamMembers(ctx, args[0], teamID)
	if err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintln(w, "USER\tROLE\tJOINED")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Username, m.Role, m.JoinedAt)
	}
	return w.Flush()
}
