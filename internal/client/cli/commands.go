package cli

import (
	"context"

	ucli "github.com/urfave/cli/v2"
)

// NewCommandLine exposes the REPL commands as one-shot subcommands. Without
// a subcommand the REPL is started.
func NewCommandLine(a *App) *ucli.App {
	noArgs := func(fn func(context.Context) error) ucli.ActionFunc {
		return func(c *ucli.Context) error {
			if err := a.requireLogin(c.Command.Name); err != nil {
				return err
			}
			return a.oneShot(fn(c.Context))
		}
	}
	withArgs := func(fn func(context.Context, []string) error) ucli.ActionFunc {
		return func(c *ucli.Context) error {
			if err := a.requireLogin(c.Command.Name); err != nil {
				return err
			}
			return a.oneShot(fn(c.Context, c.Args().Slice()))
		}
	}

	return &ucli.App{
		Name:                 "contest",
		Usage:                "contest platform client",
		HideVersion:          true,
		EnableBashCompletion: true,

		// errors are printed by oneShot; main decides the exit code
		ExitErrHandler: func(*ucli.Context, error) {},

		Action: func(c *ucli.Context) error {
			a.Run(c.Context)
			return nil
		},
		Commands: []*ucli.Command{
			{Name: "repl", Usage: "start the interactive shell", Action: func(c *ucli.Context) error {
				a.Run(c.Context)
				return nil
			}},
			{Name: "register", Usage: "create an account", Action: noArgs(a.Register)},
			{Name: "login", Usage: "log in", Action: noArgs(a.Login)},
			{Name: "logout", Usage: "forget the stored session", Action: noArgs(a.Logout)},
			{Name: "whoami", Usage: "show the logged-in user", Action: noArgs(a.WhoAmI)},
			{Name: "verify", Usage: "check the stored session with the server", Action: noArgs(a.Verify)},

			{Name: "problems", Usage: "list problems", Action: noArgs(a.Problems)},
			{Name: "statement", Usage: "download a problem statement", ArgsUsage: "<problem-id> [output-file]", Action: withArgs(a.Statement)},
			{Name: "submit", Usage: "submit a solution and wait for the verdict", ArgsUsage: "<problem-id> <source-file> [language]", Action: withArgs(a.Submit)},
			{Name: "status", Usage: "show a submission's status", ArgsUsage: "<submission-id>", Action: withArgs(a.Status)},
			{Name: "submissions", Usage: "list your submissions", Action: noArgs(a.Submissions)},

			{Name: "contest", Usage: "show a contest", ArgsUsage: "<contest-id>", Action: withArgs(a.Contest)},
			{
				Name:      "timer",
				Usage:     "show the contest countdown",
				ArgsUsage: "<contest-id>",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "follow", Aliases: []string{"f"}, Usage: "keep printing until the phase changes"},
				},
				Action: func(c *ucli.Context) error {
					if err := a.requireLogin(c.Command.Name); err != nil {
						return err
					}
					args := c.Args().Slice()
					if c.Bool("follow") {
						args = append(args, "-f")
					}
					return a.oneShot(a.Timer(c.Context, args))
				},
			},
			{Name: "enroll", Usage: "register for a contest", ArgsUsage: "<contest-id>", Action: withArgs(a.Enroll)},
			{Name: "teams", Usage: "list a contest's teams", ArgsUsage: "<contest-id>", Action: withArgs(a.Teams)},
			{Name: "createteam", Usage: "create a team", ArgsUsage: "<contest-id> <team name>", Action: withArgs(a.CreateTeam)},
			{Name: "jointeam", Usage: "join a team", ArgsUsage: "<contest-id> <team-id>", Action: withArgs(a.JoinTeam)},
			{Name: "leaveteam", Usage: "leave your team", ArgsUsage: "<contest-id>", Action: withArgs(a.LeaveTeam)},
			{Name: "myteam", Usage: "show your team", ArgsUsage: "<contest-id>", Action: withArgs(a.MyTeam)},
			{Name: "members", Usage: "list team members", ArgsUsage: "<contest-id> [team-id]", Action: withArgs(a.Members)},
		},
	}
}

func (a *App) requireLogin(cmd string) error {
	if authRequired[cmd] && !a.isLoggedIn() {
		printlnFn(msgLoginFirst)
		return ucli.Exit("", 1)
	}
	return nil
}

// oneShot turns a handler failure into a non-zero exit, printing it the way
// the REPL does.
func (a *App) oneShot(err error) error {
	if err == nil {
		return nil
	}
	report(err)
	return ucli.Exit("", 1)
}
