// Package cli provides the interactive contest command-line client.
//
// It wires configuration, the local session database, the API services and
// an interactive REPL. Typical flow: restore the previous session, start a
// background session watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout, with the session kept across restarts
//   - Problems: list, download statements, submit and follow judging
//   - Contests: details, countdown timer, registration, teams
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// NewCommandLine exposes the same commands as one-shot subcommands.
package cli
