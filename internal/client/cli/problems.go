package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/contestclient/internal/client/poller"
	"github.com/dmitrijs2005/contestclient/internal/filex"
)

// languageByExt maps source file extensions to the judge's language names.
var languageByExt = map[string]string{
	".py":   "python",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".c":    "c",
	".go":   "go",
	".java": "java",
	".js":   "javascript",
	".rs":   "rust",
}

func guessLanguage(filename string) (string, bool) {
	lang, ok := languageByExt[strings.ToLower(filepath.Ext(filename))]
	return lang, ok
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *App) Problems(ctx context.Context) error {
	list, err := a.problems.Problems(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No problems")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tTIME\tMEMORY")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%gs\t%dMB\n", p.ID, p.Title, p.Difficulty, p.TimeLimit, p.MemoryLimit)
	}
	return w.Flush()
}

// Statement downloads a problem statement to a file: the second argument,
// or the name the server suggests.
func (a *App) Statement(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("statement <problem-id> [output-file]")
	}

	st, err := a.problems.Statement(ctx, args[0])
	if err != nil {
		return err
	}

	path := st.Filename
	if len(args) == 2 {
		path = args[1]
	}
	if err := filex.WriteFile(path, st.Data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved statement of problem %s to %s (%d bytes, %s)\n", st.ProblemID, path, len(st.Data), st.ContentType)
	return nil
}

// Submit uploads a source file and follows the submission until the judge
// reaches a verdict. Ctrl-C stops following; the submission itself stays.
func (a *App) Submit(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("submit <problem-id> <source-file> [language]")
	}
	problemID, path := args[0], args[1]

	var (
		language string
		ok       bool
	)
	if len(args) == 3 {
		language, ok = args[2], true
	} else {
		language, ok = guessLanguage(path)
	}
	if !ok {
		return usage("submit <problem-id> <source-file> <language> (cannot guess the language of " + filepath.Base(path) + ")")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := a.submissions.Submit(ctx, problemID, language, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted as #%d (judge id %s)\n", res.SubmissionID, res.JudgeSubmissionID)

	return a.follow(ctx, strconv.FormatInt(res.SubmissionID, 10))
}

// follow polls a submission and prints every status change.
func (a *App) follow(ctx context.Context, submissionID string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fetch := func(ctx context.Context) (string, error) {
		st, err := a.submissions.Status(ctx, submissionID)
		if err != nil {
			return "", err
		}
		return st.Status, nil
	}

	last := ""
	p := poller.New(fetch,
		poller.Config{Interval: a.config.PollInterval, MaxAttempts: a.config.PollMaxAttempts},
		poller.WithLogger(a.logger),
		poller.OnChange(func(s poller.Snapshot) {
			if s.Status != "" && s.Status != last {
				last = s.Status
				fmt.Fprintf(a.out, "  status: %s\n", s.Status)
			}
		}),
	)

	snap, err := p.Run(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Verdict: %s\n", snap.Status)
		return nil
	case snap.State == poller.StateStopped && ctx.Err() != nil:
		fmt.Fprintf(a.out, "Stopped following submission #%s; check it later with 'status %s'\n", submissionID, submissionID)
		return nil
	default:
		return err
	}
}

func (a *App) Status(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("status <submission-id>")
	}

	st, err := a.submissions.Status(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Submission %s: %s\n", args[0], st.Status)
	if st.ExecutionTime != nil {
		fmt.Fprintf(a.out, "  time:   %.3fs\n", *st.ExecutionTime)
	}
	if st.MemoryUsed != nil {
		fmt.Fprintf(a.out, "  memory: %dKB\n", *st.MemoryUsed)
	}
	if st.Message != "" {
		fmt.Fprintf(a.out, "  %s\n", st.Message)
	}
	return nil
}

func (a *App) Submissions(ctx context.Context) error {
	list, err := a.submissions.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No submissions yet")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "ID\tPROBLEM\tLANGUAGE\tSTATUS\tSUBMITTED")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.ProblemID, s.Language, s.Status, s.SubmissionTime)
	}
	return w.Flush()
}
