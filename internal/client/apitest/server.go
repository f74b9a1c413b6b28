package apitest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

// NewTestServer starts api (a fresh one when nil) on an httptest server that
// is closed with the test.
func NewTestServer(t testing.TB, api *API) (*API, *httptest.Server) {
	t.Helper()
	if api == nil {
		api = New()
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return api, srv
}

// Serve runs api on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, api *API, logger logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "fake contest API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info(ctx, "shutting down fake contest API")
	return srv.Shutdown(shutdownCtx)
}

// Seed fills api with a demo account, a running contest and two problems.
func Seed(api *API, now time.Time) {
	api.AddUser("demo", "demo")

	problems := []models.ProblemMetadata{
		{
			Problem:   models.Problem{ID: "1", Title: "A + B", Difficulty: "easy", TimeLimit: 1, MemoryLimit: 256},
			Languages: []string{"python", "cpp", "go"},
			Tags:      []string{"math"},
		},
		{
			Problem:   models.Problem{ID: "2", Title: "Shortest Path", Difficulty: "medium", TimeLimit: 2, MemoryLimit: 512},
			Languages: []string{"python", "cpp", "go"},
			Tags:      []string{"graphs"},
		},
	}
	for _, p := range problems {
		api.AddProblem(p, []byte("%PDF-1.4\n% statement of problem "+p.ID+"\n%%EOF\n"))
	}

	api.AddContest(models.Contest{
		ID:        "1",
		Name:      "Demo Round",
		StartTime: now.Add(-time.Hour).UTC(),
		EndTime:   now.Add(2 * time.Hour).UTC(),
		Problems:  []models.Problem{problems[0].Problem, problems[1].Problem},
	})
}
