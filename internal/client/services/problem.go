package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

const (
	contentTypePDF = "application/pdf"
	// maxStatementSize bounds a downloaded statement document.
	maxStatementSize = 32 << 20
)

type ProblemService interface {
	Problems(ctx context.Context) ([]models.Problem, error)
	Metadata(ctx context.Context, problemID string) (*models.ProblemMetadata, error)
	// Statement downloads the statement document as is.
	Statement(ctx context.Context, problemID string) (*models.Statement, error)
}

type problemService struct {
	req    Requester
	logger logging.Logger
}

func NewProblemService(req Requester, logger logging.Logger) ProblemService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &problemService{req: req, logger: logger.With("component", "problem")}
}

func problemPath(problemID, leaf string) string {
	return "/general/problem/" + seg(problemID) + "/" + leaf
}

func (s *problemService) Problems(ctx context.Context) ([]models.Problem, error) {
	var out struct {
		Problems []models.Problem `json:"problems"`
	}
	if _, err := doJSON(ctx, s.req, http.MethodGet, "/general/problems", nil, &out, "Failed to load problems"); err != nil {
		logFailure(ctx, s.logger, "list problems", err)
		return nil, err
	}
	if out.Problems == nil {
		out.Problems = []models.Problem{}
	}
	return out.Problems, nil
}

func (s *problemService) Metadata(ctx context.Context, problemID string) (*models.ProblemMetadata, error) {
	var out models.ProblemMetadata
	if _, err := doJSON(ctx, s.req, http.MethodGet, problemPath(problemID, "metadata"), nil, &out, "Failed to load problem"); err != nil {
		logFailure(ctx, s.logger, "load problem metadata", err)
		return nil, err
	}
	return &out, nil
}

func (s *problemService) Statement(ctx context.Context, problemID string) (*models.Statement, error) {
	resp, err := s.req.AuthenticatedRequest(ctx, http.MethodGet, problemPath(problemID, "statement"), nil, client.WithRawBody())
	if err != nil {
		logFailure(ctx, s.logger, "download statement", err)
		return nil, err
	}

	if !client.IsSuccess(resp.StatusCode) {
		apiErr := client.ErrorFromResponse(resp, "Failed to load problem statement")
		logFailure(ctx, s.logger, "download statement", apiErr)
		return nil, apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStatementSize))
	if err != nil {
		return nil, client.NewNetworkError(fmt.Errorf("read statement: %w", err))
	}

	st := &models.Statement{
		ProblemID:   problemID,
		ContentType: contentTypePDF,
		Filename:    problemID + ".pdf",
		Data:        data,
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		st.ContentType = ct
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		st.Filename = params["filename"]
	}
	return st, nil
}
