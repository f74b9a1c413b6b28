package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/contestclient/internal/client/client"
	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

type SubmissionService interface {
	// Submit uploads source as the solution file of problemID.
	Submit(ctx context.Context, problemID, language, filename string, source io.Reader) (*models.SubmitResult, error)
	Status(ctx context.Context, submissionID string) (*models.SubmissionStatus, error)
	List(ctx context.Context) ([]models.Submission, error)
}

type submissionService struct {
	req    Requester
	logger logging.Logger
}

func NewSubmissionService(req Requester, logger logging.Logger) SubmissionService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &submissionService{req: req, logger: logger.With("component", "submission")}
}

func (s *submissionService) Submit(ctx context.Context, problemID, language, filename string, source io.Reader) (*models.SubmitResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build submission: %w", err)
	}
	if _, err := io.Copy(part, source); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	if err := w.WriteField("problem_id", problemID); err != nil {
		return nil, fmt.Errorf("build submission: %w", err)
	}
	if err := w.WriteField("language", language); err != nil {
		return nil, fmt.Errorf("build submission: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build submission: %w", err)
	}

	resp, err := s.req.AuthenticatedRequest(ctx, http.MethodPost, "/submission/submit", &buf, client.WithContentType(w.FormDataContentType()))
	if err != nil {
		logFailure(ctx, s.logger, "submit solution", err)
		return nil, err
	}
	if !client.IsSuccess(resp.StatusCode) {
		apiErr := client.ErrorFromResponse(resp, "Failed to submit solution")
		logFailure(ctx, s.logger, "submit solution", apiErr)
		return nil, apiErr
	}

	var out models.SubmitResult
	if err := client.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "solution submitted", "problem", problemID, "submission", out.SubmissionID)
	return &out, nil
}

func (s *submissionService) Status(ctx context.Context, submissionID string) (*models.SubmissionStatus, error) {
	var out models.SubmissionStatus
	if _, err := doJSON(ctx, s.req, http.MethodGet, "/submission/status/"+seg(submissionID), nil, &out, "Failed to load submission status"); err != nil {
		logFailure(ctx, s.logger, "load submission status", err)
		return nil, err
	}
	if out.SubmissionID == "" {
		out.SubmissionID = submissionID
	}
	return &out, nil
}

func (s *submissionService) List(ctx context.Context) ([]models.Submission, error) {
	var out []models.Submission
	if _, err := doJSON(ctx, s.req, http.MethodGet, "/submission/all", nil, &out, "Failed to load submissions"); err != nil {
		logFailure(ctx, s.logger, "list submissions", err)
		return nil, err
	}
	if out == nil {
		out = []models.Submission{}
	}
	return out, nil
}
