package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
)

// ContestService covers contest details, registration and teams. Every call
// goes through the authenticated request path.
type ContestService interface {
	Contest(ctx context.Context, contestID string) (*models.Contest, error)

	ListTeams(ctx context.Context, contestID string) ([]models.ContestTeam, error)
	CreateTeam(ctx context.Context, contestID, teamName string) (int64, error)
	JoinTeam(ctx context.Context, contestID string, teamID int64) error
	LeaveTeam(ctx context.Context, contestID string) error
	// MyTeam returns nil when the user is not in a team.
	MyTeam(ctx context.Context, contestID string) (*models.ContestTeam, error)
	TeamMembers(ctx context.Context, contestID string, teamID int64) ([]models.TeamMember, error)

	RegisterForContest(ctx context.Context, contestID string) error
	RegistrationStatus(ctx context.Context, contestID string) (*models.RegistrationStatus, error)
	AccessStatus(ctx context.Context, contestID string) (*models.AccessStatus, error)
}

type contestService struct {
	req    Requester
	logger logging.Logger
}

func NewContestService(req Requester, logger logging.Logger) ContestService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &contestService{req: req, logger: logger.With("component", "contest")}
}

func contestPath(contestID string, rest ...string) string {
	p := "/contest/" + seg(contestID)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (s *contestService) Contest(ctx context.Context, contestID string) (*models.Contest, error) {
	var out models.Contest
	if _, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID), nil, &out, "Failed to load contest"); err != nil {
		logFailure(ctx, s.logger, "load contest", err)
		return nil, err
	}
	if out.ID == "" {
		out.ID = contestID
	}
	return &out, nil
}

func (s *contestService) ListTeams(ctx context.Context, contestID string) ([]models.ContestTeam, error) {
	var out struct {
		Teams []models.ContestTeam `json:"teams"`
	}
	if _, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID, "teams"), nil, &out, "Failed to load teams"); err != nil {
		logFailure(ctx, s.logger, "list teams", err)
		return nil, err
	}
	if out.Teams == nil {
		out.Teams = []models.ContestTeam{}
	}
	return out.Teams, nil
}

func (s *contestService) CreateTeam(ctx context.Context, contestID, teamName string) (int64, error) {
	in := struct {
		TeamName string `json:"team_name"`
	}{TeamName: teamName}
	var out struct {
		TeamID int64 `json:"team_id"`
	}
	if _, err := doJSON(ctx, s.req, http.MethodPost, contestPath(contestID, "teams"), in, &out, "Failed to create team"); err != nil {
		logFailure(ctx, s.logger, "create team", err)
		return 0, err
	}
	return out.TeamID, nil
}

func (s *contestService) JoinTeam(ctx context.Context, contestID string, teamID int64) error {
	if _, err := doJSON(ctx, s.req, http.MethodPost, contestPath(contestID, "teams", idSeg(teamID), "join"), nil, nil, "Failed to join team"); err != nil {
		logFailure(ctx, s.logger, "join team", err)
		return err
	}
	return nil
}

func (s *contestService) LeaveTeam(ctx context.Context, contestID string) error {
	if _, err := doJSON(ctx, s.req, http.MethodPost, contestPath(contestID, "teams", "leave"), nil, nil, "Failed to leave team"); err != nil {
		logFailure(ctx, s.logger, "leave team", err)
		return err
	}
	return nil
}

func (s *contestService) MyTeam(ctx context.Context, contestID string) (*models.ContestTeam, error) {
	var out struct {
		Team *models.ContestTeam `json:"team"`
	}
	status, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID, "my-team"), nil, &out, "Failed to load team")
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		logFailure(ctx, s.logger, "load own team", err)
		return nil, err
	}
	return out.Team, nil
}

func (s *contestService) TeamMembers(ctx context.Context, contestID string, teamID int64) ([]models.TeamMember, error) {
	var out struct {
		Members []models.TeamMember `json:"members"`
	}
	if _, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID, "teams", idSeg(teamID), "members"), nil, &out, "Failed to load team members"); err != nil {
		logFailure(ctx, s.logger, "list team members", err)
		return nil, err
	}
	if out.Members == nil {
		out.Members = []models.TeamMember{}
	}
	return out.Members, nil
}

func (s *contestService) RegisterForContest(ctx context.Context, contestID string) error {
	if _, err := doJSON(ctx, s.req, http.MethodPost, contestPath(contestID, "register"), nil, nil, "Failed to register for contest"); err != nil {
		logFailure(ctx, s.logger, "register for contest", err)
		return err
	}
	return nil
}

func (s *contestService) RegistrationStatus(ctx context.Context, contestID string) (*models.RegistrationStatus, error) {
	var out models.RegistrationStatus
	if _, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID, "registration-status"), nil, &out, "Failed to load registration status"); err != nil {
		logFailure(ctx, s.logger, "load registration status", err)
		return nil, err
	}
	return &out, nil
}

func (s *contestService) AccessStatus(ctx context.Context, contestID string) (*models.AccessStatus, error) {
	var out models.AccessStatus
	if _, err := doJSON(ctx, s.req, http.MethodGet, contestPath(contestID, "access-status"), nil, &out, "Failed to check contest access"); err != nil {
		logFailure(ctx, s.logger, "check contest access", err)
		return nil, err
	}
	return &out, nil
}
