package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/go-chi/chi/v5"
)

// AddContest registers a contest. Problems listed in c are also added to
// the problem catalogue.
func (a *API) AddContest(c models.Contest) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.contests[c.ID] = &contest{
		Contest:       c,
		teams:         make(map[int64]*team),
		membership:    make(map[int64]int64),
		registrations: make(map[int64]time.Time),
	}
	for _, p := range c.Problems {
		if _, ok := a.problems[p.ID]; !ok {
			a.problems[p.ID] = models.ProblemMetadata{Problem: p}
			a.order = append(a.order, p.ID)
		}
	}
}

// contestFor resolves {cid}; it writes a 404 and returns nil when unknown.
// Callers hold a.mu.
func (a *API) contestFor(w http.ResponseWriter, r *http.Request) *contest {
	c, ok := a.contests[chi.URLParam(r, "cid")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Contest not found")
		return nil
	}
	return c
}

func (a *API) getContest(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c.Contest)
}

func (a *API) listTeams(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}

	teams := make([]models.ContestTeam, 0, len(c.teams))
	for _, t := range c.teams {
		teams = append(teams, t.ContestTeam)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (a *API) createTeam(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TeamName string `json:"team_name"`
	}
	if !decodeBody(r, &in) || in.TeamName == "" {
		writeMessage(w, http.StatusBadRequest, "Team name is required")
		return
	}

	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	if _, ok := c.membership[u.ID]; ok {
		writeMessage(w, http.StatusBadRequest, "You are already in a team for this contest")
		return
	}
	for _, t := range c.teams {
		if t.TeamName == in.TeamName {
			writeMessage(w, http.StatusBadRequest, "Team name already taken")
			return
		}
	}

	a.nextTeamID++
	now := time.Now().UTC().Format(time.RFC3339)
	t := &team{
		ContestTeam: models.ContestTeam{
			ID:             a.nextTeamID,
			TeamName:       in.TeamName,
			LeaderID:       u.ID,
			LeaderUsername: u.Username,
			MemberCount:    1,
			CreatedAt:      now,
		},
		members: []models.TeamMember{{ID: u.ID, Username: u.Username, Role: "leader", JoinedAt: now}},
	}
	c.teams[t.ID] = t
	c.membership[u.ID] = t.ID

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Team created", "team_id": t.ID})
}

func (a *API) teamFor(w http.ResponseWriter, r *http.Request, c *contest) *team {
	id, err := strconv.ParseInt(chi.URLParam(r, "tid"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid team id")
		return nil
	}
	t, ok := c.teams[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Team not found")
		return nil
	}
	return t
}

func (a *API) joinTeam(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	t := a.teamFor(w, r, c)
	if t == nil {
		return
	}
	if _, ok := c.membership[u.ID]; ok {
		writeMessage(w, http.StatusBadRequest, "You are already in a team for this contest")
		return
	}

	t.members = append(t.members, models.TeamMember{
		ID:       u.ID,
		Username: u.Username,
		Role:     "member",
		JoinedAt: time.Now().UTC().Format(time.RFC3339),
	})
	t.MemberCount = len(t.members)
	c.membership[u.ID] = t.ID

	writeMessage(w, http.StatusOK, "Joined team")
}

func (a *API) leaveTeam(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	tid, ok := c.membership[u.ID]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "You are not in a team")
		return
	}

	t := c.teams[tid]
	kept := t.members[:0]
	for _, m := range t.members {
		if m.ID != u.ID {
			kept = append(kept, m)
		}
	}
	t.members = kept
	t.MemberCount = len(kept)
	delete(c.membership, u.ID)

	if len(kept) == 0 {
		delete(c.teams, tid)
	} else if t.LeaderID == u.ID {
		t.LeaderID = kept[0].ID
		t.LeaderUsername = kept[0].Username
		kept[0].Role = "leader"
	}

	writeMessage(w, http.StatusOK, "Left team")
}

func (a *API) myTeam(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	tid, ok := c.membership[u.ID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "You are not in a team")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": c.teams[tid].ContestTeam})
}

func (a *API) teamMembers(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	t := a.teamFor(w, r, c)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": t.members})
}

func (a *API) registerForContest(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}
	if !time.Now().Before(c.EndTime) {
		writeMessage(w, http.StatusBadRequest, "Contest has ended")
		return
	}
	if _, ok := c.registrations[u.ID]; ok {
		writeMessage(w, http.StatusBadRequest, "Already registered")
		return
	}
	c.registrations[u.ID] = time.Now().UTC()

	writeMessage(w, http.StatusCreated, "Registered for contest")
}

func (a *API) registrationStatus(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}

	out := models.RegistrationStatus{}
	if at, ok := c.registrations[u.ID]; ok {
		out.IsRegistered = true
		out.RegisteredAt = at.Format(time.RFC3339)
	}
	if tid, ok := c.membership[u.ID]; ok {
		out.TeamID = &tid
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) accessStatus(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.contestFor(w, r)
	if c == nil {
		return
	}

	now := time.Now()
	status := "upcoming"
	switch {
	case !now.Before(c.EndTime):
		status = "ended"
	case !now.Before(c.StartTime):
		status = "running"
	}
	_, registered := c.registrations[u.ID]

	writeJSON(w, http.StatusOK, models.AccessStatus{
		CanAccess:     registered && status != "upcoming",
		CanRegister:   !registered && status != "ended",
		ContestStatus: status,
		IsRegistered:  registered,
	})
}
