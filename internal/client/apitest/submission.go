package apitest

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUpload = 1 << 20

// AddProblem adds a problem and its statement document.
func (a *API) AddProblem(p models.ProblemMetadata, statement []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.problems[p.ID]; !ok {
		a.order = append(a.order, p.ID)
	}
	a.problems[p.ID] = p
	if statement != nil {
		a.statements[p.ID] = statement
	}
}

// ScriptStatuses sets the statuses the next submissions report, one per
// status request; the last status repeats. Without a script a submission
// reports "pending" once and then "accepted".
func (a *API) ScriptStatuses(statuses ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.script = append([]string(nil), statuses...)
}

func (a *API) listProblems(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Problem, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.problems[id].Problem)
	}
	writeJSON(w, http.StatusOK, map[string]any{"problems": out})
}

func (a *API) problemMetadata(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.problems[chi.URLParam(r, "pid")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Problem not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) problemStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pid")

	a.mu.Lock()
	doc, ok := a.statements[id]
	a.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "Statement not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (a *API) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid submission")
		return
	}

	problemID := r.FormValue("problem_id")
	language := r.FormValue("language")
	file, _, err := r.FormFile("file")
	if err != nil || problemID == "" || language == "" {
		writeMessage(w, http.StatusBadRequest, "file, problem_id and language are required")
		return
	}
	defer file.Close()

	if _, err := io.Copy(io.Discard, file); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.problems[problemID]; !ok {
		writeMessage(w, http.StatusBadRequest, "Unknown problem")
		return
	}

	script := append([]string(nil), a.script...)
	if len(script) == 0 {
		script = []string{"pending", "accepted"}
	}

	a.nextSubID++
	s := &submission{
		Submission: models.Submission{
			ID:                a.nextSubID,
			ProblemID:         problemID,
			Language:          language,
			SubmissionTime:    time.Now().UTC().Format(time.RFC3339),
			Status:            "pending",
			JudgeSubmissionID: uuid.NewString(),
		},
		userID: u.ID,
		script: script,
	}
	a.submissions[s.ID] = s

	writeJSON(w, http.StatusCreated, models.SubmitResult{
		SubmissionID:      s.ID,
		JudgeSubmissionID: s.JudgeSubmissionID,
		Message:           "Solution submitted successfully",
	})
}

func (a *API) submissionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sid"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.submissions[id]
	if !ok || s.userID != u.ID {
		writeMessage(w, http.StatusNotFound, "Judge submission ID not found")
		return
	}

	s.Status = s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}

	out := models.SubmissionStatus{SubmissionID: s.JudgeSubmissionID, Status: s.Status}
	if s.Status != "pending" {
		execTime, mem := 0.042, int64(2048)
		out.ExecutionTime, out.MemoryUsed = &execTime, &mem
		s.ExecutionTime, s.MemoryUsed = &execTime, &mem
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) listSubmissions(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Submission, 0)
	for id := a.nextSubID; id > 0; id-- {
		if s, ok := a.submissions[id]; ok && s.userID == u.ID {
			out = append(out, s.Submission)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
