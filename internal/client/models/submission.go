package models

// SubmitResult is returned by the platform when a solution is accepted for
// judging.
type SubmitResult struct {
	SubmissionID      int64  `json:"submission_id"`
	JudgeSubmissionID string `json:"judge_submission_id"`
	Message           string `json:"message"`
}

// SubmissionStatus is one observation of a submission's judging progress.
type SubmissionStatus struct {
	SubmissionID  string   `json:"submission_id,omitempty"`
	Status        string   `json:"status"`
	ExecutionTime *float64 `json:"execution_time,omitempty"`
	MemoryUsed    *int64   `json:"memory_used,omitempty"`
	Message       string   `json:"message,omitempty"`
}

type Submission struct {
	ID                int64    `json:"id"`
	ProblemID         string   `json:"problem_id"`
	Language          string   `json:"language"`
	SubmissionTime    string   `json:"submission_time"`
	Status            string   `json:"status"`
	ExecutionTime     *float64 `json:"execution_time,omitempty"`
	MemoryUsed        *int64   `json:"memory_used,omitempty"`
	JudgeSubmissionID string   `json:"judge_submission_id,omitempty"`
}
