package models

type Problem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Difficulty  string  `json:"difficulty,omitempty"`
	TimeLimit   float64 `json:"time_limit,omitempty"`
	MemoryLimit int64   `json:"memory_limit,omitempty"`
}

type ProblemMetadata struct {
	Problem
	Languages []string `json:"languages,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Statement is the raw statement document, usually a PDF.
type Statement struct {
	ProblemID   string
	ContentType string
	Filename    string
	Data        []byte
}
