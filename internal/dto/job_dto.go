// FILE: internal/dto/job_dto.go
package dto

import "fmt"

// JobSummary reports how a scheduler sweep went. Jobs process-and-continue:
// one bad subscription never aborts the batch.
type JobSummary struct {
	Job       string   `json:"job"`
	Processed int      `json:"processed"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

func NewJobSummary(job string) *JobSummary {
	return &JobSummary{Job: job}
}

func (s *JobSummary) Success() {
	s.Processed++
	s.Succeeded++
}

func (s *JobSummary) Skip() {
	s.Processed++
	s.Skipped++
}

func (s *JobSummary) Fail(id fmt.Stringer, err error) {
	s.Processed++
	s.Failed++
	s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", id, err))
}
