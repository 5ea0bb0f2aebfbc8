package research

import (
	"time"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// CreateResearchRequest is the body of POST /research
type CreateResearchRequest struct {
	Location string `json:"location" binding:"required"`
}

// CreateResearchResponse acknowledges a newly created task
type CreateResearchResponse struct {
	TaskID string            `json:"task_id"`
	Status models.TaskStatus `json:"status"`
}

// ResearchStatusResponse is the status payload for one task. Result
// fields appear only once the task completed; the error only once it
// failed.
type ResearchStatusResponse struct {
	TaskID         string                `json:"task_id"`
	Location       string                `json:"location"`
	Status         models.TaskStatus     `json:"status"`
	Stage          string                `json:"stage,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	PrefetchErrors []string              `json:"prefetch_errors,omitempty"`
	ReportLength   int                   `json:"report_length,omitempty"`
	DocumentPath   string                `json:"document_path,omitempty"`
	Summary        *models.ReportSummary `json:"summary,omitempty"`
	Error          string                `json:"error,omitempty"`
}
