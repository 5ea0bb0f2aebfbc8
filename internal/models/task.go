package models

import "time"

// TaskStatus defines the lifecycle state of a research task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether a status admits no further transitions
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task represents one end-to-end research request
type Task struct {
	ID             string         `json:"id"`
	Location       string         `json:"location"`
	Status         TaskStatus     `json:"status"`
	Stage          string         `json:"stage,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	InteractionID  string         `json:"interaction_id,omitempty"`
	PrefetchErrors []string       `json:"prefetch_errors,omitempty"`
	Report         string         `json:"report,omitempty"`
	ReportLength   int            `json:"report_length,omitempty"`
	DocumentPath   string         `json:"document_path,omitempty"`
	Summary        *ReportSummary `json:"summary,omitempty"`
	ErrorLog       string         `json:"error,omitempty"`
}

// ReportSummary holds best-effort statistics extracted from the report body.
// Every field is optional; a zero value simply means the pattern was not found.
type ReportSummary struct {
	TotalReviews  int    `json:"total_reviews,omitempty"`
	AverageRating string `json:"average_rating,omitempty"`
	DateRange     string `json:"date_range,omitempty"`
	PlatformCount int    `json:"platform_count,omitempty"`
	FiveStarShare string `json:"five_star_share,omitempty"`
}

// TaskUpdate is a shallow field-level patch applied by Store.Merge.
// Nil pointers leave the existing value untouched.
type TaskUpdate struct {
	Status         *TaskStatus
	Stage          *string
	InteractionID  *string
	PrefetchErrors []string
	Report         *string
	ReportLength   *int
	DocumentPath   *string
	Summary        *ReportSummary
	ErrorLog       *string
}

// Apply overwrites the named fields on t, preserving everything else
func (u TaskUpdate) Apply(t *Task) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Stage != nil {
		t.Stage = *u.Stage
	}
	if u.InteractionID != nil {
		t.InteractionID = *u.InteractionID
	}
	if u.PrefetchErrors != nil {
		t.PrefetchErrors = u.PrefetchErrors
	}
	if u.Report != nil {
		t.Report = *u.Report
	}
	if u.ReportLength != nil {
		t.ReportLength = *u.ReportLength
	}
	if u.DocumentPath != nil {
		t.DocumentPath = *u.DocumentPath
	}
	if u.Summary != nil {
		t.Summary = u.Summary
	}
	if u.ErrorLog != nil {
		t.ErrorLog = *u.ErrorLog
	}
}

// StatusPtr is a convenience for building TaskUpdate literals
func StatusPtr(s TaskStatus) *TaskStatus { return &s }

// StringPtr is a convenience for building TaskUpdate literals
func StringPtr(s string) *string { return &s }

// IntPtr is a convenience for building TaskUpdate literals
func IntPtr(i int) *int { return &i }
