package dto

import "time"

// TaskStatus is the lifecycle state of a batch task.
type TaskStatus string

const (
	TaskCreated               TaskStatus = "Created"
	TaskRunning               TaskStatus = "Running"
	TaskCompleted             TaskStatus = "Completed"
	TaskCompletedWithFailures TaskStatus = "CompletedWithFailures"
	TaskCancelling            TaskStatus = "Cancelling"
	TaskCancelled             TaskStatus = "Cancelled"
)

// Terminal reports whether no further transitions happen.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCompletedWithFailures || s == TaskCancelled
}

// SymbolState is the per-symbol pipeline state within a batch.
type SymbolState string

const (
	SymbolPending   SymbolState = "Pending"
	SymbolRunning   SymbolState = "Running"
	SymbolSucceeded SymbolState = "Succeeded"
	SymbolFailed    SymbolState = "Failed"
)

// Terminal reports whether the symbol has finished.
func (s SymbolState) Terminal() bool {
	return s == SymbolSucceeded || s == SymbolFailed
}

// SymbolStatus is one entry of a batch. Result is set only when Succeeded,
// Failure only when Failed.
type SymbolStatus struct {
	State   SymbolState     `json:"state"`
	Result  *AnalysisResult `json:"result,omitempty"`
	Failure *Failure        `json:"failure,omitempty"`
}

// BatchTask is a snapshot of a submitted batch.
type BatchTask struct {
	TaskID     string                  `json:"task_id"`
	Symbols    []string                `json:"symbols"`
	Statuses   map[string]SymbolStatus `json:"statuses"`
	Status     TaskStatus              `json:"status"`
	Completed  int                     `json:"completed"`
	Failed     int                     `json:"failed"`
	CreatedAt  time.Time               `json:"created_at"`
	StartedAt  *time.Time              `json:"started_at,omitempty"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
}

// Total returns the number of symbols in the batch.
func (t BatchTask) Total() int { return len(t.Symbols) }

// Progress returns the finished fraction in percent.
func (t BatchTask) Progress() float64 {
	if len(t.Symbols) == 0 {
		return 100
	}
	return float64(t.Completed+t.Failed) / float64(len(t.Symbols)) * 100
}

// ProgressKind is the transition a ProgressEvent reports.
type ProgressKind string

const (
	ProgressStarted   ProgressKind = "Started"
	ProgressCompleted ProgressKind = "Completed"
	ProgressFailed    ProgressKind = "Failed"
)

// ProgressEvent is broadcast on each per-symbol transition.
type ProgressEvent struct {
	TaskID         string       `json:"task_id"`
	Symbol         string       `json:"symbol"`
	Kind           ProgressKind `json:"kind"`
	CompletedCount int          `json:"completed_count"`
	TotalCount     int          `json:"total_count"`
	Reason         string       `json:"reason,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// SubmitBatchRequest is the HTTP body for batch submission.
type SubmitBatchRequest struct {
	Symbols         []string `json:"symbols"`
	EnableNarrative *bool    `json:"enable_narrative,omitempty"`
	Weights         *Weights `json:"weights,omitempty"`
}

// SubmitBatchResponse is returned after a batch is accepted.
type SubmitBatchResponse struct {
	TaskID string `json:"task_id"`
	Total  int    `json:"total"`
}

// AnalyzeRequest is the HTTP body for a single analysis.
type AnalyzeRequest struct {
	Symbol          string   `json:"symbol"`
	EnableNarrative *bool    `json:"enable_narrative,omitempty"`
	Weights         *Weights `json:"weights,omitempty"`
}

// BatchProgressResponse is a task snapshot with its derived counters.
type BatchProgressResponse struct {
	BatchTask
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`
}

// NewBatchProgressResponse wraps a snapshot for the HTTP layer.
func NewBatchProgressResponse(task BatchTask) BatchProgressResponse {
	return BatchProgressResponse{BatchTask: task, Total: task.Total(), Progress: task.Progress()}
}
