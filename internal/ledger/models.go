package ledger

import "time"

// Status represents the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusRunning, StatusCompleted, StatusFailed:
		return Status(value), true
	}
	return "", false
}

// Counts holds the row counts a finished run produced.
type Counts struct {
	Loaded  int `json:"loaded"`
	Cleaned int `json:"cleaned"`
	Train   int `json:"train"`
	Val     int `json:"val"`
	Test    int `json:"test"`
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	InputPath    string     `json:"input_path"`
	InputSHA256  string     `json:"input_sha256,omitempty"`
	TextColumn   string     `json:"text_column"`
	LabelColumn  string     `json:"label_column"`
	TestFraction float64    `json:"test_fraction"`
	ValFraction  float64    `json:"val_fraction"`
	ValBasis     string     `json:"val_basis"`
	Seed         int64      `json:"seed"`
	Stratified   bool       `json:"stratified"`
	OutputDir    string     `json:"output_dir"`
	Counts       Counts     `json:"counts"`
	ErrorMessage string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
