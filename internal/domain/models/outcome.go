package models

import "time"

type OutcomeStatus string

const (
	StatusDone    OutcomeStatus = "done"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome is the result of one unit of work (a file, a chunked write, a load job).
type Outcome struct {
	Item     string        `json:"item"`
	Stage    string        `json:"stage"`
	Status   OutcomeStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Attempts int           `json:"attempts,omitempty"`
	Rows     int64         `json:"rows,omitempty"`
	Bytes    int64         `json:"bytes,omitempty"`
}

func Done(item, stage string) Outcome {
	return Outcome{Item: item, Stage: stage, Status: StatusDone}
}

func Skipped(item, stage string, err error) Outcome {
	return Outcome{Item: item, Stage: stage, Status: StatusSkipped, Reason: reason(err)}
}

func Failed(item, stage string, err error) Outcome {
	return Outcome{Item: item, Stage: stage, Status: StatusFailed, Reason: reason(err)}
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Total   int       `json:"total"`
	Done    int       `json:"done"`
	Skipped int       `json:"skipped"`
	Failed  int       `json:"failed"`
	Rows    int64     `json:"rows"`
	Bytes   int64     `json:"bytes"`
	Issues  []Outcome `json:"issues,omitempty"`
}

// OK reports whether nothing failed. Skips do not count as failures.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// RunCompleted is published once a run finishes.
type RunCompleted struct {
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
	Summary    Summary   `json:"summary"`
}
