package reporting

import "time"

// TimeRange is a half-open interval [From, To).
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type DispositionRequest struct {
	Range TimeRange `json:"range"`
}

// DispositionSummary aggregates finished calls by how they ended.
type DispositionSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
	BusyCalls      int `json:"busy_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	EvictedCalls   int `json:"evicted_calls"`

	DateConfirmed int `json:"date_confirmed"`
	Declined      int `json:"declined"`

	TotalTurns             int `json:"total_turns"`
	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}
