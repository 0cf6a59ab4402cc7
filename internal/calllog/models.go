package calllog

import (
	"strings"
	"time"
)

// Record is the final disposition of one call, written exactly once when the
// call reaches a terminal state. It is an audit artifact, not session state:
// live conversations never read from here.
type Record struct {
	CallID string `json:"call_id" db:"call_id"`

	From string `json:"from,omitempty" db:"from_number"`
	To   string `json:"to,omitempty" db:"to_number"`

	Status CallStatus `json:"status" db:"status"`

	// Reason is why the conversation ended when the agent ended it
	// (date_mentioned, declined); empty for gateway-driven terminations.
	Reason string `json:"reason,omitempty" db:"reason"`

	Purpose   string `json:"purpose,omitempty" db:"purpose"`
	TurnCount int    `json:"turn_count" db:"turn_count"`
	Summary   string `json:"summary,omitempty" db:"summary"`

	StartedAt time.Time `json:"started_at" db:"started_at"`
	EndedAt   time.Time `json:"ended_at" db:"ended_at"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`
}

// CallStatus mirrors the gateway's status enum, plus agent-side outcomes.
type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusRinging   CallStatus = "ringing"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
	CallStatusBusy      CallStatus = "busy"
	CallStatusNoAnswer  CallStatus = "no-answer"

	// CallStatusEvicted marks sessions reaped by the idle sweep after a
	// lost status callback.
	CallStatusEvicted CallStatus = "evicted"
)

// IsTerminal reports whether a gateway status ends the call.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusBusy, CallStatusNoAnswer, CallStatusEvicted:
		return true
	default:
		return false
	}
}

// ParseStatus maps a raw webhook status string onto the enum. Twilio sends
// lowercase hyphenated values; underscores and stray case are tolerated.
// Unknown strings pass through unchanged so nothing is silently dropped.
func ParseStatus(raw string) CallStatus {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	return CallStatus(norm)
}
