package session

import "time"

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Turn is one utterance in a call's conversation history.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// CallSession is the server-held state for one live call.
//
// The gateway delivers a call's callbacks one at a time, so per-call access
// is serialized in practice. All mutation still goes through the Store so
// cross-call concurrency stays safe.
type CallSession struct {
	CallID string `json:"call_id"`

	// Purpose is the free-text description of what the call is about.
	// Set once at creation; changed only via Store.SetPurpose.
	Purpose string `json:"purpose"`

	History []Turn `json:"history"`

	Active bool `json:"active"`

	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Snapshot is a read-only copy of a session for inspection endpoints.
type Snapshot struct {
	CallID         string    `json:"call_id"`
	Purpose        string    `json:"purpose"`
	Active         bool      `json:"active"`
	TurnCount      int       `json:"turn_count"`
	History        []Turn    `json:"history,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
