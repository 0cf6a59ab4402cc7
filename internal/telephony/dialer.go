package telephony

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady is returned by dialer operations when telephony credentials
// were absent at startup. Surfaced once as "not ready", never per-call
// panics (missing credentials must not take the webhook surface down).
var ErrNotReady = errors.New("telephony: dialer not configured")

// Dialer places outbound calls at the gateway. This is the only operation in
// the core that touches the network.
type Dialer interface {
	Name() string

	// Ready reports whether credentials are configured.
	Ready() bool

	PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error)

	// FetchStatus asks the gateway for the current status of a call.
	FetchStatus(ctx context.Context, callID string) (string, error)
}

// PlaceCallRequest describes one outbound call.
type PlaceCallRequest struct {
	// To is the destination number, already normalized.
	To string

	// AnswerURL is fetched by the gateway when the callee picks up.
	AnswerURL string
	// StatusCallbackURL receives status-change webhooks.
	StatusCallbackURL string

	// TimeoutSeconds caps ring time.
	TimeoutSeconds int
	Record         bool
}

// PlaceCallResult carries the gateway-assigned identifiers.
type PlaceCallResult struct {
	CallID string
	Status string

	PlacedAt time.Time
}
