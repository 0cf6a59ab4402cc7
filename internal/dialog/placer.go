package dialog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"voicebot-platform/internal/greeting"
	"voicebot-platform/internal/telephony"
)

// CallPlacer performs the place-call operation: stage the greeting under a
// temporary token (the gateway has not assigned a call ID yet), dial out
// with an answer URL carrying the token, and hand back the gateway's call
// identifier.
type CallPlacer struct {
	Dialer    telephony.Dialer
	Greetings greeting.Store

	// BaseURL is the public base for webhook endpoints, no trailing slash.
	BaseURL string

	// Defaults applied when the request leaves them zero.
	DefaultTimeoutSeconds int
	DefaultRecord         bool
}

// PlaceCallRequest is the operator-facing call request.
type PlaceCallRequest struct {
	To      string `json:"to"`
	Message string `json:"message,omitempty"`

	TimeoutSeconds int  `json:"timeout_seconds,omitempty"`
	Record         bool `json:"record,omitempty"`
}

// PlaceCallResult reports the placed call.
type PlaceCallResult struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// PlaceCall validates and places one outbound call.
func (p *CallPlacer) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	if p.Dialer == nil || !p.Dialer.Ready() {
		return PlaceCallResult{}, telephony.ErrNotReady
	}

	to, err := telephony.NormalizeNumber(req.To)
	if err != nil {
		return PlaceCallResult{}, err
	}

	answer := p.BaseURL + "/webhooks/voice"
	if req.Message != "" {
		token := uuid.NewString()
		if err := p.Greetings.Stage(ctx, token, req.Message); err != nil {
			return PlaceCallResult{}, fmt.Errorf("dialog: stage greeting: %w", err)
		}
		answer += "?tempSid=" + url.QueryEscape(token)
	}

	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = p.DefaultTimeoutSeconds
	}

	res, err := p.Dialer.PlaceCall(ctx, telephony.PlaceCallRequest{
		To:                to,
		AnswerURL:         answer,
		StatusCallbackURL: p.BaseURL + "/webhooks/status",
		TimeoutSeconds:    timeout,
		Record:            req.Record || p.DefaultRecord,
	})
	if err != nil {
		return PlaceCallResult{}, err
	}
	return PlaceCallResult{CallID: res.CallID, Status: res.Status, To: to}, nil
}
