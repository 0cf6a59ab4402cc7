package telephony

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"voicebot-platform/internal/config"
)

// TwilioDialer places calls through the Twilio REST API.
type TwilioDialer struct {
	client *twilio.RestClient
	from   string
	ready  bool

	now func() time.Time
}

func NewTwilioDialer(cfg config.TwilioConfig) *TwilioDialer {
	d := &TwilioDialer{from: cfg.FromNumber, now: time.Now}
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return d
	}
	d.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	d.ready = true
	return d
}

func (d *TwilioDialer) Name() string { return "twilio" }

func (d *TwilioDialer) Ready() bool { return d.ready }

func (d *TwilioDialer) PlaceCall(_ context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	if !d.ready {
		return PlaceCallResult{}, ErrNotReady
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(d.from)
	params.SetUrl(req.AnswerURL)
	params.SetMethod("POST")
	if req.StatusCallbackURL != "" {
		params.SetStatusCallback(req.StatusCallbackURL)
		params.SetStatusCallbackEvent([]string{"initiated", "ringing", "answered", "completed"})
		params.SetStatusCallbackMethod("POST")
	}
	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	params.SetTimeout(timeout)
	params.SetRecord(req.Record)

	call, err := d.client.Api.CreateCall(params)
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: create call: %w", err)
	}

	out := PlaceCallResult{PlacedAt: d.now()}
	if call.Sid != nil {
		out.CallID = *call.Sid
	}
	if call.Status != nil {
		out.Status = *call.Status
	}
	return out, nil
}

func (d *TwilioDialer) FetchStatus(_ context.Context, callID string) (string, error) {
	if !d.ready {
		return "", ErrNotReady
	}
	call, err := d.client.Api.FetchCall(callID, &openapi.FetchCallParams{})
	if err != nil {
		return "", fmt.Errorf("telephony: fetch call %s: %w", callID, err)
	}
	if call.Status == nil {
		return "", nil
	}
	return *call.Status, nil
}
