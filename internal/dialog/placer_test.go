package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"voicebot-platform/internal/greeting"
	"voicebot-platform/internal/telephony"
)

type fakeDialer struct {
	ready bool
	last  telephony.PlaceCallRequest
	err   error
}

func (d *fakeDialer) Name() string { return "fake" }
func (d *fakeDialer) Ready() bool  { return d.ready }

func (d *fakeDialer) PlaceCall(_ context.Context, req telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	d.last = req
	if d.err != nil {
		return telephony.PlaceCallResult{}, d.err
	}
	return telephony.PlaceCallResult{CallID: "CA123", Status: "queued"}, nil
}

func (d *fakeDialer) FetchStatus(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func newTestPlacer(d *fakeDialer) (*CallPlacer, *greeting.MemoryStore) {
	greetings := greeting.NewMemoryStore(time.Minute)
	return &CallPlacer{
		Dialer:                d,
		Greetings:             greetings,
		BaseURL:               "https://bot.example.com",
		DefaultTimeoutSeconds: 30,
	}, greetings
}

func TestPlaceCallNotReady(t *testing.T) {
	p, _ := newTestPlacer(&fakeDialer{ready: false})
	_, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "+15550001111"})
	if !errors.Is(err, telephony.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestPlaceCallInvalidNumber(t *testing.T) {
	p, _ := newTestPlacer(&fakeDialer{ready: true})
	_, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "123"})
	if !errors.Is(err, telephony.ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
}

func TestPlaceCallWithoutMessage(t *testing.T) {
	d := &fakeDialer{ready: true}
	p, greetings := newTestPlacer(d)

	res, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "+1 (555) 000-1111"})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if res.CallID != "CA123" || res.To != "+15550001111" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if d.last.AnswerURL != "https://bot.example.com/webhooks/voice" {
		t.Fatalf("unexpected answer url: %q", d.last.AnswerURL)
	}
	if d.last.StatusCallbackURL != "https://bot.example.com/webhooks/status" {
		t.Fatalf("unexpected status url: %q", d.last.StatusCallbackURL)
	}
	if d.last.TimeoutSeconds != 30 {
		t.Fatalf("default timeout not applied: %d", d.last.TimeoutSeconds)
	}
	if greetings.Len() != 0 {
		t.Fatalf("no greeting should be staged")
	}
}

func TestPlaceCallStagesGreeting(t *testing.T) {
	d := &fakeDialer{ready: true}
	p, greetings := newTestPlacer(d)
	ctx := context.Background()

	_, err := p.PlaceCall(ctx, PlaceCallRequest{To: "+15550001111", Message: "Hi, confirming your appointment"})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	prefix := "https://bot.example.com/webhooks/voice?tempSid="
	if !strings.HasPrefix(d.last.AnswerURL, prefix) {
		t.Fatalf("answer url missing temp token: %q", d.last.AnswerURL)
	}
	token := strings.TrimPrefix(d.last.AnswerURL, prefix)

	text, ok, err := greetings.Claim(ctx, token)
	if err != nil || !ok {
		t.Fatalf("staged greeting not claimable: ok=%v err=%v", ok, err)
	}
	if text != "Hi, confirming your appointment" {
		t.Fatalf("unexpected staged text: %q", text)
	}
}

func TestPlaceCallGatewayError(t *testing.T) {
	d := &fakeDialer{ready: true, err: errors.New("gateway down")}
	p, _ := newTestPlacer(d)
	if _, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "+15550001111"}); err == nil {
		t.Fatalf("expected gateway error")
	}
}
