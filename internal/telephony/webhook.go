package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// Webhook form parsing. Twilio sends application/x-www-form-urlencoded by
// default; staged-greeting hints ride on the query string of the answer URL.
//
// Keep this provider-adapter-only: no conversation decisions here.

// VoiceForm is the call-connected (and listen-loop re-entry) payload.
type VoiceForm struct {
	CallSid string
	From    string
	To      string

	// Message is an explicit greeting passed on the answer URL.
	Message string
	// TempToken is the pre-call staging token (tempSid query parameter).
	TempToken string
}

// SpeechForm is the speech-result payload.
type SpeechForm struct {
	CallSid    string
	Transcript string
	Confidence float64
}

// StatusForm is the status-change payload.
type StatusForm struct {
	CallSid    string
	CallStatus string
}

func ParseVoiceWebhook(r *http.Request) (VoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceForm{}, err
	}
	q := r.URL.Query()
	return VoiceForm{
		CallSid:   strings.TrimSpace(r.PostFormValue("CallSid")),
		From:      strings.TrimSpace(r.PostFormValue("From")),
		To:        strings.TrimSpace(r.PostFormValue("To")),
		Message:   q.Get("message"),
		TempToken: strings.TrimSpace(q.Get("tempSid")),
	}, nil
}

func ParseSpeechWebhook(r *http.Request) (SpeechForm, error) {
	if err := r.ParseForm(); err != nil {
		return SpeechForm{}, err
	}
	conf, _ := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("Confidence")), 64)
	return SpeechForm{
		CallSid:    strings.TrimSpace(r.PostFormValue("CallSid")),
		Transcript: strings.TrimSpace(r.PostFormValue("SpeechResult")),
		Confidence: conf,
	}, nil
}

func ParseStatusWebhook(r *http.Request) (StatusForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusForm{}, err
	}
	return StatusForm{
		CallSid:    strings.TrimSpace(r.PostFormValue("CallSid")),
		CallStatus: strings.TrimSpace(r.PostFormValue("CallStatus")),
	}, nil
}
