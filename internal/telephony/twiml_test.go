package telephony

import (
	"strings"
	"testing"
)

func testParams() DeliveryParams {
	return DeliveryParams{
		Voice:          "alice",
		Language:       "en-US",
		SpeechTimeout:  "auto",
		SpeechModel:    "phone_call",
		SpeechEnhanced: true,
		GatherTimeout:  5,
		SpeechAction:   "/webhooks/speech",
		VoiceAction:    "/webhooks/voice",
	}
}

func TestRenderPrompt(t *testing.T) {
	out, err := RenderPrompt("Hello! Would you like to schedule a meeting?", testParams())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Say voice="alice" language="en-US">Hello! Would you like to schedule a meeting?</Say>`,
		`input="speech"`,
		`action="/webhooks/speech"`,
		`speechTimeout="auto"`,
		`speechModel="phone_call"`,
		`enhanced="true"`,
		`timeout="5"`,
		"I didn&#39;t hear anything. Let me try again.",
		"Please speak now.",
		"Thank you for calling. Goodbye!",
		"<Hangup></Hangup>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// Retry gather carries a nested prompt; the first gather is bare.
	if got := strings.Count(out, "<Gather"); got != 2 {
		t.Fatalf("expected 2 gathers, got %d", got)
	}
	if got := strings.Count(out, "Please speak now."); got != 1 {
		t.Fatalf("expected 1 nested retry prompt, got %d", got)
	}
}

func TestRenderPromptOmitsEmptyUtterance(t *testing.T) {
	out, err := RenderPrompt("", testParams())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	// Only the retry and goodbye Says remain.
	if got := strings.Count(out, "<Say"); got != 3 {
		t.Fatalf("expected 3 says, got %d in:\n%s", got, out)
	}
}

func TestRenderPromptEscapesUtterance(t *testing.T) {
	out, err := RenderPrompt(`Discuss the <Q3> budget & "risks"`, testParams())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "<Q3>") {
		t.Fatalf("reserved characters leaked unescaped:\n%s", out)
	}
	if !strings.Contains(out, "&lt;Q3&gt; budget &amp;") {
		t.Fatalf("expected escaped utterance in:\n%s", out)
	}
}

func TestRenderReplyContinues(t *testing.T) {
	out, err := RenderReply("What time works?", false, testParams())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, `<Redirect method="POST">/webhooks/voice</Redirect>`) {
		t.Fatalf("expected redirect in:\n%s", out)
	}
	if strings.Contains(out, "<Hangup") {
		t.Fatalf("continuing reply must not hang up:\n%s", out)
	}
}

func TestRenderReplyEnds(t *testing.T) {
	out, err := RenderReply("Goodbye.", true, testParams())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "<Hangup></Hangup>") {
		t.Fatalf("expected hangup in:\n%s", out)
	}
	if strings.Contains(out, "<Redirect") {
		t.Fatalf("terminal reply must not redirect:\n%s", out)
	}
}

func TestRenderError(t *testing.T) {
	out := RenderError(testParams())
	if !strings.Contains(out, "experiencing technical difficulties") {
		t.Fatalf("expected apology in:\n%s", out)
	}
	if !strings.Contains(out, "<Hangup></Hangup>") {
		t.Fatalf("expected hangup in:\n%s", out)
	}
}
