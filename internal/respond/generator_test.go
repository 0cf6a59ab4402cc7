package respond

import (
	"strings"
	"testing"
)

func TestReplyRuleSelection(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		want       string
	}{
		{"date confirms", "next tuesday works for me", ReplyDateConfirmed},
		{"scheduling time question", "can we schedule a meeting, what time suits you", "I'd be happy to help you schedule a meeting. What time would work best for you?"},
		{"scheduling location question", "where would the meeting be", "The default location for meetings is Google Meet. Would you like me to set it up there?"},
		{"scheduling default", "I need to schedule something", "I can help you schedule that meeting. What day and time would work best for you?"},
		{"calendar", "am I available then", "Let me check your calendar availability. What date are you looking for?"},
		{"confirmation", "yes please", "Perfect! What date and time would work best for you?"},
		{"decline", "nope", ReplyDecline},
		{"reschedule", "I want to change it", "I can help you cancel or reschedule. Which meeting would you like to modify?"},
		{"greeting", "hello", "Hello! I'm your meeting assistant. How can I help you today?"},
		{"fallback", "blue bicycles", ReplyDefault},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reply(tc.transcript, nil); got != tc.want {
				t.Fatalf("Reply(%q) = %q, want %q", tc.transcript, got, tc.want)
			}
		})
	}
}

func TestReplyIsCaseInsensitive(t *testing.T) {
	if got := Reply("NEXT TUESDAY", nil); got != ReplyDateConfirmed {
		t.Fatalf("uppercase transcript missed the date rule: %q", got)
	}
}

// Rule order is behavior: "cancel" is both a decline term and a reschedule
// term, and the decline rule must win.
func TestRuleOrder(t *testing.T) {
	want := []string{"date_mentioned", "scheduling", "calendar", "confirmation", "decline", "reschedule", "greeting"}
	got := RuleNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rule order changed: %v", got)
	}

	if got := Reply("cancel it", nil); got != ReplyDecline {
		t.Fatalf("decline must win over reschedule, got %q", got)
	}
}
