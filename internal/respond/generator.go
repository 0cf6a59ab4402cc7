// Package respond maps a transcript to a reply utterance.
//
// The generator is pure: it reads the transcript (and may consult history or
// purpose) and returns a canned phrase. It never mutates the session; that
// is the turn controller's job.
package respond

import (
	"strings"

	"voicebot-platform/internal/intent"
	"voicebot-platform/internal/session"
)

// Fixed reply phrases.
const (
	ReplyDateConfirmed = "Perfect! I've confirmed that date for you. Thank you for your time. Have a great day!"
	ReplyDecline       = "Thank you for your time. Have a great day!"
	ReplyOffTopic      = "Sorry, I'm here to help with meeting scheduling and appointments. Would you like to schedule a meeting?"
	ReplyDefault       = "I understand you're interested in meeting scheduling. Could you please provide more details about what you need help with?"
)

// rule is one (predicate, response) pair. Rules are evaluated top to bottom;
// the first match wins, so ordering is a visible, testable artifact.
type rule struct {
	name  string
	match func(input string) bool
	reply func(input string) string
}

func containsAny(input string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(input, t) {
			return true
		}
	}
	return false
}

var rules = []rule{
	{
		name:  "date_mentioned",
		match: intent.MentionsDate,
		reply: func(string) string { return ReplyDateConfirmed },
	},
	{
		name: "scheduling",
		match: func(in string) bool {
			return containsAny(in, "schedule", "meeting", "appointment")
		},
		reply: func(in string) string {
			if containsAny(in, "when", "time") {
				return "I'd be happy to help you schedule a meeting. What time would work best for you?"
			}
			if containsAny(in, "where", "location") {
				return "The default location for meetings is Google Meet. Would you like me to set it up there?"
			}
			return "I can help you schedule that meeting. What day and time would work best for you?"
		},
	},
	{
		name: "calendar",
		match: func(in string) bool {
			return containsAny(in, "calendar", "available", "free")
		},
		reply: func(string) string {
			return "Let me check your calendar availability. What date are you looking for?"
		},
	},
	{
		name: "confirmation",
		match: func(in string) bool {
			return containsAny(in, "yes", "confirm", "okay")
		},
		reply: func(string) string {
			return "Perfect! What date and time would work best for you?"
		},
	},
	{
		name:  "decline",
		match: intent.IsDecline,
		reply: func(string) string { return ReplyDecline },
	},
	{
		name: "reschedule",
		match: func(in string) bool {
			return containsAny(in, "cancel", "reschedule", "change")
		},
		reply: func(string) string {
			return "I can help you cancel or reschedule. Which meeting would you like to modify?"
		},
	},
	{
		name: "greeting",
		match: func(in string) bool {
			return containsAny(in, "hello", "hi", "hey")
		},
		reply: func(string) string {
			return "Hello! I'm your meeting assistant. How can I help you today?"
		},
	},
}

// Reply produces the agent's utterance for a user transcript. The session is
// read-only context; only purpose and history may be consulted.
func Reply(transcript string, _ *session.CallSession) string {
	in := strings.ToLower(transcript)
	for _, r := range rules {
		if r.match(in) {
			return r.reply(in)
		}
	}
	return ReplyDefault
}

// RuleNames exposes evaluation order for tests.
func RuleNames() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.name
	}
	return out
}
