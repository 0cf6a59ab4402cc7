package dialog

import (
	"fmt"
	"strings"

	"voicebot-platform/internal/session"
)

// Summarize renders a short post-call digest of the conversation. History
// order is chronological, so topic extraction sees turns as they happened.
func Summarize(sess *session.CallSession) string {
	return fmt.Sprintf("purpose: %s; exchanges: %d; topics: %s",
		sess.Purpose, len(sess.History), keyTopics(sess.History))
}

func keyTopics(history []session.Turn) string {
	var topics []string
	seen := map[string]bool{}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	for _, turn := range history {
		content := strings.ToLower(turn.Text)
		if strings.Contains(content, "meeting") {
			add("Meeting Scheduling")
		}
		if strings.Contains(content, "calendar") {
			add("Calendar Management")
		}
		if strings.Contains(content, "time") || strings.Contains(content, "date") {
			add("Time/Date Coordination")
		}
		if strings.Contains(content, "location") {
			add("Location Planning")
		}
	}
	if len(topics) == 0 {
		return "General conversation"
	}
	return strings.Join(topics, ", ")
}
