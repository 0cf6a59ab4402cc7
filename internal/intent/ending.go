package intent

import "regexp"

// Date patterns that end the call. A match means the caller has committed to
// a date; the policy is to confirm and hang up. No value extraction happens
// here; that belongs to the scheduling collaborator.
var datePatterns = []*regexp.Regexp{
	// Day and month, either order, optional ordinal suffix.
	regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)\b`),
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?\b`),

	// Abbreviated months.
	regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b`),
	regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d{1,2}(st|nd|rd|th)?\b`),

	// Comma forms.
	regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s*,\s*(january|february|march|april|may|june|july|august|september|october|november|december)\b`),
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?\s*,\s*\d{4}\b`),

	// With year.
	regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d{1,2}(st|nd|rd|th)?\s+\d{4}\b`),

	// Weekdays, bare and with next/this.
	regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\bthis\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),

	// Relative days.
	regexp.MustCompile(`(?i)\btoday\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\byesterday\b`),
	regexp.MustCompile(`(?i)\bnext\s+week\b`),
	regexp.MustCompile(`(?i)\bthis\s+week\b`),
	regexp.MustCompile(`(?i)\bnext\s+month\b`),
	regexp.MustCompile(`(?i)\bthis\s+month\b`),
}

// Negative-intent terms. Matched on word boundaries so "know" does not
// trigger on "no".
var declinePattern = regexp.MustCompile(`(?i)\b(no|not|nope|negative|decline|cancel|don't think|i'll pass|maybe later|no thankyou)\b`)

// EndReason says why the ending check fired.
type EndReason string

const (
	EndReasonNone    EndReason = ""
	EndReasonDate    EndReason = "date_mentioned"
	EndReasonDecline EndReason = "declined"
)

// EndCheck is the result of the call-ending classifier.
type EndCheck struct {
	ShouldEnd bool
	Reason    EndReason
}

// MentionsDate reports whether the transcript contains any date reference.
func MentionsDate(transcript string) bool {
	for _, p := range datePatterns {
		if p.MatchString(transcript) {
			return true
		}
	}
	return false
}

// IsDecline reports whether the transcript contains a negative-intent term.
func IsDecline(transcript string) bool {
	return declinePattern.MatchString(transcript)
}

// CheckEnding decides whether the current turn should terminate the call:
// either the caller committed to a date or declined outright. Date wins the
// reason when both fire.
func CheckEnding(transcript string) EndCheck {
	if MentionsDate(transcript) {
		return EndCheck{ShouldEnd: true, Reason: EndReasonDate}
	}
	if IsDecline(transcript) {
		return EndCheck{ShouldEnd: true, Reason: EndReasonDecline}
	}
	return EndCheck{}
}
