// Package intent holds the rule-based transcript classifiers.
//
// Everything here is a pure function over transcript text. The call must be
// answered within a single synchronous webhook turn, so a flat, explainable
// rule set is used instead of a model: determinism and auditability over
// recall.
package intent

import "strings"

// Heuristic confidence scores. These are opaque thresholds, not calibrated
// probabilities; do not recompute them.
const (
	outOfContextConfidence = 0.7
	inContextConfidence    = 0.6
)

// Terms that signal the caller has drifted off the call's purpose.
var offTopicIndicators = []string{
	"weather", "sports", "politics", "entertainment", "gossip", "joke",
	"riddle", "game", "personal question", "unrelated", "different topic",
}

// ContextCheck is the result of the out-of-context classifier.
type ContextCheck struct {
	OutOfContext bool
	Confidence   float64
}

// CheckOutOfContext decides whether a transcript is unrelated to the call's
// purpose. A transcript is out of context when it contains an off-topic
// indicator term and none of the purpose's significant words.
func CheckOutOfContext(transcript, purpose string) ContextCheck {
	inputLower := strings.ToLower(transcript)

	hasPurposeKeyword := false
	for _, w := range purposeKeywords(purpose) {
		if strings.Contains(inputLower, w) {
			hasPurposeKeyword = true
			break
		}
	}

	hasIndicator := false
	for _, ind := range offTopicIndicators {
		if strings.Contains(inputLower, ind) {
			hasIndicator = true
			break
		}
	}

	if hasIndicator && !hasPurposeKeyword {
		return ContextCheck{OutOfContext: true, Confidence: outOfContextConfidence}
	}
	return ContextCheck{OutOfContext: false, Confidence: inContextConfidence}
}

// purposeKeywords tokenizes the purpose into significant words: lower-cased,
// longer than 3 characters.
func purposeKeywords(purpose string) []string {
	fields := strings.Fields(strings.ToLower(purpose))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 3 {
			out = append(out, f)
		}
	}
	return out
}
