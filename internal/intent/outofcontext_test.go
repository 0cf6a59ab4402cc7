package intent

import "testing"

const testPurpose = "schedule a meeting about the quarterly review"

func TestCheckOutOfContext(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		purpose    string
		want       bool
	}{
		{"off topic indicator", "how is the weather over there", testPurpose, true},
		{"sports talk", "did you watch the sports game", testPurpose, true},
		{"indicator plus purpose keyword stays in context", "the weather delayed our meeting", testPurpose, false},
		{"on topic", "I want to schedule something", testPurpose, false},
		{"neutral", "can you repeat that", testPurpose, false},
		{"empty purpose still flags indicators", "tell me a joke", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckOutOfContext(tc.transcript, tc.purpose)
			if got.OutOfContext != tc.want {
				t.Fatalf("CheckOutOfContext(%q) = %+v, want out=%v", tc.transcript, got, tc.want)
			}
			if tc.want && got.Confidence != outOfContextConfidence {
				t.Fatalf("unexpected confidence: %v", got.Confidence)
			}
			if !tc.want && got.Confidence != inContextConfidence {
				t.Fatalf("unexpected confidence: %v", got.Confidence)
			}
		})
	}
}

func TestPurposeKeywordsSkipShortWords(t *testing.T) {
	got := purposeKeywords("Set up THE call")
	if len(got) != 1 || got[0] != "call" {
		t.Fatalf("unexpected keywords: %v", got)
	}
}
