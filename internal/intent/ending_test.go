package intent

import "testing"

func TestMentionsDate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"let's meet on 15th March", true},
		{"how about March 15?", true},
		{"15 mar works", true},
		{"jan 3rd is fine", true},
		{"March 15, 2026 it is", true},
		{"15 March 2026", true},
		{"let's meet next tuesday", true},
		{"this friday then", true},
		{"Monday works for me", true},
		{"can we do it tomorrow", true},
		{"today is fine", true},
		{"sometime next week", true},
		{"maybe this month", true},

		{"I'm interested", false},
		{"what is this about", false},
		{"I like marching bands", false},
		{"the 15th", false},
		{"call me back", false},
	}
	for _, tc := range cases {
		if got := MentionsDate(tc.in); got != tc.want {
			t.Errorf("MentionsDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsDecline(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"no", true},
		{"nope, sorry", true},
		{"I'd like to decline", true},
		{"please cancel", true},
		{"maybe later", true},
		{"I'm not interested", true},

		// Word boundaries: substrings must not fire.
		{"I know a good time", false},
		{"that's a notable idea", false},
		{"sounds good", false},
	}
	for _, tc := range cases {
		if got := IsDecline(tc.in); got != tc.want {
			t.Errorf("IsDecline(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCheckEnding(t *testing.T) {
	cases := []struct {
		in     string
		should bool
		reason EndReason
	}{
		{"next tuesday works", true, EndReasonDate},
		{"no thanks", true, EndReasonDecline},
		// A date wins over a decline in the same turn.
		{"no, let's do it tomorrow", true, EndReasonDate},
		{"tell me more", false, EndReasonNone},
	}
	for _, tc := range cases {
		got := CheckEnding(tc.in)
		if got.ShouldEnd != tc.should || got.Reason != tc.reason {
			t.Errorf("CheckEnding(%q) = %+v, want should=%v reason=%q", tc.in, got, tc.should, tc.reason)
		}
	}
}
