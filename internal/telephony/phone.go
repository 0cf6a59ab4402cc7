package telephony

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidNumber = errors.New("telephony: invalid phone number")

// NormalizeNumber coerces a raw phone number into E.164-ish form: digits
// only, 10 to 15 of them, with a leading plus.
func NormalizeNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidNumber
	}
	return "+" + digits, nil
}
