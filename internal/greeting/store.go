// Package greeting stages pre-call greeting text.
//
// The greeting is produced before the gateway assigns a call ID, so it is
// staged under a temporary token and claimed on the first webhook once the
// real call ID is known. Claim always deletes the entry, found or not, so
// nothing leaks when a call never connects.
package greeting

import "context"

// Store is the two-phase handoff for pre-call greetings.
type Store interface {
	// Stage saves text under key (a temp token or, once known, a call ID).
	Stage(ctx context.Context, key, text string) error

	// Claim reads and deletes the entry for key. ok is false when the key
	// was absent or expired; the entry is gone either way.
	Claim(ctx context.Context, key string) (text string, ok bool, err error)
}
