package wavefront

import (
	"fmt"
	"unicode/utf8"
)

// DefaultNameLimit matches the 128-byte, NUL-terminated name fields of the
// exported mesh format.
const DefaultNameLimit = 127

// NamePolicy bounds the length of names and texture paths.
type NamePolicy struct {
	Limit  int  // Maximum length in bytes; <= 0 disables the limit
	Strict bool // Reject over-long names instead of truncating
}

// DefaultNamePolicy truncates at DefaultNameLimit.
func DefaultNamePolicy() NamePolicy {
	return NamePolicy{Limit: DefaultNameLimit}
}

// Fit applies the policy to s. Truncation never splits a UTF-8 sequence.
func (p NamePolicy) Fit(s string) (string, error) {
	if p.Limit <= 0 || len(s) <= p.Limit {
		return s, nil
	}
	if p.Strict {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrNameTooLong, len(s), p.Limit)
	}

	cut := p.Limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], nil
}
