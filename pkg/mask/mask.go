// Package mask anonymizes personal identifiers before they reach log
// storage. Every log line that carries an email must pass it through
// Anonymize first.
package mask

import "strings"

// Anonymize masks the local part of an email address, keeping only its first
// character: "alice@example.com" → "a***@example.com". Values without an "@"
// are masked entirely so that unexpected inputs never leak verbatim.
func Anonymize(email string) string {
	if email == "" {
		return ""
	}

	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}

	return email[:1] + "***" + email[at:]
}
