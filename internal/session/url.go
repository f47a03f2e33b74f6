package session

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeURL trims whitespace, prefixes https:// when no scheme is present
// and strips exactly one trailing slash.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !schemePrefix.MatchString(u) {
		u = "https://" + u
	}
	return strings.TrimSuffix(u, "/")
}
