package domain

import "strings"

// NormalizeEnterpriseDomain reduces an enterprise/org URL override to a
// bare host: scheme and trailing slashes stripped. Blank input stays
// blank; callers apply their own default.
func NormalizeEnterpriseDomain(raw string) string {
	domain := strings.TrimSpace(raw)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}
