package logger

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// sanitize masks prospect identity before a value is logged. Fields
// named after emails, prospects, or recipients are masked outright;
// other fields only have embedded addresses rewritten.
func sanitize(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "prospect") || strings.Contains(key, "recipient") {
		return RedactEmail(val)
	}
	return emailPattern.ReplaceAllStringFunc(val, RedactEmail)
}

// RedactEmail masks an email address for safe logging: "jane.doe@example.com"
// becomes "ja***@example.com". Local parts of two characters or fewer are
// fully masked. Values without an address pass through untouched.
func RedactEmail(v string) string {
	parts := strings.Split(v, "@")
	if len(parts) != 2 {
		return v
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
