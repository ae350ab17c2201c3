package assistant

import "regexp"

var (
	emailRe = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\-\s]{6,}\d`)
)

// Redact masks email addresses, then phone-like digit runs.
func Redact(text string) string {
	if text == "" {
		return text
	}
	text = emailRe.ReplaceAllString(text, "[REDACTED_EMAIL]")
	return phoneRe.ReplaceAllString(text, "[REDACTED_PHONE]")
}
