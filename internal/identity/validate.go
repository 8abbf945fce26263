package identity

import (
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength     = 30
	minPasswordLength = 8
)

// A short list of passwords that satisfy the character-class rules but are
// still trivially guessable. Checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"password1":   {},
	"password123": {},
	"passw0rd":    {},
	"qwerty123":   {},
	"letmein123":  {},
	"welcome123":  {},
	"admin123":    {},
	"abc12345":    {},
	"iloveyou1":   {},
	"sunshine1":   {},
	"monkey123":   {},
	"dragon123":   {},
	"football1":   {},
	"baseball1":   {},
	"superman1":   {},
	"trustno1":    {},
	"changeme1":   {},
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All storage and lookups operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts local@domain where both sides consist of non-empty
// dot-separated labels and the domain contains at least one dot. Empty
// labels reject leading, trailing and consecutive dots, so
// "test..test@example.com" is invalid.
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local, domain := email[:at], email[at+1:]
	if strings.ContainsAny(local, " \t") || strings.ContainsAny(domain, " \t@") {
		return false
	}
	for _, label := range strings.Split(local, ".") {
		if label == "" {
			return false
		}
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// passwordViolations returns every strength rule the password breaks, not
// just the first, so the caller can report them all at once.
func passwordViolations(password, email string) []string {
	var msgs []string

	if len(password) < minPasswordLength {
		msgs = append(msgs, "Password must be at least 8 characters long.")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		msgs = append(msgs, "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		msgs = append(msgs, "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		msgs = append(msgs, "Password must contain at least one number.")
	}

	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		msgs = append(msgs, "Password is too common.")
	}
	if similarToEmail(lower, email) {
		msgs = append(msgs, "Password is too similar to the email address.")
	}

	return msgs
}

// similarToEmail flags passwords built from the email's local part, e.g.
// "alice.smith1" for alice.smith@example.com.
func similarToEmail(lowerPassword, email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	// Short local parts ("bob", "test") show up in ordinary passwords too
	// often to be a useful signal.
	local := strings.ToLower(email[:at])
	if len(local) < 5 {
		return false
	}
	return strings.Contains(lowerPassword, local) || strings.Contains(local, lowerPassword)
}

// truncateName applies the 30 character storage limit. Oversized names are
// cut, never rejected. The limit counts runes, not bytes, so multibyte
// names within the limit are stored unchanged and a cut never produces
// invalid UTF-8.
func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxNameLength])
}
