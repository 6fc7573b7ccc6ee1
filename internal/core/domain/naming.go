package domain

import (
	"strings"
	"unicode"
)

// RootKey marks the root task in bulk registrations.
const RootKey = "__root__"

// CommandName converts an identifier into a command string.
// "say_hello", "SayHello" and " say-hello " all become "say-hello".
func CommandName(s string) string {
	s = strings.Trim(s, " \t\n_-")
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	lastDash := false
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && !lastDash {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
		lastDash = false
	}
	return b.String()
}

// FlagName returns the long flag form of a parameter name.
func FlagName(s string) string {
	return "--" + CommandName(s)
}
