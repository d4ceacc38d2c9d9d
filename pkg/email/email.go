// Package email normalises mailbox addresses for the notifier.
package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// Normalize parses addr and returns the bare lowercase address.
// Display names are dropped: "Finance <Finance@Company.com>" becomes
// "finance@company.com".
func Normalize(addr string) (string, bool) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(addr))
	if err != nil {
		return "", false
	}
	return strings.ToLower(parsed.Address), true
}

// NormalizeAll normalises every address, dropping duplicates and keeping the
// first occurrence order. The second return lists the inputs that failed.
func NormalizeAll(addrs []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	var invalid []string
	for _, a := range addrs {
		n, ok := Normalize(a)
		if !ok {
			invalid = append(invalid, a)
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, invalid
}

// DisplayName derives a greeting name from the local part of an address,
// e.g. "customer.service@company.com" gives "Customer Service".
func DisplayName(addr string) string {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at > 0 {
		localPart = addr[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Team"
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
