package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizeMobile strips spaces, dashes and any other non-digit characters
// from a customer mobile number.
func NormalizeMobile(raw string) string {
	return nonDigit.ReplaceAllString(strings.TrimSpace(raw), "")
}

// IsValidMobile reports whether the number is a plain 10-digit mobile number.
func IsValidMobile(mobile string) bool {
	if len(mobile) != 10 {
		return false
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
