package dispatch

import (
	"strings"
	"unicode"

	"universe-server/internal/reason"
)

// validateName applies the same character rules the login and citizen
// handlers both enforce, reconciling a discrepancy between the two:
// one accepted a bare space inside a name, the other didn't. This
// implementation always allows the space, matching the copy shared by
// every handler except login's own inline duplicate.
func validateName(name string, isTourist bool) (string, reason.Code) {
	if isTourist {
		if !strings.HasPrefix(name, `"`) || !strings.HasSuffix(name, `"`) || len(name) < 2 {
			return "", reason.NameContainsInvalidBlank
		}
		name = name[1 : len(name)-1]
	}

	if len(name) < 2 {
		return "", reason.NameTooShort
	}
	if strings.HasSuffix(name, " ") {
		return "", reason.NameEndsWithBlank
	}
	if strings.HasPrefix(name, " ") {
		return "", reason.NameContainsInvalidBlank
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != ' ' {
			return "", reason.NameContainsNonalphanumericChar
		}
	}
	return name, reason.Success
}
