package views

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/tgienger/ptn/internal/store"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Plain makes stored text safe to print: escape sequences are removed and
// remaining control characters become spaces. Stored text is never changed.
func Plain(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, ansi.Strip(s))
}

// charCount renders the "used/limit" counter shown under text inputs
func charCount(value string, limit int) string {
	return fmt.Sprintf("%d/%d", len([]rune(value)), limit)
}

// statusFor turns a rejected store operation into a status line message.
// Unknown ids mean the view is stale and are not shown.
func statusFor(err error, limit int) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrValidation):
		return fmt.Sprintf("Text must be 1-%d characters", limit)
	case errors.Is(err, store.ErrApprovalBlocked):
		return "Complete every note before approving"
	case errors.Is(err, store.ErrNotFound):
		return ""
	}
	return err.Error()
}
