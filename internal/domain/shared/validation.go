package shared

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// RequireText trims value and checks it is present and at most maxLen runes
func RequireText(code, field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", NewDomainError(code, field+" is required")
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return "", NewDomainError(code, field+" is too long")
	}
	return value, nil
}

// OptionalText trims value and checks it is at most maxLen runes
func OptionalText(code, field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return "", NewDomainError(code, field+" is too long")
	}
	return value, nil
}

// RequireNonNegative rejects negative money amounts
func RequireNonNegative(code, field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewDomainError(code, field+" must be non-negative")
	}
	return nil
}

// RequirePositive rejects zero and negative money amounts
func RequirePositive(code, field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewDomainError(code, field+" must be greater than zero")
	}
	return nil
}
