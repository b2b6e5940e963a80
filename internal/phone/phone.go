// Package phone validates and formats Kyrgyz phone numbers entered by
// customers at checkout.
package phone

import (
	"regexp"
	"strings"

	"belekbox/internal/model"
)

// CountryCode is the international prefix added by Format.
const CountryCode = "+996"

// MinLength is the shortest normalized number accepted by Validate.
const MinLength = 9

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^\+996\d{9}$`),
	regexp.MustCompile(`^996\d{9}$`),
	regexp.MustCompile(`^0\d{9}$`),
	regexp.MustCompile(`^\d{9}$`),
}

// Validation errors.
var (
	ErrTooShort      = model.NewValidationError("phone number is too short, at least 9 digits are required")
	ErrInvalidFormat = model.NewValidationError("invalid phone number format, use a Kyrgyz number")
)

// Normalize strips everything except digits and a leading plus sign.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether s is an acceptable phone number. The phone is
// optional, so blank input is valid.
func Validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	n := Normalize(s)
	if len(n) < MinLength {
		return ErrTooShort
	}

	for _, p := range patterns {
		if p.MatchString(n) {
			return nil
		}
	}
	return ErrInvalidFormat
}

// Format rewrites partially typed input into the "+996 XXX XXX XXX" display
// form. Input that cannot be recognised as a local number is returned
// normalized but otherwise unchanged.
func Format(s string) string {
	n := Normalize(s)

	switch {
	case strings.HasPrefix(n, "996"):
		n = "+" + n
	case strings.HasPrefix(n, "0") && len(n) >= 10:
		n = CountryCode + n[1:]
	case len(n) == 9 && n[0] != '0' && n[0] != '+':
		n = CountryCode + n
	}

	if !strings.HasPrefix(n, CountryCode) || len(n) == len(CountryCode) {
		return n
	}

	rest := n[len(CountryCode):]
	groups := []string{CountryCode}
	for i := 0; i < 9 && i < len(rest); i += 3 {
		groups = append(groups, rest[i:min(i+3, len(rest))])
	}
	return strings.Join(groups, " ")
}

// Canonical returns the number as "+996XXXXXXXXX" when s is a valid
// non-empty number, and "" otherwise.
func Canonical(s string) string {
	if strings.TrimSpace(s) == "" || Validate(s) != nil {
		return ""
	}
	return strings.ReplaceAll(Format(s), " ", "")
}
