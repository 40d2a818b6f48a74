// Package identity parses the identifiers a user can log in with: an email
// address or a phone number.
package identity

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrInvalidIdentifier = errors.New("identifier must be a valid email address or phone number")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPhone      = errors.New("invalid phone number")
)

// Kind distinguishes the Identifier variants.
type Kind string

const (
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
)

// Identifier is either an Email or a Phone. Values are always normalized.
type Identifier interface {
	Kind() Kind
	String() string
	isIdentifier()
}

// Email is a normalized (trimmed, lower-cased) email address.
type Email string

func (Email) Kind() Kind { return KindEmail }

func (e Email) String() string { return string(e) }

func (Email) isIdentifier() {}

// Phone is a normalized phone number: digits only, with a leading '+' if one was given.
type Phone string

func (Phone) Kind() Kind { return KindPhone }

func (p Phone) String() string { return string(p) }

func (Phone) isIdentifier() {}

// Parse decides which variant raw is and normalizes it.
func Parse(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidIdentifier
	}
	if strings.Contains(raw, "@") {
		email, err := ParseEmail(raw)
		if err != nil {
			return nil, ErrInvalidIdentifier
		}
		return email, nil
	}
	phone, err := ParsePhone(raw)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}
	return phone, nil
}

// ParseEmail accepts only a bare email address.
func ParseEmail(raw string) (Email, error) {
	normalized := NormalizeEmail(raw)
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return Email(normalized), nil
}

// ParsePhone accepts 7 to 15 digits, optionally prefixed with '+'.
// Spaces, dashes, dots and parentheses are ignored.
func ParsePhone(raw string) (Phone, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}
	normalized := b.String()
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	return Phone(normalized), nil
}

// NormalizeEmail trims and lower-cases an address without validating it.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SameEmail compares two addresses case-insensitively, ignoring surrounding space.
func SameEmail(a, b string) bool {
	na, nb := NormalizeEmail(a), NormalizeEmail(b)
	return na != "" && na == nb
}

// Matches reports whether id equals the stored email or phone of the same kind.
func Matches(id Identifier, email, phone *string) bool {
	switch v := id.(type) {
	case Email:
		return email != nil && SameEmail(*email, string(v))
	case Phone:
		if phone == nil {
			return false
		}
		stored, err := ParsePhone(*phone)
		return err == nil && stored == v
	}
	return false
}
