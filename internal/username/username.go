// Package username validates profile usernames: format rules first, then the
// reserved-name policy. Validation is pure; availability against existing
// usernames is the profile service's job.
package username

import (
	"errors"
	"fmt"
	"strings"
)

// Format bounds for a normalized username.
const (
	MinLength = 3
	MaxLength = 30
)

// ValidationError describes why a username was rejected. The message is safe
// to surface to end users.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError reports whether err is a username validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Normalize trims surrounding whitespace and lower-cases the raw input. All
// rules apply to the normalized form.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate applies the format and reservation rules in order, first failure
// wins. A nil return means the username is acceptable (though possibly
// already taken).
func Validate(raw string) error {
	return DefaultPolicy.Validate(raw)
}

// IsReserved reports whether the normalized name collides with the default
// reserved-name policy.
func IsReserved(name string) bool {
	return DefaultPolicy.IsReserved(Normalize(name))
}

// Policy is the reserved-name rule table. It is data, not code: deployments
// can extend the sets without touching the validator logic.
type Policy struct {
	// Reserved is the exact-match block list.
	Reserved map[string]struct{}
	// Prefixes blocks any name starting with an impersonation-prone prefix.
	Prefixes []string
	// Substrings blocks names containing a sensitive term, but only when the
	// whole name is more than SubstringSlack characters longer than the term.
	// Short incidental uses ("helper") stay allowed; padded impersonations
	// ("official_support") do not.
	Substrings []string
	// SubstringSlack is the length margin for the substring rule.
	SubstringSlack int
}

// Validate applies format rules then this policy's reservation rules.
func (p *Policy) Validate(raw string) error {
	name := Normalize(raw)

	if len(name) < MinLength {
		return &ValidationError{Reason: fmt.Sprintf("username must be at least %d characters", MinLength)}
	}
	if len(name) > MaxLength {
		return &ValidationError{Reason: fmt.Sprintf("username must be %d characters or less", MaxLength)}
	}
	for _, c := range name {
		if !isAllowedChar(c) {
			return &ValidationError{Reason: "username can only contain letters, numbers, underscores, and hyphens"}
		}
	}
	if isSeparator(rune(name[0])) || isSeparator(rune(name[len(name)-1])) {
		return &ValidationError{Reason: "username cannot start or end with underscore or hyphen"}
	}
	for i := 1; i < len(name); i++ {
		if isSeparator(rune(name[i])) && isSeparator(rune(name[i-1])) {
			return &ValidationError{Reason: "username cannot have consecutive underscores or hyphens"}
		}
	}
	if p.IsReserved(name) {
		return &ValidationError{Reason: "this username is reserved"}
	}
	return nil
}

// IsReserved checks the exact, prefix, and substring rules against an
// already-normalized name.
func (p *Policy) IsReserved(name string) bool {
	if _, ok := p.Reserved[name]; ok {
		return true
	}
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, term := range p.Substrings {
		if name == term || !strings.Contains(name, term) {
			continue
		}
		if len(name) > len(term)+p.SubstringSlack {
			return true
		}
	}
	return false
}

func isAllowedChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}

func isSeparator(c rune) bool {
	return c == '_' || c == '-'
}
