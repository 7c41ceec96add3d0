package repository

import (
	"fmt"
	"strings"
	"unicode"

	"bracket-elo/internal/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeNamespace turns a free-text game title into a storage identifier:
// accents folded, lower-cased, everything outside [a-z0-9] dropped.
func NormalizeNamespace(title string) (string, error) {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		return "", fmt.Errorf("failed to normalize namespace %q: %w", title, err)
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if isIdentRune(r) {
			b.WriteRune(r)
		}
	}

	ns := b.String()
	if ns == "" {
		return "", fmt.Errorf("game %q: %w", title, domain.ErrInvalidNamespace)
	}
	if ns == domain.OverallNamespace {
		return "", fmt.Errorf("game %q: %w", title, domain.ErrReservedNamespace)
	}
	return ns, nil
}

// ResolveNamespace maps user input to a namespace; empty means overall.
func ResolveNamespace(name string) (string, error) {
	if name == "" || name == domain.OverallNamespace {
		return domain.OverallNamespace, nil
	}
	return NormalizeNamespace(name)
}

func validNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	for _, r := range ns {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
