package viewmodels

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders a count with thousands separators.
func FormatCount(n uint) string {
	return countPrinter.Sprintf("%d", n)
}

// Pluralize picks the singular or plural noun for n.
func Pluralize(n uint, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Optional is an explicitly present-or-absent value.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

// OptionalString treats nil and blank strings as absent.
func OptionalString(s *string) Optional[string] {
	if s == nil || strings.TrimSpace(*s) == "" {
		return None[string]()
	}
	return Some(*s)
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

func (o Optional[T]) Present() bool { return o.ok }

// Or returns the value, or fallback when absent.
func (o Optional[T]) Or(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
