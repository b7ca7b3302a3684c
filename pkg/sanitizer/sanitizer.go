package sanitizer

import (
	"strings"
	"unicode/utf8"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

const maxNotesRunes = 500

func NormalizeEmail(email string) string {
	return Pipeline{
		strings.TrimSpace,
		strings.ToLower,
	}.Apply(email)
}

// NormalizeNotes collapses whitespace and truncates to the stored limit.
func NormalizeNotes(notes string) string {
	return Pipeline{
		TrimAndNormalize,
		truncateRunes(maxNotesRunes),
	}.Apply(notes)
}

func truncateRunes(limit int) Strategy {
	return func(s string) string {
		if utf8.RuneCountInString(s) <= limit {
			return s
		}
		return string([]rune(s)[:limit])
	}
}
