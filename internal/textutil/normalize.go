package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer rewrites a single string value.
type Normalizer func(string) string

// NFC returns s in Unicode canonical composition form.
func NFC(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims the ends.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LowerLabel trims and case-folds a label using language-neutral rules.
func LowerLabel(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// MapLabel returns a normalizer that rewrites labels found in mapping and
// leaves everything else untouched.
func MapLabel(mapping map[string]string) Normalizer {
	if len(mapping) == 0 {
		return nil
	}
	return func(s string) string {
		if v, ok := mapping[s]; ok {
			return v
		}
		return s
	}
}

// Chain composes normalizers left to right, skipping nil entries. It
// returns nil when nothing remains.
func Chain(fns ...Normalizer) Normalizer {
	kept := make([]Normalizer, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			kept = append(kept, fn)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return func(s string) string {
		for _, fn := range kept {
			s = fn(s)
		}
		return s
	}
}
