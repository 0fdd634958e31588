// Package textutil holds the Unicode cleaning rules shared by the pipelines.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, trims, and collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// NormalizeKey is Normalize folded to lower case, for map keys and lookups.
func NormalizeKey(s string) string {
	return strings.ToLower(Normalize(s))
}

// Title upper-cases the first letter of each word and lower-cases the rest.
// A Caser keeps state, so each call builds its own.
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// CleanCell trims a CSV cell and drops a leading byte order mark.
func CleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

// StripControl removes control characters other than newline and tab.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// UniqueNormalized returns the normalized labels with case-insensitive duplicates removed.
func UniqueNormalized(labels []string) []string {
	seen := make(map[string]struct{})
	res := make([]string, 0, len(labels))
	for _, lab := range labels {
		clean := Normalize(lab)
		if clean == "" {
			continue
		}
		key := NormalizeKey(clean)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, clean)
	}
	return res
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
