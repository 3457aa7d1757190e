package graph

import (
	"path/filepath"
	"strings"
	"unicode"
)

// IsOverview reports whether the artifact is an overview document by
// filename convention (any stem segment equal to "overview"). Overview
// artifacts never become work items.
func IsOverview(path string) bool {
	for _, seg := range stemSegments(path) {
		if strings.EqualFold(seg, "overview") {
			return true
		}
	}
	return false
}

// DeriveTitle turns a phase artifact path into an issue title: take the file
// stem, drop leading numeric and "phase" prefix segments, title-case the
// remaining words.
//
//	plans/01-setup-database.md  -> "Setup Database"
//	plans/phase-02-impl.md      -> "Impl"
func DeriveTitle(path string) string {
	segs := stemSegments(path)

	start := 0
	for start < len(segs) {
		if isNumeric(segs[start]) || strings.EqualFold(segs[start], "phase") {
			start++
			continue
		}
		break
	}
	if start == len(segs) {
		// Nothing but prefixes; fall back to the full stem.
		start = 0
	}

	words := make([]string, 0, len(segs)-start)
	for _, seg := range segs[start:] {
		words = append(words, capitalize(seg))
	}
	return strings.Join(words, " ")
}

func stemSegments(path string) []string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
