package stringsutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

func RemoveEmptyStrings(slice []string) []string {
	var result []string

	for _, s := range slice {
		if s != "" {
			result = append(result, s)
		}
	}

	return result
}

// TrimAll trims every element and drops the ones left empty.
func TrimAll(slice []string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		out = append(out, strings.TrimSpace(s))
	}
	return RemoveEmptyStrings(out)
}

// Fold maps s to a form suitable for caseless comparison. Full-width Latin
// letters and digits are unified with their ASCII forms first, so "ＳＥＡＳＯＮ"
// and "season" fold to the same string. CJK text passes through unchanged.
func Fold(s string) string {
	// a Caser is stateful, so one is built per call
	return cases.Fold().String(norm.NFKC.String(s))
}

// ContainsFold reports whether substr is within s under Fold.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// Prefix returns the first n runes of s, or s itself when it is shorter.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// CollapseSpace replaces whitespace runs with a single space and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
