package alerr

import (
	"fmt"
	"sort"
	"strings"
)

// maxSuggestDistance bounds how far a candidate may be from the input.
const maxSuggestDistance = 3

// editDistance computes the Levenshtein distance between two strings,
// comparing runes so non-ASCII identifiers are measured correctly.
func editDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Candidates returns the options within edit distance of input, closest first.
// A case-insensitive exact match always ranks first (distance 0).
func Candidates(input string, options []string) []string {
	type scored struct {
		name string
		dist int
	}

	var hits []scored
	for _, opt := range options {
		d := editDistance(input, opt)
		if strings.EqualFold(input, opt) {
			d = 0
		}
		if d <= maxSuggestDistance && opt != input {
			hits = append(hits, scored{opt, d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// ClosestMatch returns the best candidate for input, if any.
func ClosestMatch(input string, options []string) (string, bool) {
	c := Candidates(input, options)
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// DidYouMean returns a "did you mean 'X'?" hint, or "" when nothing is close.
func DidYouMean(input string, options []string) string {
	if match, ok := ClosestMatch(input, options); ok {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}
