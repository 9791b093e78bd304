// Package ui holds presentation helpers for the restbound CLI.
package ui

import (
	"sort"
	"strings"
)

const (
	maxDistance    = 3
	maxSuggestions = 3
)

// Suggest returns up to three candidates within edit distance 3 of target,
// closest first. Matching is case-insensitive.
func Suggest(target string, candidates []string) []string {
	type match struct {
		value    string
		distance int
	}

	lower := strings.ToLower(target)
	var matches []match
	for _, candidate := range candidates {
		d := editDistance(lower, strings.ToLower(candidate))
		if d <= maxDistance {
			matches = append(matches, match{candidate, d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// editDistance is the Levenshtein distance between a and b, computed with a
// rolling single row.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur := prev[0]
		prev[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := cur + cost
			if del := prev[j] + 1; del < d {
				d = del
			}
			if ins := prev[j-1] + 1; ins < d {
				d = ins
			}
			cur, prev[j] = prev[j], d
		}
	}
	return prev[len(b)]
}
