package match

import "strings"

// MinSimilarity is the normalized similarity a candidate needs to be
// suggested. "asnyc" against "async" scores 0.6.
const MinSimilarity = 0.5

// Distance returns the Levenshtein distance between a and b, counted in bytes.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	// Keep the row over the shorter string.
	if len(a) > len(b) {
		a, b = b, a
	}

	if a == "" {
		return len(b)
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(b); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			next := min(row[i]+1, row[i-1]+1, diag+cost)
			diag, row[i] = row[i], next
		}
	}

	return row[len(a)]
}

// Similarity maps the distance of a and b onto [0, 1], where 1 means equal
// ignoring case.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(max(len(a), len(b)))
}

// Suggest returns the candidate most similar to name. The second result is
// false when no candidate reaches MinSimilarity. Ties keep the earlier
// candidate.
func Suggest(name string, candidates ...string) (string, bool) {
	best, bestScore := "", MinSimilarity
	found := false

	for _, c := range candidates {
		if score := Similarity(name, c); score > bestScore || (!found && score == bestScore) {
			best, bestScore, found = c, score, true
		}
	}

	return best, found
}
