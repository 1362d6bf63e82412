// Package fuzzy ranks card names by similarity to a possibly misspelled query.
package fuzzy

import (
	"sort"
	"strings"
)

// Match is a ranked candidate.
type Match struct {
	Text  string
	Score int // 0-100
	Index int // position in the candidate list
}

// Options configures ranking.
type Options struct {
	// MaxResults limits the number of matches (0 = unlimited)
	MaxResults int
	// MinScore drops matches below this similarity (0-100)
	MinScore int
}

// DefaultOptions suits "did you mean" suggestions.
func DefaultOptions() Options {
	return Options{
		MaxResults: 3,
		MinScore:   60,
	}
}

// Rank scores every candidate against query, case-insensitively, and returns
// the matches ordered by score, then by candidate position.
func Rank(query string, candidates []string, opts Options) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		score := Score(q, strings.ToLower(c))
		if score >= opts.MinScore {
			matches = append(matches, Match{Text: c, Score: score, Index: i})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	if opts.MaxResults > 0 && len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return matches
}

// Score returns the similarity of two strings from 0 to 100. Exact matches
// score 100, substrings at least 80, everything else by edit distance.
func Score(query, target string) int {
	if query == target {
		return 100
	}
	if query == "" || target == "" {
		return 0
	}

	qr, tr := []rune(query), []rune(target)
	if strings.Contains(target, query) {
		return 80 + len(qr)*20/len(tr)
	}

	longest := max(len(qr), len(tr))
	return 100 - distance(qr, tr)*100/longest
}

// distance is the Levenshtein edit distance, computed with two rows.
func distance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
