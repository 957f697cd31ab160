// Package fuzzy provides typo-tolerant matching for newsletter search.
package fuzzy

import (
	"strings"
	"unicode"
)

// Distance calculates the Levenshtein edit distance between two strings
// after normalization.
func Distance(s1, s2 string) int {
	s1 = normalize(s1)
	s2 = normalize(s2)

	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Match reports whether query matches text within the given edit-distance
// threshold, by containment, per-word distance or prefix.
func Match(query, text string, threshold int) bool {
	query = normalize(query)
	text = normalize(text)

	if query == "" || text == "" {
		return false
	}
	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if Distance(query, word) <= threshold {
			return true
		}
	}
	return false
}

// MatchNewsletter checks a query against the searchable fields of a
// newsletter, with a threshold scaled to the query length.
func MatchNewsletter(query, subject, senderName, senderEmail string) bool {
	threshold := 2
	if len(query) <= 3 {
		threshold = 1
	} else if len(query) >= 8 {
		threshold = 3
	}

	return Match(query, subject, threshold) ||
		Match(query, senderName, threshold) ||
		Match(query, senderEmail, threshold)
}

// Score ranks how relevant a newsletter is to a query; higher is more
// relevant. Subject matches outweigh sender matches.
func Score(query, subject, senderName, senderEmail string) float64 {
	query = normalize(query)
	score := 0.0

	if subjectNorm := normalize(subject); strings.Contains(subjectNorm, query) {
		score += 100
	} else {
		for _, word := range strings.Fields(subjectNorm) {
			if strings.HasPrefix(word, query) {
				score += 40
			} else if d := Distance(query, word); d <= 2 {
				score += 50 - float64(d)*15
			}
		}
	}

	if nameNorm := normalize(senderName); strings.Contains(nameNorm, query) {
		score += 80
	}
	if emailNorm := normalize(senderEmail); strings.Contains(emailNorm, query) {
		score += 60
	}

	return score
}

// normalize lowercases and strips marks so accented text matches its plain
// form.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
