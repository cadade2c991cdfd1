package domain

import "strings"

// minKeywordLen drops short common words ("to", "in", "de") from scoring
// without needing a stopword list.
const minKeywordLen = 3

// ScoreKeywords scores a whitespace-split query against a lowercase haystack.
// Each query word of at least minKeywordLen characters found as a substring
// of the haystack adds its character length to the score: longer, more
// specific terms dominate short accidental hits. Callers pass the query
// already lowercased.
func ScoreKeywords(haystack, query string) int {
	score := 0
	for _, word := range strings.Fields(query) {
		if len(word) < minKeywordLen {
			continue
		}
		if strings.Contains(haystack, word) {
			score += len(word)
		}
	}
	return score
}

// searchText builds the match haystack for one conference: name, slug, city,
// country, and tags, lowercased and space-joined.
func searchText(c *Conference) string {
	parts := make([]string, 0, 4+len(c.Tags))
	parts = append(parts, c.Name, c.Slug, c.Location.City, c.Location.Country)
	parts = append(parts, c.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
