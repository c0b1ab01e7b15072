package recommend

import (
	"regexp"
	"strings"
)

var (
	leadingJunk    = regexp.MustCompile("^[\\d*\\-.\\s\"'`]+")
	trailingQuotes = regexp.MustCompile("[\"'`]+$")
)

// cleanTitles turns a raw generated response into candidate titles: one per
// line, with numbering, bullets and surrounding quotes stripped and empty
// lines dropped. Order is preserved and duplicates are kept; deduplication
// happens after resolution, where real identities are known.
func cleanTitles(raw string) []string {
	if raw == "" {
		return nil
	}
	var titles []string
	for _, line := range strings.Split(raw, "\n") {
		line = leadingJunk.ReplaceAllString(line, "")
		line = trailingQuotes.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}

// fallbackBuckets are known-good titles served whenever the generation
// backend is unconfigured or fails. The pipeline must always return
// something resolvable, even with every upstream AI call down.
var fallbackBuckets = map[string][]string{
	"action":   {"Die Hard", "The Dark Knight", "Mad Max: Fury Road", "John Wick", "Mission Impossible"},
	"comedy":   {"Superbad", "Bridesmaids", "The Hangover", "Dumb and Dumber", "Anchorman"},
	"drama":    {"The Shawshank Redemption", "The Godfather", "Schindler's List", "Forrest Gump", "Casablanca"},
	"horror":   {"The Shining", "Hereditary", "A Quiet Place", "Get Out", "The Exorcist"},
	"romance":  {"The Notebook", "Titanic", "Pride and Prejudice", "Before Sunrise", "La La Land"},
	"sci-fi":   {"Blade Runner", "The Matrix", "Inception", "Interstellar", "Alien"},
	"thriller": {"Se7en", "Silence of the Lambs", "Parasite", "Gone Girl", "No Country for Old Men"},
	"default":  {"The Shawshank Redemption", "The Dark Knight", "Pulp Fiction", "Forrest Gump", "Inception"},
}

// fallbackBucketOrder fixes the match order so lookups are deterministic.
var fallbackBucketOrder = []string{"action", "comedy", "drama", "horror", "romance", "sci-fi", "thriller"}

// fallbackTitles picks the first bucket whose name appears in the query or
// whose name contains the query, case-insensitively; anything unmatched gets
// the default bucket. The returned slice is a copy.
func fallbackTitles(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	bucket := "default"
	if q != "" {
		for _, name := range fallbackBucketOrder {
			if strings.Contains(q, name) || strings.Contains(name, q) {
				bucket = name
				break
			}
		}
	}
	return append([]string(nil), fallbackBuckets[bucket]...)
}
