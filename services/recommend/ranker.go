package recommend

import (
	"sort"
	"strconv"

	"cinesage/models"
)

// relatedLimit caps the ranked related list; 30 gives the UI enough variety
// without paging.
const relatedLimit = 30

// rankedCandidate pairs a summary with its derived similarity score. Scores
// exist only while ranking; they are never serialized.
type rankedCandidate struct {
	summary models.MediaSummary
	score   float64
}

// mergeRelated combines the two related-content sets, keeping the
// recommendations set's order and appending similar items not already
// present. Dedup here is by bare id, matching how TMDB's own related lists
// behave within a single media type.
func mergeRelated(recommendations, similar []models.MediaSummary) []models.MediaSummary {
	merged := append([]models.MediaSummary(nil), recommendations...)
	seen := make(map[int64]bool, len(merged))
	for _, it := range merged {
		seen[it.ID] = true
	}
	for _, it := range similar {
		if !seen[it.ID] {
			seen[it.ID] = true
			merged = append(merged, it)
		}
	}
	return merged
}

// similarityScore weighs quality most heavily, then popularity, then rating
// reliability (vote count capped at 1000 so new releases aren't buried),
// minus a small recency penalty. Missing numeric fields count as zero; a
// missing release date incurs no penalty.
func similarityScore(m models.MediaSummary, currentYear int) float64 {
	votes := float64(m.VoteCount)
	if votes > 1000 {
		votes = 1000
	}
	age := 0
	if year := releaseYear(m.ReleaseDate); year > 0 && currentYear > year {
		age = currentYear - year
	}
	return m.VoteAverage*5 + m.Popularity*0.3 + votes/1000*1.5 - float64(age)*0.05
}

// releaseYear extracts the year from a YYYY-MM-DD date string, 0 if absent
// or malformed.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// rankRelated scores every item, sorts descending and truncates to
// relatedLimit. Relative order among equal scores is unspecified.
func rankRelated(items []models.MediaSummary, currentYear int) []models.MediaSummary {
	ranked := make([]rankedCandidate, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, rankedCandidate{summary: it, score: similarityScore(it, currentYear)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > relatedLimit {
		ranked = ranked[:relatedLimit]
	}
	out := make([]models.MediaSummary, len(ranked))
	for i, rc := range ranked {
		out[i] = rc.summary
	}
	return out
}
