package extractor

import (
	"personalens/pkg/models"
)

// DedupPrefix is how many leading characters of text take part in the dedup key.
const DedupPrefix = 80

type dedupKey struct {
	handle string
	prefix string
}

func keyOf(r models.TweetRecord) dedupKey {
	return dedupKey{handle: r.AuthorHandle.OrElse(""), prefix: textPrefix(r.Text, DedupPrefix)}
}

// textPrefix returns the first n runes of s.
func textPrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Dedup drops records whose (author handle, text prefix) was already seen.
// Order is preserved and the first occurrence wins, which collapses a pinned
// post that is rendered again further down the timeline.
func Dedup(records []models.TweetRecord) []models.TweetRecord {
	out, _ := dedup(records, false)
	return out
}

// dedup returns the kept records and how many were dropped. When keepEmpty is
// set, records without text are never treated as duplicates of each other.
func dedup(records []models.TweetRecord, keepEmpty bool) ([]models.TweetRecord, int) {
	seen := make(map[dedupKey]struct{}, len(records))
	out := make([]models.TweetRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		if keepEmpty && r.Text == "" {
			out = append(out, r)
			continue
		}
		k := keyOf(r)
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, dropped
}
