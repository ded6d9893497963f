package extractor

import (
	"personalens/pkg/models"
	"personalens/pkg/snapshot"
)

// Extract runs the full pipeline over a snapshot: anchor indexing, block
// parsing, stats splitting and dedup, or the fallback scan when the snapshot
// has no bare anchors at all. The profile header is parsed from the same lines.
//
// Extract never fails. Malformed input yields an empty record list.
func Extract(raw, handle string) *models.Extraction {
	doc := snapshot.Parse(raw)
	lines := doc.Lines

	result := &models.Extraction{
		Records: []models.TweetRecord{},
		Pages:   len(snapshot.SplitPages(raw)),
		Profile: ParseProfile(lines, handle),
	}

	anchors := IndexAnchors(doc)
	content := ContentAnchors(anchors)
	result.Anchors = len(anchors)
	result.ContentAnchors = len(content)
	result.NavigationAnchors = len(anchors) - len(content)

	if len(anchors) == 0 {
		result.Strategy = models.StrategyFallback
		records, dups := dedup(ExtractFallback(lines), true)
		result.Records = append(result.Records, records...)
		result.Duplicates = dups
		return result
	}

	// A snapshot holding only navigation anchors has no posts.
	result.Strategy = models.StrategyAnchors
	candidates := make([]models.TweetRecord, 0, len(content))
	for k, a := range content {
		end := len(lines)
		if k+1 < len(content) {
			end = content[k+1].Line
		}
		rec, ok := ParseBlock(lines, a.Line, end, a.ID)
		if !ok {
			result.Discarded++
			continue
		}
		candidates = append(candidates, rec)
	}

	records, dups := dedup(candidates, false)
	result.Records = append(result.Records, records...)
	result.Duplicates = dups
	return result
}

// ExtractTweets returns only the ordered records of a snapshot.
func ExtractTweets(raw string) []models.TweetRecord {
	return Extract(raw, "").Records
}

// ExtractProfile parses only the profile header of a snapshot.
func ExtractProfile(raw, handle string) models.UserProfile {
	return ParseProfile(snapshot.SplitLines(raw), handle)
}
