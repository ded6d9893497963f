package extractor

import (
	"strings"

	"personalens/pkg/models"
	"personalens/pkg/snapshot"
)

// ExtractFallback handles layouts without bare anchors. Each status url line
// closes a record built from the free-text lines seen since the previous one.
// Author, name, media and time label stay empty.
func ExtractFallback(lines []snapshot.Line) []models.TweetRecord {
	var (
		records []models.TweetRecord
		parts   []string
		pending *Stats
	)

	for _, line := range lines {
		if id, ok := snapshot.FindStatusID(line.Text); ok {
			rec := models.TweetRecord{
				ID:          id,
				Text:        strings.TrimSpace(strings.Join(parts, " ")),
				TimestampMS: DecodeSnowflake(id),
				Media:       []string{},
			}
			if pending != nil {
				rec.Replies, rec.Retweets, rec.Likes, rec.Views = pending.Replies, pending.Retweets, pending.Likes, pending.Views
			}
			if rec.Text != "" || rec.ID != "" {
				records = append(records, rec)
			}
			parts, pending = nil, nil
			continue
		}

		if line.Kind != snapshot.KindFreeText || line.Payload == "" {
			continue
		}
		s := SplitStats(line.Payload)
		if s.HasCounts() {
			pending = &s
		}
		if body := strings.TrimSpace(s.Body); !skipText[strings.ToLower(body)] {
			parts = append(parts, body)
		}
	}

	return records
}
