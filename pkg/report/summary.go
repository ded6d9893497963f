// Package report turns extraction results into account summaries and
// human-readable Markdown or HTML reports.
package report

import (
	"cmp"
	"slices"
	"strings"

	"personalens/pkg/models"
	"personalens/pkg/patterns"
)

// DefaultTopPosts is how many posts a summary ranks by default.
const DefaultTopPosts = 5

// TopPost is a ranked post in a summary.
type TopPost struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Likes    uint32 `json:"likes" yaml:"likes"`
	Retweets uint32 `json:"retweets" yaml:"retweets"`
	Replies  uint32 `json:"replies" yaml:"replies"`
}

// Summary is the per-account digest shared by the CLI, the MCP tools and the
// Markdown report.
type Summary struct {
	Username     string                `json:"username" yaml:"username"`
	DisplayName  string                `json:"display_name" yaml:"display_name"`
	Bio          string                `json:"bio" yaml:"bio"`
	Joined       string                `json:"joined" yaml:"joined"`
	Followers    uint64                `json:"followers" yaml:"followers"`
	Following    uint64                `json:"following" yaml:"following"`
	TweetsCount  uint64                `json:"tweets_count" yaml:"tweets_count"`
	TweetsParsed int                   `json:"tweets_parsed" yaml:"tweets_parsed"`
	MediaPosts   int                   `json:"media_posts" yaml:"media_posts"`
	PeakDay      string                `json:"peak_day" yaml:"peak_day"`
	PeakHourUTC  string                `json:"peak_hour_utc" yaml:"peak_hour_utc"`
	Patterns     models.PostingPattern `json:"patterns" yaml:"patterns"`
	TopPosts     []TopPost             `json:"top_posts" yaml:"top_posts"`
}

// FilterOwn keeps records authored by handle. Records without a detected
// author are kept, since the fallback layout never carries one. Comparison
// ignores case and a leading "@". An empty handle keeps every record.
func FilterOwn(records []models.TweetRecord, handle string) []models.TweetRecord {
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" {
		return records
	}
	out := make([]models.TweetRecord, 0, len(records))
	for _, r := range records {
		author, ok := r.AuthorHandle.Get()
		if !ok || strings.EqualFold(strings.TrimPrefix(author, "@"), handle) {
			out = append(out, r)
		}
	}
	return out
}

// TopPosts returns up to n records ranked by likes plus three times retweets.
// Equal scores keep their snapshot order.
func TopPosts(records []models.TweetRecord, n int) []models.TweetRecord {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b models.TweetRecord) int {
		return cmp.Compare(b.Engagement(), a.Engagement())
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Summarize builds the account summary from a profile and the records
// attributed to it.
func Summarize(profile models.UserProfile, records []models.TweetRecord, topN int) Summary {
	pattern := patterns.Aggregate(records)
	s := Summary{
		Username:     profile.Handle,
		DisplayName:  profile.DisplayName,
		Bio:          profile.Bio,
		Joined:       profile.Joined,
		Followers:    profile.Followers,
		Following:    profile.Following,
		TweetsCount:  profile.TweetsCount,
		TweetsParsed: len(records),
		PeakDay:      patterns.PeakDay(pattern),
		PeakHourUTC:  patterns.PeakSlot(pattern),
		Patterns:     pattern,
		TopPosts:     []TopPost{},
	}
	for _, r := range records {
		if r.HasMedia() {
			s.MediaPosts++
		}
	}
	for _, r := range TopPosts(records, topN) {
		s.TopPosts = append(s.TopPosts, TopPost{
			ID:       r.ID,
			Text:     r.Text,
			Likes:    r.Likes,
			Retweets: r.Retweets,
			Replies:  r.Replies,
		})
	}
	return s
}

// FromExtraction summarizes an extraction, optionally restricted to the
// account's own posts.
func FromExtraction(ext *models.Extraction, ownOnly bool, topN int) Summary {
	records := ext.Records
	if ownOnly {
		records = FilterOwn(records, ext.Profile.Handle)
	}
	return Summarize(ext.Profile, records, topN)
}
