package models

import (
	"bytes"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// Optional holds a value that may be absent. It marshals to null when unset.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the value if present, otherwise fallback.
func (o Optional[T]) OrElse(fallback T) T {
	if o.Valid {
		return o.Value
	}
	return fallback
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Optional[T]) MarshalYAML() (interface{}, error) {
	if !o.Valid {
		return nil, nil
	}
	return o.Value, nil
}

func (o *Optional[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// TweetRecord is one post recovered from a snapshot.
// TimestampMS is always derived from ID.
type TweetRecord struct {
	ID           string           `json:"id" yaml:"id"`
	Text         string           `json:"text" yaml:"text"`
	TimestampMS  uint64           `json:"timestamp_ms" yaml:"timestamp_ms"`
	Likes        uint32           `json:"likes" yaml:"likes"`
	Retweets     uint32           `json:"retweets" yaml:"retweets"`
	Replies      uint32           `json:"replies" yaml:"replies"`
	Views        uint32           `json:"views" yaml:"views"`
	AuthorHandle Optional[string] `json:"author_handle" yaml:"author_handle"`
	AuthorName   Optional[string] `json:"author_name" yaml:"author_name"`
	Media        []string         `json:"media" yaml:"media"`
	TimeLabel    Optional[string] `json:"time_label" yaml:"time_label"`
}

// HasMedia reports whether the record carries at least one media URL.
func (t TweetRecord) HasMedia() bool {
	return len(t.Media) > 0
}

// PostedAt returns the decoded timestamp in UTC, or the zero time when unknown.
func (t TweetRecord) PostedAt() time.Time {
	if t.TimestampMS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t.TimestampMS)).UTC()
}

// Engagement is the ranking score used for top posts: likes plus three times retweets.
func (t TweetRecord) Engagement() uint64 {
	return uint64(t.Likes) + 3*uint64(t.Retweets)
}

// UserProfile holds account-level fields recovered from the profile header.
type UserProfile struct {
	Handle      string `json:"handle" yaml:"handle"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Bio         string `json:"bio" yaml:"bio"`
	Joined      string `json:"joined" yaml:"joined"`
	TweetsCount uint64 `json:"tweets_count" yaml:"tweets_count"`
	Followers   uint64 `json:"followers" yaml:"followers"`
	Following   uint64 `json:"following" yaml:"following"`
}

// PostingPattern counts posts per UTC weekday and per 4-hour UTC slot.
type PostingPattern struct {
	Days  map[string]int `json:"peak_days" yaml:"peak_days"`
	Slots map[string]int `json:"peak_hours" yaml:"peak_hours"`
	Total int            `json:"total" yaml:"total"`
}

// Strategy names the extraction path that produced the records.
type Strategy string

const (
	StrategyAnchors  Strategy = "anchors"
	StrategyFallback Strategy = "fallback"
)

// Extraction is the full result of one extractor run.
type Extraction struct {
	Records           []TweetRecord `json:"records" yaml:"records"`
	Profile           UserProfile   `json:"profile" yaml:"profile"`
	Strategy          Strategy      `json:"strategy" yaml:"strategy"`
	Pages             int           `json:"pages" yaml:"pages"`
	Anchors           int           `json:"anchors" yaml:"anchors"`
	ContentAnchors    int           `json:"content_anchors" yaml:"content_anchors"`
	NavigationAnchors int           `json:"navigation_anchors" yaml:"navigation_anchors"`
	Discarded         int           `json:"discarded" yaml:"discarded"`
	Duplicates        int           `json:"duplicates" yaml:"duplicates"`
}
