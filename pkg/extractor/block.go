package extractor

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"personalens/pkg/models"
	"personalens/pkg/snapshot"
)

// maxBlockLines caps how far past its anchor a block is scanned.
const maxBlockLines = 60

// MediaBaseURL is prepended to decoded media paths.
const MediaBaseURL = "https://pbs.twimg.com/media/"

var (
	relativeTimeRe = regexp.MustCompile(`^\d+[smhd]$`)
	absoluteDateRe = regexp.MustCompile(`^[A-Z][a-z]{2} \d+(?:, \d{4})?$`)
	datePrefixRe   = regexp.MustCompile(`^[A-Z][a-z]{2} \d+`)
	handleLabelRe  = regexp.MustCompile(`^@(\w+)$`)
	mediaPathRe    = regexp.MustCompile(`^/pic/orig/(.+)$`)
)

// uiLabels are link labels rendered by the page chrome, never author names.
var uiLabels = map[string]bool{
	"nitter":           true,
	"logo":             true,
	"more replies":     true,
	"tweets":           true,
	"tweets & replies": true,
	"media":            true,
	"search":           true,
	"pinned tweet":     true,
	"retweeted":        true,
}

// skipText are free-text bodies that label a post rather than belong to it.
var skipText = map[string]bool{
	"pinned tweet": true,
	"retweeted":    true,
	"":             true,
}

// ParseBlock assembles one record from lines[start:end], scanning at most
// maxBlockLines lines. ok is false when the block has neither text nor id.
func ParseBlock(lines []snapshot.Line, start, end int, id string) (models.TweetRecord, bool) {
	end = min(end, start+maxBlockLines, len(lines))

	var (
		rec      = models.TweetRecord{ID: id, Media: []string{}}
		parts    []string
		statsSet bool
	)

	for j := start; j < end; j++ {
		line := lines[j]
		switch line.Kind {
		case snapshot.KindLabeledLink:
			label := line.Label
			if !rec.AuthorName.Valid {
				if name, ok := authorName(label); ok {
					rec.AuthorName = models.Some(name)
				}
			}
			if !rec.AuthorHandle.Valid {
				if m := handleLabelRe.FindStringSubmatch(label); m != nil {
					rec.AuthorHandle = models.Some("@" + m[1])
				}
			}
			if !rec.TimeLabel.Valid && isTimeLabel(label) {
				rec.TimeLabel = models.Some(label)
			}

		case snapshot.KindFreeText:
			if line.Payload == "" {
				continue
			}
			s := SplitStats(line.Payload)
			if s.HasCounts() && !statsSet {
				rec.Replies, rec.Retweets, rec.Likes, rec.Views = s.Replies, s.Retweets, s.Likes, s.Views
				statsSet = true
			}
			if body := strings.TrimSpace(s.Body); !skipText[strings.ToLower(body)] {
				parts = append(parts, body)
			}

		case snapshot.KindURLTarget:
			if media, ok := mediaURL(line.Payload); ok && !slices.Contains(rec.Media, media) {
				rec.Media = append(rec.Media, media)
			}
		}
	}

	rec.Text = strings.TrimSpace(strings.Join(parts, " "))
	if rec.Text == "" && rec.ID == "" {
		return models.TweetRecord{}, false
	}
	rec.TimestampMS = DecodeSnowflake(rec.ID)
	return rec, true
}

func authorName(label string) (string, bool) {
	if label == "" || label[0] == '@' || label[0] == '#' {
		return "", false
	}
	name := strings.TrimSpace(label)
	if name == "" || relativeTimeRe.MatchString(name) || datePrefixRe.MatchString(name) {
		return "", false
	}
	if uiLabels[strings.ToLower(name)] {
		return "", false
	}
	return name, true
}

func isTimeLabel(label string) bool {
	return relativeTimeRe.MatchString(label) || absoluteDateRe.MatchString(label)
}

// mediaURL turns "/pic/orig/media%2FABC.jpg" into a canonical media URL.
func mediaURL(path string) (string, bool) {
	m := mediaPathRe.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	rest, ok := strings.CutPrefix(unquote(m[1]), "media/")
	if !ok {
		return "", false
	}
	return MediaBaseURL + rest, true
}

// unquote decodes every valid %XX escape and leaves malformed ones as is.
func unquote(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+3 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

