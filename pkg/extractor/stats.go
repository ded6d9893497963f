package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// Stats is a text line split into its body and trailing engagement counters.
type Stats struct {
	Body     string
	Replies  uint32
	Retweets uint32
	Likes    uint32
	Views    uint32
}

// HasCounts reports whether any counter is nonzero.
func (s Stats) HasCounts() bool {
	return s.Replies != 0 || s.Retweets != 0 || s.Likes != 0 || s.Views != 0
}

var (
	// Private-use glyphs some front-ends render as stat icons.
	iconRe      = regexp.MustCompile(`[\x{F000}-\x{F8FF}\x{F0000}-\x{FFFFD}]`)
	statsOnlyRe = regexp.MustCompile(`^[\d,\s]+$`)
	statsTailRe = regexp.MustCompile(`^(.*?)\s{2,}([\d,]+(?:\s+[\d,]+){0,3})\s*$`)
	numberRe    = regexp.MustCompile(`[\d,]+`)
)

// SplitStats separates trailing engagement counters from free text.
//
// Counters follow the text after a run of two or more spaces, or make up the
// whole line. They are mapped by count:
//
//	4 → replies, retweets, likes, views
//	3 → replies, retweets, likes
//	2 → replies, likes
//	1 → likes
func SplitStats(raw string) Stats {
	text := strings.Trim(strings.TrimSpace(raw), `"`)
	text = strings.TrimSpace(iconRe.ReplaceAllString(text, ""))
	if text == "" {
		return Stats{}
	}

	if statsOnlyRe.MatchString(text) {
		return assignCounts("", parseNumbers(text))
	}

	m := statsTailRe.FindStringSubmatch(text)
	if m == nil {
		return Stats{Body: text}
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return Stats{Body: text}
	}
	return assignCounts(body, parseNumbers(m[2]))
}

func parseNumbers(s string) []uint32 {
	groups := numberRe.FindAllString(s, -1)
	nums := make([]uint32, 0, len(groups))
	for _, g := range groups {
		n, err := strconv.ParseUint(strings.ReplaceAll(g, ",", ""), 10, 32)
		if err != nil {
			n = 0
		}
		nums = append(nums, uint32(n))
	}
	return nums
}

func assignCounts(body string, nums []uint32) Stats {
	s := Stats{Body: body}
	switch {
	case len(nums) >= 4:
		s.Replies, s.Retweets, s.Likes, s.Views = nums[0], nums[1], nums[2], nums[3]
	case len(nums) == 3:
		s.Replies, s.Retweets, s.Likes = nums[0], nums[1], nums[2]
	case len(nums) == 2:
		// Retweets are not rendered in the two-counter layout.
		s.Replies, s.Likes = nums[0], nums[1]
	case len(nums) == 1:
		s.Likes = nums[0]
	}
	return s
}
