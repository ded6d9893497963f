package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"personalens/pkg/models"
	"personalens/pkg/snapshot"
)

var (
	joinedRe    = regexp.MustCompile(`Joined\s+(.+)`)
	tweetsRe    = regexp.MustCompile(`Tweets\s+([\d,]+)`)
	followersRe = regexp.MustCompile(`Followers\s+([\d,]+)`)
	followingRe = regexp.MustCompile(`Following\s+([\d,]+)`)
)

// brandLabels are site-chrome links that precede the display name.
var brandLabels = map[string]bool{
	"nitter": true,
	"logo":   true,
}

// ParseProfile recovers profile header fields in a single pass over lines.
// Every field keeps its first match; missing fields stay empty or zero.
func ParseProfile(lines []snapshot.Line, handle string) models.UserProfile {
	handle = strings.TrimPrefix(handle, "@")
	p := models.UserProfile{Handle: handle}
	var haveTweets, haveFollowers, haveFollowing bool

	for _, line := range lines {
		text := line.Text

		if p.DisplayName == "" && line.Kind == snapshot.KindLabeledLink {
			if name, ok := displayName(line.Label, handle); ok {
				p.DisplayName = name
			}
		}

		if p.Bio == "" && line.Kind == snapshot.KindParagraph {
			if line.Payload != "" && !strings.Contains(line.Payload, "Joined") {
				p.Bio = line.Payload
			}
		}

		if p.Joined == "" && strings.Contains(text, "Joined") {
			if m := joinedRe.FindStringSubmatch(text); m != nil {
				p.Joined = strings.Trim(strings.TrimSpace(m[1]), `"`)
			}
		}

		if !haveTweets {
			p.TweetsCount, haveTweets = counter(tweetsRe, text)
		}
		if !haveFollowers {
			p.Followers, haveFollowers = counter(followersRe, text)
		}
		if !haveFollowing {
			p.Following, haveFollowing = counter(followingRe, text)
		}
	}

	return p
}

// displayName accepts a link label of at least two characters that is not a
// mention, a hashtag, site branding, or the subject's own handle.
func displayName(label, handle string) (string, bool) {
	if utf8.RuneCountInString(label) < 2 || label[0] == '@' || label[0] == '#' {
		return "", false
	}
	name := strings.TrimSpace(label)
	lower := strings.ToLower(name)
	if name == "" || brandLabels[lower] {
		return "", false
	}
	if handle != "" && strings.Contains(lower, strings.ToLower(handle)) {
		return "", false
	}
	return name, true
}

func counter(re *regexp.Regexp, text string) (uint64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
