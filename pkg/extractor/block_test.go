package extractor

import (
	"strings"
	"testing"

	"personalens/pkg/models"
	"personalens/pkg/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(raw ...string) []snapshot.Line {
	return snapshot.SplitLines(strings.Join(raw, "\n"))
}

func TestParseBlockFirstStatsWin(t *testing.T) {
	ls := lines(
		`- link [e1]:`,
		`  - /url: /adev/status/1750000000000000001#m`,
		`- link "@adev" [e2]:`,
		`- text: "Look at this"`,
		`- text: "2  7  120"`,
		`- text: "Quoted post  9  9  9"`,
	)

	rec, ok := ParseBlock(ls, 0, len(ls), "1750000000000000001")
	require.True(t, ok)
	assert.Equal(t, "Look at this Quoted post", rec.Text)
	assert.Equal(t, uint32(2), rec.Replies)
	assert.Equal(t, uint32(7), rec.Retweets)
	assert.Equal(t, uint32(120), rec.Likes)
}

func TestParseBlockAuthorName(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  models.Optional[string]
	}{
		{"plain name", "Jane Doe", models.Some("Jane Doe")},
		{"mention", "@jane", models.None[string]()},
		{"hashtag", "#golang", models.None[string]()},
		{"relative time", "15m", models.None[string]()},
		{"date", "Mar 15", models.None[string]()},
		{"ui label", "Tweets & replies", models.None[string]()},
		{"branding", "Nitter", models.None[string]()},
		{"empty", "", models.None[string]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := lines(`- link "`+tt.label+`" [e2]:`, `- text: "body"`)
			rec, ok := ParseBlock(ls, 0, len(ls), "1")
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.AuthorName)
		})
	}
}

func TestParseBlockTimeLabel(t *testing.T) {
	for _, label := range []string{"10h", "3d", "Mar 15", "Jan 5, 2024"} {
		ls := lines(`- link "`+label+`" [e2]:`, `- text: "body"`)
		rec, ok := ParseBlock(ls, 0, len(ls), "1")
		require.True(t, ok)
		assert.Equal(t, models.Some(label), rec.TimeLabel, label)
	}
}

func TestParseBlockMedia(t *testing.T) {
	ls := lines(
		`- text: "Two photos"`,
		`- /url: /pic/orig/media%2FAAA.jpg`,
		`- /url: /pic/orig/media%2FBBB.png`,
		`- /url: /pic/orig/media%2FAAA.jpg`,
		`- /url: /pic/orig/profile_images%2Fme.jpg`,
		`- /url: /pic/orig/media%ZZbad`,
	)

	rec, ok := ParseBlock(ls, 0, len(ls), "1")
	require.True(t, ok)
	assert.Equal(t, []string{
		"https://pbs.twimg.com/media/AAA.jpg",
		"https://pbs.twimg.com/media/BBB.png",
	}, rec.Media)
	assert.True(t, rec.HasMedia())
}

func TestParseBlockWindowCap(t *testing.T) {
	raw := []string{`- text: "first"`}
	for i := 0; i < maxBlockLines; i++ {
		raw = append(raw, `- listitem:`)
	}
	raw = append(raw, `- text: "beyond the window"`)
	ls := lines(raw...)

	rec, ok := ParseBlock(ls, 0, len(ls), "1")
	require.True(t, ok)
	assert.Equal(t, "first", rec.Text)
}

func TestParseBlockDiscard(t *testing.T) {
	ls := lines(`- text: "Pinned Tweet"`, `- text: "Retweeted"`)

	_, ok := ParseBlock(ls, 0, len(ls), "")
	assert.False(t, ok)

	rec, ok := ParseBlock(ls, 0, len(ls), "42")
	require.True(t, ok)
	assert.Empty(t, rec.Text)
	assert.Equal(t, DecodeSnowflake("42"), rec.TimestampMS)
}

func TestParseBlockBoundsClamped(t *testing.T) {
	ls := lines(`- text: "only line"`)
	rec, ok := ParseBlock(ls, 0, 100, "1")
	require.True(t, ok)
	assert.Equal(t, "only line", rec.Text)
}

func TestMediaURL(t *testing.T) {
	tests := map[string]string{
		"/pic/orig/media%2FABC.jpg":    MediaBaseURL + "ABC.jpg",
		"/pic/orig/media%2FABC%ZZ.jpg": MediaBaseURL + "ABC%ZZ.jpg",
		"/pic/orig/media%2FA%20B%2":    MediaBaseURL + "A B%2",
	}
	for path, want := range tests {
		got, ok := mediaURL(path)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := mediaURL("/pic/orig/other%2FABC.jpg")
	assert.False(t, ok)
}
