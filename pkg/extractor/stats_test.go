package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Stats
	}{
		{
			name: "stats only",
			raw:  "3  12  847",
			want: Stats{Replies: 3, Retweets: 12, Likes: 847},
		},
		{
			name: "stats only with comma group",
			raw:  "1  22  4,418",
			want: Stats{Replies: 1, Retweets: 22, Likes: 4418},
		},
		{
			name: "body with tail",
			raw:  "Some tweet content  1   22  4,418",
			want: Stats{Body: "Some tweet content", Replies: 1, Retweets: 22, Likes: 4418},
		},
		{
			name: "quoted",
			raw:  `"Trying out Claude 3.5 Sonnet today. Impressive."`,
			want: Stats{Body: "Trying out Claude 3.5 Sonnet today. Impressive."},
		},
		{
			name: "four counters include views",
			raw:  "Launch day  5  10  200  12,000",
			want: Stats{Body: "Launch day", Replies: 5, Retweets: 10, Likes: 200, Views: 12000},
		},
		{
			name: "two counters skip retweets",
			raw:  "Short one  2  9",
			want: Stats{Body: "Short one", Replies: 2, Likes: 9},
		},
		{
			name: "single counter is likes",
			raw:  "Body  42",
			want: Stats{Body: "Body", Likes: 42},
		},
		{
			name: "single space is not a separator",
			raw:  "I ran 5 miles",
			want: Stats{Body: "I ran 5 miles"},
		},
		{
			name: "icons removed",
			raw:  "Hello world \uf0e5 4 \uf079 8 \uf004 15",
			want: Stats{Body: "Hello world", Replies: 4, Retweets: 8, Likes: 15},
		},
		{
			name: "counter overflow becomes zero",
			raw:  "Big  1  99999999999",
			want: Stats{Body: "Big", Replies: 1},
		},
		{
			name: "empty",
			raw:  "   ",
			want: Stats{},
		},
		{
			name: "only quotes",
			raw:  `""`,
			want: Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStats(tt.raw))
		})
	}
}

func TestStatsHasCounts(t *testing.T) {
	assert.False(t, Stats{Body: "x"}.HasCounts())
	assert.True(t, Stats{Views: 1}.HasCounts())
	assert.False(t, SplitStats("0  0  0").HasCounts())
}
