package extractor

import (
	"strings"
	"testing"

	"personalens/pkg/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func document(raw ...string) *snapshot.Document {
	return snapshot.Parse(strings.Join(raw, "\n"))
}

func TestIndexAnchors(t *testing.T) {
	ls := document(
		`- link [e1]:`,
		`  - /url: /adev/status/11#m`,
		`- list:`,
		`- link [e2]:`,
		`  - /url: /adev/status/22#m`,
		`- link "Alice" [e3]:`,
		`- link [e4]:`,
		`  - /url: /adev/media`,
		`- link [e5]:`,
		`  - /url: /bob/status/33#m`,
		`- listitem:`,
		`- text: "hello"`,
	)

	anchors := IndexAnchors(ls)
	require.Len(t, anchors, 3)

	assert.Equal(t, Anchor{Line: 0, Path: "/adev/status/11#m", Handle: "adev", ID: "11", Kind: AnchorNavigation}, anchors[0])
	assert.Equal(t, Anchor{Line: 3, Path: "/adev/status/22#m", Handle: "adev", ID: "22", Kind: AnchorContent}, anchors[1])
	assert.Equal(t, AnchorContent, anchors[2].Kind, "list items do not stop the scan")

	content := ContentAnchors(anchors)
	require.Len(t, content, 2)
	assert.Equal(t, "22", content[0].ID)
	assert.Equal(t, "33", content[1].ID)
}

func TestIndexAnchorsWindow(t *testing.T) {
	raw := []string{`- link [e1]:`, `  - /url: /adev/status/1#m`}
	for i := 0; i < classifyWindow; i++ {
		raw = append(raw, `- listitem:`)
	}
	raw = append(raw, `- text: "too far"`)

	anchors := IndexAnchors(document(raw...))
	require.Len(t, anchors, 1)
	assert.Equal(t, AnchorNavigation, anchors[0].Kind)

	// One line closer and the text falls inside the window.
	raw = append(raw[:len(raw)-2], `- text: "close enough"`)
	anchors = IndexAnchors(document(raw...))
	require.Len(t, anchors, 1)
	assert.Equal(t, AnchorContent, anchors[0].Kind)
}

func TestIndexAnchorsIgnoresMalformed(t *testing.T) {
	ls := document(
		`- link [e1]:`,
		``,
		`  - /url: /adev/status/1#m`,
		`- link [e2]:`,
		`  - /url: /adev/status/2`,
		`- link "labeled" [e3]:`,
		`  - /url: /adev/status/3#m`,
		`- link [e4]:`,
	)
	assert.Empty(t, IndexAnchors(ls))
}

func TestIndexAnchorsNested(t *testing.T) {
	ls := document(
		`- article:`,
		`  - link [e1]:`,
		`    - /url: /adev/status/1#m`,
		`  - link "@adev" [e2]:`,
		`- link [e3]:`,
		`- /url: /adev/status/2#m`,
		`- text: "url is a sibling, not a child"`,
	)

	anchors := IndexAnchors(ls)
	require.Len(t, anchors, 1)
	assert.Equal(t, Anchor{Line: 1, Path: "/adev/status/1#m", Handle: "adev", ID: "1", Kind: AnchorContent}, anchors[0])
}

func TestAnchorKindString(t *testing.T) {
	assert.Equal(t, "content", AnchorContent.String())
	assert.Equal(t, "navigation", AnchorNavigation.String())
}
