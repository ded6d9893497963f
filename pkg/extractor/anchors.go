package extractor

import (
	"personalens/pkg/snapshot"
)

// AnchorKind separates per-post anchors from table-of-contents anchors.
type AnchorKind int

const (
	AnchorNavigation AnchorKind = iota
	AnchorContent
)

func (k AnchorKind) String() string {
	if k == AnchorContent {
		return "content"
	}
	return "navigation"
}

// Anchor is a bare link line whose next line targets a post permalink.
type Anchor struct {
	Line   int
	Path   string
	Handle string
	ID     string
	Kind   AnchorKind
}

// classifyWindow is how many lines after the url target are inspected when
// deciding whether an anchor opens a post.
const classifyWindow = 6

// IndexAnchors finds every bare anchor in document order and tags it as
// content or navigation. Candidates are the bare status links of the line
// tree whose url target sits on the very next line.
//
// Table-of-contents anchors come in a run and are followed by a list marker;
// post anchors are followed by author, time and text lines. An anchor is
// content when a labeled link or free-text line appears within the window
// before any other bare link or list marker.
func IndexAnchors(doc *snapshot.Document) []Anchor {
	var anchors []Anchor
	for _, link := range doc.StatusLinks() {
		if link.Node.Line.Kind != snapshot.KindBareLink || !link.Adjacent() {
			continue
		}
		i := link.Node.Line.Index
		a := Anchor{
			Line:   i,
			Path:   link.Target.Line.Payload,
			Handle: link.Handle,
			ID:     link.ID,
			Kind:   AnchorNavigation,
		}
		if opensContent(doc.Lines, i) {
			a.Kind = AnchorContent
		}
		anchors = append(anchors, a)
	}
	return anchors
}

func opensContent(lines []snapshot.Line, anchor int) bool {
	end := min(len(lines), anchor+2+classifyWindow)
	for j := anchor + 2; j < end; j++ {
		switch lines[j].Kind {
		case snapshot.KindLabeledLink:
			if lines[j].Label != "" {
				return true
			}
		case snapshot.KindFreeText:
			return true
		case snapshot.KindBareLink, snapshot.KindListMarker:
			return false
		}
	}
	return false
}

// ContentAnchors filters anchors down to the content ones.
func ContentAnchors(anchors []Anchor) []Anchor {
	content := make([]Anchor, 0, len(anchors))
	for _, a := range anchors {
		if a.Kind == AnchorContent {
			content = append(content, a)
		}
	}
	return content
}
