package snapshot

import (
	"regexp"
	"strings"
)

// PageSeparator joins consecutive page snapshots in a multi-page dump.
const PageSeparator = "\n\n--- PAGE BREAK ---\n\n"

var (
	statusPathRe  = regexp.MustCompile(`^/(\w+)/status/(\d+)#m$`)
	statusURLRe   = regexp.MustCompile(`/url: /\w+/status/(\d+)#m`)
	cursorRe      = regexp.MustCompile(`cursor=([^"&\s]+)`)
	loadMoreRefRe = regexp.MustCompile(`link "Load more" \[(e\d+)\]`)
)

// Document is a parsed snapshot: classified lines plus their indentation tree.
type Document struct {
	Raw   string
	Lines []Line
	Root  *Node
}

// Parse classifies the snapshot and builds its line tree.
func Parse(raw string) *Document {
	lines := SplitLines(raw)
	return &Document{
		Raw:   raw,
		Lines: lines,
		Root:  BuildTree(lines),
	}
}

// StatusLink is a link node pointing at a post permalink.
type StatusLink struct {
	Node   *Node
	Target *Node
	Handle string
	ID     string
}

// Adjacent reports whether the url target is the line right after the link.
func (s StatusLink) Adjacent() bool {
	return s.Target.Line.Index == s.Node.Line.Index+1
}

// StatusLinks returns every link whose url-target child is a post permalink,
// in document order.
func (d *Document) StatusLinks() []StatusLink {
	var links []StatusLink
	d.Root.Walk(func(n *Node) bool {
		if !n.Line.IsLink() {
			return true
		}
		if target := n.Target(); target != nil {
			if handle, id, ok := ParseStatusPath(target.Line.Payload); ok {
				links = append(links, StatusLink{Node: n, Target: target, Handle: handle, ID: id})
			}
		}
		return true
	})
	return links
}

// ParseStatusPath splits "/<handle>/status/<digits>#m" into handle and id.
func ParseStatusPath(path string) (handle, id string, ok bool) {
	m := statusPathRe.FindStringSubmatch(path)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// SplitPages returns the individual page snapshots of a multi-page dump.
func SplitPages(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, PageSeparator)
}

// JoinPages concatenates page snapshots with PageSeparator.
func JoinPages(pages []string) string {
	return strings.Join(pages, PageSeparator)
}

// CountStatuses returns the number of unique post ids referenced by url lines.
func CountStatuses(raw string) int {
	seen := make(map[string]struct{})
	for _, m := range statusURLRe.FindAllStringSubmatch(raw, -1) {
		seen[m[1]] = struct{}{}
	}
	return len(seen)
}

// NextCursor returns the first pagination cursor value in the snapshot.
func NextCursor(raw string) (string, bool) {
	m := cursorRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LoadMoreRef returns the element ref of the "Load more" link.
func LoadMoreRef(raw string) (string, bool) {
	m := loadMoreRefRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindStatusID returns the post id of the first "/url: /<handle>/status/<id>#m"
// occurrence in text.
func FindStatusID(text string) (string, bool) {
	m := statusURLRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
