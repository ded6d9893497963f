package snapshot

import (
	"regexp"
	"strings"
)

// Kind classifies a snapshot line by its leading marker.
type Kind int

const (
	KindOther Kind = iota
	KindBareLink
	KindLabeledLink
	KindURLTarget
	KindFreeText
	KindParagraph
	KindListItem
	KindListMarker
)

var kindNames = map[Kind]string{
	KindOther:       "other",
	KindBareLink:    "bare-link",
	KindLabeledLink: "labeled-link",
	KindURLTarget:   "url-target",
	KindFreeText:    "free-text",
	KindParagraph:   "paragraph",
	KindListItem:    "list-item",
	KindListMarker:  "list-marker",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

const (
	textPrefix      = "- text:"
	paragraphPrefix = "- paragraph:"
	listItemPrefix  = "- listitem"
	listPrefix      = "- list:"
)

var (
	bareLinkRe    = regexp.MustCompile(`^- link \[(e\d+)\]:$`)
	labeledLinkRe = regexp.MustCompile(`^- link "([^"]*)"\s*(?:\[(e\d+)\])?:?$`)
	urlTargetRe   = regexp.MustCompile(`^- /url:\s+(.+)$`)
)

// Line is one classified source line.
type Line struct {
	Index int
	Depth int
	Raw   string
	Text  string
	Kind  Kind
	// Label is the quoted label of a labeled link.
	Label string
	// Ref is the element reference (e.g. "e12") of a link line.
	Ref string
	// Payload is the content after the marker: the path of a url-target,
	// or the text of a free-text or paragraph line.
	Payload string
}

// IsLink reports whether the line is a bare or labeled link.
func (l Line) IsLink() bool {
	return l.Kind == KindBareLink || l.Kind == KindLabeledLink
}

// Classify parses a single raw line.
func Classify(index int, raw string) Line {
	text := strings.TrimSpace(raw)
	line := Line{
		Index: index,
		Depth: indentOf(raw),
		Raw:   raw,
		Text:  text,
		Kind:  KindOther,
	}

	switch {
	case strings.HasPrefix(text, textPrefix):
		line.Kind = KindFreeText
		line.Payload = strings.TrimSpace(text[len(textPrefix):])
	case strings.HasPrefix(text, paragraphPrefix):
		line.Kind = KindParagraph
		line.Payload = strings.TrimSpace(text[len(paragraphPrefix):])
	case strings.HasPrefix(text, listPrefix):
		line.Kind = KindListMarker
	case strings.HasPrefix(text, listItemPrefix):
		line.Kind = KindListItem
	default:
		if m := bareLinkRe.FindStringSubmatch(text); m != nil {
			line.Kind = KindBareLink
			line.Ref = m[1]
		} else if m := labeledLinkRe.FindStringSubmatch(text); m != nil {
			line.Kind = KindLabeledLink
			line.Label = m[1]
			line.Ref = m[2]
		} else if m := urlTargetRe.FindStringSubmatch(text); m != nil {
			line.Kind = KindURLTarget
			line.Payload = m[1]
		}
	}

	return line
}

// indentOf counts leading indentation, tabs counting as two spaces.
func indentOf(raw string) int {
	n := 0
	for _, r := range raw {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 2
		default:
			return n
		}
	}
	return n
}

// SplitLines classifies every line of a snapshot.
func SplitLines(raw string) []Line {
	if raw == "" {
		return nil
	}
	parts := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Classify(i, p)
	}
	return lines
}
