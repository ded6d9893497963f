package snapshot

// Node is one line in the indentation tree. The root node has no line.
type Node struct {
	Line     *Line
	Parent   *Node
	Children []*Node
}

// IsRoot reports whether n is the synthetic document root.
func (n *Node) IsRoot() bool {
	return n.Line == nil
}

// Target returns the node's first url-target child.
func (n *Node) Target() *Node {
	for _, c := range n.Children {
		if c.Line.Kind == KindURLTarget {
			return c
		}
	}
	return nil
}

// URL returns the path of the node's first url-target child.
func (n *Node) URL() (string, bool) {
	if t := n.Target(); t != nil {
		return t.Line.Payload, true
	}
	return "", false
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !n.IsRoot() && !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// BuildTree nests lines by indentation depth. Blank lines are skipped.
// A line becomes a child of the nearest preceding line with a smaller depth.
func BuildTree(lines []Line) *Node {
	root := &Node{}
	stack := []*Node{root}

	for i := range lines {
		l := &lines[i]
		if l.Text == "" {
			continue
		}
		for len(stack) > 1 && stack[len(stack)-1].Line.Depth >= l.Depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		node := &Node{Line: l, Parent: parent}
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
	}

	return root
}
