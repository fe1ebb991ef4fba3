package parser

// NodeAt finds the most specific (deepest) node whose span contains pos.
func NodeAt(root *Node, pos Position) *Node {
	if root == nil {
		return nil
	}
	var bestMatch *Node
	for _, child := range root.Children {
		if found := NodeAt(child, pos); found != nil {
			if bestMatch == nil || narrower(found, bestMatch) {
				bestMatch = found
			}
		}
	}

	if bestMatch != nil {
		return bestMatch
	}

	if root.Span.Contains(pos) {
		return root
	}

	return nil
}

// narrower prefers a node with a real extent over an empty one, which
// only happens for synthesized nodes such as empty modifier lists.
func narrower(a, b *Node) bool {
	return spanSize(a.Span) > 0 && spanSize(b.Span) == 0
}

func spanSize(span Span) int {
	if span.Start.Line == span.End.Line {
		return span.End.Column - span.Start.Column
	}
	return (span.End.Line - span.Start.Line) * 1000
}

// PositionAt converts a byte offset into a Position within src.
func PositionAt(src []byte, offset int) Position {
	pos := Position{Offset: offset, Line: 1, Column: 1}
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}
