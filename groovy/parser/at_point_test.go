package parser

import "testing"

func TestNodeAt(t *testing.T) {
	src := []byte("class A {\n  def run(int count) {\n    println count\n  }\n}")
	root := Parse(src)

	tests := []struct {
		name    string
		pos     Position
		kind    NodeKind
		literal string
	}{
		{"class name", Position{Line: 1, Column: 7}, KindIdentifier, "A"},
		{"method name", Position{Line: 2, Column: 8}, KindIdentifier, "run"},
		{"parameter type", Position{Line: 2, Column: 11}, KindIdentifier, "int"},
		{"argument", Position{Line: 3, Column: 14}, KindIdentifier, "count"},
		{"whitespace in block", Position{Line: 3, Column: 2}, KindBlock, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := NodeAt(root, tt.pos)
			if node == nil {
				t.Fatalf("NodeAt(%s) = nil", tt.pos)
			}
			if node.Kind != tt.kind {
				t.Errorf("NodeAt(%s).Kind = %v, want %v", tt.pos, node.Kind, tt.kind)
			}
			if node.TokenLiteral() != tt.literal {
				t.Errorf("NodeAt(%s) literal = %q, want %q", tt.pos, node.TokenLiteral(), tt.literal)
			}
		})
	}

	if NodeAt(root, Position{Line: 9, Column: 1}) != nil {
		t.Error("position past the end matched a node")
	}
}

func TestPositionAt(t *testing.T) {
	src := []byte("ab\ncd")
	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
	}
	for _, tt := range tests {
		pos := PositionAt(src, tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("PositionAt(%d) = %s, want %d:%d", tt.offset, pos, tt.line, tt.column)
		}
	}
}
