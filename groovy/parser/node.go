package parser

import (
	"slices"
	"strings"
)

type NodeKind int

const (
	KindError NodeKind = iota

	// Compilation unit level
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl

	// Type declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindTraitDecl
	KindAnnotationDecl
	KindExtendsClause
	KindImplementsClause
	KindClassBody
	KindEnumConstant

	// Members
	KindFieldDecl
	KindMethodDecl
	KindConstructorDecl
	KindVariable

	// Type and modifiers
	KindModifiers
	KindAnnotation
	KindTypeParameters
	KindTypeParameter
	KindTypeArguments
	KindType
	KindArrayType
	KindWildcard

	// Method components
	KindParameters
	KindParameter
	KindThrowsList

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindLocalVarDecl
	KindIfStmt
	KindWhileStmt
	KindForStmt
	KindForInit
	KindForUpdate
	KindForInStmt
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindThrowStmt
	KindTryStmt
	KindCatchClause
	KindFinallyClause

	// Expressions
	KindAssignExpr
	KindTernaryExpr
	KindElvisExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindCallExpr
	KindArguments
	KindFieldAccess
	KindIndexExpr
	KindNewExpr
	KindClosure
	KindListExpr
	KindMapExpr
	KindMapEntry
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindQualifiedName
	KindThis
	KindSuper
)

var nodeKindNames = map[NodeKind]string{
	KindError:            "Error",
	KindCompilationUnit:  "CompilationUnit",
	KindPackageDecl:      "PackageDecl",
	KindImportDecl:       "ImportDecl",
	KindClassDecl:        "ClassDecl",
	KindInterfaceDecl:    "InterfaceDecl",
	KindEnumDecl:         "EnumDecl",
	KindTraitDecl:        "TraitDecl",
	KindAnnotationDecl:   "AnnotationDecl",
	KindExtendsClause:    "ExtendsClause",
	KindImplementsClause: "ImplementsClause",
	KindClassBody:        "ClassBody",
	KindEnumConstant:     "EnumConstant",
	KindFieldDecl:        "FieldDecl",
	KindMethodDecl:       "MethodDecl",
	KindConstructorDecl:  "ConstructorDecl",
	KindVariable:         "Variable",
	KindModifiers:        "Modifiers",
	KindAnnotation:       "Annotation",
	KindTypeParameters:   "TypeParameters",
	KindTypeParameter:    "TypeParameter",
	KindTypeArguments:    "TypeArguments",
	KindType:             "Type",
	KindArrayType:        "ArrayType",
	KindWildcard:         "Wildcard",
	KindParameters:       "Parameters",
	KindParameter:        "Parameter",
	KindThrowsList:       "ThrowsList",
	KindBlock:            "Block",
	KindEmptyStmt:        "EmptyStmt",
	KindExprStmt:         "ExprStmt",
	KindLocalVarDecl:     "LocalVarDecl",
	KindIfStmt:           "IfStmt",
	KindWhileStmt:        "WhileStmt",
	KindForStmt:          "ForStmt",
	KindForInit:          "ForInit",
	KindForUpdate:        "ForUpdate",
	KindForInStmt:        "ForInStmt",
	KindReturnStmt:       "ReturnStmt",
	KindBreakStmt:        "BreakStmt",
	KindContinueStmt:     "ContinueStmt",
	KindThrowStmt:        "ThrowStmt",
	KindTryStmt:          "TryStmt",
	KindCatchClause:      "CatchClause",
	KindFinallyClause:    "FinallyClause",
	KindAssignExpr:       "AssignExpr",
	KindTernaryExpr:      "TernaryExpr",
	KindElvisExpr:        "ElvisExpr",
	KindBinaryExpr:       "BinaryExpr",
	KindUnaryExpr:        "UnaryExpr",
	KindPostfixExpr:      "PostfixExpr",
	KindCastExpr:         "CastExpr",
	KindCallExpr:         "CallExpr",
	KindArguments:        "Arguments",
	KindFieldAccess:      "FieldAccess",
	KindIndexExpr:        "IndexExpr",
	KindNewExpr:          "NewExpr",
	KindClosure:          "Closure",
	KindListExpr:         "ListExpr",
	KindMapExpr:          "MapExpr",
	KindMapEntry:         "MapEntry",
	KindParenExpr:        "ParenExpr",
	KindLiteral:          "Literal",
	KindIdentifier:       "Identifier",
	KindQualifiedName:    "QualifiedName",
	KindThis:             "This",
	KindSuper:            "Super",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTypeDecl reports whether k is one of the type definition kinds.
func (k NodeKind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindEnumDecl, KindTraitDecl, KindAnnotationDecl:
		return true
	}
	return false
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is one element of a syntax tree. The parser builds trees through
// AddChild; once a tree is published, edits go through InsertChild,
// RemoveChild, ReplaceChild, SetChildren and SetToken, which notify every
// subtree-changed listener on the edited node and its ancestors before
// returning.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error

	parent    *Node
	index     int
	listeners []*listener
	userData  map[any]any
}

type listener struct {
	fn func(changed *Node)
}

// AddChild appends child without notifying listeners.
func (n *Node) AddChild(child *Node) {
	if child != nil {
		child.parent = n
		child.index = len(n.Children)
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

func (n *Node) NextSibling() *Node {
	if n.parent == nil || n.index+1 >= len(n.parent.Children) {
		return nil
	}
	return n.parent.Children[n.index+1]
}

func (n *Node) PrevSibling() *Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.Children[n.index-1]
}

// Root returns the topmost ancestor of n, or n itself.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Depth is the number of ancestors above n.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// IsAncestorOf reports whether n is other or contains it.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// Ancestor returns the closest proper ancestor whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...NodeKind) *Node {
	for p := n.parent; p != nil; p = p.parent {
		for _, kind := range kinds {
			if p.Kind == kind {
				return p
			}
		}
	}
	return nil
}

// Walk visits n and its descendants in document order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Text joins the token literals of a name-like subtree: identifiers and
// qualified names yield "a.b.c", types include their type arguments.
func (n *Node) Text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	switch n.Kind {
	case KindQualifiedName:
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteByte('.')
			}
			child.writeText(sb)
		}
		return
	case KindTypeArguments:
		sb.WriteByte('<')
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			child.writeText(sb)
		}
		sb.WriteByte('>')
		return
	case KindArrayType:
		for _, child := range n.Children {
			child.writeText(sb)
		}
		sb.WriteString("[]")
		return
	case KindWildcard:
		sb.WriteByte('?')
		if n.Token != nil {
			sb.WriteString(" " + n.Token.Literal)
		}
		for _, child := range n.Children {
			sb.WriteByte(' ')
			child.writeText(sb)
		}
		return
	}
	if n.Token != nil {
		sb.WriteString(n.Token.Literal)
	}
	for _, child := range n.Children {
		child.writeText(sb)
	}
}

// UserData returns the value stored under key, or nil.
func (n *Node) UserData(key any) any {
	return n.userData[key]
}

func (n *Node) PutUserData(key, value any) {
	if n.userData == nil {
		n.userData = make(map[any]any)
	}
	if value == nil {
		delete(n.userData, key)
		return
	}
	n.userData[key] = value
}

// OnSubtreeChanged registers fn to run whenever n or any of its descendants
// is edited. The returned function unregisters it.
func (n *Node) OnSubtreeChanged(fn func(changed *Node)) func() {
	l := &listener{fn: fn}
	n.listeners = append(n.listeners, l)
	return func() {
		for i, existing := range n.listeners {
			if existing == l {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

func (n *Node) subtreeChanged() {
	for p := n; p != nil; p = p.parent {
		if len(p.listeners) == 0 {
			continue
		}
		pending := make([]*listener, len(p.listeners))
		copy(pending, p.listeners)
		for _, l := range pending {
			l.fn(n)
		}
	}
}

func (n *Node) reindex(from int) {
	for i := from; i < len(n.Children); i++ {
		n.Children[i].index = i
	}
}

// InsertChild inserts child at position i, clamped to the valid range. A
// child already attached elsewhere, including to n, is moved.
func (n *Node) InsertChild(i int, child *Node) {
	if child == nil {
		return
	}
	from := child.detach()
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	child.parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	n.reindex(i)
	n.subtreeChanged()
	n.notifySource(from)
}

// RemoveChild detaches child from n. It reports false if child is not a
// child of n.
func (n *Node) RemoveChild(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	i := child.index
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	child.parent = nil
	child.index = 0
	n.reindex(i)
	n.subtreeChanged()
	return true
}

// ReplaceChild swaps old for replacement in place.
func (n *Node) ReplaceChild(old, replacement *Node) bool {
	if old == nil || replacement == nil || old.parent != n {
		return false
	}
	if old == replacement {
		return true
	}
	from := replacement.detach()
	i := old.index
	n.Children[i] = replacement
	replacement.parent = n
	replacement.index = i
	old.parent = nil
	old.index = 0
	n.subtreeChanged()
	n.notifySource(from)
	return true
}

// SetChildren replaces all children of n at once.
func (n *Node) SetChildren(children []*Node) {
	// children may be the Children of another node, which detach edits.
	children = slices.Clone(children)
	for _, child := range n.Children {
		child.parent = nil
		child.index = 0
	}
	n.Children = nil
	var sources []*Node
	for _, child := range children {
		if child == nil {
			continue
		}
		if from := child.detach(); from != nil && !slices.Contains(sources, from) {
			sources = append(sources, from)
		}
		n.AddChild(child)
	}
	n.subtreeChanged()
	for _, from := range sources {
		n.notifySource(from)
	}
}

// SetToken replaces the token carried by n, e.g. to rename an identifier.
func (n *Node) SetToken(tok Token) {
	n.Token = &tok
	n.subtreeChanged()
}

// detach unlinks n from its current parent and returns that parent, or nil.
// It does not notify; callers report the edit through notifySource.
func (n *Node) detach() *Node {
	p := n.parent
	if p == nil {
		return nil
	}
	i := n.index
	p.Children = append(p.Children[:i], p.Children[i+1:]...)
	p.reindex(i)
	n.parent = nil
	n.index = 0
	return p
}

// notifySource reports the removal side of a move. from is skipped when it
// is n or an ancestor of n, since n's own notification already reached it.
func (n *Node) notifySource(from *Node) {
	if from == nil {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p == from {
			return
		}
	}
	from.subtreeChanged()
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	var sb strings.Builder
	n.writeIndent(&sb, indent, showPositions)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind.String())
	if showPositions {
		sb.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		sb.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		sb.WriteString(" ERROR: " + n.Error.Message)
	}
	sb.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(sb, indent+1, showPositions)
	}
}
