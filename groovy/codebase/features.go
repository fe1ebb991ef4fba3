package codebase

import (
	"strconv"
	"strings"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
	"github.com/dhamidi/gravel/groovy/resolve"
)

// Location points at a declaration in a file.
type Location struct {
	Path string
	Span parser.Span
}

type CompletionKind int

const (
	CompletionKindMethod CompletionKind = iota
	CompletionKindField
	CompletionKindClass
	CompletionKindVariable
	CompletionKindTypeParameter
	CompletionKindModule
)

type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	Detail     string
	InsertText string
}

// Symbol is an outline entry of a file.
type Symbol struct {
	Name      string
	Kind      groovy.DeclKind
	TypeKind  groovy.TypeKind
	Detail    string
	Span      parser.Span
	Selection parser.Span
	Children  []Symbol
}

// Diagnostic is a syntax error found in a file.
type Diagnostic struct {
	Span    parser.Span
	Message string
}

func (c *Codebase) nodeAtLocked(path string, line, column int) *parser.Node {
	f := c.files[path]
	if f == nil || f.AST == nil {
		return nil
	}
	return parser.NodeAt(f.AST, parser.Position{Line: line, Column: column})
}

// DeclarationAt resolves the identifier at a position to its declaration.
// An identifier that is itself a declaration's name resolves to that
// declaration.
func (c *Codebase) DeclarationAt(path string, line, column int) groovy.Declaration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.declarationAtLocked(path, line, column)
}

func (c *Codebase) declarationAtLocked(path string, line, column int) groovy.Declaration {
	node := c.nodeAtLocked(path, line, column)
	if node == nil || node.Kind != parser.KindIdentifier {
		return nil
	}
	if decl := groovy.DeclarationAt(node); decl != nil {
		return decl
	}

	if typ := typeReferenceOf(node); typ != nil {
		if td := c.hierarchyLocked().ResolveType(groovy.NewTypeRef(typ)); td != nil {
			return td
		}
		return nil
	}

	if qualifier := memberQualifier(node); qualifier != nil {
		return c.memberLocked(qualifier, node.TokenLiteral())
	}

	found := resolve.Resolve(node, node.TokenLiteral(), resolve.WithHierarchy(c.hierarchyLocked()))
	if found == nil {
		return nil
	}
	return found.Decl
}

// typeReferenceOf returns the Type node an identifier is part of.
func typeReferenceOf(ident *parser.Node) *parser.Node {
	parent := ident.Parent()
	if parent != nil && parent.Kind == parser.KindQualifiedName {
		parent = parent.Parent()
	}
	if parent != nil && parent.Kind == parser.KindType {
		return parent
	}
	return nil
}

// memberQualifier returns the receiver expression when ident is the member
// name of a field access such as "a.b".
func memberQualifier(ident *parser.Node) *parser.Node {
	parent := ident.Parent()
	if parent == nil || parent.Kind != parser.KindFieldAccess || parent.FirstChild() == ident {
		return nil
	}
	return parent.FirstChild()
}

// receiverTypeLocked finds the type definition an expression evaluates
// to, for the simple cases an editor needs: this, names and new.
func (c *Codebase) receiverTypeLocked(expr *parser.Node) *groovy.TypeDefinition {
	switch expr.Kind {
	case parser.KindThis:
		return c.typeOfNameLocked(expr, "this")
	case parser.KindIdentifier:
		return c.typeOfNameLocked(expr, expr.TokenLiteral())
	case parser.KindNewExpr:
		if typ := expr.FirstChildOfKind(parser.KindType); typ != nil {
			return c.hierarchyLocked().ResolveType(groovy.NewTypeRef(typ))
		}
	}
	return nil
}

// typeOfNameLocked finds the type of what name refers to at place: the
// enclosing class for "this", a type itself, or the declared type of a
// variable. Untyped variables initialized with new use the constructed
// type.
func (c *Codebase) typeOfNameLocked(place *parser.Node, name string) *groovy.TypeDefinition {
	h := c.hierarchyLocked()
	if name == "this" {
		decl := place.Ancestor(parser.KindClassDecl, parser.KindEnumDecl, parser.KindTraitDecl)
		return groovy.DefinitionOf(decl)
	}

	found := resolve.Resolve(place, name, resolve.WithHierarchy(h))
	if found == nil {
		return nil
	}
	switch decl := found.Decl.(type) {
	case *groovy.TypeDefinition:
		return decl
	case *groovy.Variable:
		if ref := decl.Type(); ref != nil {
			return h.ResolveType(found.Subst.Substitute(ref))
		}
		if init := decl.Initializer(); init != nil && init.Kind == parser.KindNewExpr {
			return c.receiverTypeLocked(init)
		}
	}
	return nil
}

func (c *Codebase) memberLocked(qualifier *parser.Node, name string) groovy.Declaration {
	td := c.receiverTypeLocked(qualifier)
	if td == nil {
		return nil
	}
	for _, m := range resolve.Members(td, resolve.WithHierarchy(c.hierarchyLocked())) {
		if m.Decl.Name() == name {
			return m.Decl
		}
	}
	return nil
}

// Definition returns where the identifier at a position is declared.
func (c *Codebase) Definition(path string, line, column int) *Location {
	c.mu.RLock()
	defer c.mu.RUnlock()

	decl := c.declarationAtLocked(path, line, column)
	if decl == nil || decl.Node() == nil {
		return nil
	}
	f := c.fileOfLocked(decl.Node())
	if f == nil {
		return nil
	}
	span := decl.Node().Span
	if ident := nameIdentifierOf(decl); ident != nil {
		span = ident.Span
	}
	return &Location{Path: f.Path, Span: span}
}

type nameIdentified interface {
	NameIdentifier() *parser.Node
}

func nameIdentifierOf(decl groovy.Declaration) *parser.Node {
	if n, ok := decl.(nameIdentified); ok {
		return n.NameIdentifier()
	}
	return nil
}

// CompletionsAtPoint lists the names usable at a position. After a dot it
// lists the members of the receiver; elsewhere everything in scope.
func (c *Codebase) CompletionsAtPoint(path string, line, column int) []CompletionItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil || f.AST == nil {
		return nil
	}
	h := c.hierarchyLocked()

	var candidates []resolve.Candidate
	if dot := findTriggerPosition(f.Content, line, column); dot >= 0 {
		name := identifierBefore(f.Content, line, dot)
		if name == "" {
			return nil
		}
		place := c.placeLocked(path, line, dot)
		candidates = resolve.Members(c.typeOfNameLocked(place, name), resolve.WithHierarchy(h))
	} else {
		candidates = resolve.Visible(c.placeLocked(path, line, column), resolve.WithHierarchy(h))
	}

	var items []CompletionItem
	for _, cand := range candidates {
		if item, ok := completionItem(cand); ok {
			items = append(items, item)
		}
	}
	return items
}

// Scope returns the declarations visible at a position, innermost first,
// including members inherited by enclosing types.
func (c *Codebase) Scope(path string, line, column int) []resolve.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	place := c.placeLocked(path, line, column)
	if place == nil {
		return nil
	}
	return resolve.Visible(place, resolve.WithHierarchy(c.hierarchyLocked()))
}

// ResolveAt returns the declaration name refers to when written at a
// position, or nil.
func (c *Codebase) ResolveAt(path string, line, column int, name string) *resolve.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	place := c.placeLocked(path, line, column)
	if place == nil {
		return nil
	}
	return resolve.Resolve(place, name, resolve.WithHierarchy(c.hierarchyLocked()))
}

// placeLocked is the innermost node at a position, or the file's root when
// the position lies outside every node.
func (c *Codebase) placeLocked(path string, line, column int) *parser.Node {
	f := c.files[path]
	if f == nil || f.AST == nil {
		return nil
	}
	if node := parser.NodeAt(f.AST, parser.Position{Line: line, Column: column}); node != nil {
		return node
	}
	return f.AST
}

// identifierBefore returns the identifier ending right before the dot at
// column dot (1-based) on line.
func identifierBefore(content []byte, line, dot int) string {
	lines := strings.Split(string(content), "\n")
	if line <= 0 || line > len(lines) {
		return ""
	}
	text := lines[line-1]
	end := min(dot-1, len(text))
	start := end
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	return text[start:end]
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '$' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func completionItem(cand resolve.Candidate) (CompletionItem, bool) {
	decl := cand.Decl
	item := CompletionItem{Label: decl.Name(), InsertText: decl.Name()}
	switch d := decl.(type) {
	case *groovy.Method:
		if d.IsConstructor() {
			return item, false
		}
		item.Kind = CompletionKindMethod
		item.Detail = methodDetail(d, cand.Subst)
		item.InsertText = methodInsert(d)
	case *groovy.Variable:
		item.Kind = CompletionKindVariable
		if d.DeclKind() == groovy.DeclField {
			item.Kind = CompletionKindField
		}
		item.Detail = typeText(cand.Subst.Substitute(d.Type()))
	case *groovy.TypeDefinition:
		item.Kind = CompletionKindClass
		item.Detail = d.QualifiedName()
	case *groovy.TypeParameter:
		item.Kind = CompletionKindTypeParameter
	case *groovy.Import:
		item.Kind = CompletionKindModule
		item.Detail = d.QualifiedName()
	}
	return item, true
}

func typeText(ref *groovy.TypeRef) string {
	if ref == nil {
		return "def"
	}
	return ref.Text()
}

func methodDetail(m *groovy.Method, subst *resolve.Substitutor) string {
	var params []string
	for _, p := range m.Parameters() {
		params = append(params, typeText(subst.Substitute(p.Type()))+" "+p.Name())
	}
	return typeText(subst.Substitute(m.ReturnType())) + " " + m.Name() + "(" + strings.Join(params, ", ") + ")"
}

func methodInsert(m *groovy.Method) string {
	params := m.Parameters()
	if len(params) == 0 {
		return m.Name() + "()"
	}
	var placeholders []string
	for i, p := range params {
		placeholders = append(placeholders, "${"+strconv.Itoa(i+1)+":"+p.Name()+"}")
	}
	return m.Name() + "(" + strings.Join(placeholders, ", ") + ")"
}

// findTriggerPosition returns the 1-based column of the dot that starts
// the member name being typed at column, or -1.
func findTriggerPosition(content []byte, line, column int) int {
	lines := strings.Split(string(content), "\n")
	if line <= 0 || line > len(lines) {
		return -1
	}
	text := lines[line-1]
	for i := min(column-1, len(text)) - 1; i >= 0; i-- {
		switch ch := text[i]; {
		case ch == '.':
			return i + 1
		case !isIdentByte(ch):
			return -1
		}
	}
	return -1
}

// Symbols returns the outline of a file: its type definitions with their
// members, and script methods.
func (c *Codebase) Symbols(path string) []Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil || f.AST == nil {
		return nil
	}
	var symbols []Symbol
	for _, td := range groovy.TypeDefinitions(f.AST) {
		symbols = append(symbols, typeSymbol(td))
	}
	for _, m := range groovy.ScriptMethods(f.AST) {
		symbols = append(symbols, methodSymbol(m))
	}
	return symbols
}

func typeSymbol(td *groovy.TypeDefinition) Symbol {
	s := Symbol{
		Name:      td.Name(),
		Kind:      groovy.DeclType,
		TypeKind:  td.Kind(),
		Detail:    td.QualifiedName(),
		Span:      td.Node().Span,
		Selection: selection(td.NameIdentifier(), td.Node()),
	}
	for _, f := range td.Fields() {
		s.Children = append(s.Children, Symbol{
			Name:      f.Name(),
			Kind:      groovy.DeclField,
			Detail:    f.TypeText(),
			Span:      f.Node().Span,
			Selection: selection(f.NameIdentifier(), f.Node()),
		})
	}
	for _, m := range td.Methods() {
		s.Children = append(s.Children, methodSymbol(m))
	}
	for _, inner := range td.InnerTypes() {
		s.Children = append(s.Children, typeSymbol(inner))
	}
	return s
}

func methodSymbol(m *groovy.Method) Symbol {
	return Symbol{
		Name:      m.Name(),
		Kind:      m.DeclKind(),
		Detail:    m.String(),
		Span:      m.Node().Span,
		Selection: selection(m.NameIdentifier(), m.Node()),
	}
}

func selection(ident, fallback *parser.Node) parser.Span {
	if ident != nil {
		return ident.Span
	}
	return fallback.Span
}

// Hover describes the declaration under a position: its kind and
// signature, and for types the synthesized supertype list.
func (c *Codebase) Hover(path string, line, column int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	decl := c.declarationAtLocked(path, line, column)
	if decl == nil {
		return ""
	}
	return Describe(decl)
}

// Describe renders a declaration as a short markdown block.
func Describe(decl groovy.Declaration) string {
	var sb strings.Builder
	sb.WriteString("```groovy\n")
	switch d := decl.(type) {
	case *groovy.TypeDefinition:
		sb.WriteString(d.String())
		sb.WriteString("\n```\n")
		var supers []string
		for _, ref := range d.SuperTypes() {
			supers = append(supers, ref.Text())
		}
		if len(supers) > 0 {
			sb.WriteString("\nsupertypes: " + strings.Join(supers, ", "))
		}
		return sb.String()
	case *groovy.Method:
		sb.WriteString(d.String())
	case *groovy.Variable:
		sb.WriteString(d.String())
	case *groovy.Import:
		sb.WriteString(d.String())
	default:
		sb.WriteString(decl.Name())
	}
	sb.WriteString("\n```\n\n" + decl.DeclKind().String())
	return sb.String()
}

// Diagnostics lists the syntax errors of a file.
func (c *Codebase) Diagnostics(path string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil || f.AST == nil {
		return nil
	}
	var diags []Diagnostic
	for _, n := range parser.Errors(f.AST) {
		msg := "syntax error"
		if n.Error != nil {
			msg = n.Error.Message
		}
		diags = append(diags, Diagnostic{Span: n.Span, Message: msg})
	}
	return diags
}
