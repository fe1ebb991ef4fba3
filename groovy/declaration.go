package groovy

import (
	"github.com/dhamidi/gravel/groovy/parser"
)

type DeclKind int

const (
	DeclType DeclKind = iota
	DeclMethod
	DeclConstructor
	DeclField
	DeclLocal
	DeclParameter
	DeclTypeParameter
	DeclImport
)

var declKindNames = map[DeclKind]string{
	DeclType:          "type",
	DeclMethod:        "method",
	DeclConstructor:   "constructor",
	DeclField:         "field",
	DeclLocal:         "local",
	DeclParameter:     "parameter",
	DeclTypeParameter: "type parameter",
	DeclImport:        "import",
}

func (k DeclKind) String() string {
	if name, ok := declKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Named is anything that introduces a name.
type Named interface {
	Name() string
}

// Declaration is a Named backed by the syntax node that declares it.
type Declaration interface {
	Named
	Node() *parser.Node
	DeclKind() DeclKind
}

// DeclarationFor returns the model of a declaring node, or nil when the node
// declares nothing. Type definitions come from DefinitionOf so repeated
// calls share one model and its caches.
func DeclarationFor(node *parser.Node) Declaration {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl,
		parser.KindTraitDecl, parser.KindAnnotationDecl:
		return DefinitionOf(node)
	case parser.KindMethodDecl, parser.KindConstructorDecl:
		return NewMethod(node)
	case parser.KindVariable, parser.KindParameter, parser.KindEnumConstant:
		return NewVariable(node)
	case parser.KindTypeParameter:
		return NewTypeParameter(node)
	case parser.KindImportDecl:
		return NewImport(node)
	}
	return nil
}

// DeclarationAt returns the declaration whose name identifier is ident, as
// found under the cursor in an editor.
func DeclarationAt(ident *parser.Node) Declaration {
	if ident == nil || ident.Kind != parser.KindIdentifier {
		return nil
	}
	decl := DeclarationFor(ident.Parent())
	if decl == nil {
		return nil
	}
	if nameIdentifier(decl.Node()) != ident {
		return nil
	}
	return decl
}

// nameIdentifier returns the identifier naming a declaring node.
func nameIdentifier(node *parser.Node) *parser.Node {
	if node == nil {
		return nil
	}
	if node.Kind == parser.KindImportDecl {
		return NewImport(node).NameIdentifier()
	}
	return node.FirstChildOfKind(parser.KindIdentifier)
}

func identifierText(node *parser.Node) string {
	if ident := nameIdentifier(node); ident != nil {
		return ident.TokenLiteral()
	}
	return ""
}

// typeNode returns the declared type child of a declaration, which is either
// a plain Type or an ArrayType wrapping one.
func typeNode(node *parser.Node) *parser.Node {
	if node == nil {
		return nil
	}
	for _, child := range node.Children {
		if child.Kind == parser.KindType || child.Kind == parser.KindArrayType {
			return child
		}
	}
	return nil
}

// hasModifier reports whether a declaration carries the given modifier
// keyword, e.g. "static" or "def".
func hasModifier(node *parser.Node, keyword string) bool {
	if node == nil {
		return false
	}
	mods := node.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return false
	}
	for _, child := range mods.ChildrenOfKind(parser.KindIdentifier) {
		if child.TokenLiteral() == keyword {
			return true
		}
	}
	return false
}

// annotationNames lists the annotation names on a declaration in source order.
func annotationNames(node *parser.Node) []string {
	mods := node.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return nil
	}
	var names []string
	for _, ann := range mods.ChildrenOfKind(parser.KindAnnotation) {
		if qn := ann.FirstChildOfKind(parser.KindQualifiedName); qn != nil {
			names = append(names, qn.Text())
		}
	}
	return names
}

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	// Groovy members without an access modifier are public.
	VisibilityDefault Visibility = "default"
)

func visibilityOf(node *parser.Node) Visibility {
	switch {
	case hasModifier(node, "public"):
		return VisibilityPublic
	case hasModifier(node, "protected"):
		return VisibilityProtected
	case hasModifier(node, "private"):
		return VisibilityPrivate
	}
	return VisibilityDefault
}
