package groovy

import (
	"strings"

	"github.com/dhamidi/gravel/groovy/parser"
)

// DefaultImports are the packages every Groovy file sees without importing
// them.
var DefaultImports = []string{
	"java.lang",
	"java.util",
	"java.io",
	"java.net",
	"groovy.lang",
	"groovy.util",
}

// PackageName returns the package declared by a compilation unit, or "" for
// the default package.
func PackageName(root *parser.Node) string {
	if root == nil {
		return ""
	}
	pkg := root.FirstChildOfKind(parser.KindPackageDecl)
	if pkg == nil {
		return ""
	}
	if qn := pkg.FirstChildOfKind(parser.KindQualifiedName); qn != nil {
		return qn.Text()
	}
	return ""
}

// Import models one import declaration.
type Import struct {
	node *parser.Node
}

func NewImport(node *parser.Node) *Import {
	return &Import{node: node}
}

func (i *Import) Node() *parser.Node {
	return i.node
}

func (i *Import) DeclKind() DeclKind {
	return DeclImport
}

func (i *Import) IsStatic() bool {
	first := i.node.FirstChild()
	return first != nil && first.Kind == parser.KindIdentifier && first.TokenLiteral() == "static"
}

// IsStar reports whether the import ends in ".*".
func (i *Import) IsStar() bool {
	last := i.node.LastChild()
	return last != nil && last.Kind == parser.KindIdentifier && last.TokenLiteral() == "*"
}

// Alias is the name given with "as", or "".
func (i *Import) Alias() string {
	if alias := i.aliasNode(); alias != nil {
		return alias.TokenLiteral()
	}
	return ""
}

func (i *Import) aliasNode() *parser.Node {
	last := i.node.LastChild()
	if last == nil || last.Kind != parser.KindIdentifier || last == i.node.FirstChild() {
		return nil
	}
	if last.TokenLiteral() == "*" {
		return nil
	}
	return last
}

// QualifiedName is the imported name without ".*" or alias, e.g.
// "java.util" for "import java.util.*".
func (i *Import) QualifiedName() string {
	if qn := i.node.FirstChildOfKind(parser.KindQualifiedName); qn != nil {
		return qn.Text()
	}
	return ""
}

// Name is the name the import introduces into the file: the alias if any,
// otherwise the last segment. Star imports introduce no single name.
func (i *Import) Name() string {
	if i.IsStar() {
		return ""
	}
	if alias := i.Alias(); alias != "" {
		return alias
	}
	qn := i.QualifiedName()
	if idx := strings.LastIndexByte(qn, '.'); idx >= 0 {
		return qn[idx+1:]
	}
	return qn
}

// NameIdentifier is the identifier introducing Name: the alias or the last
// segment of the qualified name.
func (i *Import) NameIdentifier() *parser.Node {
	if i.IsStar() {
		return nil
	}
	if alias := i.aliasNode(); alias != nil {
		return alias
	}
	if qn := i.node.FirstChildOfKind(parser.KindQualifiedName); qn != nil {
		return qn.LastChild()
	}
	return nil
}

func (i *Import) String() string {
	var sb strings.Builder
	sb.WriteString("import ")
	if i.IsStatic() {
		sb.WriteString("static ")
	}
	sb.WriteString(i.QualifiedName())
	if i.IsStar() {
		sb.WriteString(".*")
	} else if alias := i.Alias(); alias != "" {
		sb.WriteString(" as " + alias)
	}
	return sb.String()
}

// Imports returns the import declarations of a compilation unit.
func Imports(root *parser.Node) []*Import {
	if root == nil {
		return nil
	}
	var imports []*Import
	for _, n := range root.ChildrenOfKind(parser.KindImportDecl) {
		imports = append(imports, NewImport(n))
	}
	return imports
}

// TypeDefinitions returns the top level type definitions of a compilation
// unit in source order.
func TypeDefinitions(root *parser.Node) []*TypeDefinition {
	if root == nil {
		return nil
	}
	var defs []*TypeDefinition
	for _, child := range root.Children {
		if child.Kind.IsTypeDecl() {
			defs = append(defs, DefinitionOf(child))
		}
	}
	return defs
}

// AllTypeDefinitions returns every type definition in the tree, nested and
// local ones included, in document order.
func AllTypeDefinitions(root *parser.Node) []*TypeDefinition {
	if root == nil {
		return nil
	}
	var defs []*TypeDefinition
	root.Walk(func(n *parser.Node) bool {
		if n.Kind.IsTypeDecl() {
			defs = append(defs, DefinitionOf(n))
		}
		return true
	})
	return defs
}

// ScriptMethods returns the methods declared at the top level of a script.
func ScriptMethods(root *parser.Node) []*Method {
	if root == nil {
		return nil
	}
	var methods []*Method
	for _, n := range root.ChildrenOfKind(parser.KindMethodDecl) {
		methods = append(methods, NewMethod(n))
	}
	return methods
}

// IsScript reports whether a compilation unit has top level statements or
// methods besides type definitions.
func IsScript(root *parser.Node) bool {
	if root == nil {
		return false
	}
	for _, child := range root.Children {
		switch child.Kind {
		case parser.KindPackageDecl, parser.KindImportDecl:
			continue
		}
		if !child.Kind.IsTypeDecl() {
			return true
		}
	}
	return false
}
