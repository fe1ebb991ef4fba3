package groovy

import (
	"strings"

	"github.com/dhamidi/gravel/groovy/parser"
)

// ObjectTypeName is the implicit superclass of every class.
const ObjectTypeName = "java.lang.Object"

// TypeRef is an unresolved reference to a type, either written in the
// source or synthesized (the implicit root of a class). Resolution is left
// to whoever holds the scope, see Context.
type TypeRef struct {
	name     string
	node     *parser.Node
	context  *parser.Node
	implicit bool
}

// NewTypeRef wraps a Type or ArrayType node.
func NewTypeRef(node *parser.Node) *TypeRef {
	return &TypeRef{
		name:    referenceName(node),
		node:    node,
		context: node,
	}
}

// ImplicitTypeRef synthesizes a reference to name as seen from context.
func ImplicitTypeRef(name string, context *parser.Node) *TypeRef {
	return &TypeRef{
		name:     name,
		context:  context,
		implicit: true,
	}
}

// ReferenceName is the name as written, without type arguments or array
// brackets, e.g. "java.util.List" for "java.util.List<String>[]".
func (r *TypeRef) ReferenceName() string {
	return r.name
}

// SimpleName is the last segment of ReferenceName.
func (r *TypeRef) SimpleName() string {
	if i := strings.LastIndexByte(r.name, '.'); i >= 0 {
		return r.name[i+1:]
	}
	return r.name
}

// IsQualified reports whether the reference was written with a package or
// outer type prefix.
func (r *TypeRef) IsQualified() bool {
	return strings.ContainsRune(r.name, '.')
}

// Text renders the reference the way it is written, including type
// arguments and array dimensions.
func (r *TypeRef) Text() string {
	if r.node == nil {
		return r.name
	}
	return r.node.Text()
}

func (r *TypeRef) String() string {
	return r.Text()
}

// Node is the reference node, nil for synthesized references.
func (r *TypeRef) Node() *parser.Node {
	return r.node
}

// Context is the node whose scope the reference must be resolved in.
func (r *TypeRef) Context() *parser.Node {
	return r.context
}

func (r *TypeRef) IsImplicit() bool {
	return r.implicit
}

// ArrayDepth counts the array dimensions of the reference.
func (r *TypeRef) ArrayDepth() int {
	depth := 0
	for n := r.node; n != nil && n.Kind == parser.KindArrayType; n = n.FirstChild() {
		depth++
	}
	return depth
}

// TypeArguments returns the references written between angle brackets.
// Wildcards are skipped.
func (r *TypeRef) TypeArguments() []*TypeRef {
	base := r.baseType()
	if base == nil {
		return nil
	}
	args := base.FirstChildOfKind(parser.KindTypeArguments)
	if args == nil {
		return nil
	}
	var refs []*TypeRef
	for _, arg := range args.Children {
		if arg.Kind == parser.KindType || arg.Kind == parser.KindArrayType {
			refs = append(refs, NewTypeRef(arg))
		}
	}
	return refs
}

func (r *TypeRef) baseType() *parser.Node {
	n := r.node
	for n != nil && n.Kind == parser.KindArrayType {
		n = n.FirstChild()
	}
	return n
}

// IsPrimitive reports whether the reference names a primitive type or void.
func (r *TypeRef) IsPrimitive() bool {
	base := r.baseType()
	if base == nil {
		return false
	}
	ident := base.FirstChildOfKind(parser.KindIdentifier)
	return ident != nil && ident.Token != nil && ident.Token.Kind.IsPrimitive()
}

func referenceName(node *parser.Node) string {
	for node != nil && node.Kind == parser.KindArrayType {
		node = node.FirstChild()
	}
	if node == nil {
		return ""
	}
	if qn := node.FirstChildOfKind(parser.KindQualifiedName); qn != nil {
		return qn.Text()
	}
	if ident := node.FirstChildOfKind(parser.KindIdentifier); ident != nil {
		return ident.TokenLiteral()
	}
	return ""
}

func typeRefs(nodes []*parser.Node) []*TypeRef {
	var refs []*TypeRef
	for _, n := range nodes {
		if n.Kind == parser.KindType || n.Kind == parser.KindArrayType {
			refs = append(refs, NewTypeRef(n))
		}
	}
	return refs
}
