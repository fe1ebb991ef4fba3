package groovy

import (
	"fmt"

	"github.com/dhamidi/gravel/groovy/parser"
)

type TypeKind string

const (
	TypeKindClass      TypeKind = "class"
	TypeKindInterface  TypeKind = "interface"
	TypeKindEnum       TypeKind = "enum"
	TypeKindTrait      TypeKind = "trait"
	TypeKindAnnotation TypeKind = "annotation"
)

// TypeDefinition is the model of one class, interface, enum, trait or
// annotation declaration. It never owns tree storage; everything is read
// from the node on demand except the member caches, which are dropped
// whenever the node's subtree changes.
type TypeDefinition struct {
	node *parser.Node

	methods      lazy[[]*Method]
	constructors lazy[[]*Method]
}

type definitionKey struct{}

// DefinitionOf returns the model attached to a type definition node,
// creating it on first use. It returns nil for any other node.
func DefinitionOf(node *parser.Node) *TypeDefinition {
	if node == nil || !node.Kind.IsTypeDecl() {
		return nil
	}
	if td, ok := node.UserData(definitionKey{}).(*TypeDefinition); ok {
		return td
	}
	td := &TypeDefinition{node: node}
	node.OnSubtreeChanged(func(*parser.Node) { td.SubtreeChanged() })
	node.PutUserData(definitionKey{}, td)
	return td
}

func (td *TypeDefinition) Node() *parser.Node {
	return td.node
}

func (td *TypeDefinition) DeclKind() DeclKind {
	return DeclType
}

func (td *TypeDefinition) Kind() TypeKind {
	switch td.node.Kind {
	case parser.KindInterfaceDecl:
		return TypeKindInterface
	case parser.KindEnumDecl:
		return TypeKindEnum
	case parser.KindTraitDecl:
		return TypeKindTrait
	case parser.KindAnnotationDecl:
		return TypeKindAnnotation
	}
	return TypeKindClass
}

// IsInterface is true for interfaces, annotation types and traits, none of
// which gets an implicit superclass.
func (td *TypeDefinition) IsInterface() bool {
	switch td.Kind() {
	case TypeKindInterface, TypeKindAnnotation, TypeKindTrait:
		return true
	}
	return false
}

func (td *TypeDefinition) IsEnum() bool           { return td.Kind() == TypeKindEnum }
func (td *TypeDefinition) IsTrait() bool          { return td.Kind() == TypeKindTrait }
func (td *TypeDefinition) IsAnnotationType() bool { return td.Kind() == TypeKindAnnotation }

func (td *TypeDefinition) IsAbstract() bool {
	return td.IsInterface() || hasModifier(td.node, "abstract")
}

func (td *TypeDefinition) IsStatic() bool {
	return hasModifier(td.node, "static")
}

func (td *TypeDefinition) Visibility() Visibility {
	return visibilityOf(td.node)
}

func (td *TypeDefinition) Annotations() []string {
	return annotationNames(td.node)
}

func (td *TypeDefinition) Name() string {
	return identifierText(td.node)
}

// NameIdentifier is the identifier node naming the type.
func (td *TypeDefinition) NameIdentifier() *parser.Node {
	return nameIdentifier(td.node)
}

// TextOffset is the byte offset of the name identifier, or of the node when
// the name is missing.
func (td *TypeDefinition) TextOffset() int {
	if ident := td.NameIdentifier(); ident != nil {
		return ident.Span.Start.Offset
	}
	return td.node.Span.Start.Offset
}

// SetName would rename the type; the model does not support edits.
func (td *TypeDefinition) SetName(name string) error {
	return fmt.Errorf("rename %s to %s: %w", td.Name(), name, ErrUnsupported)
}

// Outer returns the type definition this one is a member of, or nil for top
// level and local types.
func (td *TypeDefinition) Outer() *TypeDefinition {
	body := td.node.Parent()
	if body == nil || body.Kind != parser.KindClassBody {
		return nil
	}
	return DefinitionOf(body.Parent())
}

// IsTopLevel reports whether the type is declared directly in a file.
func (td *TypeDefinition) IsTopLevel() bool {
	parent := td.node.Parent()
	return parent != nil && parent.Kind == parser.KindCompilationUnit
}

// PackageName is the package of the file the type is declared in.
func (td *TypeDefinition) PackageName() string {
	return PackageName(td.node.Root())
}

// QualifiedName is outer.qualified.Name for member types and
// package.Name for top level types. Local and anonymous types have none.
func (td *TypeDefinition) QualifiedName() string {
	if outer := td.Outer(); outer != nil {
		qn := outer.QualifiedName()
		if qn == "" {
			return ""
		}
		return qn + "." + td.Name()
	}
	if !td.IsTopLevel() {
		return ""
	}
	if pkg := td.PackageName(); pkg != "" {
		return pkg + "." + td.Name()
	}
	return td.Name()
}

func (td *TypeDefinition) TypeParameters() []*TypeParameter {
	params := td.node.FirstChildOfKind(parser.KindTypeParameters)
	if params == nil {
		return nil
	}
	var result []*TypeParameter
	for _, p := range params.ChildrenOfKind(parser.KindTypeParameter) {
		result = append(result, NewTypeParameter(p))
	}
	return result
}

// Body is the class body node, nil for a definition without one.
func (td *TypeDefinition) Body() *parser.Node {
	return td.node.FirstChildOfKind(parser.KindClassBody)
}

// Statements returns the member nodes of the body in source order, or nil
// when there is no body.
func (td *TypeDefinition) Statements() []*parser.Node {
	body := td.Body()
	if body == nil {
		return nil
	}
	return body.Children
}

// ExtendsRef is the first reference of the extends clause. An interface
// may list more; only the first counts as its extends reference.
func (td *TypeDefinition) ExtendsRef() *TypeRef {
	clause := td.node.FirstChildOfKind(parser.KindExtendsClause)
	if clause == nil {
		return nil
	}
	refs := typeRefs(clause.Children)
	if len(refs) == 0 {
		return nil
	}
	return refs[0]
}

// ImplementsRefs returns the implements clause references in source order.
func (td *TypeDefinition) ImplementsRefs() []*TypeRef {
	clause := td.node.FirstChildOfKind(parser.KindImplementsClause)
	if clause == nil {
		return nil
	}
	return typeRefs(clause.Children)
}

// SuperTypes returns the direct supertypes: the extends reference or the
// implicit root for classes, followed by the implements references. The
// slice is rebuilt on every call.
func (td *TypeDefinition) SuperTypes() []*TypeRef {
	extends := td.ExtendsRef()
	implements := td.ImplementsRefs()

	result := make([]*TypeRef, 0, len(implements)+1)
	switch {
	case extends != nil:
		result = append(result, extends)
	case !td.IsInterface():
		result = append(result, ImplicitTypeRef(ObjectTypeName, td.node))
	}
	return append(result, implements...)
}

// Methods returns every method and constructor declared in the body, in
// source order. The list is computed once and kept until the subtree
// changes.
func (td *TypeDefinition) Methods() []*Method {
	return td.methods.get(func() []*Method {
		var methods []*Method
		for _, member := range td.Statements() {
			if member.Kind == parser.KindMethodDecl || member.Kind == parser.KindConstructorDecl {
				methods = append(methods, NewMethod(member))
			}
		}
		return methods
	})
}

// Constructors returns the constructors among Methods, sharing their models.
func (td *TypeDefinition) Constructors() []*Method {
	return td.constructors.get(func() []*Method {
		var constructors []*Method
		for _, m := range td.Methods() {
			if m.IsConstructor() {
				constructors = append(constructors, m)
			}
		}
		return constructors
	})
}

// FindMethods returns the methods named name.
func (td *TypeDefinition) FindMethods(name string) []*Method {
	var result []*Method
	for _, m := range td.Methods() {
		if m.Name() == name {
			result = append(result, m)
		}
	}
	return result
}

// Fields returns enum constants followed by declared fields, one entry per
// declared variable.
func (td *TypeDefinition) Fields() []*Variable {
	var fields []*Variable
	for _, member := range td.Statements() {
		switch member.Kind {
		case parser.KindEnumConstant:
			fields = append(fields, NewVariable(member))
		case parser.KindFieldDecl:
			for _, v := range member.ChildrenOfKind(parser.KindVariable) {
				fields = append(fields, NewVariable(v))
			}
		}
	}
	return fields
}

func (td *TypeDefinition) FindField(name string) *Variable {
	for _, f := range td.Fields() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// InnerTypes returns the type definitions declared as members.
func (td *TypeDefinition) InnerTypes() []*TypeDefinition {
	var inner []*TypeDefinition
	for _, member := range td.Statements() {
		if member.Kind.IsTypeDecl() {
			inner = append(inner, DefinitionOf(member))
		}
	}
	return inner
}

// SubtreeChanged drops the member caches. It does not recompute them.
func (td *TypeDefinition) SubtreeChanged() {
	td.methods.invalidate()
	td.constructors.invalidate()
}

// IsCached reports whether the member caches are populated.
func (td *TypeDefinition) IsCached() bool {
	return td.methods.isPopulated()
}

func (td *TypeDefinition) String() string {
	if qn := td.QualifiedName(); qn != "" {
		return string(td.Kind()) + " " + qn
	}
	return string(td.Kind()) + " " + td.Name()
}
