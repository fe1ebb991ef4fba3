package groovy

import (
	"github.com/dhamidi/gravel/groovy/parser"
)

// Variable models anything that holds a value under a name: fields, enum
// constants, local variables, method, catch and loop parameters, closure
// parameters and the implicit closure parameter "it".
type Variable struct {
	node     *parser.Node
	implicit string
}

// NewVariable wraps a Variable, Parameter or EnumConstant node.
func NewVariable(node *parser.Node) *Variable {
	return &Variable{node: node}
}

// ImplicitParameter models the "it" parameter of a closure that declares no
// parameters of its own.
func ImplicitParameter(closure *parser.Node) *Variable {
	return &Variable{node: closure, implicit: "it"}
}

func (v *Variable) Node() *parser.Node {
	return v.node
}

func (v *Variable) IsImplicit() bool {
	return v.implicit != ""
}

func (v *Variable) Name() string {
	if v.implicit != "" {
		return v.implicit
	}
	return identifierText(v.node)
}

func (v *Variable) NameIdentifier() *parser.Node {
	if v.implicit != "" {
		return nil
	}
	return nameIdentifier(v.node)
}

// declaration is the node carrying the type and modifiers of the variable.
func (v *Variable) declaration() *parser.Node {
	if v.node.Kind == parser.KindVariable {
		return v.node.Parent()
	}
	return v.node
}

func (v *Variable) DeclKind() DeclKind {
	if v.implicit != "" {
		return DeclParameter
	}
	switch v.node.Kind {
	case parser.KindParameter:
		return DeclParameter
	case parser.KindEnumConstant:
		return DeclField
	}
	if decl := v.declaration(); decl != nil && decl.Kind == parser.KindFieldDecl {
		return DeclField
	}
	return DeclLocal
}

func (v *Variable) IsEnumConstant() bool {
	return v.node.Kind == parser.KindEnumConstant
}

func (v *Variable) IsStatic() bool {
	return v.IsEnumConstant() || hasModifier(v.declaration(), "static")
}

func (v *Variable) Visibility() Visibility {
	if v.implicit != "" || v.IsEnumConstant() {
		return VisibilityPublic
	}
	return visibilityOf(v.declaration())
}

func (v *Variable) IsFinal() bool {
	return v.IsEnumConstant() || hasModifier(v.declaration(), "final")
}

// Type is the declared type, nil when the variable is untyped ("def x",
// closure parameters without a type, "it").
func (v *Variable) Type() *TypeRef {
	if v.implicit != "" {
		return nil
	}
	if v.IsEnumConstant() {
		if body := v.node.Parent(); body != nil {
			if td := DefinitionOf(body.Parent()); td != nil {
				return ImplicitTypeRef(td.Name(), td.Node())
			}
		}
		return nil
	}
	if t := typeNode(v.declaration()); t != nil {
		return NewTypeRef(t)
	}
	return nil
}

// TypeText renders the declared type, "def" when there is none.
func (v *Variable) TypeText() string {
	if t := v.Type(); t != nil {
		return t.Text()
	}
	return "def"
}

// Initializer is the expression assigned at declaration, or a parameter's
// default value.
func (v *Variable) Initializer() *parser.Node {
	switch v.node.Kind {
	case parser.KindVariable, parser.KindParameter:
		last := v.node.LastChild()
		if last != nil && last != v.NameIdentifier() && last.Kind != parser.KindType &&
			last.Kind != parser.KindArrayType && last.Kind != parser.KindModifiers {
			return last
		}
	}
	return nil
}

func (v *Variable) String() string {
	return v.TypeText() + " " + v.Name()
}

// TypeParameter models a generic type parameter of a type or method.
type TypeParameter struct {
	node *parser.Node
}

func NewTypeParameter(node *parser.Node) *TypeParameter {
	return &TypeParameter{node: node}
}

func (tp *TypeParameter) Node() *parser.Node {
	return tp.node
}

func (tp *TypeParameter) DeclKind() DeclKind {
	return DeclTypeParameter
}

func (tp *TypeParameter) Name() string {
	return identifierText(tp.node)
}

// Bounds returns the types after "extends", in source order.
func (tp *TypeParameter) Bounds() []*TypeRef {
	return typeRefs(tp.node.Children)
}
