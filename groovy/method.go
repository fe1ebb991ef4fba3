package groovy

import (
	"strings"

	"github.com/dhamidi/gravel/groovy/parser"
)

// Method models a method or constructor declaration, inside a type body or
// at the top level of a script.
type Method struct {
	node *parser.Node
}

func NewMethod(node *parser.Node) *Method {
	return &Method{node: node}
}

func (m *Method) Node() *parser.Node {
	return m.node
}

func (m *Method) DeclKind() DeclKind {
	if m.IsConstructor() {
		return DeclConstructor
	}
	return DeclMethod
}

func (m *Method) Name() string {
	return identifierText(m.node)
}

func (m *Method) NameIdentifier() *parser.Node {
	return nameIdentifier(m.node)
}

func (m *Method) IsConstructor() bool {
	return m.node.Kind == parser.KindConstructorDecl
}

func (m *Method) IsStatic() bool {
	return hasModifier(m.node, "static")
}

func (m *Method) IsAbstract() bool {
	return hasModifier(m.node, "abstract") || m.Body() == nil
}

func (m *Method) Visibility() Visibility {
	return visibilityOf(m.node)
}

func (m *Method) Annotations() []string {
	return annotationNames(m.node)
}

// ReturnType is the declared return type; nil for constructors and for
// methods declared with "def".
func (m *Method) ReturnType() *TypeRef {
	if t := typeNode(m.node); t != nil {
		return NewTypeRef(t)
	}
	return nil
}

func (m *Method) Parameters() []*Variable {
	params := m.node.FirstChildOfKind(parser.KindParameters)
	if params == nil {
		return nil
	}
	var result []*Variable
	for _, p := range params.ChildrenOfKind(parser.KindParameter) {
		result = append(result, NewVariable(p))
	}
	return result
}

func (m *Method) TypeParameters() []*TypeParameter {
	params := m.node.FirstChildOfKind(parser.KindTypeParameters)
	if params == nil {
		return nil
	}
	var result []*TypeParameter
	for _, p := range params.ChildrenOfKind(parser.KindTypeParameter) {
		result = append(result, NewTypeParameter(p))
	}
	return result
}

func (m *Method) Throws() []*TypeRef {
	throws := m.node.FirstChildOfKind(parser.KindThrowsList)
	if throws == nil {
		return nil
	}
	return typeRefs(throws.Children)
}

// Body is the method block, nil for abstract and interface methods.
func (m *Method) Body() *parser.Node {
	return m.node.FirstChildOfKind(parser.KindBlock)
}

// Containing returns the type definition declaring the method, or nil for
// script methods.
func (m *Method) Containing() *TypeDefinition {
	body := m.node.Parent()
	if body == nil || body.Kind != parser.KindClassBody {
		return nil
	}
	return DefinitionOf(body.Parent())
}

// Signature renders the method as name(ParamType, ...) with "def" for
// untyped parameters.
func (m *Method) Signature() string {
	var sb strings.Builder
	sb.WriteString(m.Name())
	sb.WriteByte('(')
	for i, p := range m.Parameters() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.TypeText())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (m *Method) String() string {
	if ret := m.ReturnType(); ret != nil {
		return ret.Text() + " " + m.Signature()
	}
	if m.IsConstructor() {
		return m.Signature()
	}
	return "def " + m.Signature()
}
