// Package resolve answers "what is visible from here" for a position in a
// Groovy syntax tree. It walks from the position up to the root and, at each
// level, offers the declarations that level makes visible to a Processor.
package resolve

import (
	"github.com/dhamidi/gravel/groovy"
)

// Processor receives the declarations visible from a position, innermost
// scope first. Execute returns false to stop the walk.
type Processor interface {
	Execute(decl groovy.Declaration, subst *Substitutor) bool
}

// NameHinter is implemented by processors that only care about one name.
// Declarations with a different name are skipped before Execute.
type NameHinter interface {
	NameHint() (string, bool)
}

// HierarchyHolder is implemented by processors that want members inherited
// from supertypes. Without it a type definition only exposes what it
// declares itself.
type HierarchyHolder interface {
	Hierarchy() Hierarchy
}

// Hierarchy resolves supertype references to the definitions they name.
type Hierarchy interface {
	ResolveType(ref *groovy.TypeRef) *groovy.TypeDefinition
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(decl groovy.Declaration, subst *Substitutor) bool

func (f ProcessorFunc) Execute(decl groovy.Declaration, subst *Substitutor) bool {
	return f(decl, subst)
}

func nameHint(p Processor) (string, bool) {
	if h, ok := p.(NameHinter); ok {
		return h.NameHint()
	}
	return "", false
}

func hierarchyOf(p Processor) Hierarchy {
	if h, ok := p.(HierarchyHolder); ok {
		return h.Hierarchy()
	}
	return nil
}
