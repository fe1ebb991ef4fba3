package codebase

import (
	"strings"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/resolve"
)

// Hierarchy resolves type references across the files of a codebase. Its
// methods expect the codebase lock to be held; the exported Codebase
// methods take care of that.
type Hierarchy struct {
	c *Codebase
}

var _ resolve.Hierarchy = Hierarchy{}

func (c *Codebase) hierarchyLocked() Hierarchy {
	return Hierarchy{c: c}
}

// ResolveType finds the definition a reference names, looking in order at
// the enclosing scopes and imports of the reference, its package, star
// imports and the default imports.
func (h Hierarchy) ResolveType(ref *groovy.TypeRef) *groovy.TypeDefinition {
	if ref == nil || ref.IsPrimitive() {
		return nil
	}
	name := ref.ReferenceName()
	if name == "" {
		return nil
	}
	if ref.IsQualified() {
		if td := h.c.types[name]; td != nil {
			return td
		}
	}

	head, rest, _ := strings.Cut(name, ".")
	if td := h.resolveSimple(ref, head); td != nil {
		return innerPath(td, rest)
	}
	return nil
}

func (h Hierarchy) resolveSimple(ref *groovy.TypeRef, name string) *groovy.TypeDefinition {
	context := ref.Context()
	if context == nil {
		return nil
	}

	found := resolve.Resolve(context, name,
		resolve.WithKinds(groovy.DeclType, groovy.DeclTypeParameter, groovy.DeclImport))
	if found != nil {
		switch decl := found.Decl.(type) {
		case *groovy.TypeDefinition:
			return decl
		case *groovy.Import:
			if decl.IsStatic() {
				return nil
			}
			return h.c.types[decl.QualifiedName()]
		}
		// Type parameters are not definitions.
		return nil
	}

	root := context.Root()
	qualified := name
	if pkg := groovy.PackageName(root); pkg != "" {
		qualified = pkg + "." + name
	}
	if td := h.c.types[qualified]; td != nil {
		return td
	}
	for _, imp := range groovy.Imports(root) {
		if imp.IsStar() && !imp.IsStatic() {
			if td := h.c.types[imp.QualifiedName()+"."+name]; td != nil {
				return td
			}
		}
	}
	for _, pkg := range groovy.DefaultImports {
		if td := h.c.types[pkg+"."+name]; td != nil {
			return td
		}
	}
	return nil
}

func innerPath(td *groovy.TypeDefinition, path string) *groovy.TypeDefinition {
	for path != "" && td != nil {
		var head string
		head, path, _ = strings.Cut(path, ".")
		var next *groovy.TypeDefinition
		for _, inner := range td.InnerTypes() {
			if inner.Name() == head {
				next = inner
				break
			}
		}
		td = next
	}
	return td
}

// Supers returns every supertype of td found in the codebase, nearest
// first, each once. Cycles in the source are tolerated.
func (h Hierarchy) Supers(td *groovy.TypeDefinition) []*groovy.TypeDefinition {
	var result []*groovy.TypeDefinition
	visited := map[*groovy.TypeDefinition]bool{td: true}
	queue := []*groovy.TypeDefinition{td}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, ref := range current.SuperTypes() {
			st := h.ResolveType(ref)
			if st == nil || visited[st] {
				continue
			}
			visited[st] = true
			result = append(result, st)
			queue = append(queue, st)
		}
	}
	return result
}

// ResolveType resolves ref against the codebase.
func (c *Codebase) ResolveType(ref *groovy.TypeRef) *groovy.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hierarchyLocked().ResolveType(ref)
}

// Supers returns the transitive supertypes of td known to the codebase.
func (c *Codebase) Supers(td *groovy.TypeDefinition) []*groovy.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hierarchyLocked().Supers(td)
}

// Subtypes returns the definitions that name td as a direct supertype.
func (c *Codebase) Subtypes(td *groovy.TypeDefinition) []*groovy.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := c.hierarchyLocked()
	var result []*groovy.TypeDefinition
	for _, path := range c.pathsLocked() {
		for _, candidate := range c.files[path].Types {
			for _, ref := range candidate.SuperTypes() {
				if h.ResolveType(ref) == td {
					result = append(result, candidate)
					break
				}
			}
		}
	}
	return result
}
