package resolve

import (
	"slices"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

// Candidate is a declaration accepted by a processor together with the
// substitutor it was offered with.
type Candidate struct {
	Decl  groovy.Declaration
	Subst *Substitutor
}

// NameProcessor finds the innermost declaration of one name and stops.
type NameProcessor struct {
	name      string
	kinds     []groovy.DeclKind
	hierarchy Hierarchy
	found     *Candidate
}

// NewNameProcessor looks for name, optionally restricted to some kinds of
// declaration.
func NewNameProcessor(name string, kinds ...groovy.DeclKind) *NameProcessor {
	return &NameProcessor{name: name, kinds: kinds}
}

func (np *NameProcessor) NameHint() (string, bool) {
	return np.name, true
}

func (np *NameProcessor) Hierarchy() Hierarchy {
	return np.hierarchy
}

func (np *NameProcessor) Execute(decl groovy.Declaration, subst *Substitutor) bool {
	if len(np.kinds) > 0 && !slices.Contains(np.kinds, decl.DeclKind()) {
		return true
	}
	np.found = &Candidate{Decl: decl, Subst: subst}
	return false
}

// Result returns the declaration found, or nil.
func (np *NameProcessor) Result() *Candidate {
	return np.found
}

// CollectProcessor gathers every visible declaration. A declaration hidden
// by an inner one of the same name and category is dropped; overloaded
// methods are kept apart by signature.
type CollectProcessor struct {
	kinds     []groovy.DeclKind
	hierarchy Hierarchy
	seen      map[string]bool
	results   []Candidate
}

func NewCollectProcessor(kinds ...groovy.DeclKind) *CollectProcessor {
	return &CollectProcessor{kinds: kinds, seen: make(map[string]bool)}
}

func (cp *CollectProcessor) Hierarchy() Hierarchy {
	return cp.hierarchy
}

func (cp *CollectProcessor) Execute(decl groovy.Declaration, subst *Substitutor) bool {
	if len(cp.kinds) > 0 && !slices.Contains(cp.kinds, decl.DeclKind()) {
		return true
	}
	key := shadowKey(decl)
	if cp.seen[key] {
		return true
	}
	cp.seen[key] = true
	cp.results = append(cp.results, Candidate{Decl: decl, Subst: subst})
	return true
}

// Results returns the collected declarations, innermost first.
func (cp *CollectProcessor) Results() []Candidate {
	return cp.results
}

// Declarations returns the collected declarations without substitutors.
func (cp *CollectProcessor) Declarations() []groovy.Declaration {
	decls := make([]groovy.Declaration, len(cp.results))
	for i, c := range cp.results {
		decls[i] = c.Decl
	}
	return decls
}

// shadowKey groups declarations that hide each other: types hide types,
// values hide values and methods hide methods of the same signature.
func shadowKey(decl groovy.Declaration) string {
	switch d := decl.(type) {
	case *groovy.Method:
		return "m:" + d.Signature()
	case *groovy.TypeDefinition, *groovy.TypeParameter:
		return "t:" + decl.Name()
	case *groovy.Import:
		if d.IsStatic() {
			return "v:" + decl.Name()
		}
		return "t:" + decl.Name()
	}
	return "v:" + decl.Name()
}

type options struct {
	hierarchy Hierarchy
	kinds     []groovy.DeclKind
}

type Option func(*options)

// WithHierarchy makes type definitions expose inherited members too.
func WithHierarchy(h Hierarchy) Option {
	return func(o *options) {
		o.hierarchy = h
	}
}

// WithKinds restricts results to the given kinds of declaration.
func WithKinds(kinds ...groovy.DeclKind) Option {
	return func(o *options) {
		o.kinds = append(o.kinds, kinds...)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolve returns the innermost declaration of name visible from place, or
// nil.
func Resolve(place *parser.Node, name string, opts ...Option) *Candidate {
	o := buildOptions(opts)
	np := NewNameProcessor(name, o.kinds...)
	np.hierarchy = o.hierarchy
	TreeWalkUp(place, np)
	return np.Result()
}

// Visible returns every declaration visible from place, innermost first.
func Visible(place *parser.Node, opts ...Option) []Candidate {
	o := buildOptions(opts)
	cp := NewCollectProcessor(o.kinds...)
	cp.hierarchy = o.hierarchy
	TreeWalkUp(place, cp)
	return cp.Results()
}

// Members returns the fields, methods and inner types of td, followed by
// inherited ones when a hierarchy is given. Members hidden by a closer
// declaration are dropped.
func Members(td *groovy.TypeDefinition, opts ...Option) []Candidate {
	if td == nil {
		return nil
	}
	o := buildOptions(opts)
	cp := NewCollectProcessor(o.kinds...)
	if !processMembers(td, cp, emptySubstitutor, false) || o.hierarchy == nil {
		return cp.Results()
	}
	visited := map[*groovy.TypeDefinition]bool{td: true}
	processSupers(td, o.hierarchy, cp, emptySubstitutor, visited)
	return cp.Results()
}
