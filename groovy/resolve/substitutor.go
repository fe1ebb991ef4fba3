package resolve

import (
	"github.com/dhamidi/gravel/groovy"
)

// Substitutor maps type parameter names to the type arguments bound to them
// along an inheritance path. Declarations found directly in scope come with
// EmptySubstitutor.
type Substitutor struct {
	bindings map[string]*groovy.TypeRef
}

// EmptySubstitutor binds nothing.
var EmptySubstitutor = &Substitutor{}

// NewSubstitutor binds params to args positionally. Missing arguments (raw
// types) leave their parameters unbound. Arguments are first passed through
// outer, so in C extends B<String> and B<T> extends A<T> the parameter of A
// ends up bound to String.
func NewSubstitutor(params []*groovy.TypeParameter, args []*groovy.TypeRef, outer *Substitutor) *Substitutor {
	s := &Substitutor{}
	for i, param := range params {
		if i >= len(args) {
			break
		}
		if s.bindings == nil {
			s.bindings = make(map[string]*groovy.TypeRef, len(params))
		}
		s.bindings[param.Name()] = outer.Substitute(args[i])
	}
	return s
}

// Lookup returns the argument bound to a type parameter name.
func (s *Substitutor) Lookup(name string) (*groovy.TypeRef, bool) {
	if s == nil {
		return nil, false
	}
	ref, ok := s.bindings[name]
	return ref, ok
}

// Substitute replaces a reference to a bound type parameter with its
// argument. Other references are returned unchanged.
func (s *Substitutor) Substitute(ref *groovy.TypeRef) *groovy.TypeRef {
	if s == nil || ref == nil || ref.IsQualified() || ref.ArrayDepth() > 0 {
		return ref
	}
	if bound, ok := s.Lookup(ref.ReferenceName()); ok {
		return bound
	}
	return ref
}

func (s *Substitutor) IsEmpty() bool {
	return s == nil || len(s.bindings) == 0
}

// Len is the number of bound parameters.
func (s *Substitutor) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bindings)
}
