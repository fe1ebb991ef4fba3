package resolve

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

var log = commonlog.GetLogger("gravel.resolve")

// TreeWalkUp offers every declaration visible from place to the processor,
// innermost scope first. Each ancestor of place, place included, gets one
// ProcessDeclarations call with the child the walk came from as lastParent.
// It returns false when the processor stopped the walk and true when the
// walk went past the root.
func TreeWalkUp(place *parser.Node, p Processor) bool {
	return walkUp(place, p, ProcessDeclarations)
}

type scopeFunc func(node *parser.Node, p Processor, lastParent, place *parser.Node) bool

func walkUp(place *parser.Node, p Processor, process scopeFunc) bool {
	var lastParent *parser.Node
	steps := 0
	for current := place; current != nil; current = current.Parent() {
		steps++
		if !process(current, p, lastParent, place) {
			log.Debugf("walk from %s stopped at %s after %d scopes", place.Kind, current.Kind, steps)
			return false
		}
		lastParent = current
	}
	if place != nil {
		log.Debugf("walk from %s passed the root after %d scopes", place.Kind, steps)
	}
	return true
}

// ProcessChildren visits the children of container that precede lastParent,
// in source order, as siblings of the walk. A nil lastParent visits every
// child.
func ProcessChildren(container *parser.Node, p Processor, lastParent, place *parser.Node) bool {
	for child := container.FirstChild(); child != nil && child != lastParent; child = child.NextSibling() {
		if !ProcessDeclarations(child, p, nil, place) {
			return false
		}
	}
	return true
}

// ProcessElement offers one declaration found directly in scope.
func ProcessElement(p Processor, named groovy.Declaration) bool {
	return ProcessElementWith(p, named, emptySubstitutor)
}

// ProcessElementWith offers a declaration whose substitutor is built by
// subst. When the processor has a name hint that named does not match, the
// declaration is skipped and subst is never called.
func ProcessElementWith(p Processor, named groovy.Declaration, subst func() *Substitutor) bool {
	if named == nil {
		return true
	}
	if hint, ok := nameHint(p); ok && hint != named.Name() {
		return true
	}
	return p.Execute(named, subst())
}

func emptySubstitutor() *Substitutor {
	return EmptySubstitutor
}
