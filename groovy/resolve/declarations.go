package resolve

import (
	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

// ProcessDeclarations offers the declarations node makes visible. A nil
// lastParent means node is either the place itself or a sibling seen from
// it: declarations expose themselves, and a block or closure that is the
// place exposes all it declares. Otherwise node is a scope being left
// through lastParent and exposes what it declares for its contents.
func ProcessDeclarations(node *parser.Node, p Processor, lastParent, place *parser.Node) bool {
	if node.Kind == parser.KindCompilationUnit {
		return processCompilationUnit(node, p, lastParent, place)
	}
	if lastParent == nil {
		if node == place {
			switch node.Kind {
			case parser.KindBlock:
				return ProcessChildren(node, p, nil, place)
			case parser.KindClosure:
				return processClosureContents(node, p, place)
			}
		}
		return processSibling(node, p, place)
	}

	switch node.Kind {
	case parser.KindBlock, parser.KindForInit, parser.KindLocalVarDecl:
		return ProcessChildren(node, p, lastParent, place)

	case parser.KindClosure:
		return processClosure(node, p, lastParent)

	case parser.KindMethodDecl, parser.KindConstructorDecl:
		return processMethod(groovy.NewMethod(node), p)

	case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl,
		parser.KindTraitDecl, parser.KindAnnotationDecl:
		return processTypeScope(groovy.DefinitionOf(node), p)

	case parser.KindForStmt:
		if init := node.FirstChildOfKind(parser.KindForInit); init != nil && init != lastParent {
			return ProcessChildren(init, p, nil, place)
		}

	case parser.KindForInStmt:
		// The loop variable is in scope for the body only.
		if lastParent == node.LastChild() {
			return processParameterNode(node.FirstChildOfKind(parser.KindParameter), p)
		}

	case parser.KindCatchClause:
		if lastParent.Kind == parser.KindBlock {
			return processParameterNode(node.FirstChildOfKind(parser.KindParameter), p)
		}
	}
	return true
}

func processSibling(node *parser.Node, p Processor, place *parser.Node) bool {
	switch node.Kind {
	case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl,
		parser.KindTraitDecl, parser.KindAnnotationDecl:
		return ProcessElement(p, groovy.DefinitionOf(node))

	case parser.KindMethodDecl, parser.KindConstructorDecl:
		return ProcessElement(p, groovy.NewMethod(node))

	case parser.KindVariable, parser.KindEnumConstant:
		return ProcessElement(p, groovy.NewVariable(node))

	case parser.KindLocalVarDecl, parser.KindFieldDecl:
		return ProcessChildren(node, p, nil, place)

	case parser.KindImportDecl:
		if imp := groovy.NewImport(node); imp.Name() != "" {
			return ProcessElement(p, imp)
		}
	}
	return true
}

// processCompilationUnit exposes the statements before lastParent and every
// type definition, script method and import of the file wherever it is. A
// nil lastParent exposes everything. When the walk started at lastParent it
// has already offered itself and is skipped here.
func processCompilationUnit(node *parser.Node, p Processor, lastParent, place *parser.Node) bool {
	if !ProcessChildren(node, p, lastParent, place) {
		return false
	}
	rest := lastParent
	if rest != nil && rest == place {
		rest = rest.NextSibling()
	}
	for child := rest; child != nil; child = child.NextSibling() {
		switch {
		case child.Kind.IsTypeDecl(), child.Kind == parser.KindMethodDecl, child.Kind == parser.KindImportDecl:
			if !processSibling(child, p, place) {
				return false
			}
		}
	}
	return true
}

func processClosure(node *parser.Node, p Processor, lastParent *parser.Node) bool {
	params := node.FirstChildOfKind(parser.KindParameters)
	if params == nil {
		return ProcessElement(p, groovy.ImplicitParameter(node))
	}
	if params == lastParent {
		return true
	}
	return processParameters(params, p)
}

// processClosureContents exposes the parameters of a closure and every
// statement of its body.
func processClosureContents(node *parser.Node, p Processor, place *parser.Node) bool {
	if !processClosure(node, p, nil) {
		return false
	}
	if body := node.FirstChildOfKind(parser.KindBlock); body != nil {
		return ProcessChildren(body, p, nil, place)
	}
	return true
}

func processMethod(m *groovy.Method, p Processor) bool {
	for _, param := range m.Parameters() {
		if !ProcessElement(p, param) {
			return false
		}
	}
	for _, tp := range m.TypeParameters() {
		if !ProcessElement(p, tp) {
			return false
		}
	}
	return true
}

func processParameters(params *parser.Node, p Processor) bool {
	for _, param := range params.ChildrenOfKind(parser.KindParameter) {
		if !processParameterNode(param, p) {
			return false
		}
	}
	return true
}

func processParameterNode(param *parser.Node, p Processor) bool {
	if param == nil {
		return true
	}
	return ProcessElement(p, groovy.NewVariable(param))
}

// processTypeScope exposes what a type definition declares for code inside
// it, then, when the processor carries a Hierarchy, what it inherits.
func processTypeScope(td *groovy.TypeDefinition, p Processor) bool {
	for _, tp := range td.TypeParameters() {
		if !ProcessElement(p, tp) {
			return false
		}
	}
	if !processMembers(td, p, emptySubstitutor, false) {
		return false
	}

	h := hierarchyOf(p)
	if h == nil {
		return true
	}
	visited := map[*groovy.TypeDefinition]bool{td: true}
	return processSupers(td, h, p, emptySubstitutor, visited)
}

// processMembers offers fields, methods and inner types. Inherited members
// skip constructors and private declarations.
func processMembers(td *groovy.TypeDefinition, p Processor, subst func() *Substitutor, inherited bool) bool {
	for _, f := range td.Fields() {
		if inherited && f.Visibility() == groovy.VisibilityPrivate {
			continue
		}
		if !ProcessElementWith(p, f, subst) {
			return false
		}
	}
	for _, m := range td.Methods() {
		if inherited && (m.IsConstructor() || m.Visibility() == groovy.VisibilityPrivate) {
			continue
		}
		if !ProcessElementWith(p, m, subst) {
			return false
		}
	}
	for _, inner := range td.InnerTypes() {
		if inherited && inner.Visibility() == groovy.VisibilityPrivate {
			continue
		}
		if !ProcessElementWith(p, inner, subst) {
			return false
		}
	}
	return true
}

// processSupers walks the supertypes of td depth first, nearest first. The
// substitutor of a supertype is only built when one of its members is
// actually handed to the processor.
func processSupers(td *groovy.TypeDefinition, h Hierarchy, p Processor, outer func() *Substitutor, visited map[*groovy.TypeDefinition]bool) bool {
	for _, ref := range td.SuperTypes() {
		st := h.ResolveType(ref)
		if st == nil || visited[st] {
			continue
		}
		visited[st] = true

		var built *Substitutor
		subst := func() *Substitutor {
			if built == nil {
				built = NewSubstitutor(st.TypeParameters(), ref.TypeArguments(), outer())
			}
			return built
		}
		if !processMembers(st, p, subst, true) {
			return false
		}
		if !processSupers(st, h, p, subst, visited) {
			return false
		}
	}
	return true
}
