package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	root := parser.Parse([]byte(src), parser.WithFile("Test.groovy"))
	require.NotNil(t, root)
	require.Empty(t, parser.Errors(root), "parse errors in:\n%s", root)
	return root
}

// findIdent returns the nth identifier (counting from 0) spelled name.
func findIdent(t *testing.T, root *parser.Node, name string, nth int) *parser.Node {
	t.Helper()
	var found *parser.Node
	seen := 0
	root.Walk(func(n *parser.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == parser.KindIdentifier && n.TokenLiteral() == name {
			if seen == nth {
				found = n
				return false
			}
			seen++
		}
		return true
	})
	require.NotNil(t, found, "identifier %q #%d not found", name, nth)
	return found
}

type recorder struct {
	names []string
	stop  string
}

func (r *recorder) Execute(decl groovy.Declaration, subst *Substitutor) bool {
	r.names = append(r.names, decl.Name())
	return decl.Name() != r.stop
}

type step struct {
	node       *parser.Node
	lastParent *parser.Node
}

func recordScopes(steps *[]step) scopeFunc {
	return func(node *parser.Node, p Processor, lastParent, place *parser.Node) bool {
		*steps = append(*steps, step{node: node, lastParent: lastParent})
		return ProcessDeclarations(node, p, lastParent, place)
	}
}

const counterSource = `class C {
    int field
    void m(int p) {
        println p
    }
}
`

func TestWalkUpVisitsEachAncestorOnce(t *testing.T) {
	root := parse(t, counterSource)
	place := findIdent(t, root, "p", 1)

	var steps []step
	require.True(t, walkUp(place, &recorder{}, recordScopes(&steps)))

	require.Len(t, steps, place.Depth()+1)
	require.Same(t, place, steps[0].node)
	require.Nil(t, steps[0].lastParent)
	for i := 1; i < len(steps); i++ {
		require.Same(t, steps[i-1].node, steps[i].lastParent)
		require.Same(t, steps[i-1].node.Parent(), steps[i].node)
	}
	require.Same(t, root, steps[len(steps)-1].node)
}

func TestWalkUpStopsAtFirstRefusal(t *testing.T) {
	root := parse(t, counterSource)
	place := findIdent(t, root, "p", 1)

	var steps []step
	r := &recorder{stop: "p"}
	require.False(t, walkUp(place, r, recordScopes(&steps)))

	var kinds []parser.NodeKind
	for _, s := range steps {
		kinds = append(kinds, s.node.Kind)
	}
	require.Equal(t, []parser.NodeKind{
		parser.KindIdentifier,
		parser.KindArguments,
		parser.KindCallExpr,
		parser.KindExprStmt,
		parser.KindBlock,
		parser.KindMethodDecl,
	}, kinds)
	require.Equal(t, []string{"p"}, r.names, "members of C were offered after the stop")
}

func TestTreeWalkUpFromRoot(t *testing.T) {
	root := parse(t, "class A {}\nclass B {}\n")
	r := &recorder{}
	require.True(t, TreeWalkUp(root, r))
	require.Equal(t, []string{"A", "B"}, r.names)

	require.True(t, TreeWalkUp(nil, r))
}

func TestProcessChildrenStopsBeforeLastParent(t *testing.T) {
	root := parse(t, `class C {
    void m() {
        def a = 1
        println a
        def b = 2
    }
}
`)
	place := findIdent(t, root, "a", 1)
	r := &recorder{}
	require.True(t, TreeWalkUp(place, r))
	require.Equal(t, []string{"a", "m", "C"}, r.names)

	block := place.Ancestor(parser.KindBlock)
	require.NotNil(t, block)

	r = &recorder{}
	require.True(t, ProcessChildren(block, r, block.FirstChild(), place))
	require.Empty(t, r.names)

	r = &recorder{}
	require.True(t, ProcessChildren(block, r, nil, place))
	require.Equal(t, []string{"a", "b"}, r.names)

	r = &recorder{}
	empty := &parser.Node{Kind: parser.KindBlock}
	require.True(t, ProcessChildren(empty, r, nil, place))
	require.Empty(t, r.names)

	r = &recorder{stop: "a"}
	require.False(t, ProcessChildren(block, r, nil, place))
	require.Equal(t, []string{"a"}, r.names)
}

func TestWalkFromTopLevelDeclarationOffersItOnce(t *testing.T) {
	root := parse(t, "import java.util.List\nclass A {}\nclass B {}\n")
	imp := root.FirstChildOfKind(parser.KindImportDecl)
	classes := root.ChildrenOfKind(parser.KindClassDecl)
	require.NotNil(t, imp)
	require.Len(t, classes, 2)

	r := &recorder{}
	require.True(t, TreeWalkUp(imp, r))
	require.Equal(t, []string{"List", "A", "B"}, r.names)

	r = &recorder{}
	require.True(t, TreeWalkUp(classes[0], r))
	require.Equal(t, []string{"A", "List", "B"}, r.names)

	// From inside A, A is still visible through the file.
	r = &recorder{}
	require.True(t, TreeWalkUp(findIdent(t, root, "A", 0), r))
	require.Contains(t, r.names, "A")
}

func TestWalkFromBlockOrClosureSeesAllItDeclares(t *testing.T) {
	root := parse(t, `class C {
    void m() {
        def a = 1
        println a
        def b = 2
    }
}
`)
	block := findIdent(t, root, "a", 1).Ancestor(parser.KindBlock)
	r := &recorder{}
	require.True(t, TreeWalkUp(block, r))
	require.Equal(t, []string{"a", "b", "m", "C"}, r.names)

	script := parse(t, `def c = { x ->
    def y = x
}
`)
	closure := findIdent(t, script, "x", 0).Ancestor(parser.KindClosure)
	require.NotNil(t, closure)
	r = &recorder{}
	require.True(t, TreeWalkUp(closure, r))
	require.GreaterOrEqual(t, len(r.names), 2)
	require.Equal(t, []string{"x", "y"}, r.names[:2])
}

type fakeDecl struct {
	name string
}

func (d fakeDecl) Name() string              { return d.name }
func (d fakeDecl) Node() *parser.Node        { return nil }
func (d fakeDecl) DeclKind() groovy.DeclKind { return groovy.DeclLocal }

type hinted struct {
	recorder
	hint string
}

func (h *hinted) NameHint() (string, bool) {
	return h.hint, h.hint != ""
}

func TestProcessElementNameHint(t *testing.T) {
	candidates := []fakeDecl{{"x"}, {"y"}, {"x"}}

	built := 0
	build := func() *Substitutor {
		built++
		return EmptySubstitutor
	}

	h := &hinted{hint: "x"}
	for _, c := range candidates {
		require.True(t, ProcessElementWith(h, c, build))
	}
	require.Equal(t, []string{"x", "x"}, h.names)
	require.Equal(t, 2, built, "a substitutor was built for a skipped declaration")

	built = 0
	all := &hinted{}
	for _, c := range candidates {
		require.True(t, ProcessElementWith(all, c, build))
	}
	require.Equal(t, []string{"x", "y", "x"}, all.names)
	require.Equal(t, 3, built)
}

func TestProcessElementStops(t *testing.T) {
	r := &recorder{stop: "y"}
	require.True(t, ProcessElement(r, fakeDecl{"x"}))
	require.False(t, ProcessElement(r, fakeDecl{"y"}))
	require.True(t, ProcessElement(r, nil))
}

func TestProcessorFunc(t *testing.T) {
	var got []groovy.DeclKind
	p := ProcessorFunc(func(decl groovy.Declaration, subst *Substitutor) bool {
		got = append(got, decl.DeclKind())
		require.Same(t, EmptySubstitutor, subst)
		return true
	})
	require.True(t, ProcessElement(p, fakeDecl{"x"}))
	require.Equal(t, []groovy.DeclKind{groovy.DeclLocal}, got)
}
