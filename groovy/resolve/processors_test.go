package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

func visibleNames(place *parser.Node, opts ...Option) []string {
	var names []string
	for _, c := range Visible(place, opts...) {
		names = append(names, c.Decl.Name())
	}
	return names
}

func TestVisibleInScript(t *testing.T) {
	root := parse(t, `import java.time.LocalDate
import java.util.*

def first = 1
def greet(String who) {
    def msg = "hi " + who
    msg
}
def second = 2
class Later {}
`)

	place := findIdent(t, root, "msg", 1)
	require.Equal(t, []string{"msg", "who", "LocalDate", "first", "greet", "Later"}, visibleNames(place))

	// "second" is declared after the place, unlike the script method.
	require.Nil(t, Resolve(place, "second"))
	require.NotNil(t, Resolve(findIdent(t, root, "Later", 0), "second"))
}

func TestVisibleKinds(t *testing.T) {
	root := parse(t, `class Shop {
    String name
    void open(int hour) {
        def sign = "open"
        println sign
    }
    void close() {}
}
`)
	place := findIdent(t, root, "sign", 1)

	require.Equal(t, []string{"open", "close"}, visibleNames(place, WithKinds(groovy.DeclMethod)))
	require.Equal(t, []string{"sign", "hour", "name"}, visibleNames(place, WithKinds(groovy.DeclLocal, groovy.DeclParameter, groovy.DeclField)))
}

func TestResolveShadowing(t *testing.T) {
	root := parse(t, `class Counter {
    int count
    void reset(int count) {
        this.count = count
    }
}
`)
	place := findIdent(t, root, "count", 3)

	found := Resolve(place, "count")
	require.NotNil(t, found)
	require.Equal(t, groovy.DeclParameter, found.Decl.DeclKind())
	require.Same(t, EmptySubstitutor, found.Subst)

	field := Resolve(place, "count", WithKinds(groovy.DeclField))
	require.NotNil(t, field)
	require.Equal(t, groovy.DeclField, field.Decl.DeclKind())

	require.Equal(t, []string{"count", "reset", "Counter"}, visibleNames(place))
}

func TestResolveLoopAndCatchVariables(t *testing.T) {
	root := parse(t, `def total = 0
for (n in [1, 2, 3]) {
    total += n
}
for (int i = 0; i < 3; i++) {
    println i
}
try {
    risky()
} catch (IOException e) {
    println e
}
`)

	n := Resolve(findIdent(t, root, "n", 1), "n")
	require.NotNil(t, n)
	require.Equal(t, groovy.DeclParameter, n.Decl.DeclKind())
	require.Equal(t, []string{"n", "total"}, visibleNames(findIdent(t, root, "n", 1)))

	i := Resolve(findIdent(t, root, "i", 3), "i")
	require.NotNil(t, i)
	require.Equal(t, groovy.DeclLocal, i.Decl.DeclKind())
	require.NotNil(t, Resolve(findIdent(t, root, "i", 1), "i"), "loop condition")

	e := Resolve(findIdent(t, root, "e", 1), "e")
	require.NotNil(t, e)
	require.Equal(t, "IOException e", e.Decl.(*groovy.Variable).String())
	require.Nil(t, Resolve(findIdent(t, root, "risky", 0), "e"))
	require.Nil(t, Resolve(findIdent(t, root, "risky", 0), "i"))
}

func TestResolveClosureParameters(t *testing.T) {
	root := parse(t, `def xs = [1, 2]
xs.each { println it }
xs.collect { x -> x * 2 }
`)

	it := Resolve(findIdent(t, root, "it", 0), "it")
	require.NotNil(t, it)
	require.True(t, it.Decl.(*groovy.Variable).IsImplicit())

	x := Resolve(findIdent(t, root, "x", 1), "x")
	require.NotNil(t, x)
	require.Same(t, findIdent(t, root, "x", 0), x.Decl.(*groovy.Variable).NameIdentifier())

	// A closure with explicit parameters has no "it".
	require.Nil(t, Resolve(findIdent(t, root, "x", 1), "it"))
}

func TestResolveTypeScope(t *testing.T) {
	root := parse(t, `class Outer<T> {
    static class Inner {}
    T item
    def <R> R map(Closure<R> fn) {
        fn.call(item)
    }
}
`)
	place := findIdent(t, root, "item", 1)

	for name, kind := range map[string]groovy.DeclKind{
		"T":     groovy.DeclTypeParameter,
		"R":     groovy.DeclTypeParameter,
		"Inner": groovy.DeclType,
		"Outer": groovy.DeclType,
		"map":   groovy.DeclMethod,
		"fn":    groovy.DeclParameter,
		"item":  groovy.DeclField,
	} {
		found := Resolve(place, name)
		require.NotNil(t, found, name)
		require.Equal(t, kind, found.Decl.DeclKind(), name)
	}
}

// treeHierarchy resolves references by simple name among the type
// definitions of one tree.
type treeHierarchy struct {
	root *parser.Node
}

func (h treeHierarchy) ResolveType(ref *groovy.TypeRef) *groovy.TypeDefinition {
	for _, td := range groovy.AllTypeDefinitions(h.root) {
		if td.Name() == ref.SimpleName() {
			return td
		}
	}
	return nil
}

const inheritanceSource = `class Base<T> {
    T value
    private int secret
    T get() { value }
    Base() {}
}
class Middle<E> extends Base<E> {}
class Box extends Middle<String> {
    void show() {
        println value
    }
}
`

func TestResolveInheritedMembers(t *testing.T) {
	root := parse(t, inheritanceSource)
	place := findIdent(t, root, "value", 2)
	h := treeHierarchy{root: root}

	require.Nil(t, Resolve(place, "value"), "inherited without a hierarchy")

	found := Resolve(place, "value", WithHierarchy(h))
	require.NotNil(t, found)
	require.Equal(t, groovy.DeclField, found.Decl.DeclKind())

	bound, ok := found.Subst.Lookup("T")
	require.True(t, ok)
	require.Equal(t, "String", bound.ReferenceName())

	field := found.Decl.(*groovy.Variable)
	require.Equal(t, "String", found.Subst.Substitute(field.Type()).ReferenceName())

	get := Resolve(place, "get", WithHierarchy(h))
	require.NotNil(t, get)
	require.Equal(t, "String", get.Subst.Substitute(get.Decl.(*groovy.Method).ReturnType()).ReferenceName())

	require.Nil(t, Resolve(place, "secret", WithHierarchy(h)), "private members are not inherited")
	require.Nil(t, Resolve(place, "Base", WithHierarchy(h), WithKinds(groovy.DeclConstructor)))
}

func TestDeclaredMembersUseEmptySubstitutor(t *testing.T) {
	root := parse(t, inheritanceSource)
	place := findIdent(t, root, "value", 2)
	h := treeHierarchy{root: root}

	np := NewNameProcessor("show")
	np.hierarchy = h
	require.False(t, TreeWalkUp(place, np))
	require.Same(t, EmptySubstitutor, np.Result().Subst)
}

func TestHierarchyCycle(t *testing.T) {
	root := parse(t, `class A extends B {
    def a
}
class B extends A {
    def b
    void m() { println a }
}
`)
	place := findIdent(t, root, "a", 1)
	names := visibleNames(place, WithHierarchy(treeHierarchy{root: root}))
	require.Equal(t, []string{"b", "m", "a", "A", "B"}, names)
}

func TestSubstitutor(t *testing.T) {
	root := parse(t, "class Pair<K, V> {}\nclass Use extends Pair<String> {}\n")
	defs := groovy.TypeDefinitions(root)
	params := defs[0].TypeParameters()
	args := defs[1].ExtendsRef().TypeArguments()

	s := NewSubstitutor(params, args, EmptySubstitutor)
	require.Equal(t, 1, s.Len())
	require.False(t, s.IsEmpty())
	_, ok := s.Lookup("V")
	require.False(t, ok, "raw binding for V")

	require.True(t, EmptySubstitutor.IsEmpty())
	var nilSubst *Substitutor
	require.True(t, nilSubst.IsEmpty())
	ref := defs[1].ExtendsRef()
	require.Same(t, ref, nilSubst.Substitute(ref))
}

func TestMembers(t *testing.T) {
	root := parse(t, inheritanceSource)
	defs := groovy.TypeDefinitions(root)
	box := defs[2]

	var names []string
	for _, c := range Members(box, WithHierarchy(treeHierarchy{root: root})) {
		names = append(names, c.Decl.Name())
	}
	require.Equal(t, []string{"show", "value", "get"}, names)

	names = nil
	for _, c := range Members(defs[0]) {
		names = append(names, c.Decl.Name())
	}
	require.Equal(t, []string{"value", "secret", "get", "Base"}, names)
	require.Nil(t, Members(nil))
}
