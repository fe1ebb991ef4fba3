package groovy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gravel/groovy/parser"
)

func TestMethodModel(t *testing.T) {
	td := firstType(t, `abstract class Repo<E> {
    Repo() {}
    abstract E find(long id) throws IOException, SQLException
    static <K> List<K> keys(Map<K, ?> m, int... extra) { [] }
    def save(entity, boolean flush = false) { entity }
}`)

	methods := td.Methods()
	require.Len(t, methods, 4)

	var got []string
	for _, m := range methods {
		got = append(got, m.String())
	}
	require.Equal(t, []string{
		"Repo()",
		"E find(long)",
		"List<K> keys(Map<K, ?>, int[])",
		"def save(def, boolean)",
	}, got)

	ctor := methods[0]
	require.Equal(t, DeclConstructor, ctor.DeclKind())
	require.Nil(t, ctor.ReturnType())
	require.Same(t, td, ctor.Containing())

	find := methods[1]
	require.True(t, find.IsAbstract())
	require.Nil(t, find.Body())
	var throws []string
	for _, ref := range find.Throws() {
		throws = append(throws, ref.ReferenceName())
	}
	require.Equal(t, []string{"IOException", "SQLException"}, throws)

	keys := methods[2]
	require.True(t, keys.IsStatic())
	require.Len(t, keys.TypeParameters(), 1)
	require.Equal(t, "K", keys.TypeParameters()[0].Name())
	require.Equal(t, 1, keys.Parameters()[1].Type().ArrayDepth())
	require.Equal(t, []string{"K"}, refNames(keys.ReturnType().TypeArguments()))

	save := methods[3]
	require.False(t, save.IsAbstract())
	params := save.Parameters()
	require.Len(t, params, 2)
	require.Nil(t, params[0].Type())
	require.Equal(t, "false", params[1].Initializer().TokenLiteral())
	require.Equal(t, DeclParameter, params[1].DeclKind())
}

func refNames(refs []*TypeRef) []string {
	var names []string
	for _, ref := range refs {
		names = append(names, ref.ReferenceName())
	}
	return names
}

func TestTypeRefPrimitive(t *testing.T) {
	td := firstType(t, "class C {\n  int[][] grid\n  String name\n}")
	grid := td.FindField("grid").Type()
	require.True(t, grid.IsPrimitive())
	require.Equal(t, 2, grid.ArrayDepth())
	require.Equal(t, "int[][]", grid.Text())

	name := td.FindField("name").Type()
	require.False(t, name.IsPrimitive())
	require.False(t, name.IsQualified())
	require.Equal(t, 0, name.ArrayDepth())
}

func TestImplicitClosureParameter(t *testing.T) {
	root := parse(t, "[1, 2].each { println it }")
	var closure *parser.Node
	root.Walk(func(n *parser.Node) bool {
		if n.Kind == parser.KindClosure {
			closure = n
			return false
		}
		return true
	})
	require.NotNil(t, closure)

	it := ImplicitParameter(closure)
	require.Equal(t, "it", it.Name())
	require.True(t, it.IsImplicit())
	require.Nil(t, it.NameIdentifier())
	require.Nil(t, it.Type())
	require.Equal(t, "def it", it.String())
	require.Equal(t, DeclParameter, it.DeclKind())
}
