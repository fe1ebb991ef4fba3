package groovy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gravel/groovy/parser"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	root := parser.Parse([]byte(src), parser.WithFile("Test.groovy"))
	require.NotNil(t, root)
	require.Empty(t, parser.Errors(root), "parse errors in:\n%s", root)
	return root
}

func firstType(t *testing.T, src string) *TypeDefinition {
	t.Helper()
	defs := TypeDefinitions(parse(t, src))
	require.NotEmpty(t, defs)
	return defs[0]
}

func superNames(td *TypeDefinition) []string {
	var names []string
	for _, ref := range td.SuperTypes() {
		names = append(names, ref.ReferenceName())
	}
	return names
}

func TestSuperTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"class without supertypes", "class C {}", []string{"java.lang.Object"}},
		{"interface without extends", "interface I {}", nil},
		{"class with extends and implements", "class C extends E implements I1, I2 {}", []string{"E", "I1", "I2"}},
		{"class with only implements", "class C implements Runnable {}", []string{"java.lang.Object", "Runnable"}},
		{"interface with extends", "interface I extends J {}", []string{"J"}},
		{"interface extending several", "interface I extends J, K {}", []string{"J"}},
		{"qualified and generic references", "class C extends java.util.AbstractList<String> implements Comparable<C> {}", []string{"java.util.AbstractList", "Comparable"}},
		{"enum", "enum E implements I { A }", []string{"java.lang.Object", "I"}},
		{"enum without implements", "enum E { X }", []string{"java.lang.Object"}},
		{"trait", "trait T {}", nil},
		{"trait with extends", "trait T extends U {}", []string{"U"}},
		{"annotation type", "@interface A {}", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := firstType(t, tt.src)
			require.Equal(t, tt.want, superNames(td))
		})
	}
}

func TestSuperTypesCount(t *testing.T) {
	sources := []string{
		"class C {}",
		"class C extends B {}",
		"class C implements I, J, K {}",
		"class C extends B implements I {}",
		"interface I {}",
		"interface I extends J {}",
		"interface I extends J, K {}",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			td := firstType(t, src)
			want := len(td.ImplementsRefs())
			if !td.IsInterface() || td.ExtendsRef() != nil {
				want++
			}
			require.Len(t, td.SuperTypes(), want)
		})
	}
}

func TestSuperTypesImplicitRoot(t *testing.T) {
	td := firstType(t, "class C implements I {}")
	supers := td.SuperTypes()
	require.Len(t, supers, 2)

	root := supers[0]
	require.True(t, root.IsImplicit())
	require.Nil(t, root.Node())
	require.Same(t, td.Node(), root.Context())
	require.Equal(t, "Object", root.SimpleName())

	explicit := supers[1]
	require.False(t, explicit.IsImplicit())
	require.NotNil(t, explicit.Node())
}

func TestSuperTypesIdempotent(t *testing.T) {
	td := firstType(t, "class C extends E implements I1, I2 {}")

	first := superNames(td)
	second := superNames(td)
	require.Equal(t, first, second)

	// Each call builds a fresh slice.
	a, b := td.SuperTypes(), td.SuperTypes()
	a[0] = nil
	require.NotNil(t, b[0])
	require.False(t, td.IsCached(), "SuperTypes populated the member cache")
}

func TestSuperTypesFollowEdits(t *testing.T) {
	root := parse(t, "class C extends E implements I {}")
	td := TypeDefinitions(root)[0]
	require.Equal(t, []string{"E", "I"}, superNames(td))

	td.Node().RemoveChild(td.Node().FirstChildOfKind(parser.KindExtendsClause))
	require.Equal(t, []string{"java.lang.Object", "I"}, superNames(td))
}

func TestDefinitionOfSharesModel(t *testing.T) {
	root := parse(t, "class C {}")
	node := root.Children[0]

	require.Same(t, DefinitionOf(node), DefinitionOf(node))
	require.Nil(t, DefinitionOf(root))
	require.Nil(t, DefinitionOf(nil))
}

func TestMethodsCache(t *testing.T) {
	root := parse(t, `class C {
    C() {}
    C(int x) {}
    void run() {}
    def helper(a, b) { a + b }
}`)
	td := TypeDefinitions(root)[0]
	require.False(t, td.IsCached())

	methods := td.Methods()
	require.Len(t, methods, 4)
	require.True(t, td.IsCached())

	again := td.Methods()
	require.Same(t, methods[0], again[0], "Methods recomputed without an edit")

	constructors := td.Constructors()
	require.Len(t, constructors, 2)
	for _, c := range constructors {
		require.True(t, c.IsConstructor())
		require.Contains(t, methods, c)
	}
}

func TestConstructorsSubsetOfMethods(t *testing.T) {
	sources := []string{
		"class A {}",
		"class A { A() {} }",
		"class A { void m() {}; A(int x) {}; static A of() { new A(1) } }",
		"interface I { void m() }",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			td := firstType(t, src)
			methods := td.Methods()
			for _, c := range td.Constructors() {
				require.Contains(t, methods, c)
			}
		})
	}
}

func TestMethodsInvalidatedBySubtreeChange(t *testing.T) {
	root := parse(t, "class C {\n  void a() {}\n}")
	td := TypeDefinitions(root)[0]
	require.Len(t, td.Methods(), 1)

	added := parser.Parse([]byte("class X {\n  void b() {}\n  X() {}\n}"))
	xBody := added.Children[0].FirstChildOfKind(parser.KindClassBody)
	newMethod := xBody.Children[0]
	newCtor := xBody.Children[1]

	body := td.Body()
	body.InsertChild(len(body.Children), newMethod)
	require.False(t, td.IsCached(), "edit did not invalidate the cache")

	names := []string{}
	for _, m := range td.Methods() {
		names = append(names, m.Name())
	}
	require.Equal(t, []string{"a", "b"}, names)
	require.Empty(t, td.Constructors())

	body.InsertChild(0, newCtor)
	require.Len(t, td.Constructors(), 1)
	require.Len(t, td.Methods(), 3)
}

func TestMovingMethodInvalidatesBothTypes(t *testing.T) {
	root := parse(t, "class A { void m() {} }\nclass B {}\n")
	defs := TypeDefinitions(root)
	a, b := defs[0], defs[1]
	require.Len(t, a.Methods(), 1)
	require.Empty(t, b.Methods())

	m := a.Methods()[0].Node()
	b.Body().InsertChild(0, m)

	require.False(t, a.IsCached(), "source type kept its cache")
	require.Empty(t, a.Methods())
	require.Empty(t, a.Constructors())
	require.Len(t, b.Methods(), 1)
	require.Equal(t, "m", b.Methods()[0].Name())
}

func TestDeepEditInvalidatesCache(t *testing.T) {
	root := parse(t, "class C {\n  void a() {\n  }\n}")
	td := TypeDefinitions(root)[0]
	td.Methods()
	require.True(t, td.IsCached())

	block := td.Methods()[0].Body()
	block.InsertChild(0, &parser.Node{Kind: parser.KindEmptyStmt})
	require.False(t, td.IsCached())
}

func TestSubtreeChangedDoesNotRecompute(t *testing.T) {
	td := firstType(t, "class C { void a() {} }")
	td.Methods()
	td.SubtreeChanged()
	require.False(t, td.IsCached())
}

func TestMissingBody(t *testing.T) {
	node := &parser.Node{Kind: parser.KindClassDecl}
	node.AddChild(&parser.Node{Kind: parser.KindIdentifier, Token: &parser.Token{Kind: parser.TokenIdent, Literal: "Bare"}})
	td := DefinitionOf(node)

	require.Empty(t, td.Methods())
	require.Empty(t, td.Constructors())
	require.Empty(t, td.Fields())
	require.Nil(t, td.Statements())
	require.Equal(t, []string{"java.lang.Object"}, superNames(td))
}

func TestQualifiedName(t *testing.T) {
	root := parse(t, `package com.example

class Outer {
    static class Inner {
        interface Deepest {}
    }
    void m() {
        class Local {}
    }
}

class Other {}
`)
	defs := AllTypeDefinitions(root)
	got := map[string]string{}
	for _, td := range defs {
		got[td.Name()] = td.QualifiedName()
	}

	require.Equal(t, map[string]string{
		"Outer":   "com.example.Outer",
		"Inner":   "com.example.Outer.Inner",
		"Deepest": "com.example.Outer.Inner.Deepest",
		"Local":   "",
		"Other":   "com.example.Other",
	}, got)

	noPackage := firstType(t, "class Plain {}")
	require.Equal(t, "Plain", noPackage.QualifiedName())
}

func TestTypeDefinitionMembers(t *testing.T) {
	td := firstType(t, `class Box<T extends Number, U> {
    T value
    def a = 1, b = 2
    static final String LABEL = "box"
    class Lid {}
    enum Size { SMALL, LARGE }
    Box(T value) { this.value = value }
}`)

	var params []string
	for _, tp := range td.TypeParameters() {
		params = append(params, tp.Name())
	}
	require.Equal(t, []string{"T", "U"}, params)
	require.Equal(t, "Number", td.TypeParameters()[0].Bounds()[0].ReferenceName())

	var fields []string
	for _, f := range td.Fields() {
		fields = append(fields, f.String())
	}
	require.Equal(t, []string{"T value", "def a", "def b", "String LABEL"}, fields)
	require.True(t, td.FindField("LABEL").IsStatic())
	require.Nil(t, td.FindField("missing"))

	var inner []string
	for _, it := range td.InnerTypes() {
		inner = append(inner, it.String())
	}
	require.Equal(t, []string{"class Box.Lid", "enum Box.Size"}, inner)

	size := td.InnerTypes()[1]
	require.True(t, size.IsEnum())
	require.Len(t, size.Fields(), 2)
	require.Equal(t, "Size", size.Fields()[0].Type().ReferenceName())
	require.Equal(t, DeclField, size.Fields()[0].DeclKind())
}

func TestNameAndOffset(t *testing.T) {
	root := parse(t, "abstract class Shape {}")
	td := TypeDefinitions(root)[0]

	require.Equal(t, "Shape", td.Name())
	require.Equal(t, 15, td.TextOffset())
	require.Same(t, td.Node().FirstChildOfKind(parser.KindIdentifier), td.NameIdentifier())
	require.True(t, td.IsAbstract())
	require.Equal(t, TypeKindClass, td.Kind())
}

func TestSetNameUnsupported(t *testing.T) {
	td := firstType(t, "class C {}")
	err := td.SetName("D")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupported))
	require.Equal(t, "C", td.Name())
}
