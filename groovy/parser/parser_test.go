package parser

import (
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) *Node {
	t.Helper()
	p := ParseCompilationUnit(strings.NewReader(src), WithFile("test.groovy"))
	node := p.Finish()
	if node == nil {
		t.Fatalf("Finish() = nil for %q", src)
	}
	return node
}

func requireNoErrors(t *testing.T, root *Node) {
	t.Helper()
	for _, e := range Errors(root) {
		t.Errorf("unexpected error at %s: %s", e.Span.Start, e.Error.Message)
	}
}

func childKinds(n *Node) []NodeKind {
	kinds := make([]NodeKind, len(n.Children))
	for i, child := range n.Children {
		kinds[i] = child.Kind
	}
	return kinds
}

func assertKinds(t *testing.T, n *Node, want ...NodeKind) {
	t.Helper()
	got := childKinds(n)
	if len(got) != len(want) {
		t.Fatalf("%s children = %v, want %v", n.Kind, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s child %d = %v, want %v", n.Kind, i, got[i], want[i])
		}
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"42", KindLiteral},
		{"'text'", KindLiteral},
		{"x", KindIdentifier},
		{"x + y", KindBinaryExpr},
		{"x * y + z", KindBinaryExpr},
		{"-x", KindUnaryExpr},
		{"!x", KindUnaryExpr},
		{"x++", KindPostfixExpr},
		{"a ? b : c", KindTernaryExpr},
		{"a ?: b", KindElvisExpr},
		{"x = 5", KindAssignExpr},
		{"x += 5", KindAssignExpr},
		{"(x)", KindParenExpr},
		{"(String) x", KindCastExpr},
		{"obj.field", KindFieldAccess},
		{"obj?.field", KindFieldAccess},
		{"obj.method()", KindCallExpr},
		{"list.each { println it }", KindCallExpr},
		{"list.inject(0) { acc, x -> acc + x }", KindCallExpr},
		{"xs[0]", KindIndexExpr},
		{"new Foo(1, 2)", KindNewExpr},
		{"new int[3]", KindNewExpr},
		{"[1, 2, 3]", KindListExpr},
		{"[a: 1, b: 2]", KindMapExpr},
		{"[:]", KindMapExpr},
		{"{ a, b -> a + b }", KindClosure},
		{"x instanceof String", KindBinaryExpr},
		{"x as List", KindBinaryExpr},
		{"1..10", KindBinaryExpr},
		{"this", KindThis},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := ParseExpression(strings.NewReader(tt.input)).Finish()
			if node == nil {
				t.Fatal("Finish() = nil")
			}
			if node.Kind != tt.kind {
				t.Errorf("kind = %v, want %v\n%s", node.Kind, tt.kind, node)
			}
			requireNoErrors(t, node)
		})
	}
}

func TestParseClassDeclaration(t *testing.T) {
	root := parseSource(t, `package com.example

import java.util.List
import static java.lang.Math.max
import groovy.transform.*
import java.util.concurrent.ConcurrentHashMap as CHM

class Person extends Base implements Named, Comparable<Person> {
    String name
    def age = 0
    private static final int LIMIT = 10

    Person(String name) {
        this.name = name
    }

    String greet(String other = "you") {
        return "hello $other"
    }

    def <T> T pick(List<T> xs) { xs[0] }
}
`)
	requireNoErrors(t, root)

	assertKinds(t, root,
		KindPackageDecl, KindImportDecl, KindImportDecl, KindImportDecl, KindImportDecl, KindClassDecl)

	if got := root.Children[0].FirstChildOfKind(KindQualifiedName).Text(); got != "com.example" {
		t.Errorf("package = %q, want %q", got, "com.example")
	}

	static := root.Children[2]
	assertKinds(t, static, KindIdentifier, KindQualifiedName)
	star := root.Children[3]
	assertKinds(t, star, KindQualifiedName, KindIdentifier)
	if star.Children[1].TokenLiteral() != "*" {
		t.Errorf("star import marker = %q", star.Children[1].TokenLiteral())
	}
	alias := root.Children[4]
	assertKinds(t, alias, KindQualifiedName, KindIdentifier)
	if alias.Children[1].TokenLiteral() != "CHM" {
		t.Errorf("alias = %q, want CHM", alias.Children[1].TokenLiteral())
	}

	class := root.Children[5]
	assertKinds(t, class, KindModifiers, KindIdentifier, KindExtendsClause, KindImplementsClause, KindClassBody)
	if got := class.FirstChildOfKind(KindIdentifier).TokenLiteral(); got != "Person" {
		t.Errorf("class name = %q, want Person", got)
	}

	impl := class.FirstChildOfKind(KindImplementsClause)
	var names []string
	for _, typ := range impl.ChildrenOfKind(KindType) {
		names = append(names, typ.Text())
	}
	if strings.Join(names, ",") != "Named,Comparable<Person>" {
		t.Errorf("implements = %v", names)
	}

	body := class.FirstChildOfKind(KindClassBody)
	assertKinds(t, body, KindFieldDecl, KindFieldDecl, KindFieldDecl, KindConstructorDecl, KindMethodDecl, KindMethodDecl)

	untyped := body.Children[1]
	assertKinds(t, untyped, KindModifiers, KindVariable)

	greet := body.Children[4]
	assertKinds(t, greet, KindModifiers, KindType, KindIdentifier, KindParameters, KindBlock)
	param := greet.FirstChildOfKind(KindParameters).Children[0]
	assertKinds(t, param, KindType, KindIdentifier, KindLiteral)

	generic := body.Children[5]
	assertKinds(t, generic, KindModifiers, KindTypeParameters, KindType, KindIdentifier, KindParameters, KindBlock)
}

func TestParseTypeDefinitionKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind NodeKind
	}{
		{"class A {}", KindClassDecl},
		{"interface I extends J, K {}", KindInterfaceDecl},
		{"trait T { def hello() { 'hi' } }", KindTraitDecl},
		{"enum Color { RED, GREEN, BLUE }", KindEnumDecl},
		{"@interface Marker {}", KindAnnotationDecl},
		{"abstract class Shape<T extends Number> {}", KindClassDecl},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := parseSource(t, tt.src)
			requireNoErrors(t, root)
			if len(root.Children) != 1 {
				t.Fatalf("got %d top-level nodes, want 1\n%s", len(root.Children), root)
			}
			if root.Children[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", root.Children[0].Kind, tt.kind)
			}
			if !tt.kind.IsTypeDecl() {
				t.Errorf("%v.IsTypeDecl() = false", tt.kind)
			}
		})
	}
}

func TestParseEnumBody(t *testing.T) {
	root := parseSource(t, `enum Planet {
    MERCURY(3.3e23),
    VENUS(4.8e24)

    final double mass

    Planet(double mass) { this.mass = mass }
}`)
	requireNoErrors(t, root)

	body := root.Children[0].FirstChildOfKind(KindClassBody)
	assertKinds(t, body, KindEnumConstant, KindEnumConstant, KindFieldDecl, KindConstructorDecl)
}

func TestParseScript(t *testing.T) {
	root := parseSource(t, `#!/usr/bin/env groovy
def greet(name) {
    println "hello $name"
}

def names = ['a', 'b']
for (n in names) {
    greet n
}
String label = "done"
println label
`)
	requireNoErrors(t, root)
	assertKinds(t, root, KindMethodDecl, KindLocalVarDecl, KindForInStmt, KindLocalVarDecl, KindExprStmt)

	forIn := root.Children[2]
	assertKinds(t, forIn, KindParameter, KindIdentifier, KindBlock)

	call := root.Children[4].Children[0]
	if call.Kind != KindCallExpr {
		t.Fatalf("command expression kind = %v, want CallExpr", call.Kind)
	}
	assertKinds(t, call, KindIdentifier, KindArguments)
}

func TestParseNewlineTerminatesStatements(t *testing.T) {
	root := parseSource(t, `def a = 1
def b = a
+ 2
foo(a)
(b)`)
	requireNoErrors(t, root)
	assertKinds(t, root, KindLocalVarDecl, KindLocalVarDecl, KindExprStmt, KindExprStmt, KindExprStmt)
}

func TestParseParenthesesJoinLines(t *testing.T) {
	root := parseSource(t, `def total = sum(1,
    2,
    3)`)
	requireNoErrors(t, root)
	assertKinds(t, root, KindLocalVarDecl)
	call := root.Children[0].FirstChildOfKind(KindVariable).Children[1]
	if call.Kind != KindCallExpr {
		t.Fatalf("initializer kind = %v, want CallExpr", call.Kind)
	}
	if n := len(call.FirstChildOfKind(KindArguments).Children); n != 3 {
		t.Errorf("got %d arguments, want 3", n)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		src  string
		kind NodeKind
	}{
		{"if (a) { b() } else { c() }", KindIfStmt},
		{"while (x < 10) x++", KindWhileStmt},
		{"for (int i = 0; i < 10; i++) {}", KindForStmt},
		{"for (String s : xs) {}", KindForInStmt},
		{"for (def s in xs) {}", KindForInStmt},
		{"try { f() } catch (IOException | RuntimeException e) { } finally { g() }", KindTryStmt},
		{"throw new RuntimeException('x')", KindThrowStmt},
		{"List<String> xs = []", KindLocalVarDecl},
		{"int[] xs = new int[2]", KindLocalVarDecl},
		{"final x = 1, y = 2", KindLocalVarDecl},
		{"x.y.z()", KindExprStmt},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := parseSource(t, tt.src)
			requireNoErrors(t, root)
			if len(root.Children) != 1 {
				t.Fatalf("got %d statements, want 1\n%s", len(root.Children), root)
			}
			if root.Children[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v\n%s", root.Children[0].Kind, tt.kind, root)
			}
		})
	}
}

func TestParseClosureParameters(t *testing.T) {
	tests := []struct {
		src    string
		params int
	}{
		{"{ -> 1 }", 0},
		{"{ x -> x }", 1},
		{"{ String a, int b -> a * b }", 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			closure := ParseExpression(strings.NewReader(tt.src)).Finish()
			requireNoErrors(t, closure)
			params := closure.FirstChildOfKind(KindParameters)
			if params == nil {
				t.Fatalf("no Parameters node\n%s", closure)
			}
			if len(params.Children) != tt.params {
				t.Errorf("got %d parameters, want %d", len(params.Children), tt.params)
			}
			if closure.FirstChildOfKind(KindBlock) == nil {
				t.Error("closure has no body block")
			}
		})
	}

	implicit := ParseExpression(strings.NewReader("{ println it }")).Finish()
	if implicit.FirstChildOfKind(KindParameters) != nil {
		t.Error("closure without arrow has explicit parameters")
	}
}

func TestParseRecoversFromErrors(t *testing.T) {
	root := parseSource(t, `class A {
    def ok() { 1 }
    = broken
    def alsoOk() { 2 }
}`)

	if len(Errors(root)) == 0 {
		t.Fatal("expected at least one error node")
	}

	body := root.Children[0].FirstChildOfKind(KindClassBody)
	var methods []string
	for _, m := range body.ChildrenOfKind(KindMethodDecl) {
		methods = append(methods, m.FirstChildOfKind(KindIdentifier).TokenLiteral())
	}
	if strings.Join(methods, ",") != "ok,alsoOk" {
		t.Errorf("methods = %v, want [ok alsoOk]", methods)
	}
}

func TestParseEmptyInput(t *testing.T) {
	root := parseSource(t, "")
	if root.Kind != KindCompilationUnit {
		t.Errorf("kind = %v, want CompilationUnit", root.Kind)
	}
	if len(root.Children) != 0 {
		t.Errorf("got %d children, want 0", len(root.Children))
	}
}

func TestParseSpans(t *testing.T) {
	root := parseSource(t, "class A {\n  public void run() {\n  }\n}")
	method := root.Children[0].FirstChildOfKind(KindClassBody).Children[0]

	if method.Span.Start.Line != 2 || method.Span.Start.Column != 3 {
		t.Errorf("method starts at %s, want 2:3", method.Span.Start)
	}
	if method.Span.End.Line != 3 || method.Span.End.Column != 4 {
		t.Errorf("method ends at %s, want 3:4", method.Span.End)
	}
}
