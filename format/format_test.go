package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

const source = `package shop

class Cart<T> extends Base implements Serializable {
    static int limit
    private List<T> items

    Cart() {}
    T first() { items[0] }
}
`

func parseTypes(t *testing.T, src string) []*groovy.TypeDefinition {
	t.Helper()
	root := parser.Parse([]byte(src))
	if errs := parser.Errors(root); len(errs) > 0 {
		t.Fatalf("unexpected syntax errors: %v", errs[0].Error.Message)
	}
	return groovy.TypeDefinitions(root)
}

func resolveBase(ref *groovy.TypeRef) *groovy.TypeDefinition {
	if ref.SimpleName() != "Base" {
		return nil
	}
	return groovy.TypeDefinitions(parser.Parse([]byte("package shop.core\nclass Base {}")))[0]
}

func TestSummarize(t *testing.T) {
	cart := parseTypes(t, source)[0]
	got := Summarize(cart, resolveBase)

	if got.QualifiedName != "shop.Cart" {
		t.Errorf("QualifiedName = %q, want %q", got.QualifiedName, "shop.Cart")
	}
	if got.Kind != "class" || got.Visibility != "default" {
		t.Errorf("Kind, Visibility = %q, %q, want class, default", got.Kind, got.Visibility)
	}
	if len(got.TypeParameters) != 1 || got.TypeParameters[0] != "T" {
		t.Errorf("TypeParameters = %v, want [T]", got.TypeParameters)
	}

	wantSupers := []Supertype{
		{Name: "Base", Resolved: "shop.core.Base"},
		{Name: "Serializable"},
	}
	if len(got.Supertypes) != len(wantSupers) {
		t.Fatalf("Supertypes = %v, want %v", got.Supertypes, wantSupers)
	}
	for i, want := range wantSupers {
		if got.Supertypes[i] != want {
			t.Errorf("Supertypes[%d] = %+v, want %+v", i, got.Supertypes[i], want)
		}
	}

	wantFields := []Field{
		{Name: "limit", Type: "int", Visibility: "default", Static: true},
		{Name: "items", Type: "List<T>", Visibility: "private"},
	}
	for i, want := range wantFields {
		if got.Fields[i] != want {
			t.Errorf("Fields[%d] = %+v, want %+v", i, got.Fields[i], want)
		}
	}

	if len(got.Methods) != 2 {
		t.Fatalf("Methods = %d, want 2", len(got.Methods))
	}
	if !got.Methods[0].Constructor || got.Methods[0].Signature != "Cart()" {
		t.Errorf("Methods[0] = %+v, want constructor Cart()", got.Methods[0])
	}
	if got.Methods[1].Signature != "T first()" {
		t.Errorf("Methods[1].Signature = %q, want %q", got.Methods[1].Signature, "T first()")
	}
}

func TestSummarizeImplicitRoot(t *testing.T) {
	got := Summarize(parseTypes(t, "class Plain {}")[0], nil)
	if len(got.Supertypes) != 1 || !got.Supertypes[0].Implicit || got.Supertypes[0].Name != "java.lang.Object" {
		t.Errorf("Supertypes = %+v, want implicit java.lang.Object", got.Supertypes)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf, resolveBase).Encode(parseTypes(t, source)[0]); err != nil {
		t.Fatal(err)
	}
	var decoded Type
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Supertypes[0].Resolved != "shop.core.Base" {
		t.Errorf("resolved = %q", decoded.Supertypes[0].Resolved)
	}
	if !strings.Contains(buf.String(), `"qualifiedName": "shop.Cart"`) {
		t.Errorf("missing qualifiedName in\n%s", buf.String())
	}
}

func TestYAMLEncoderSeparatesDocuments(t *testing.T) {
	var buf bytes.Buffer
	enc := NewYAMLEncoder(&buf, nil)
	for _, td := range parseTypes(t, "class A {}\ninterface B {}\n") {
		if err := enc.Encode(td); err != nil {
			t.Fatal(err)
		}
	}

	dec := yaml.NewDecoder(&buf)
	var names []string
	for {
		var doc Type
		if err := dec.Decode(&doc); err != nil {
			break
		}
		names = append(names, doc.Kind+" "+doc.Name)
	}
	if strings.Join(names, ",") != "class A,interface B" {
		t.Errorf("documents = %v", names)
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf, resolveBase).Encode(parseTypes(t, source)[0]); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"class\tshop.Cart\tdefault",
		"super\tBase\tshop.core.Base\tdeclared",
		"super\tSerializable\t-\tdeclared",
		"field\tlimit\tint\tdefault\tstatic",
		"field\titems\tList<T>\tprivate\t-",
		"constructor\tCart\tCart()\tdefault\t-",
		"method\tfirst\tT first()\tdefault\t-",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"json", "yaml", "line"} {
		if _, ok := New(name, &bytes.Buffer{}, nil); !ok {
			t.Errorf("New(%q) not found", name)
		}
	}
	if _, ok := New("xml", &bytes.Buffer{}, nil); ok {
		t.Error("New(xml) should not exist")
	}
}

func TestASTEncoders(t *testing.T) {
	root := parser.Parse([]byte("class A { def x }"))

	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf).Encode(root); err != nil {
		t.Fatal(err)
	}
	var node astNode
	if err := json.Unmarshal(buf.Bytes(), &node); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if node.Kind != root.Kind.String() || len(node.Children) != len(root.Children) {
		t.Errorf("root = %s with %d children", node.Kind, len(node.Children))
	}

	buf.Reset()
	if err := NewASTYAMLEncoder(&buf).Encode(root); err != nil {
		t.Fatal(err)
	}
	var ynode astNode
	if err := yaml.Unmarshal(buf.Bytes(), &ynode); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if ynode.Kind != node.Kind || ynode.Span == nil {
		t.Errorf("yaml root = %+v", ynode)
	}
}

func TestASTEncoderReportsErrors(t *testing.T) {
	root := parser.Parse([]byte("class {"))
	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf).Encode(root); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"error"`) {
		t.Errorf("no error node in\n%s", buf.String())
	}
}
