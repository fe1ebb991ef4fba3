package format

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/gravel/groovy"
)

type JSONEncoder struct {
	w       io.Writer
	resolve Resolver
	td      *groovy.TypeDefinition
}

func NewJSONEncoder(w io.Writer, resolve Resolver) *JSONEncoder {
	return &JSONEncoder{w: w, resolve: resolve}
}

func (e *JSONEncoder) Encode(td *groovy.TypeDefinition) error {
	e.td = td
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(Summarize(e.td, e.resolve), "", "  ")
}

type YAMLEncoder struct {
	w       io.Writer
	resolve Resolver
	td      *groovy.TypeDefinition
	encoded int
}

func NewYAMLEncoder(w io.Writer, resolve Resolver) *YAMLEncoder {
	return &YAMLEncoder{w: w, resolve: resolve}
}

// Encode writes td as one YAML document, separated from earlier ones.
func (e *YAMLEncoder) Encode(td *groovy.TypeDefinition) error {
	e.td = td
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if e.encoded > 0 {
		text = append([]byte("---\n"), text...)
	}
	e.encoded++
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(Summarize(e.td, e.resolve))
}

// Type is the rendered summary of a type definition.
type Type struct {
	Name           string      `json:"name" yaml:"name"`
	QualifiedName  string      `json:"qualifiedName,omitempty" yaml:"qualifiedName,omitempty"`
	Kind           string      `json:"kind" yaml:"kind"`
	Visibility     string      `json:"visibility" yaml:"visibility"`
	TypeParameters []string    `json:"typeParameters,omitempty" yaml:"typeParameters,omitempty"`
	Supertypes     []Supertype `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Fields         []Field     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods        []Method    `json:"methods,omitempty" yaml:"methods,omitempty"`
}

type Supertype struct {
	Name     string `json:"name" yaml:"name"`
	Resolved string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Implicit bool   `json:"implicit,omitempty" yaml:"implicit,omitempty"`
}

type Field struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Visibility string `json:"visibility" yaml:"visibility"`
	Static     bool   `json:"static,omitempty" yaml:"static,omitempty"`
}

type Method struct {
	Name        string `json:"name" yaml:"name"`
	Signature   string `json:"signature" yaml:"signature"`
	Visibility  string `json:"visibility" yaml:"visibility"`
	Constructor bool   `json:"constructor,omitempty" yaml:"constructor,omitempty"`
	Static      bool   `json:"static,omitempty" yaml:"static,omitempty"`
}

// Summarize collects what the encoders print about td. Supertypes are
// resolved with resolve when it is not nil.
func Summarize(td *groovy.TypeDefinition, resolve Resolver) Type {
	t := Type{
		Name:          td.Name(),
		QualifiedName: td.QualifiedName(),
		Kind:          string(td.Kind()),
		Visibility:    string(td.Visibility()),
	}
	for _, tp := range td.TypeParameters() {
		t.TypeParameters = append(t.TypeParameters, tp.Name())
	}
	for _, ref := range td.SuperTypes() {
		st := Supertype{Name: ref.Text(), Implicit: ref.IsImplicit()}
		if resolve != nil {
			if def := resolve(ref); def != nil {
				st.Resolved = def.QualifiedName()
			}
		}
		t.Supertypes = append(t.Supertypes, st)
	}
	for _, f := range td.Fields() {
		t.Fields = append(t.Fields, Field{
			Name:       f.Name(),
			Type:       f.TypeText(),
			Visibility: string(f.Visibility()),
			Static:     f.IsStatic(),
		})
	}
	for _, m := range td.Methods() {
		t.Methods = append(t.Methods, Method{
			Name:        m.Name(),
			Signature:   m.String(),
			Visibility:  string(m.Visibility()),
			Constructor: m.IsConstructor(),
			Static:      m.IsStatic(),
		})
	}
	return t
}
