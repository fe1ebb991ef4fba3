package format

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/gravel/groovy/parser"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node *parser.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToData(node), "", "  ")
}

type ASTYAMLEncoder struct {
	w io.Writer
}

func NewASTYAMLEncoder(w io.Writer) *ASTYAMLEncoder {
	return &ASTYAMLEncoder{w: w}
}

func (e *ASTYAMLEncoder) Encode(node *parser.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTYAMLEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	return yaml.Marshal(nodeToData(node))
}

type astNode struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Span     *astSpan   `json:"span,omitempty" yaml:"span,omitempty"`
	Token    string     `json:"token,omitempty" yaml:"token,omitempty"`
	Error    *astError  `json:"error,omitempty" yaml:"error,omitempty"`
	Children []*astNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type astSpan struct {
	Start astPosition `json:"start" yaml:"start"`
	End   astPosition `json:"end" yaml:"end"`
}

type astPosition struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

type astError struct {
	Message  string   `json:"message" yaml:"message"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Got      string   `json:"got,omitempty" yaml:"got,omitempty"`
}

func nodeToData(n *parser.Node) *astNode {
	an := &astNode{Kind: n.Kind.String()}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		an.Span = &astSpan{
			Start: astPosition{Line: n.Span.Start.Line, Column: n.Span.Start.Column},
			End:   astPosition{Line: n.Span.End.Line, Column: n.Span.End.Column},
		}
	}

	if n.Token != nil {
		an.Token = n.Token.Literal
	}

	if n.Error != nil {
		an.Error = &astError{Message: n.Error.Message}
		for _, exp := range n.Error.Expected {
			an.Error.Expected = append(an.Error.Expected, exp.String())
		}
		if n.Error.Got != nil {
			an.Error.Got = n.Error.Got.Literal
		}
	}

	for _, child := range n.Children {
		an.Children = append(an.Children, nodeToData(child))
	}
	return an
}
