// Package format renders syntax trees and type definitions for the command
// line, as JSON, YAML or tab separated lines.
package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/gravel/groovy"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(td *groovy.TypeDefinition) error
}

// Resolver maps a supertype reference to its definition, or nil.
type Resolver func(ref *groovy.TypeRef) *groovy.TypeDefinition

// New returns the type encoder registered under name: "json", "yaml" or
// "line".
func New(name string, w io.Writer, resolve Resolver) (Encoder, bool) {
	switch name {
	case "json":
		return NewJSONEncoder(w, resolve), true
	case "yaml":
		return NewYAMLEncoder(w, resolve), true
	case "line":
		return NewLineEncoder(w, resolve), true
	}
	return nil, false
}
