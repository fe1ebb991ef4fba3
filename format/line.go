package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/gravel/groovy"
)

// LineEncoder writes one tab separated line per type, supertype, field
// and method, for use with grep and cut.
type LineEncoder struct {
	w       io.Writer
	resolve Resolver
	td      *groovy.TypeDefinition
}

func NewLineEncoder(w io.Writer, resolve Resolver) *LineEncoder {
	return &LineEncoder{w: w, resolve: resolve}
}

func (e *LineEncoder) Encode(td *groovy.TypeDefinition) error {
	e.td = td
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	t := Summarize(e.td, e.resolve)
	name := t.QualifiedName
	if name == "" {
		name = t.Name
	}

	fmt.Fprintf(&sb, "%s\t%s\t%s\n", t.Kind, name, t.Visibility)

	for _, st := range t.Supertypes {
		fmt.Fprintf(&sb, "super\t%s\t%s\t%s\n", st.Name, orDash(st.Resolved), supertypeOrigin(st))
	}

	for _, f := range t.Fields {
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n", f.Name, f.Type, f.Visibility, staticStr(f.Static))
	}

	for _, m := range t.Methods {
		kind := "method"
		if m.Constructor {
			kind = "constructor"
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\n", kind, m.Name, m.Signature, m.Visibility, staticStr(m.Static))
	}

	return []byte(sb.String()), nil
}

func supertypeOrigin(st Supertype) string {
	if st.Implicit {
		return "implicit"
	}
	return "declared"
}

func staticStr(static bool) string {
	if static {
		return "static"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
