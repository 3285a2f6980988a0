package jsonschema

import (
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Violation is one reported non-conformance. A validation run returns the
// complete ordered list of them; an empty list means the instance conforms.
type Violation struct {
	// InstancePath locates the offending value: object keys and decimal
	// array indices from the instance root.
	InstancePath []string
	// SchemaPath is the keyword trail from the schema root, following
	// $ref hops.
	SchemaPath []string
	Keyword    string
	Message    string
}

// InstanceLocation renders the instance path as a JSON Pointer.
func (v Violation) InstanceLocation() string {
	return pointerString(v.InstancePath)
}

// SchemaLocation renders the schema path as a JSON Pointer.
func (v Violation) SchemaLocation() string {
	return pointerString(v.SchemaPath)
}

func (v Violation) String() string {
	loc := v.InstanceLocation()
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + v.Message + " (" + v.Keyword + ")"
}

func pointerString(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(s))
	}
	return b.String()
}
