package jsonschema

import (
	"github.com/valyala/fastjson"
)

// Type names one of the primitive kinds a "type" keyword may allow.
type Type int

const (
	TypeNull Type = iota + 1
	TypeBoolean
	TypeObject
	TypeArray
	TypeNumber
	TypeInteger
	TypeString
)

func TypeFromString(s string) (Type, bool) {
	switch s {
	case "null":
		return TypeNull, true
	case "boolean":
		return TypeBoolean, true
	case "object":
		return TypeObject, true
	case "array":
		return TypeArray, true
	case "number":
		return TypeNumber, true
	case "integer":
		return TypeInteger, true
	case "string":
		return TypeString, true
	}
	return 0, false
}

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeString:
		return "string"
	}
	return "unknown"
}

// Node is one compiled schema: either a boolean literal or a record of
// optional keywords. Nodes are built once by the parser and never mutated
// afterwards, so they are safe to share across concurrent validations.
type Node struct {
	// Bool is set for the boolean literal schemas true and false. A node
	// with Bool set carries no other keywords.
	Bool *bool

	// Base is the absolute resolution base in effect at this node. ID holds
	// the $id literal as written, empty when the node declared none.
	Base        string
	ID          string
	Anchor      string
	Title       string
	Description string

	Types []Type
	Enum  []*fastjson.Value
	Const *fastjson.Value

	MultipleOf       *float64
	Minimum          *float64
	ExclusiveMinimum bool
	Maximum          *float64
	ExclusiveMaximum bool

	MinLength *int
	MaxLength *int
	Pattern   Regexp

	// Items holds the single-schema form, TupleItems the positional form.
	// At most one of the two is set.
	Items           *Node
	TupleItems      []*Node
	AdditionalItems *Node
	MinItems        *int
	MaxItems        *int
	UniqueItems     bool
	Contains        *Node

	Properties           []Property
	PatternProperties    []PatternProperty
	AdditionalProperties *Node
	Required             []string
	MinProperties        *int
	MaxProperties        *int
	Dependencies         []Dependency
	PropertyNames        *Node

	AllOf []*Node
	AnyOf []*Node
	OneOf []*Node
	Not   *Node

	Ref *Ref

	// Definitions carry no constraints of their own; they exist to be
	// referenced.
	Definitions []Property

	// Extra preserves keywords this package does not know about. They have
	// no validation semantics but survive ToValue round trips.
	Extra []Extra

	ptr string
}

// Pointer is the canonical JSON Pointer of this node from its document root.
func (n *Node) Pointer() string {
	return n.ptr
}

type Property struct {
	Name   string
	Schema *Node
}

type PatternProperty struct {
	Source  string
	Pattern Regexp
	Schema  *Node
}

// Dependency is one entry of the "dependencies" keyword. Schema is nil for
// the property-list form, in which case Keys holds the co-required names.
type Dependency struct {
	Name   string
	Keys   []string
	Schema *Node
}

// Ref is a deferred reference. It keeps the base in effect where the $ref
// appeared so the registry can resolve it at validation time; forward and
// cross-document references are legal until then.
type Ref struct {
	Base string
	Ref  string
}

type Extra struct {
	Name  string
	Value *fastjson.Value
}
