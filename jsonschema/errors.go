package jsonschema

import (
	"errors"
	"fmt"
)

// SchemaErrorKind discriminates parse-time failures. Any of them aborts
// parsing of the offending document.
type SchemaErrorKind int

const (
	// InvalidSchemaShape means a schema position held a value that is
	// neither an object nor a boolean.
	InvalidSchemaShape SchemaErrorKind = iota + 1
	// InvalidKeyword means a known keyword held a value of the wrong type
	// or shape.
	InvalidKeyword
	// InvalidIdentifier means a malformed $id or base URI.
	InvalidIdentifier
)

type SchemaError struct {
	Kind    SchemaErrorKind
	Keyword string
	// Path is the JSON Pointer from the document root to the offending
	// value.
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	var msg string
	switch e.Kind {
	case InvalidSchemaShape:
		msg = fmt.Sprintf("schema at %q must be an object or boolean", e.Path)
	case InvalidKeyword:
		msg = fmt.Sprintf("invalid value for keyword %q at %q", e.Keyword, e.Path)
	case InvalidIdentifier:
		msg = fmt.Sprintf("invalid identifier at %q", e.Path)
	default:
		msg = fmt.Sprintf("schema error at %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Resolution failures. These surface as violations during validation, not
// as hard errors.
var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrUnknownPointer  = errors.New("unknown pointer or anchor")
	ErrNoRegistry      = errors.New("no registry supplied")

	ErrDuplicateDocument = errors.New("document already registered")
)
