package jsonschema

import "regexp"

// Regexp is the compiled form of a "pattern" or "patternProperties" key.
// Matching uses search-anywhere semantics, not full match.
type Regexp interface {
	MatchString(s string) bool
	String() string
}

// RegexpEngine compiles pattern strings. The engine itself is an external
// collaborator; callers can plug in an ECMA-262 engine by setting
// Parser.Regexp. The default uses the standard library.
type RegexpEngine func(pattern string) (Regexp, error)

func DefaultRegexpEngine(pattern string) (Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re, nil
}
