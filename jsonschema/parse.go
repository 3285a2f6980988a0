package jsonschema

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/go-openapi/jsonpointer"
	"github.com/google/uuid"
	"github.com/valyala/fastjson"
)

// Parser turns raw JSON values into schema documents. The zero value is
// ready to use and compiles patterns with the standard library engine.
type Parser struct {
	Regexp RegexpEngine
}

// Parse compiles a schema value with the default parser. base is the
// resolution base for the document; leave it empty to let the document
// name itself via $id or fall back to a generated urn:uuid identifier.
func Parse(v *fastjson.Value, base string) (*Document, error) {
	return (&Parser{}).Parse(v, base)
}

func ParseBytes(b []byte, base string) (*Document, error) {
	return (&Parser{}).ParseBytes(b, base)
}

func (p *Parser) ParseBytes(b []byte, base string) (*Document, error) {
	var fp fastjson.Parser
	v, err := fp.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("schema is not valid JSON: %w", err)
	}
	return p.Parse(v, base)
}

// Parse compiles a schema value. Subschemas are registered in the document
// as they are encountered, so references to nested schemas resolve no
// matter where they appear textually. The returned document keeps
// references into v.
func (p *Parser) Parse(v *fastjson.Value, base string) (*Document, error) {
	engine := p.Regexp
	if engine == nil {
		engine = DefaultRegexpEngine
	}
	st := &parseState{re: engine}
	root, err := st.parse(v, base, "", "", 0)
	if err != nil {
		return nil, err
	}
	st.doc.Root = root
	return st.doc, nil
}

type parseState struct {
	re  RegexpEngine
	doc *Document
}

// parse compiles the schema value at docPtr. base is the resolution base
// in effect, scopePtr the pointer from the nearest $id scope root.
func (st *parseState) parse(v *fastjson.Value, base, scopePtr, docPtr string, depth int) (*Node, error) {
	switch v.Type() {
	case fastjson.TypeTrue, fastjson.TypeFalse:
		if base == "" {
			base = "urn:uuid:" + uuid.NewString()
		}
		b := v.Type() == fastjson.TypeTrue
		n := &Node{Bool: &b, Base: base, ptr: docPtr}
		st.register(n, base, scopePtr, docPtr, depth)
		return n, nil
	case fastjson.TypeObject:
		// handled below
	default:
		return nil, &SchemaError{Kind: InvalidSchemaShape, Path: docPtr}
	}

	obj, err := v.Object()
	if err != nil {
		return nil, &SchemaError{Kind: InvalidSchemaShape, Path: docPtr, Err: err}
	}

	n := &Node{}

	// $schema is only legal at the document root.
	if sv := v.Get("$schema"); sv != nil {
		if depth > 0 {
			return nil, &SchemaError{Kind: InvalidKeyword, Keyword: "$schema", Path: keyPath(docPtr, "$schema"), Err: errors.New("subschemas must not use $schema")}
		}
		if _, ok := stringValue(sv); !ok {
			return nil, &SchemaError{Kind: InvalidKeyword, Keyword: "$schema", Path: keyPath(docPtr, "$schema")}
		}
	}

	// $id re-bases the subtree, except for the draft-06 fragment-only form
	// which only names an anchor.
	if iv := v.Get("$id"); iv != nil {
		id, ok := stringValue(iv)
		if !ok {
			return nil, &SchemaError{Kind: InvalidKeyword, Keyword: "$id", Path: keyPath(docPtr, "$id")}
		}
		n.ID = id
		u, err := url.Parse(id)
		if err != nil {
			return nil, &SchemaError{Kind: InvalidIdentifier, Path: keyPath(docPtr, "$id"), Err: err}
		}
		if isFragmentOnly(u) {
			n.Anchor = u.Fragment
		} else if id != "" && id != "#" {
			if u.Fragment != "" {
				return nil, &SchemaError{Kind: InvalidIdentifier, Path: keyPath(docPtr, "$id"), Err: errors.New("$id must not carry a fragment")}
			}
			newBase, _, err := splitRef(base, id)
			if err != nil {
				return nil, &SchemaError{Kind: InvalidIdentifier, Path: keyPath(docPtr, "$id"), Err: err}
			}
			base = newBase
			scopePtr = ""
		}
	}
	if av := v.Get("$anchor"); av != nil {
		name, ok := stringValue(av)
		if !ok {
			return nil, &SchemaError{Kind: InvalidKeyword, Keyword: "$anchor", Path: keyPath(docPtr, "$anchor")}
		}
		n.Anchor = name
	}
	if base == "" {
		// Anonymous document; give it an identity so references and
		// violation provenance still work.
		base = "urn:uuid:" + uuid.NewString()
	}

	n.Base = base
	n.ptr = docPtr
	st.register(n, base, scopePtr, docPtr, depth)
	if n.Anchor != "" {
		st.doc.putAnchor(base, n.Anchor, n)
	}

	var visitErr error
	obj.Visit(func(key []byte, kv *fastjson.Value) {
		if visitErr != nil {
			return
		}
		visitErr = st.keyword(n, string(key), kv, base, scopePtr, docPtr, depth)
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return n, nil
}

func (st *parseState) register(n *Node, base, scopePtr, docPtr string, depth int) {
	if depth == 0 {
		st.doc = newDocument(base)
	}
	st.doc.put(base, scopePtr, n)
	if base != st.doc.Base || scopePtr != docPtr {
		st.doc.put(st.doc.Base, docPtr, n)
	}
}

func (st *parseState) keyword(n *Node, key string, v *fastjson.Value, base, scopePtr, docPtr string, depth int) error {
	bad := func() error {
		return &SchemaError{Kind: InvalidKeyword, Keyword: key, Path: keyPath(docPtr, key)}
	}
	badErr := func(err error) error {
		return &SchemaError{Kind: InvalidKeyword, Keyword: key, Path: keyPath(docPtr, key), Err: err}
	}
	sub := func(sv *fastjson.Value, toks ...string) (*Node, error) {
		sp, dp := scopePtr, docPtr
		for _, t := range toks {
			sp, dp = keyPath(sp, t), keyPath(dp, t)
		}
		return st.parse(sv, base, sp, dp, depth+1)
	}
	subList := func(toks ...string) ([]*Node, error) {
		arr, err := v.Array()
		if err != nil || len(arr) == 0 {
			return nil, bad()
		}
		nodes := make([]*Node, len(arr))
		for i, sv := range arr {
			child, err := sub(sv, append(toks, strconv.Itoa(i))...)
			if err != nil {
				return nil, err
			}
			nodes[i] = child
		}
		return nodes, nil
	}

	switch key {
	case "$schema", "$id", "$anchor":
		// handled before the keyword walk

	case "title":
		s, ok := stringValue(v)
		if !ok {
			return bad()
		}
		n.Title = s
	case "description":
		s, ok := stringValue(v)
		if !ok {
			return bad()
		}
		n.Description = s

	case "$ref":
		s, ok := stringValue(v)
		if !ok {
			return bad()
		}
		if _, err := url.Parse(s); err != nil {
			return badErr(err)
		}
		n.Ref = &Ref{Base: base, Ref: s}

	case "type":
		switch v.Type() {
		case fastjson.TypeString:
			s, _ := stringValue(v)
			t, ok := TypeFromString(s)
			if !ok {
				return bad()
			}
			n.Types = []Type{t}
		case fastjson.TypeArray:
			arr, _ := v.Array()
			if len(arr) == 0 {
				return bad()
			}
			for _, tv := range arr {
				s, ok := stringValue(tv)
				if !ok {
					return bad()
				}
				t, ok := TypeFromString(s)
				if !ok {
					return bad()
				}
				n.Types = append(n.Types, t)
			}
		default:
			return bad()
		}

	case "enum":
		arr, err := v.Array()
		if err != nil || len(arr) == 0 {
			return bad()
		}
		n.Enum = arr
	case "const":
		n.Const = v

	case "multipleOf":
		f, ok := numberValue(v)
		if !ok || f <= 0 {
			return bad()
		}
		n.MultipleOf = &f
	case "minimum":
		f, ok := numberValue(v)
		if !ok {
			return bad()
		}
		n.Minimum = &f
	case "maximum":
		f, ok := numberValue(v)
		if !ok {
			return bad()
		}
		n.Maximum = &f
	case "exclusiveMinimum":
		b, ok := boolValue(v)
		if !ok {
			return bad()
		}
		n.ExclusiveMinimum = b
	case "exclusiveMaximum":
		b, ok := boolValue(v)
		if !ok {
			return bad()
		}
		n.ExclusiveMaximum = b

	case "minLength":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MinLength = &i
	case "maxLength":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MaxLength = &i
	case "pattern":
		s, ok := stringValue(v)
		if !ok {
			return bad()
		}
		re, err := st.re(s)
		if err != nil {
			return badErr(err)
		}
		n.Pattern = re

	case "items":
		if v.Type() == fastjson.TypeArray {
			nodes, err := subList("items")
			if err != nil {
				return err
			}
			n.TupleItems = nodes
			return nil
		}
		child, err := sub(v, "items")
		if err != nil {
			return err
		}
		n.Items = child
	case "additionalItems":
		child, err := sub(v, "additionalItems")
		if err != nil {
			return err
		}
		n.AdditionalItems = child
	case "minItems":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MinItems = &i
	case "maxItems":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MaxItems = &i
	case "uniqueItems":
		b, ok := boolValue(v)
		if !ok {
			return bad()
		}
		n.UniqueItems = b
	case "contains":
		child, err := sub(v, "contains")
		if err != nil {
			return err
		}
		n.Contains = child

	case "properties":
		obj, err := v.Object()
		if err != nil {
			return bad()
		}
		var walkErr error
		obj.Visit(func(pk []byte, pv *fastjson.Value) {
			if walkErr != nil {
				return
			}
			name := string(pk)
			child, err := sub(pv, "properties", name)
			if err != nil {
				walkErr = err
				return
			}
			n.Properties = append(n.Properties, Property{Name: name, Schema: child})
		})
		return walkErr
	case "patternProperties":
		obj, err := v.Object()
		if err != nil {
			return bad()
		}
		var walkErr error
		obj.Visit(func(pk []byte, pv *fastjson.Value) {
			if walkErr != nil {
				return
			}
			src := string(pk)
			re, err := st.re(src)
			if err != nil {
				walkErr = &SchemaError{Kind: InvalidKeyword, Keyword: key, Path: keyPath(keyPath(docPtr, key), src), Err: err}
				return
			}
			child, err := sub(pv, "patternProperties", src)
			if err != nil {
				walkErr = err
				return
			}
			n.PatternProperties = append(n.PatternProperties, PatternProperty{Source: src, Pattern: re, Schema: child})
		})
		return walkErr
	case "additionalProperties":
		child, err := sub(v, "additionalProperties")
		if err != nil {
			return err
		}
		n.AdditionalProperties = child
	case "required":
		arr, err := v.Array()
		if err != nil {
			return bad()
		}
		for _, rv := range arr {
			s, ok := stringValue(rv)
			if !ok {
				return bad()
			}
			n.Required = append(n.Required, s)
		}
	case "minProperties":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MinProperties = &i
	case "maxProperties":
		i, ok := countValue(v)
		if !ok {
			return bad()
		}
		n.MaxProperties = &i
	case "dependencies":
		obj, err := v.Object()
		if err != nil {
			return bad()
		}
		var walkErr error
		obj.Visit(func(dk []byte, dv *fastjson.Value) {
			if walkErr != nil {
				return
			}
			name := string(dk)
			dep := Dependency{Name: name}
			if dv.Type() == fastjson.TypeArray {
				arr, _ := dv.Array()
				dep.Keys = make([]string, 0, len(arr))
				for _, kv := range arr {
					s, ok := stringValue(kv)
					if !ok {
						walkErr = &SchemaError{Kind: InvalidKeyword, Keyword: key, Path: keyPath(keyPath(docPtr, key), name)}
						return
					}
					dep.Keys = append(dep.Keys, s)
				}
			} else {
				child, err := sub(dv, "dependencies", name)
				if err != nil {
					walkErr = err
					return
				}
				dep.Schema = child
			}
			n.Dependencies = append(n.Dependencies, dep)
		})
		return walkErr
	case "definitions":
		obj, err := v.Object()
		if err != nil {
			return bad()
		}
		var walkErr error
		obj.Visit(func(dk []byte, dv *fastjson.Value) {
			if walkErr != nil {
				return
			}
			name := string(dk)
			child, err := sub(dv, "definitions", name)
			if err != nil {
				walkErr = err
				return
			}
			n.Definitions = append(n.Definitions, Property{Name: name, Schema: child})
		})
		return walkErr
	case "propertyNames":
		child, err := sub(v, "propertyNames")
		if err != nil {
			return err
		}
		n.PropertyNames = child

	case "allOf":
		nodes, err := subList("allOf")
		if err != nil {
			return err
		}
		n.AllOf = nodes
	case "anyOf":
		nodes, err := subList("anyOf")
		if err != nil {
			return err
		}
		n.AnyOf = nodes
	case "oneOf":
		nodes, err := subList("oneOf")
		if err != nil {
			return err
		}
		n.OneOf = nodes
	case "not":
		child, err := sub(v, "not")
		if err != nil {
			return err
		}
		n.Not = child

	default:
		// Unknown keywords are kept for forward compatibility but have no
		// validation semantics.
		n.Extra = append(n.Extra, Extra{Name: key, Value: v})
	}
	return nil
}

func keyPath(ptr, token string) string {
	return ptr + "/" + jsonpointer.Escape(token)
}

func isFragmentOnly(u *url.URL) bool {
	return u.Scheme == "" && u.Opaque == "" && u.Host == "" && u.Path == "" &&
		u.RawQuery == "" && u.Fragment != ""
}

func stringValue(v *fastjson.Value) (string, bool) {
	b, err := v.StringBytes()
	if err != nil {
		return "", false
	}
	return string(b), true
}

func boolValue(v *fastjson.Value) (bool, bool) {
	b, err := v.Bool()
	if err != nil {
		return false, false
	}
	return b, true
}

func numberValue(v *fastjson.Value) (float64, bool) {
	if v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	f, err := v.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// countValue accepts non-negative integers, the shape shared by minLength,
// minItems, minProperties and friends.
func countValue(v *fastjson.Value) (int, bool) {
	f, ok := numberValue(v)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
