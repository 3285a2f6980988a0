package jsonschema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

// Validate walks an instance against a compiled schema and returns every
// violation found, in keyword-group order (type, enum/const, numeric,
// string, array, object, combinators, $ref) so that output is reproducible
// for identical input. It never fails hard: unresolved references surface
// as violations at the referencing location and the rest of the instance
// is still checked. reg may be nil for schemas without references.
func Validate(n *Node, instance *fastjson.Value, reg *Registry) []Violation {
	run := &validation{reg: reg, visiting: make(map[visit]struct{})}
	return run.node(n, instance, nil, nil)
}

// visit guards against re-entering the same (schema, instance location)
// pair, which only happens when $ref cycles back without consuming any of
// the instance. The guard is scoped to one Validate call.
type visit struct {
	node *Node
	path string
}

type validation struct {
	reg      *Registry
	visiting map[visit]struct{}
	arena    fastjson.Arena
}

func (r *validation) node(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if n == nil || v == nil {
		return nil
	}
	key := visit{node: n, path: pointerString(ipath)}
	if _, ok := r.visiting[key]; ok {
		return nil
	}
	r.visiting[key] = struct{}{}
	defer delete(r.visiting, key)

	if n.Bool != nil {
		if *n.Bool {
			return nil
		}
		return []Violation{{
			InstancePath: ipath,
			SchemaPath:   spath,
			Keyword:      "false",
			Message:      "false schema allows nothing",
		}}
	}

	var out []Violation
	out = append(out, r.checkType(n, v, ipath, spath)...)
	out = append(out, r.checkEnum(n, v, ipath, spath)...)
	out = append(out, r.checkNumber(n, v, ipath, spath)...)
	out = append(out, r.checkString(n, v, ipath, spath)...)
	out = append(out, r.checkArray(n, v, ipath, spath)...)
	out = append(out, r.checkObject(n, v, ipath, spath)...)
	out = append(out, r.checkCombinators(n, v, ipath, spath)...)
	out = append(out, r.checkRef(n, v, ipath, spath)...)
	return out
}

func (r *validation) checkType(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if len(n.Types) == 0 {
		return nil
	}
	for _, t := range n.Types {
		if typeMatches(t, v) {
			return nil
		}
	}
	names := make([]string, len(n.Types))
	for i, t := range n.Types {
		names[i] = t.String()
	}
	return []Violation{{
		InstancePath: ipath,
		SchemaPath:   extend(spath, "type"),
		Keyword:      "type",
		Message:      fmt.Sprintf("got %s, want %s", kindName(v), strings.Join(names, " or ")),
	}}
}

func (r *validation) checkEnum(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	var out []Violation
	if n.Enum != nil {
		ok := false
		for _, cand := range n.Enum {
			if deepEqual(v, cand) {
				ok = true
				break
			}
		}
		if !ok {
			cands := make([]string, len(n.Enum))
			for i, cand := range n.Enum {
				cands[i] = cand.String()
			}
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "enum"),
				Keyword:      "enum",
				Message:      fmt.Sprintf("value not one of %s", strings.Join(cands, ", ")),
			})
		}
	}
	if n.Const != nil && !deepEqual(v, n.Const) {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "const"),
			Keyword:      "const",
			Message:      fmt.Sprintf("value must equal %s", n.Const.String()),
		})
	}
	return out
}

func (r *validation) checkNumber(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if v.Type() != fastjson.TypeNumber {
		return nil
	}
	f, err := v.Float64()
	if err != nil {
		return nil
	}
	var out []Violation
	if n.MultipleOf != nil {
		q := f / *n.MultipleOf
		if math.Abs(q-math.Round(q)) > 1e-9 {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "multipleOf"),
				Keyword:      "multipleOf",
				Message:      fmt.Sprintf("%v is not a multiple of %v", f, *n.MultipleOf),
			})
		}
	}
	if n.Minimum != nil {
		if n.ExclusiveMinimum {
			if f <= *n.Minimum {
				out = append(out, Violation{
					InstancePath: ipath,
					SchemaPath:   extend(spath, "minimum"),
					Keyword:      "minimum",
					Message:      fmt.Sprintf("%v is not greater than exclusive minimum %v", f, *n.Minimum),
				})
			}
		} else if f < *n.Minimum {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "minimum"),
				Keyword:      "minimum",
				Message:      fmt.Sprintf("%v is less than minimum %v", f, *n.Minimum),
			})
		}
	}
	if n.Maximum != nil {
		if n.ExclusiveMaximum {
			if f >= *n.Maximum {
				out = append(out, Violation{
					InstancePath: ipath,
					SchemaPath:   extend(spath, "maximum"),
					Keyword:      "maximum",
					Message:      fmt.Sprintf("%v is not less than exclusive maximum %v", f, *n.Maximum),
				})
			}
		} else if f > *n.Maximum {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "maximum"),
				Keyword:      "maximum",
				Message:      fmt.Sprintf("%v is greater than maximum %v", f, *n.Maximum),
			})
		}
	}
	return out
}

func (r *validation) checkString(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if v.Type() != fastjson.TypeString {
		return nil
	}
	sb, err := v.StringBytes()
	if err != nil {
		return nil
	}
	var out []Violation
	// Lengths count codepoints, not bytes.
	count := utf8.RuneCount(sb)
	if n.MinLength != nil && count < *n.MinLength {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "minLength"),
			Keyword:      "minLength",
			Message:      fmt.Sprintf("length %d is less than minLength %d", count, *n.MinLength),
		})
	}
	if n.MaxLength != nil && count > *n.MaxLength {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "maxLength"),
			Keyword:      "maxLength",
			Message:      fmt.Sprintf("length %d is greater than maxLength %d", count, *n.MaxLength),
		})
	}
	if n.Pattern != nil && !n.Pattern.MatchString(string(sb)) {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "pattern"),
			Keyword:      "pattern",
			Message:      fmt.Sprintf("%q does not match pattern %q", string(sb), n.Pattern.String()),
		})
	}
	return out
}

func (r *validation) checkArray(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if v.Type() != fastjson.TypeArray {
		return nil
	}
	arr, err := v.Array()
	if err != nil {
		return nil
	}
	var out []Violation
	for i, el := range arr {
		eipath := extend(ipath, strconv.Itoa(i))
		switch {
		case n.TupleItems != nil:
			if i < len(n.TupleItems) {
				out = append(out, r.node(n.TupleItems[i], el, eipath, extend(spath, "items", strconv.Itoa(i)))...)
			} else if n.AdditionalItems != nil {
				out = append(out, r.node(n.AdditionalItems, el, eipath, extend(spath, "additionalItems"))...)
			}
		case n.Items != nil:
			out = append(out, r.node(n.Items, el, eipath, extend(spath, "items"))...)
		}
	}
	if n.Contains != nil {
		found := false
		for i, el := range arr {
			if len(r.node(n.Contains, el, extend(ipath, strconv.Itoa(i)), extend(spath, "contains"))) == 0 {
				found = true
				break
			}
		}
		if !found {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "contains"),
				Keyword:      "contains",
				Message:      "no array element matches the contains schema",
			})
		}
	}
	if n.MinItems != nil && len(arr) < *n.MinItems {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "minItems"),
			Keyword:      "minItems",
			Message:      fmt.Sprintf("array has %d items, minimum is %d", len(arr), *n.MinItems),
		})
	}
	if n.MaxItems != nil && len(arr) > *n.MaxItems {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "maxItems"),
			Keyword:      "maxItems",
			Message:      fmt.Sprintf("array has %d items, maximum is %d", len(arr), *n.MaxItems),
		})
	}
	if n.UniqueItems {
	unique:
		for j := 1; j < len(arr); j++ {
			for i := 0; i < j; i++ {
				if deepEqual(arr[i], arr[j]) {
					out = append(out, Violation{
						InstancePath: ipath,
						SchemaPath:   extend(spath, "uniqueItems"),
						Keyword:      "uniqueItems",
						Message:      fmt.Sprintf("items at index %d and %d are equal", i, j),
					})
					break unique
				}
			}
		}
	}
	return out
}

func (r *validation) checkObject(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if v.Type() != fastjson.TypeObject {
		return nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil
	}
	var out []Violation
	for _, name := range n.Required {
		if v.Get(name) == nil {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "required"),
				Keyword:      "required",
				Message:      fmt.Sprintf("missing required property %q", name),
			})
		}
	}
	obj.Visit(func(kb []byte, kv *fastjson.Value) {
		key := string(kb)
		kipath := extend(ipath, key)
		matched := false
		for _, prop := range n.Properties {
			if prop.Name == key {
				matched = true
				out = append(out, r.node(prop.Schema, kv, kipath, extend(spath, "properties", key))...)
			}
		}
		for _, pp := range n.PatternProperties {
			if pp.Pattern.MatchString(key) {
				matched = true
				out = append(out, r.node(pp.Schema, kv, kipath, extend(spath, "patternProperties", pp.Source))...)
			}
		}
		if !matched && n.AdditionalProperties != nil {
			out = append(out, r.node(n.AdditionalProperties, kv, kipath, extend(spath, "additionalProperties"))...)
		}
		if n.PropertyNames != nil {
			name := r.arena.NewString(key)
			out = append(out, r.node(n.PropertyNames, name, kipath, extend(spath, "propertyNames"))...)
		}
	})
	if n.MinProperties != nil && obj.Len() < *n.MinProperties {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "minProperties"),
			Keyword:      "minProperties",
			Message:      fmt.Sprintf("object has %d properties, minimum is %d", obj.Len(), *n.MinProperties),
		})
	}
	if n.MaxProperties != nil && obj.Len() > *n.MaxProperties {
		out = append(out, Violation{
			InstancePath: ipath,
			SchemaPath:   extend(spath, "maxProperties"),
			Keyword:      "maxProperties",
			Message:      fmt.Sprintf("object has %d properties, maximum is %d", obj.Len(), *n.MaxProperties),
		})
	}
	for _, dep := range n.Dependencies {
		if v.Get(dep.Name) == nil {
			continue
		}
		if dep.Schema != nil {
			out = append(out, r.node(dep.Schema, v, ipath, extend(spath, "dependencies", dep.Name))...)
			continue
		}
		for _, req := range dep.Keys {
			if v.Get(req) == nil {
				out = append(out, Violation{
					InstancePath: ipath,
					SchemaPath:   extend(spath, "dependencies", dep.Name),
					Keyword:      "dependencies",
					Message:      fmt.Sprintf("property %q requires %q to be present", dep.Name, req),
				})
			}
		}
	}
	return out
}

func (r *validation) checkCombinators(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	var out []Violation
	for i, sub := range n.AllOf {
		out = append(out, r.node(sub, v, ipath, extend(spath, "allOf", strconv.Itoa(i)))...)
	}
	if n.AnyOf != nil {
		var failed []Violation
		ok := false
		for i, sub := range n.AnyOf {
			vs := r.node(sub, v, ipath, extend(spath, "anyOf", strconv.Itoa(i)))
			if len(vs) == 0 {
				ok = true
				break
			}
			failed = append(failed, vs...)
		}
		if !ok {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "anyOf"),
				Keyword:      "anyOf",
				Message:      fmt.Sprintf("value matches none of the %d alternatives", len(n.AnyOf)),
			})
			out = append(out, failed...)
		}
	}
	if n.OneOf != nil {
		matched := 0
		for i, sub := range n.OneOf {
			if len(r.node(sub, v, ipath, extend(spath, "oneOf", strconv.Itoa(i)))) == 0 {
				matched++
			}
		}
		if matched != 1 {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "oneOf"),
				Keyword:      "oneOf",
				Message:      fmt.Sprintf("%d branches matched, want exactly 1", matched),
			})
		}
	}
	if n.Not != nil {
		if len(r.node(n.Not, v, ipath, extend(spath, "not"))) == 0 {
			out = append(out, Violation{
				InstancePath: ipath,
				SchemaPath:   extend(spath, "not"),
				Keyword:      "not",
				Message:      "value matches the schema it must not match",
			})
		}
	}
	return out
}

func (r *validation) checkRef(n *Node, v *fastjson.Value, ipath, spath []string) []Violation {
	if n.Ref == nil {
		return nil
	}
	rpath := extend(spath, "$ref")
	if r.reg == nil {
		return []Violation{{
			InstancePath: ipath,
			SchemaPath:   rpath,
			Keyword:      "$ref",
			Message:      fmt.Sprintf("cannot resolve %q: %v", n.Ref.Ref, ErrNoRegistry),
		}}
	}
	target, err := r.reg.Resolve(n.Ref.Ref, n.Ref.Base)
	if err != nil {
		return []Violation{{
			InstancePath: ipath,
			SchemaPath:   rpath,
			Keyword:      "$ref",
			Message:      fmt.Sprintf("cannot resolve %q: %v", n.Ref.Ref, err),
		}}
	}
	return r.node(target, v, ipath, rpath)
}

func typeMatches(t Type, v *fastjson.Value) bool {
	switch t {
	case TypeNull:
		return v.Type() == fastjson.TypeNull
	case TypeBoolean:
		return v.Type() == fastjson.TypeTrue || v.Type() == fastjson.TypeFalse
	case TypeObject:
		return v.Type() == fastjson.TypeObject
	case TypeArray:
		return v.Type() == fastjson.TypeArray
	case TypeNumber:
		return v.Type() == fastjson.TypeNumber
	case TypeInteger:
		if v.Type() != fastjson.TypeNumber {
			return false
		}
		f, err := v.Float64()
		return err == nil && f == math.Trunc(f)
	case TypeString:
		return v.Type() == fastjson.TypeString
	}
	return false
}

func kindName(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeNull:
		return "null"
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return "boolean"
	case fastjson.TypeNumber:
		return "number"
	case fastjson.TypeString:
		return "string"
	case fastjson.TypeArray:
		return "array"
	case fastjson.TypeObject:
		return "object"
	}
	return "unknown"
}

// extend copies before appending so sibling branches never share backing
// arrays.
func extend(p []string, more ...string) []string {
	out := make([]string, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}
