package jsonschema

import (
	"github.com/valyala/fastjson"
)

// ToValue converts a compiled node back into a JSON value, the mechanical
// inverse of parsing. It exists as a round-trip aid: re-parsing the result
// yields a schema with identical validation behavior. Values from the
// original document (enum candidates, unknown keywords) are shared, not
// copied.
func ToValue(a *fastjson.Arena, n *Node) *fastjson.Value {
	if n.Bool != nil {
		if *n.Bool {
			return a.NewTrue()
		}
		return a.NewFalse()
	}

	obj := a.NewObject()
	if n.ID != "" {
		obj.Set("$id", a.NewString(n.ID))
	}
	if n.Anchor != "" && n.ID != "#"+n.Anchor {
		obj.Set("$anchor", a.NewString(n.Anchor))
	}
	if n.Title != "" {
		obj.Set("title", a.NewString(n.Title))
	}
	if n.Description != "" {
		obj.Set("description", a.NewString(n.Description))
	}
	if n.Ref != nil {
		obj.Set("$ref", a.NewString(n.Ref.Ref))
	}

	if len(n.Types) == 1 {
		obj.Set("type", a.NewString(n.Types[0].String()))
	} else if len(n.Types) > 1 {
		arr := a.NewArray()
		for i, t := range n.Types {
			arr.SetArrayItem(i, a.NewString(t.String()))
		}
		obj.Set("type", arr)
	}

	if n.Enum != nil {
		arr := a.NewArray()
		for i, cand := range n.Enum {
			arr.SetArrayItem(i, cand)
		}
		obj.Set("enum", arr)
	}
	if n.Const != nil {
		obj.Set("const", n.Const)
	}

	if n.MultipleOf != nil {
		obj.Set("multipleOf", a.NewNumberFloat64(*n.MultipleOf))
	}
	if n.Minimum != nil {
		obj.Set("minimum", a.NewNumberFloat64(*n.Minimum))
	}
	if n.ExclusiveMinimum {
		obj.Set("exclusiveMinimum", a.NewTrue())
	}
	if n.Maximum != nil {
		obj.Set("maximum", a.NewNumberFloat64(*n.Maximum))
	}
	if n.ExclusiveMaximum {
		obj.Set("exclusiveMaximum", a.NewTrue())
	}

	if n.MinLength != nil {
		obj.Set("minLength", a.NewNumberInt(*n.MinLength))
	}
	if n.MaxLength != nil {
		obj.Set("maxLength", a.NewNumberInt(*n.MaxLength))
	}
	if n.Pattern != nil {
		obj.Set("pattern", a.NewString(n.Pattern.String()))
	}

	if n.TupleItems != nil {
		arr := a.NewArray()
		for i, sub := range n.TupleItems {
			arr.SetArrayItem(i, ToValue(a, sub))
		}
		obj.Set("items", arr)
	} else if n.Items != nil {
		obj.Set("items", ToValue(a, n.Items))
	}
	if n.AdditionalItems != nil {
		obj.Set("additionalItems", ToValue(a, n.AdditionalItems))
	}
	if n.MinItems != nil {
		obj.Set("minItems", a.NewNumberInt(*n.MinItems))
	}
	if n.MaxItems != nil {
		obj.Set("maxItems", a.NewNumberInt(*n.MaxItems))
	}
	if n.UniqueItems {
		obj.Set("uniqueItems", a.NewTrue())
	}
	if n.Contains != nil {
		obj.Set("contains", ToValue(a, n.Contains))
	}

	if n.Properties != nil {
		props := a.NewObject()
		for _, prop := range n.Properties {
			props.Set(prop.Name, ToValue(a, prop.Schema))
		}
		obj.Set("properties", props)
	}
	if n.PatternProperties != nil {
		props := a.NewObject()
		for _, pp := range n.PatternProperties {
			props.Set(pp.Source, ToValue(a, pp.Schema))
		}
		obj.Set("patternProperties", props)
	}
	if n.AdditionalProperties != nil {
		obj.Set("additionalProperties", ToValue(a, n.AdditionalProperties))
	}
	if n.Required != nil {
		arr := a.NewArray()
		for i, name := range n.Required {
			arr.SetArrayItem(i, a.NewString(name))
		}
		obj.Set("required", arr)
	}
	if n.MinProperties != nil {
		obj.Set("minProperties", a.NewNumberInt(*n.MinProperties))
	}
	if n.MaxProperties != nil {
		obj.Set("maxProperties", a.NewNumberInt(*n.MaxProperties))
	}
	if n.Dependencies != nil {
		deps := a.NewObject()
		for _, dep := range n.Dependencies {
			if dep.Schema != nil {
				deps.Set(dep.Name, ToValue(a, dep.Schema))
				continue
			}
			arr := a.NewArray()
			for i, k := range dep.Keys {
				arr.SetArrayItem(i, a.NewString(k))
			}
			deps.Set(dep.Name, arr)
		}
		obj.Set("dependencies", deps)
	}
	if n.PropertyNames != nil {
		obj.Set("propertyNames", ToValue(a, n.PropertyNames))
	}

	setCombinator(a, obj, "allOf", n.AllOf)
	setCombinator(a, obj, "anyOf", n.AnyOf)
	setCombinator(a, obj, "oneOf", n.OneOf)
	if n.Not != nil {
		obj.Set("not", ToValue(a, n.Not))
	}

	if n.Definitions != nil {
		defs := a.NewObject()
		for _, def := range n.Definitions {
			defs.Set(def.Name, ToValue(a, def.Schema))
		}
		obj.Set("definitions", defs)
	}

	for _, ex := range n.Extra {
		obj.Set(ex.Name, ex.Value)
	}
	return obj
}

func setCombinator(a *fastjson.Arena, obj *fastjson.Value, key string, subs []*Node) {
	if subs == nil {
		return
	}
	arr := a.NewArray()
	for i, sub := range subs {
		arr.SetArrayItem(i, ToValue(a, sub))
	}
	obj.Set(key, arr)
}
