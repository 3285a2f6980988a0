package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func TestToValueBoolean(t *testing.T) {
	var a fastjson.Arena
	doc, err := ParseBytes([]byte("false"), "")
	require.NoError(t, err)
	assert.Equal(t, "false", ToValue(&a, doc.Root).String())
}

func TestToValueRoundTripBehavior(t *testing.T) {
	schema := `{
		"$id": "https://example.com/thing.json",
		"title": "thing",
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"$ref": "#/definitions/ident"},
			"tags": {"type": "array", "items": {"type": "string"}, "uniqueItems": true, "maxItems": 4},
			"size": {"type": "integer", "minimum": 0, "exclusiveMinimum": true, "multipleOf": 2},
			"mode": {"enum": ["a", "b"]}
		},
		"patternProperties": {"^x_": {"maxLength": 3}},
		"additionalProperties": false,
		"dependencies": {"size": ["mode"]},
		"definitions": {"ident": {"type": "string", "minLength": 1, "pattern": "^[a-z]"}},
		"format": "opaque-vendor-thing"
	}`
	instances := []string{
		`{"id":"ok"}`,
		`{"id":42}`,
		`{}`,
		`{"id":"ok","tags":["a","a"]}`,
		`{"id":"ok","tags":["a",1]}`,
		`{"id":"ok","size":3,"mode":"a"}`,
		`{"id":"ok","size":4}`,
		`{"id":"ok","x_abcd":"wide"}`,
		`{"id":"ok","stray":1}`,
		`{"id":"Z"}`,
		"null",
		"[]",
	}

	doc, err := ParseBytes([]byte(schema), "")
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register(doc))

	var a fastjson.Arena
	converted := ToValue(&a, doc.Root)

	// re-parse the rendered value; it goes into its own registry
	doc2, err := Parse(converted, "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/thing.json", doc2.Base)

	reg2 := NewRegistry()
	require.NoError(t, reg2.Register(doc2))

	for _, src := range instances {
		v := inst(t, src)
		got := doc2.Validate(v, reg2)
		want := doc.Validate(v, reg)
		assert.Equal(t, want, got, "instance %s", src)
	}
}

func TestToValuePreservesUnknownKeywords(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"format":"email"}`), "")
	require.NoError(t, err)

	var a fastjson.Arena
	v := ToValue(&a, doc.Root)
	f := v.Get("format")
	require.NotNil(t, f)
	sb, err := f.StringBytes()
	require.NoError(t, err)
	assert.Equal(t, "email", string(sb))
}
