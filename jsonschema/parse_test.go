package jsonschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseErr(t *testing.T, src string) *SchemaError {
	t.Helper()
	_, err := ParseBytes([]byte(src), "")
	require.Error(t, err)
	se, ok := err.(*SchemaError)
	require.True(t, ok, "want *SchemaError, got %T: %v", err, err)
	return se
}

func TestParseBooleanRoot(t *testing.T) {
	doc, err := ParseBytes([]byte("true"), "")
	require.NoError(t, err)
	require.NotNil(t, doc.Root.Bool)
	assert.True(t, *doc.Root.Bool)
	assert.True(t, strings.HasPrefix(doc.Base, "urn:uuid:"))

	doc, err = ParseBytes([]byte("false"), "")
	require.NoError(t, err)
	require.NotNil(t, doc.Root.Bool)
	assert.False(t, *doc.Root.Bool)
}

func TestParseRejectsNonSchemaShapes(t *testing.T) {
	for _, src := range []string{"5", `"x"`, "null", "[1,2]"} {
		se := parseErr(t, src)
		assert.Equal(t, InvalidSchemaShape, se.Kind)
	}
}

func TestParseRejectsNestedNonSchemaShape(t *testing.T) {
	se := parseErr(t, `{"properties":{"a":5}}`)
	assert.Equal(t, InvalidSchemaShape, se.Kind)
	assert.Equal(t, "/properties/a", se.Path)
}

func TestParseInvalidKeywords(t *testing.T) {
	cases := map[string]struct {
		src     string
		keyword string
		path    string
	}{
		"negative minLength":   {`{"minLength":-1}`, "minLength", "/minLength"},
		"fractional maxItems":  {`{"maxItems":1.5}`, "maxItems", "/maxItems"},
		"unknown type name":    {`{"type":"wibble"}`, "type", "/type"},
		"non-string required":  {`{"required":[1]}`, "required", "/required"},
		"empty enum":           {`{"enum":[]}`, "enum", "/enum"},
		"zero multipleOf":      {`{"multipleOf":0}`, "multipleOf", "/multipleOf"},
		"negative multipleOf":  {`{"multipleOf":-2}`, "multipleOf", "/multipleOf"},
		"numeric exclusive":    {`{"exclusiveMinimum":5}`, "exclusiveMinimum", "/exclusiveMinimum"},
		"non-string pattern":   {`{"pattern":5}`, "pattern", "/pattern"},
		"non-array allOf":      {`{"allOf":{}}`, "allOf", "/allOf"},
		"empty oneOf":          {`{"oneOf":[]}`, "oneOf", "/oneOf"},
		"non-object deps":      {`{"dependencies":[]}`, "dependencies", "/dependencies"},
		"non-string title":     {`{"title":4}`, "title", "/title"},
		"nested bad keyword":   {`{"properties":{"a":{"minLength":"x"}}}`, "minLength", "/properties/a/minLength"},
		"bad dependency entry": {`{"dependencies":{"a":[1]}}`, "dependencies", "/dependencies/a"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			se := parseErr(t, tc.src)
			assert.Equal(t, InvalidKeyword, se.Kind)
			assert.Equal(t, tc.keyword, se.Keyword)
			assert.Equal(t, tc.path, se.Path)
		})
	}
}

func TestParseBadPattern(t *testing.T) {
	se := parseErr(t, `{"pattern":"("}`)
	assert.Equal(t, InvalidKeyword, se.Kind)
	assert.Equal(t, "pattern", se.Keyword)
	assert.Error(t, se.Err)

	se = parseErr(t, `{"patternProperties":{"(":{}}}`)
	assert.Equal(t, InvalidKeyword, se.Kind)
	assert.Equal(t, "/patternProperties/(", se.Path)
}

func TestParseBadIdentifier(t *testing.T) {
	se := parseErr(t, `{"$id": 5}`)
	assert.Equal(t, InvalidKeyword, se.Kind)

	se = parseErr(t, `{"$id": "%zz"}`)
	assert.Equal(t, InvalidIdentifier, se.Kind)

	se = parseErr(t, `{"$id": "https://example.com/a.json#/pointer"}`)
	assert.Equal(t, InvalidIdentifier, se.Kind)
}

func TestParseSchemaKeywordOnlyAtRoot(t *testing.T) {
	_, err := ParseBytes([]byte(`{"$schema":"http://json-schema.org/draft-06/schema#"}`), "")
	assert.NoError(t, err)

	se := parseErr(t, `{"properties":{"a":{"$schema":"x"}}}`)
	assert.Equal(t, InvalidKeyword, se.Kind)
	assert.Equal(t, "$schema", se.Keyword)
	assert.Equal(t, "/properties/a/$schema", se.Path)
}

func TestParsePreservesUnknownKeywords(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"format":"email","x-vendor":{"a":1},"default":5}`), "")
	require.NoError(t, err)

	names := make([]string, 0, len(doc.Root.Extra))
	for _, ex := range doc.Root.Extra {
		names = append(names, ex.Name)
	}
	assert.Equal(t, []string{"format", "x-vendor", "default"}, names)
}

func TestParseRegistersNestedNodes(t *testing.T) {
	doc, err := ParseBytes([]byte(`{
		"items": [{"type":"string"}],
		"properties": {"a": {"not": {"type":"null"}}},
		"definitions": {"d": true}
	}`), "")
	require.NoError(t, err)

	for _, ptr := range []string{"", "/items/0", "/properties/a", "/properties/a/not", "/definitions/d"} {
		_, ok := doc.NodeAt(ptr)
		assert.True(t, ok, "missing node at %q", ptr)
	}
	n, ok := doc.NodeAt("/properties/a")
	require.True(t, ok)
	assert.Equal(t, "/properties/a", n.Pointer())
}

func TestParseBaseFromCaller(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"type":"object"}`), "https://example.com/s.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/s.json", doc.Base)
	assert.Equal(t, "https://example.com/s.json", doc.Root.Base)
}

func TestParseIDOverridesCallerBase(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"$id":"other.json"}`), "https://example.com/s.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other.json", doc.Base)
	assert.Equal(t, "other.json", doc.Root.ID)
}

func TestParseRefKeptOpaque(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"$ref":"other.json#/definitions/x"}`), "https://example.com/s.json")
	require.NoError(t, err)
	require.NotNil(t, doc.Root.Ref)
	assert.Equal(t, "other.json#/definitions/x", doc.Root.Ref.Ref)
	assert.Equal(t, "https://example.com/s.json", doc.Root.Ref.Base)
}

func TestParseTitleDescription(t *testing.T) {
	doc, err := ParseBytes([]byte(`{"title":"T","description":"D"}`), "")
	require.NoError(t, err)
	assert.Equal(t, "T", doc.Root.Title)
	assert.Equal(t, "D", doc.Root.Description)
}
