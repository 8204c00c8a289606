package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndAccessors(t *testing.T) {
	doc, err := Parse([]byte(`{
		"personal_info": {"name": "Jane", "age": 31},
		"skills": ["Go", 42, "Rust", null],
		"remote": true,
		"experience": [{"title": "Engineer"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, doc.Kind())
	assert.Equal(t, "Jane", doc.Path("personal_info", "name").Text())
	assert.Equal(t, "", doc.Path("personal_info", "age").Text())

	age, ok := doc.Path("personal_info", "age").Float()
	assert.True(t, ok)
	assert.Equal(t, 31.0, age)

	assert.Equal(t, []string{"Go", "Rust"}, doc.Get("skills").Strings())
	assert.Equal(t, 4, doc.Get("skills").Len())
	assert.True(t, doc.Get("skills").Index(3).IsNull())
	assert.True(t, doc.Get("skills").Index(10).IsNull())

	remote, ok := doc.Get("remote").Bool()
	assert.True(t, ok)
	assert.True(t, remote)

	assert.Equal(t, "Engineer", doc.Get("experience").Index(0).Get("title").Text())
	assert.Equal(t, []string{"experience", "personal_info", "remote", "skills"}, doc.Keys())
}

func TestMissingAndMistypedFieldsDegrade(t *testing.T) {
	doc := New(map[string]any{"summary": 12, "skills": "Go"})

	assert.True(t, doc.Get("missing").IsNull())
	assert.True(t, doc.Path("a", "b", "c").IsNull())
	assert.Equal(t, "", doc.Get("summary").Text())
	assert.Nil(t, doc.Get("skills").Array())
	assert.Nil(t, doc.Get("skills").Strings())
	assert.Equal(t, 0, doc.Get("skills").Len())
	assert.True(t, Null.Get("x").IsNull())
	assert.Equal(t, KindNull, Null.Kind())
}

func TestNewCopiesInput(t *testing.T) {
	raw := map[string]any{"skills": []string{"Go"}, "count": int64(3)}
	doc := New(raw)

	raw["skills"] = []string{"Changed"}

	assert.Equal(t, []string{"Go"}, doc.Get("skills").Strings())
	count, ok := doc.Get("count").Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, count)
}

func TestCloneIsIndependent(t *testing.T) {
	doc, err := Parse([]byte(`{"skills": ["Go"]}`))
	require.NoError(t, err)

	clone := doc.Clone()
	tree := clone.Interface().(map[string]any)
	tree["skills"] = []any{"Python"}

	assert.Equal(t, []string{"Go"}, doc.Get("skills").Strings())
	assert.Equal(t, []string{"Go"}, clone.Get("skills").Strings())
}

func TestParseTOML(t *testing.T) {
	doc, err := ParseTOML([]byte(`
title = "Backend Engineer"
openings = 2

[company]
name = "Acme"
`))
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", doc.Get("title").Text())
	openings, ok := doc.Get("openings").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.0, openings)
	assert.Equal(t, "Acme", doc.Path("company", "name").Text())
}

func TestNilContainersAreNull(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "object", raw: map[string]any(nil)},
		{name: "string map", raw: map[string]string(nil)},
		{name: "array", raw: []any(nil)},
		{name: "string slice", raw: []string(nil)},
		{name: "object slice", raw: []map[string]any(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New(tt.raw)
			if doc.Kind() != KindNull {
				t.Fatalf("expected null, got %s", doc.Kind())
			}
		})
	}

	nested := New(map[string]any{"skills": []any(nil)})
	assert.True(t, nested.Get("skills").IsNull())
	assert.Equal(t, KindObject, New(map[string]any{}).Kind())
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"broken": `))
	assert.Error(t, err)
}

func TestJSONRoundTripIsCanonical(t *testing.T) {
	a, err := Parse([]byte(`{"b": 1, "a": [true, null, "x"]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"a": [true, null, "x"], "b": 1}`))
	require.NoError(t, err)

	assert.Equal(t, string(a.Canonical()), string(b.Canonical()))

	var wrapped struct {
		Doc Value `json:"doc"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"doc": {"name": "x"}}`), &wrapped))
	assert.Equal(t, "x", wrapped.Doc.Get("name").Text())
}
