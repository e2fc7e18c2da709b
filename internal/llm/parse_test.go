package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", `["a","b"]`, []string{"a", "b"}},
		{"empty array", `[]`, []string{}},
		{"whitespace", "\n  [\"a\"]  \n", []string{"a"}},
		{"code fence", "```json\n[\"x\", \"y\"]\n```", []string{"x", "y"}},
		{"prose around", `Sure! Here you go: ["safety","arcana"] hope that helps`, []string{"safety", "arcana"}},
		{"null", `null`, []string{}},
		{"object wrapping array", `{"ids":["a"]}`, []string{}},
		{"object with note", `{"advisors": ["x"], "note": "not a list"}`, []string{}},
		{"mixed types", `["a", 1, true]`, []string{}},
		{"numbers", `[1,2,3]`, []string{}},
		{"string not array", `"a"`, []string{}},
		{"garbage", `I think safety and social`, []string{}},
		{"unbalanced", `["a",`, []string{}},
		{"empty", ``, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStringList(tt.in)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"  true\n", true},
		{"```\ntrue\n```", true},
		{`"true"`, true},
		{"I would say true, this matters.", true},
		{"false. not worth keeping, though true friends disagree", false},
		{"TRUE", false},
		{"True", false},
		{"yes", false},
		{"untrue", false},
		{"", false},
		{"1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBool(tt.in))
		})
	}
}

func TestParseStringListOK(t *testing.T) {
	ids, ok := ParseStringListOK(`["a"]`)
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, ids)

	ids, ok = ParseStringListOK(`[]`)
	assert.True(t, ok, "an empty array is a valid answer")
	assert.Empty(t, ids)

	for _, in := range []string{`{"ids":["a"]}`, `nothing relevant`, `[1]`, ``} {
		ids, ok := ParseStringListOK(in)
		assert.False(t, ok, "input %q", in)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	}
}

func TestParseBoolOK(t *testing.T) {
	tests := []struct {
		in        string
		value, ok bool
	}{
		{"true", true, true},
		{"false", false, true},
		{"I'd say false", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			value, ok := ParseBoolOK(tt.in)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
