package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeObjectStrict(t *testing.T) {
	out, ok := DecodeObject(`{"name":"a","count":2}`, sample{Name: "fallback"})
	require.True(t, ok)
	require.Equal(t, sample{Name: "a", Count: 2}, out)
}

func TestDecodeObjectBracketFallback(t *testing.T) {
	text := "Sure! Here is the result:\n```json\n{\"name\":\"b\",\"count\":{\"nested\":1}}\n```"
	_, ok := DecodeObject(text, sample{})
	require.False(t, ok)

	text = "Sure! Here is the result:\n```json\n{\"name\":\"b\",\"count\":3}\n```\nThanks"
	out, ok := DecodeObject(text, sample{})
	require.True(t, ok)
	require.Equal(t, "b", out.Name)
	require.Equal(t, 3, out.Count)
}

func TestDecodeObjectDefault(t *testing.T) {
	fallback := map[string]any{"error": "Failed to parse recommendations"}

	for _, text := range []string{"", "not json at all", "} backwards {", "{broken"} {
		out, ok := DecodeObject(text, fallback)
		require.False(t, ok, text)
		require.Equal(t, fallback, out)
	}
}

func TestExtractObject(t *testing.T) {
	raw, ok := ExtractObject("prefix {\"a\": [1, 2]} suffix")
	require.True(t, ok)
	require.JSONEq(t, `{"a":[1,2]}`, string(raw))

	_, ok = ExtractObject(`[1,2,3]`)
	require.False(t, ok)
}
