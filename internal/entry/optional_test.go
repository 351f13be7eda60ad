package entry

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalAbsentNullValue(t *testing.T) {
	type payload struct {
		Title   Optional[*string] `json:"title"`
		Content Optional[*string] `json:"content"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"content": null}`), &p))

	assert.False(t, p.Title.Set, "absent field stays unset")
	assert.True(t, p.Content.Set, "explicit null is a sent field")
	assert.Nil(t, p.Content.Value)

	p = payload{}
	require.NoError(t, json.Unmarshal([]byte(`{"title": "hello"}`), &p))
	require.True(t, p.Title.Set)
	require.NotNil(t, p.Title.Value)
	assert.Equal(t, "hello", *p.Title.Value)
}
