package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsStableAcrossKeyOrder(t *testing.T) {
	a := map[string]interface{}{
		"title": "Hello",
		"nested": map[string]interface{}{
			"b": 2.0,
			"a": 1.0,
		},
	}
	b := map[string]interface{}{
		"nested": map[string]interface{}{
			"a": 1.0,
			"b": 2.0,
		},
		"title": "Hello",
	}

	hashA, err := Hash(a)
	require.NoError(t, err)
	hashB, err := Hash(b)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.Len(t, hashA, 64)
}

func TestHashChangesWithContent(t *testing.T) {
	hashA, err := Hash(map[string]interface{}{"title": "Hello"})
	require.NoError(t, err)
	hashB, err := Hash(map[string]interface{}{"title": "Goodbye"})
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}

func TestHasUnpublishedChanges(t *testing.T) {
	draft := map[string]interface{}{"title": "Hello"}
	published, err := Hash(draft)
	require.NoError(t, err)

	assert.False(t, HasUnpublishedChanges(draft, published))
	assert.True(t, HasUnpublishedChanges(map[string]interface{}{"title": "Edited"}, published))
	assert.True(t, HasUnpublishedChanges(draft, ""), "never-published document")
}
