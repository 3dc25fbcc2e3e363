package content

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func reference(id uuid.UUID) map[string]interface{} {
	return map[string]interface{}{"_type": "reference", "_ref": id.String()}
}

func TestExpandReferencesReplacesKnownRefs(t *testing.T) {
	authorID := uuid.New()
	docs := map[uuid.UUID]map[string]interface{}{
		authorID: {"_id": authorID.String(), "name": "Jane"},
	}
	lookup := func(id uuid.UUID) (map[string]interface{}, bool) {
		d, ok := docs[id]
		return d, ok
	}

	data := map[string]interface{}{
		"title":  "Post",
		"author": reference(authorID),
	}

	expanded := ExpandReferences(data, 1, lookup)

	author, ok := expanded["author"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "Jane", author["name"])
}

func TestExpandReferencesLeavesUnknownRefs(t *testing.T) {
	missing := uuid.New()
	lookup := func(uuid.UUID) (map[string]interface{}, bool) { return nil, false }

	data := map[string]interface{}{"author": reference(missing)}
	expanded := ExpandReferences(data, 3, lookup)

	author, ok := expanded["author"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "reference", author["_type"])
	assert.Equal(t, missing.String(), author["_ref"])
}

func TestExpandReferencesDepthZeroIsIdentity(t *testing.T) {
	data := map[string]interface{}{"author": reference(uuid.New())}
	lookup := func(uuid.UUID) (map[string]interface{}, bool) {
		t.Fatal("lookup must not be called at depth 0")
		return nil, false
	}

	expanded := ExpandReferences(data, 0, lookup)
	assert.Equal(t, data, expanded)
}

func TestExpandReferencesTerminatesOnCycles(t *testing.T) {
	aID, bID := uuid.New(), uuid.New()
	docs := map[uuid.UUID]map[string]interface{}{
		aID: {"name": "a", "next": reference(bID)},
		bID: {"name": "b", "next": reference(aID)},
	}
	lookup := func(id uuid.UUID) (map[string]interface{}, bool) {
		d, ok := docs[id]
		return d, ok
	}

	data := map[string]interface{}{"start": reference(aID)}
	expanded := ExpandReferences(data, 3, lookup)

	// depth 3: start -> a -> b -> a, innermost ref left unexpanded
	level1 := expanded["start"].(map[string]interface{})
	assert.Equal(t, "a", level1["name"])
	level2 := level1["next"].(map[string]interface{})
	assert.Equal(t, "b", level2["name"])
	level3 := level2["next"].(map[string]interface{})
	assert.Equal(t, "a", level3["name"])
	level4 := level3["next"].(map[string]interface{})
	assert.Equal(t, "reference", level4["_type"])
}

func TestExpandReferencesInsideArrays(t *testing.T) {
	catID := uuid.New()
	lookup := func(id uuid.UUID) (map[string]interface{}, bool) {
		return map[string]interface{}{"title": "News"}, id == catID
	}

	data := map[string]interface{}{
		"categories": []interface{}{reference(catID), "plain-string"},
	}

	expanded := ExpandReferences(data, 1, lookup)
	items := expanded["categories"].([]interface{})

	first := items[0].(map[string]interface{})
	assert.Equal(t, "News", first["title"])
	assert.Equal(t, "plain-string", items[1])
}
