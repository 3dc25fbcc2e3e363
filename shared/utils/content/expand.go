package content

import (
	"github.com/google/uuid"
)

// LookupFunc resolves a referenced document id to its content
// representation. The second return value reports whether it was found.
type LookupFunc func(id uuid.UUID) (map[string]interface{}, bool)

// ExpandReferences walks a content payload and replaces reference objects
// ({"_type":"reference","_ref":"<uuid>"}) with the referenced document's
// content, up to depth levels deep. Unresolvable references are left
// untouched; cycles terminate at the depth bound.
func ExpandReferences(data map[string]interface{}, depth int, lookup LookupFunc) map[string]interface{} {
	if data == nil || depth <= 0 || lookup == nil {
		return data
	}

	expanded := make(map[string]interface{}, len(data))
	for key, value := range data {
		expanded[key] = expandValue(value, depth, lookup)
	}
	return expanded
}

func expandValue(value interface{}, depth int, lookup LookupFunc) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		if ref, ok := referenceID(v); ok {
			resolved, found := lookup(ref)
			if !found {
				return v
			}
			return ExpandReferences(resolved, depth-1, lookup)
		}
		return ExpandReferences(v, depth, lookup)
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = expandValue(item, depth, lookup)
		}
		return items
	default:
		return value
	}
}

// referenceID extracts the target id of a reference object
func referenceID(m map[string]interface{}) (uuid.UUID, bool) {
	if t, _ := m["_type"].(string); t != "reference" {
		return uuid.Nil, false
	}
	ref, _ := m["_ref"].(string)
	if ref == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
