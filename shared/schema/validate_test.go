package schema

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocumentCollectsOneErrorPerFailingField(t *testing.T) {
	st, ok := GetSchemaTypeByName("post")
	require.True(t, ok)

	// title missing, slug invalid, body missing
	errs := ValidateDocument(st, map[string]interface{}{
		"slug":     "Not A Slug!",
		"featured": true,
	})

	require.Len(t, errs, 3)
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Message
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "body")
	assert.Equal(t, "field is required", fields["title"])
}

func TestValidateDocumentPassesValidDraft(t *testing.T) {
	st, ok := GetSchemaTypeByName("post")
	require.True(t, ok)

	errs := ValidateDocument(st, map[string]interface{}{
		"title": "Hello World",
		"slug":  "hello-world",
		"body":  "Some body text",
		"hero_image": map[string]interface{}{
			"asset_id": "7b20bd3e-0de2-4f33-93a0-9ab5e9c9e63d",
		},
		"author": map[string]interface{}{
			"_type": "reference",
			"_ref":  "0f1d9b61-52cb-4f0e-8d8f-1df6fd3ca95b",
		},
		"categories": []interface{}{
			map[string]interface{}{"_type": "reference", "_ref": "4a0a7d0a-6b6e-4a65-a9a7-2a4c1d7f5db0"},
		},
		"published_at": "2025-06-01T10:00:00Z",
		"featured":     false,
	})

	assert.Empty(t, errs)
}

func TestValidateFieldOptionalNilPasses(t *testing.T) {
	err := ValidateField(Field{Name: "excerpt", Type: TypeText}, nil)
	assert.NoError(t, err)
}

func TestValidateFieldRequiredNilFails(t *testing.T) {
	err := ValidateField(Field{Name: "title", Type: TypeString, Required: true}, nil)
	assert.Error(t, err)
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		value   interface{}
		wantErr bool
	}{
		{"plain string", Field{Type: TypeString}, "hello", false},
		{"wrong type", Field{Type: TypeString}, 42, true},
		{"required empty", Field{Type: TypeString, Required: true}, "", true},
		{"below min length", Field{Type: TypeString, MinLength: intPtr(5)}, "abc", true},
		{"above max length", Field{Type: TypeString, MaxLength: intPtr(3)}, "abcdef", true},
		{"pattern match", Field{Type: TypeString, Pattern: `^\d+$`}, "12345", false},
		{"pattern mismatch", Field{Type: TypeString, Pattern: `^\d+$`}, "12a45", true},
		{"allowed option", Field{Type: TypeString, Options: []string{"a", "b"}}, "b", false},
		{"disallowed option", Field{Type: TypeString, Options: []string{"a", "b"}}, "c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	field := Field{Type: TypeSlug}

	assert.NoError(t, ValidateField(field, "hello-world-2"))
	assert.Error(t, ValidateField(field, "Hello-World"))
	assert.Error(t, ValidateField(field, "hello_world"))
	assert.Error(t, ValidateField(field, "-leading"))
	assert.Error(t, ValidateField(field, 7))
}

func TestValidateNumber(t *testing.T) {
	field := Field{Type: TypeNumber, Min: floatPtr(0), Max: floatPtr(10)}

	// JSON decoding yields float64, but int inputs are accepted too
	assert.NoError(t, ValidateField(field, float64(5)))
	assert.NoError(t, ValidateField(field, 5))
	assert.NoError(t, ValidateField(field, int64(10)))
	assert.Error(t, ValidateField(field, float64(-1)))
	assert.Error(t, ValidateField(field, float64(11)))
	assert.Error(t, ValidateField(field, "5"))
}

func TestValidateDatetime(t *testing.T) {
	field := Field{Type: TypeDatetime}

	assert.NoError(t, ValidateField(field, "2025-01-15T09:30:00Z"))
	assert.NoError(t, ValidateField(field, "2025-01-15T09:30:00+03:00"))
	assert.Error(t, ValidateField(field, "2025-01-15"))
	assert.Error(t, ValidateField(field, "15/01/2025"))
	assert.Error(t, ValidateField(field, 1736933400))
}

func TestValidateImage(t *testing.T) {
	field := Field{Type: TypeImage}

	assert.NoError(t, ValidateField(field, map[string]interface{}{
		"asset_id": "7b20bd3e-0de2-4f33-93a0-9ab5e9c9e63d",
	}))
	assert.Error(t, ValidateField(field, map[string]interface{}{}))
	assert.Error(t, ValidateField(field, map[string]interface{}{"asset_id": "not-a-uuid"}))
	assert.Error(t, ValidateField(field, "7b20bd3e-0de2-4f33-93a0-9ab5e9c9e63d"))
}

func TestValidateReference(t *testing.T) {
	field := Field{Type: TypeReference, To: []string{"author"}}

	assert.NoError(t, ValidateField(field, map[string]interface{}{
		"_type": "reference",
		"_ref":  "0f1d9b61-52cb-4f0e-8d8f-1df6fd3ca95b",
	}))
	assert.Error(t, ValidateField(field, map[string]interface{}{
		"_type": "document",
		"_ref":  "0f1d9b61-52cb-4f0e-8d8f-1df6fd3ca95b",
	}))
	assert.Error(t, ValidateField(field, map[string]interface{}{
		"_type": "reference",
	}))
	assert.Error(t, ValidateField(field, map[string]interface{}{
		"_type": "reference",
		"_ref":  "xyz",
	}))
}

func TestValidateArray(t *testing.T) {
	field := Field{Type: TypeArray, MinItems: intPtr(1), MaxItems: intPtr(3)}

	assert.NoError(t, ValidateField(field, []interface{}{"a"}))
	assert.Error(t, ValidateField(field, []interface{}{}))
	assert.Error(t, ValidateField(field, []interface{}{"a", "b", "c", "d"}))
	assert.Error(t, ValidateField(field, "not-an-array"))
}

func TestValidateFieldUnknownType(t *testing.T) {
	err := ValidateField(Field{Name: "x", Type: "geopoint"}, "anything")
	assert.Error(t, err)
}

func TestValidateArrayItemsAgainstOf(t *testing.T) {
	field := Field{
		Type: TypeArray,
		Of:   &Field{Type: TypeReference, To: []string{"category"}},
	}

	assert.NoError(t, ValidateField(field, []interface{}{
		map[string]interface{}{"_type": "reference", "_ref": "4a0a7d0a-6b6e-4a65-a9a7-2a4c1d7f5db0"},
	}))

	err := ValidateField(field, []interface{}{42, true, map[string]interface{}{"junk": "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 0")

	err = ValidateField(field, []interface{}{nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be null")
}

func TestValidateArrayWithoutOfAcceptsAnyItems(t *testing.T) {
	field := Field{Type: TypeArray}
	assert.NoError(t, ValidateField(field, []interface{}{"a", 42, true}))
}

func TestValidateReferenceTargets(t *testing.T) {
	authorID := "0f1d9b61-52cb-4f0e-8d8f-1df6fd3ca95b"
	categoryID := "4a0a7d0a-6b6e-4a65-a9a7-2a4c1d7f5db0"
	pageID := "7b20bd3e-0de2-4f33-93a0-9ab5e9c9e63d"

	typeByID := map[string]string{
		authorID:   "author",
		categoryID: "category",
		pageID:     "page",
	}
	resolve := func(id uuid.UUID) (string, bool) {
		name, ok := typeByID[id.String()]
		return name, ok
	}

	st := SchemaType{
		Name: "story",
		Fields: []Field{
			{Name: "author", Type: TypeReference, To: []string{"author"}},
			{Name: "categories", Type: TypeArray, Of: &Field{Type: TypeReference, To: []string{"category"}}},
			{Name: "anything", Type: TypeReference},
		},
	}

	ref := func(id string) map[string]interface{} {
		return map[string]interface{}{"_type": "reference", "_ref": id}
	}

	t.Run("matching types pass", func(t *testing.T) {
		errs := ValidateReferenceTargets(st, map[string]interface{}{
			"author":     ref(authorID),
			"categories": []interface{}{ref(categoryID)},
		}, resolve)
		assert.Empty(t, errs)
	})

	t.Run("wrong target type fails", func(t *testing.T) {
		errs := ValidateReferenceTargets(st, map[string]interface{}{
			"author": ref(pageID),
		}, resolve)
		require.Len(t, errs, 1)
		assert.Equal(t, "author", errs[0].Field)
		assert.Contains(t, errs[0].Message, "page")
	})

	t.Run("missing target fails", func(t *testing.T) {
		errs := ValidateReferenceTargets(st, map[string]interface{}{
			"author": ref("99999999-9999-4999-8999-999999999999"),
		}, resolve)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "does not exist")
	})

	t.Run("array item names the failing index", func(t *testing.T) {
		errs := ValidateReferenceTargets(st, map[string]interface{}{
			"categories": []interface{}{ref(categoryID), ref(authorID)},
		}, resolve)
		require.Len(t, errs, 1)
		assert.Equal(t, "categories[1]", errs[0].Field)
	})

	t.Run("reference without To is unconstrained", func(t *testing.T) {
		errs := ValidateReferenceTargets(st, map[string]interface{}{
			"anything": ref(pageID),
		}, resolve)
		assert.Empty(t, errs)
	})
}
