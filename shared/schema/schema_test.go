package schema

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTypesRegistered(t *testing.T) {
	for _, name := range []string{"post", "page", "author", "category"} {
		st, ok := GetSchemaTypeByName(name)
		require.True(t, ok, "expected builtin type %s", name)
		assert.Equal(t, name, st.Name)
		assert.NotEmpty(t, st.Fields)
	}
}

func TestGetSchemaTypeByNameUnknown(t *testing.T) {
	_, ok := GetSchemaTypeByName("no-such-type")
	assert.False(t, ok)
}

func TestAllReturnsSortedTypes(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	names := make([]string, 0, len(all))
	for _, st := range all {
		names = append(names, st.Name)
	}
	assert.True(t, sort.StringsAreSorted(names))
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		Register(SchemaType{Name: "post", Title: "Post Again"})
	})
}

func TestRegisterPanicsOnEmptyName(t *testing.T) {
	assert.Panics(t, func() {
		Register(SchemaType{Title: "Nameless"})
	})
}
