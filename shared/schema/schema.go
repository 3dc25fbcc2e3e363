package schema

import (
	"fmt"
	"sort"
	"sync"
)

// FieldType enumerates the supported content field types
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeText      FieldType = "text"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeDatetime  FieldType = "datetime"
	TypeSlug      FieldType = "slug"
	TypeImage     FieldType = "image"
	TypeReference FieldType = "reference"
	TypeArray     FieldType = "array"
)

// Field describes a single field of a schema type
type Field struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`

	// String constraints
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Options   []string `json:"options,omitempty"`

	// Number constraints
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Reference constraints: schema type names the reference may point to
	To []string `json:"to,omitempty"`

	// Array constraints. Of describes the items; when nil the array
	// accepts any item shape.
	MinItems *int   `json:"min_items,omitempty"`
	MaxItems *int   `json:"max_items,omitempty"`
	Of       *Field `json:"of,omitempty"`
}

// SchemaType is a static, code-defined content type descriptor
type SchemaType struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

var (
	registry   = make(map[string]SchemaType)
	registryMu sync.RWMutex
)

// Register adds a schema type to the registry. Duplicate names panic
// because registration happens at startup from code.
func Register(st SchemaType) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if st.Name == "" {
		panic("schema: cannot register type with empty name")
	}
	if _, exists := registry[st.Name]; exists {
		panic(fmt.Sprintf("schema: type %q already registered", st.Name))
	}
	registry[st.Name] = st
}

// GetSchemaTypeByName looks up a registered schema type
func GetSchemaTypeByName(name string) (SchemaType, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	st, ok := registry[name]
	return st, ok
}

// All returns every registered schema type sorted by name
func All() []SchemaType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]SchemaType, 0, len(registry))
	for _, st := range registry {
		types = append(types, st)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name < types[j].Name
	})
	return types
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
