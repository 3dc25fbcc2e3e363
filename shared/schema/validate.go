package schema

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ValidationError describes a single field failing validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateDocument checks every field of the schema type against the given
// draft data. It is read-only and collects one error per failing field;
// publish aborts when the result is non-empty.
func ValidateDocument(st SchemaType, data map[string]interface{}) []ValidationError {
	var errors []ValidationError

	for _, field := range st.Fields {
		if err := ValidateField(field, data[field.Name]); err != nil {
			errors = append(errors, ValidationError{
				Field:   field.Name,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// ValidateField checks a single value against its field definition
func ValidateField(field Field, value interface{}) error {
	if value == nil {
		if field.Required {
			return fmt.Errorf("field is required")
		}
		return nil
	}

	switch field.Type {
	case TypeString, TypeText:
		return validateString(field, value)
	case TypeSlug:
		return validateSlug(field, value)
	case TypeNumber:
		return validateNumber(field, value)
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected a boolean, got %T", value)
		}
		return nil
	case TypeDatetime:
		return validateDatetime(value)
	case TypeImage:
		return validateImage(value)
	case TypeReference:
		return validateReference(field, value)
	case TypeArray:
		return validateArray(field, value)
	default:
		return fmt.Errorf("unknown field type %q", field.Type)
	}
}

func validateString(field Field, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", value)
	}

	if field.Required && s == "" {
		return fmt.Errorf("field is required")
	}
	if field.MinLength != nil && len(s) < *field.MinLength {
		return fmt.Errorf("must be at least %d characters", *field.MinLength)
	}
	if field.MaxLength != nil && len(s) > *field.MaxLength {
		return fmt.Errorf("must be at most %d characters", *field.MaxLength)
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern in schema: %v", err)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("does not match pattern %s", field.Pattern)
		}
	}
	if len(field.Options) > 0 {
		for _, opt := range field.Options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", field.Options)
	}

	return nil
}

func validateSlug(field Field, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", value)
	}
	if field.Required && s == "" {
		return fmt.Errorf("field is required")
	}
	if s != "" && !slugPattern.MatchString(s) {
		return fmt.Errorf("must be lowercase letters, digits and dashes")
	}
	return nil
}

func validateNumber(field Field, value interface{}) error {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return fmt.Errorf("expected a number, got %T", value)
	}

	if field.Min != nil && n < *field.Min {
		return fmt.Errorf("must be at least %v", *field.Min)
	}
	if field.Max != nil && n > *field.Max {
		return fmt.Errorf("must be at most %v", *field.Max)
	}
	return nil
}

func validateDatetime(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected an RFC3339 datetime string, got %T", value)
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return fmt.Errorf("invalid datetime: %v", err)
	}
	return nil
}

func validateImage(value interface{}) error {
	m, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected an image object, got %T", value)
	}
	assetID, ok := m["asset_id"].(string)
	if !ok || assetID == "" {
		return fmt.Errorf("image is missing asset_id")
	}
	if _, err := uuid.Parse(assetID); err != nil {
		return fmt.Errorf("invalid asset_id: %v", err)
	}
	return nil
}

func validateReference(field Field, value interface{}) error {
	m, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected a reference object, got %T", value)
	}
	if t, _ := m["_type"].(string); t != "reference" {
		return fmt.Errorf("reference object must have _type \"reference\"")
	}
	ref, ok := m["_ref"].(string)
	if !ok || ref == "" {
		return fmt.Errorf("reference is missing _ref")
	}
	if _, err := uuid.Parse(ref); err != nil {
		return fmt.Errorf("invalid _ref: %v", err)
	}
	return nil
}

func validateArray(field Field, value interface{}) error {
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("expected an array, got %T", value)
	}
	if field.MinItems != nil && len(items) < *field.MinItems {
		return fmt.Errorf("must have at least %d items", *field.MinItems)
	}
	if field.MaxItems != nil && len(items) > *field.MaxItems {
		return fmt.Errorf("must have at most %d items", *field.MaxItems)
	}
	if field.Of != nil {
		for i, item := range items {
			if item == nil {
				return fmt.Errorf("item %d: must not be null", i)
			}
			if err := ValidateField(*field.Of, item); err != nil {
				return fmt.Errorf("item %d: %v", i, err)
			}
		}
	}
	return nil
}

// ResolveTypeFunc returns the schema type name of a referenced document,
// or false when no such document exists
type ResolveTypeFunc func(id uuid.UUID) (string, bool)

// ValidateReferenceTargets enforces the To constraint of reference fields:
// every reference (including items of reference arrays) must resolve to an
// existing document whose type is listed in To. Values whose shape already
// failed ValidateDocument are skipped; this check only covers what a
// shape check cannot see.
func ValidateReferenceTargets(st SchemaType, data map[string]interface{}, resolve ResolveTypeFunc) []ValidationError {
	var errors []ValidationError

	for _, field := range st.Fields {
		value := data[field.Name]
		if value == nil {
			continue
		}

		switch field.Type {
		case TypeReference:
			if msg := checkReferenceTarget(field, value, resolve); msg != "" {
				errors = append(errors, ValidationError{Field: field.Name, Message: msg})
			}
		case TypeArray:
			if field.Of == nil || field.Of.Type != TypeReference {
				continue
			}
			items, ok := value.([]interface{})
			if !ok {
				continue
			}
			for i, item := range items {
				if msg := checkReferenceTarget(*field.Of, item, resolve); msg != "" {
					errors = append(errors, ValidationError{
						Field:   fmt.Sprintf("%s[%d]", field.Name, i),
						Message: msg,
					})
					break
				}
			}
		}
	}

	return errors
}

func checkReferenceTarget(field Field, value interface{}, resolve ResolveTypeFunc) string {
	if len(field.To) == 0 {
		return ""
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return ""
	}
	ref, _ := m["_ref"].(string)
	id, err := uuid.Parse(ref)
	if err != nil {
		return ""
	}

	targetType, found := resolve(id)
	if !found {
		return fmt.Sprintf("referenced document %s does not exist", ref)
	}
	for _, allowed := range field.To {
		if targetType == allowed {
			return ""
		}
	}
	return fmt.Sprintf("must reference one of %v, got %q", field.To, targetType)
}
