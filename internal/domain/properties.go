package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPropertyValue is returned when a Properties bag contains a value
// outside the supported JSON variant set.
var ErrInvalidPropertyValue = errors.New("property value must be a string, number, boolean, null, list, or nested map")

// Properties is an opaque key-value bag persisted as JSONB. Values are
// restricted to the shapes encoding/json produces when decoding into any:
// string, bool, float64, nil, []any, and map[string]any (nested to any
// depth). This keeps the bag arbitrary-JSON flexible while rejecting values
// that could not round-trip through the database.
type Properties map[string]any

// Validate checks every value in the bag against the supported variant set.
func (p Properties) Validate() error {
	for key, value := range p {
		if err := validatePropertyValue(value); err != nil {
			return fmt.Errorf("%w: key %q", err, key)
		}
	}
	return nil
}

func validatePropertyValue(value any) error {
	switch v := value.(type) {
	case nil, string, bool, float64, int, int64:
		return nil
	case []any:
		for _, item := range v {
			if err := validatePropertyValue(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for _, item := range v {
			if err := validatePropertyValue(item); err != nil {
				return err
			}
		}
		return nil
	case Properties:
		return v.Validate()
	default:
		return ErrInvalidPropertyValue
	}
}
