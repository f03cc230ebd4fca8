package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPropertiesValidate(t *testing.T) {
	t.Parallel()
	valid := Properties{
		"string": "value",
		"number": 3.14,
		"int":    7,
		"bool":   true,
		"null":   nil,
		"list":   []any{"a", float64(1), false},
		"nested": map[string]any{"inner": map[string]any{"deep": "ok"}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid bag to pass, got %v", err)
	}

	invalid := Properties{"ch": make(chan int)}
	if err := invalid.Validate(); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Errorf("Expected ErrInvalidPropertyValue, got %v", err)
	}

	nestedInvalid := Properties{"list": []any{map[string]any{"bad": struct{}{}}}}
	if err := nestedInvalid.Validate(); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Errorf("Expected ErrInvalidPropertyValue for nested value, got %v", err)
	}
}

func TestPropertiesJSONRoundTrip(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"max_iterations": 5, "depth": "thorough", "flags": {"cache": false}}`)

	var props Properties
	if err := json.Unmarshal(raw, &props); err != nil {
		t.Fatalf("Expected unmarshal to succeed, got %v", err)
	}

	// Anything encoding/json produces is within the variant set.
	if err := props.Validate(); err != nil {
		t.Errorf("Expected decoded bag to validate, got %v", err)
	}

	if props["depth"] != "thorough" {
		t.Errorf("Expected depth thorough, got %v", props["depth"])
	}
}
