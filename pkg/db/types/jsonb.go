package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB is a raw JSON document persisted in a jsonb column.
type JSONB json.RawMessage

// Value returns the document as-is for Postgres, defaulting to {}.
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return []byte(j), nil
}

// Scan decodes a jsonb column into the raw document.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		*j = JSONB([]byte(v))
	case []byte:
		buf := make([]byte, len(v))
		copy(buf, v)
		*j = JSONB(buf)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return nil
}

// MarshalJSON returns the document unchanged, or null when empty.
func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON stores the document unchanged.
func (j *JSONB) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("jsonb: unmarshal into nil pointer")
	}
	*j = JSONB(append((*j)[0:0], data...))
	return nil
}

// FromValue marshals any value into a JSONB document.
func FromValue(v any) (JSONB, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONB(buf), nil
}
