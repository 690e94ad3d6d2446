/**
 * @description
 * JSON-backed array column helpers shared by the Event/Market models.
 * Mirrors the teacher's StringArray scanner/valuer but adds a float64 variant
 * for outcome_prices, since Postgres TEXT[]/DOUBLE PRECISION[] round-trips
 * awkwardly through database/sql without a native array driver.
 *
 * @dependencies
 * - database/sql/driver
 * - encoding/json
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringArray is a helper type to handle string arrays in Postgres (TEXT[])
type StringArray []string

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("type assertion failed for StringArray")
	}
}

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// FloatArray is a helper type to handle float64 arrays (outcome_prices)
type FloatArray []float64

func (a *FloatArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("type assertion failed for FloatArray")
	}
}

func (a FloatArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// JSONMap is a helper type for the opaque structured metadata on sync_state rows.
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		if len(v) == 0 {
			*m = nil
			return nil
		}
		return json.Unmarshal(v, m)
	case string:
		if v == "" {
			*m = nil
			return nil
		}
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("type assertion failed for JSONMap")
	}
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}
