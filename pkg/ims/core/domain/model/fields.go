package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is a key-value payload persisted as JSON (e.g., dataset metadata).
type Document map[string]interface{}

// Value implements the `driver.Valuer` interface, converting the Document to a JSON string.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a Document.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = make(Document)
		return nil
	}
	b, err := payloadBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for Document: %T", value)
	}
	if len(b) == 0 {
		*d = make(Document)
		return nil
	}
	if err := json.Unmarshal(b, d); err != nil {
		return fmt.Errorf("failed to unmarshal Document JSON: %w", err)
	}
	return nil
}

// StatsPayload is a versioned structured blob holding per-formula summary statistics.
// Its internal shape is schema-on-read: producers set Version, and consumers
// interpret Values according to that version.
type StatsPayload struct {
	Version int                    `json:"version"`
	Values  map[string]interface{} `json:"values"`
}

// NewStatsPayload creates a StatsPayload at the current payload version.
func NewStatsPayload(values map[string]interface{}) StatsPayload {
	if values == nil {
		values = make(map[string]interface{})
	}
	return StatsPayload{Version: StatsPayloadVersion, Values: values}
}

// StatsPayloadVersion is the payload version written by this build.
const StatsPayloadVersion = 1

// Value implements the `driver.Valuer` interface, converting the StatsPayload to a JSON string.
func (p StatsPayload) Value() (driver.Value, error) {
	if p.Values == nil {
		p.Values = make(map[string]interface{})
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a StatsPayload.
func (p *StatsPayload) Scan(value interface{}) error {
	if value == nil {
		*p = StatsPayload{Values: make(map[string]interface{})}
		return nil
	}
	b, err := payloadBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for StatsPayload: %T", value)
	}
	if len(b) == 0 {
		*p = StatsPayload{Values: make(map[string]interface{})}
		return nil
	}
	if err := json.Unmarshal(b, p); err != nil {
		return fmt.Errorf("failed to unmarshal StatsPayload JSON: %w", err)
	}
	return nil
}

// MemberList is a list of formula group members persisted as JSON.
type MemberList []FormulaGroupMember

// Value implements the `driver.Valuer` interface, converting the MemberList to a JSON string.
func (ml MemberList) Value() (driver.Value, error) {
	if ml == nil {
		return "[]", nil
	}
	data, err := json.Marshal(ml)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a MemberList.
func (ml *MemberList) Scan(value interface{}) error {
	if value == nil {
		*ml = make(MemberList, 0)
		return nil
	}
	b, err := payloadBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for MemberList: %T", value)
	}
	if len(b) == 0 {
		*ml = make(MemberList, 0)
		return nil
	}
	if err := json.Unmarshal(b, ml); err != nil {
		return fmt.Errorf("failed to unmarshal MemberList JSON: %w", err)
	}
	return nil
}

// PeakList is a list of (m/z, intensity) samples persisted as JSON.
type PeakList []PeakSample

// Value implements the `driver.Valuer` interface, converting the PeakList to a JSON string.
func (pl PeakList) Value() (driver.Value, error) {
	if pl == nil {
		return "[]", nil
	}
	data, err := json.Marshal(pl)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a PeakList.
func (pl *PeakList) Scan(value interface{}) error {
	if value == nil {
		*pl = make(PeakList, 0)
		return nil
	}
	b, err := payloadBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for PeakList: %T", value)
	}
	if len(b) == 0 {
		*pl = make(PeakList, 0)
		return nil
	}
	if err := json.Unmarshal(b, pl); err != nil {
		return fmt.Errorf("failed to unmarshal PeakList JSON: %w", err)
	}
	return nil
}

// IntList is a list of integers persisted as a JSON array.
type IntList []int

// Value implements the `driver.Valuer` interface, converting the IntList to a JSON string.
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to an IntList.
func (l *IntList) Scan(value interface{}) error {
	return scanList(value, l, "IntList")
}

// StringList is a list of strings persisted as a JSON array.
type StringList []string

// Value implements the `driver.Valuer` interface, converting the StringList to a JSON string.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a StringList.
func (l *StringList) Scan(value interface{}) error {
	return scanList(value, l, "StringList")
}

// FloatList is a list of floats persisted as a JSON array.
type FloatList []float64

// Value implements the `driver.Valuer` interface, converting the FloatList to a JSON string.
func (l FloatList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to a FloatList.
func (l *FloatList) Scan(value interface{}) error {
	return scanList(value, l, "FloatList")
}

// scanList decodes a JSON array database value into target.
func scanList(value interface{}, target interface{}, typeName string) error {
	if value == nil {
		return json.Unmarshal([]byte("[]"), target)
	}
	b, err := payloadBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported Scan type for %s: %T", typeName, value)
	}
	if len(b) == 0 {
		return json.Unmarshal([]byte("[]"), target)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w", typeName, err)
	}
	return nil
}

// payloadBytes normalizes a database value to a byte slice for JSON decoding.
func payloadBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported payload type: %T", value)
	}
}
