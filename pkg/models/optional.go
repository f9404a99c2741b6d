package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OptionalID is a nullable foreign key in a patch body. A key missing from the
// JSON object leaves Set false (unchanged); an explicit null sets Set with a
// nil Value (clear); a number sets both.
type OptionalID struct {
	Set   bool
	Value *uint
}

func SomeID(id uint) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

func NullID() OptionalID {
	return OptionalID{Set: true}
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("expected an id or null: %w", err)
	}
	o.Value = &id
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Column value for a gorm Updates map.
func (o OptionalID) column() any {
	if o.Value == nil {
		return nil
	}
	return *o.Value
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// ParseDate accepts a calendar date or an RFC3339 timestamp. Blank input
// yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", value)
}

// setDate writes a patch date into changes: nil leaves the column alone, a
// blank string clears it.
func setDate(changes map[string]any, column, field string, value *string, invalid *[]string) {
	if value == nil {
		return
	}
	t, err := ParseDate(*value)
	if err != nil {
		*invalid = append(*invalid, field)
		return
	}
	if t == nil {
		changes[column] = nil
		return
	}
	changes[column] = *t
}

func setString(changes map[string]any, column string, value *string) {
	if value != nil {
		changes[column] = *value
	}
}
