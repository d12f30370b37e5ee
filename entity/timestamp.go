package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Timestamp is a local wall-clock instant with second precision.
// It is stored as text in TimestampLayout, never as a native time type.
type Timestamp struct {
	time.Time
}

// NewTimestamp drops sub-second precision and moves t to the local zone.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.In(time.Local).Truncate(time.Second)}
}

func ParseTimestamp(s string) (*Timestamp, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return nil, err
	}
	return &Timestamp{Time: t}, nil
}

// MustParseTimestamp is meant for literals in tests and fixtures.
func MustParseTimestamp(s string) *Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func (t Timestamp) String() string { return t.Format(TimestampLayout) }

// Date is the YYYY-MM-DD part of the timestamp.
func (t Timestamp) Date() string { return t.Format(DateLayout) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *Timestamp) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		// some drivers hand back parsed values for date-like text
		*t = *NewTimestamp(v)
		return nil
	default:
		return fmt.Errorf("Timestamp.Scan: unsupported type %T", src)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return fmt.Errorf("Timestamp.Scan: %w", err)
	}
	*t = *parsed
	return nil
}
