package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName     = errors.New("empty object name")
	ErrUnknownStatus = errors.New("unknown status")
)

// Status is the label of the last event recorded for an object.
// The empty Status means "none" and is stored as null.
type Status string

const (
	StatusRaised  Status = "Subiu"
	StatusLowered Status = "Desceu"
	StatusReady   Status = "Pronto"
)

// Statuses lists the recognized values in menu order.
var Statuses = []Status{StatusRaised, StatusLowered, StatusReady}

// ParseStatus matches s against the recognized labels, ignoring case and
// surrounding spaces.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) String() string { return string(s) }

func (s Status) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Status(raw)
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = Status(v)
	case []byte:
		*s = Status(v)
	default:
		return fmt.Errorf("Status.Scan: unsupported type %T", src)
	}
	return nil
}
