package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Flag is a three-valued boolean used for article status and category
// activity. The database stores it as a nullable BOOLEAN; "unset" and
// "false" are counted the same in reports but differ on creation
// defaults, so the distinction must survive round-trips.
type Flag int

const (
	FlagUnset Flag = iota
	FlagActive
	FlagInactive
)

// FlagFrom converts an optional boolean (as submitted by callers) to a Flag.
func FlagFrom(b *bool) Flag {
	switch {
	case b == nil:
		return FlagUnset
	case *b:
		return FlagActive
	default:
		return FlagInactive
	}
}

// IsActive reports whether the flag is explicitly true.
func (f Flag) IsActive() bool { return f == FlagActive }

// IsInactive reports whether the flag is false or unset. Reports count
// both as inactive.
func (f Flag) IsInactive() bool { return f != FlagActive }

// Bool returns the flag as an optional boolean (nil when unset).
func (f Flag) Bool() *bool {
	switch f {
	case FlagActive:
		b := true
		return &b
	case FlagInactive:
		b := false
		return &b
	default:
		return nil
	}
}

// Value implements driver.Valuer, mapping FlagUnset to SQL NULL.
func (f Flag) Value() (driver.Value, error) {
	switch f {
	case FlagUnset:
		return nil, nil
	case FlagActive:
		return true, nil
	case FlagInactive:
		return false, nil
	default:
		return nil, fmt.Errorf("invalid flag value %d", int(f))
	}
}

// Scan implements sql.Scanner, mapping SQL NULL to FlagUnset.
func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = FlagUnset
	case bool:
		if v {
			*f = FlagActive
		} else {
			*f = FlagInactive
		}
	default:
		return fmt.Errorf("cannot scan %T into Flag", src)
	}
	return nil
}

// MarshalJSON encodes the flag as null, true or false.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Bool())
}

// UnmarshalJSON accepts null, true or false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("flag must be true, false or null: %w", err)
	}
	*f = FlagFrom(b)
	return nil
}
