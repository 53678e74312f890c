package models

import (
	"encoding/json"
	"testing"
)

func TestFlagScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Flag
	}{
		{"null", nil, FlagUnset},
		{"true", true, FlagActive},
		{"false", false, FlagInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flag
			if err := f.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%v): %v", tt.src, err)
			}
			if f != tt.want {
				t.Errorf("Scan(%v): got %v, want %v", tt.src, f, tt.want)
			}
		})
	}

	var f Flag
	if err := f.Scan("yes"); err == nil {
		t.Error("expected error scanning a string")
	}
}

func TestFlagValue(t *testing.T) {
	v, err := FlagUnset.Value()
	if err != nil || v != nil {
		t.Errorf("unset: got (%v, %v), want (nil, nil)", v, err)
	}
	v, err = FlagActive.Value()
	if err != nil || v != true {
		t.Errorf("active: got (%v, %v), want (true, nil)", v, err)
	}
	v, err = FlagInactive.Value()
	if err != nil || v != false {
		t.Errorf("inactive: got (%v, %v), want (false, nil)", v, err)
	}
}

func TestFlagRoundTripJSON(t *testing.T) {
	for _, f := range []Flag{FlagUnset, FlagActive, FlagInactive} {
		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal %v: %v", f, err)
		}
		var got Flag
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != f {
			t.Errorf("round trip %v: got %v", f, got)
		}
	}

	var f Flag
	if err := json.Unmarshal([]byte(`"yes"`), &f); err == nil {
		t.Error("expected error unmarshaling a string")
	}
}

func TestFlagCounting(t *testing.T) {
	// Unset counts as inactive, exactly like explicit false.
	if FlagUnset.IsActive() || !FlagUnset.IsInactive() {
		t.Error("unset must count as inactive")
	}
	if !FlagActive.IsActive() || FlagActive.IsInactive() {
		t.Error("active must not count as inactive")
	}
	if FlagInactive.IsActive() || !FlagInactive.IsInactive() {
		t.Error("false must count as inactive")
	}
}

func TestFlagFrom(t *testing.T) {
	if FlagFrom(nil) != FlagUnset {
		t.Error("nil should map to unset")
	}
	b := true
	if FlagFrom(&b) != FlagActive {
		t.Error("true should map to active")
	}
	b = false
	if FlagFrom(&b) != FlagInactive {
		t.Error("false should map to inactive")
	}
}

func TestRoleValid(t *testing.T) {
	if RoleAdmin.Valid() {
		t.Error("admin role must not be storable")
	}
	if !RoleStaff.Valid() || !RoleLecturer.Valid() {
		t.Error("staff and lecturer roles must be storable")
	}
	if Role(3).Valid() {
		t.Error("unknown role must not be storable")
	}
}
