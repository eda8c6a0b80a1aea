package domain

import (
	"encoding/json"
	"testing"
)

func TestDate_WireFormat(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}

	b, err := json.Marshal(Group{ID: 1, Name: "Family Savings", StartDate: d})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["start_date"] != "2024-01-15" {
		t.Errorf("expected start_date 2024-01-15, got %v", decoded["start_date"])
	}
}

func TestParseDate_RejectsOtherFormats(t *testing.T) {
	for _, s := range []string{"15/01/2024", "2024-1-15", "January 15, 2024", ""} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Username: "alice", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for key := range decoded {
		if key == "password_hash" {
			t.Fatal("password hash must not appear in JSON output")
		}
	}
}
