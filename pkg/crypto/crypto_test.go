package crypto

import (
	"strings"
	"testing"
)

func TestHashTokenIsStableHex(t *testing.T) {
	first := HashToken("abc.def.ghi")
	if first != HashToken("abc.def.ghi") {
		t.Fatalf("expected stable digest")
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == HashToken("abc.def.ghj") {
		t.Fatalf("expected different digests for different tokens")
	}
}

func TestRandomCodeAlphabet(t *testing.T) {
	code, err := RandomCode(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 12 {
		t.Fatalf("unexpected length %d", len(code))
	}
	if strings.ContainsAny(code, "01OI") {
		t.Fatalf("code contains ambiguous characters: %s", code)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := ComparePassword(hash, "Secret123!"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := ComparePassword(hash, "secret123!"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}
