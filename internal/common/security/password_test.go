package security

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("securepassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "securepassword" || strings.Contains(hash, "securepassword") {
		t.Fatal("hash must not contain the plaintext")
	}

	if !CheckPasswordHash("securepassword", hash) {
		t.Error("correct password should verify")
	}
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("securepassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("securepassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ")
	}
}
