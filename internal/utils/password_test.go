package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcd123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Abcd123!" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "Abcd123!") {
		t.Error("correct password did not verify")
	}
	if VerifyPassword(hash, "abcd123!") {
		t.Error("wrong password verified")
	}
	if VerifyPassword("not-a-bcrypt-hash", "Abcd123!") {
		t.Error("garbage hash verified")
	}
}

// Distinct salts: hashing the same password twice must differ.
func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("Abcd123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("Abcd123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{name: "valid", password: "Abcd123!", wantOK: true},
		{name: "too short", password: "Ab1!", wantOK: false},
		{name: "no lowercase", password: "ABCD123!", wantOK: false},
		{name: "no uppercase", password: "abcd123!", wantOK: false},
		{name: "no digit", password: "Abcdefg!", wantOK: false},
		{name: "no symbol", password: "Abcd1234", wantOK: false},
		{name: "empty", password: "", wantOK: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := CheckPasswordPolicy(test.password)
			if test.wantOK && msg != "" {
				t.Errorf("CheckPasswordPolicy(%q) = %q, want pass", test.password, msg)
			}
			if !test.wantOK && msg == "" {
				t.Errorf("CheckPasswordPolicy(%q) passed, want violation", test.password)
			}
		})
	}
}
