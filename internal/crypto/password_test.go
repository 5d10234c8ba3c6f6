package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("longpassw0rd")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "longpassw0rd" {
		t.Fatalf("expected hash to differ from the plaintext")
	}
	if err := CheckPassword(hash, "longpassw0rd"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrongpassword"); err == nil {
		t.Fatalf("expected password mismatch")
	}
	if err := CheckPassword(hash, ""); err == nil {
		t.Fatalf("expected empty password mismatch")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("longpassw0rd")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	second, err := HashPassword("longpassw0rd")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same password")
	}
}
