package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("geheim")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "geheim" {
		t.Fatal("expected hash to differ from password")
	}
	if !CheckPassword(hash, "geheim") {
		t.Error("expected matching password to check")
	}
	if CheckPassword(hash, "falsch") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword("not-a-hash", "geheim") {
		t.Error("expected malformed hash to fail")
	}
}
