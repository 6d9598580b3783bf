package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("s3cret-passw0rd")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret-passw0rd" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := Compare(hash, "s3cret-passw0rd"); err != nil {
		t.Fatalf("expected matching password to compare clean: %v", err)
	}
	if err := Compare(hash, "wrong-password"); err == nil {
		t.Fatal("expected mismatched password to fail comparison")
	}
}
