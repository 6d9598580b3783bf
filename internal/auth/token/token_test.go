package token

import "testing"

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	b, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if a == b {
		t.Fatal("expected two generated tokens to differ")
	}
	if len(a) == 0 {
		t.Fatal("expected non-empty token")
	}
}

func TestHashSHA256IsStable(t *testing.T) {
	if HashSHA256("refresh-token") != HashSHA256("refresh-token") {
		t.Fatal("expected identical input to hash identically")
	}
	if HashSHA256("refresh-token") == HashSHA256("other-token") {
		t.Fatal("expected different inputs to hash differently")
	}
	if len(HashSHA256("refresh-token")) != 64 {
		t.Fatal("expected hex-encoded sha256 digest")
	}
}
