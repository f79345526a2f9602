package auth

import (
	"strings"
	"testing"
	"time"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv(envJWTSecret, "test-secret-please-rotate")
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}

	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("not-a-bcrypt-hash", "s3cret") {
		t.Error("invalid hash accepted")
	}
}

func TestGenerateAndParseJWT(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateJWT("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("malformed JWT: %s", token)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != "admin" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("expected a future expiry")
	}
}

func TestParseJWT_RejectsGarbage(t *testing.T) {
	setTestSecret(t)

	if _, err := ParseJWT(""); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := ParseJWT("not.a.jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestParseJWT_RejectsWrongSecret(t *testing.T) {
	setTestSecret(t)
	token, err := GenerateJWT("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	t.Setenv(envJWTSecret, "a-different-secret")
	if _, err := ParseJWT(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestParseJWTExpiry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"1", time.Hour},
		{"48", 48 * time.Hour},
		{"junk", 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := parseJWTExpiry(tc.in); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
