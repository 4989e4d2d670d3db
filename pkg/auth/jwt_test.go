package auth_test

import (
	"os"
	"strings"
	"testing"

	"eshop/pkg/auth"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0000000000abcd", true)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a three-segment JWT, got %q", token)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "64f1c0ffee0000000000abcd" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin lost in round trip")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(claims.IssuedAt.Time) {
		t.Error("expiry must be after issue time")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := auth.ValidateToken(tok); err == nil {
			t.Errorf("ValidateToken(%q) accepted", tok)
		}
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0000000000abcd", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	if _, err := auth.ValidateToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("sekret99")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "sekret99" {
		t.Fatal("hash equals plaintext")
	}
	if !auth.CheckPassword(hash, "sekret99") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "sekret98") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := auth.HashPassword("sekret99")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := auth.HashPassword("sekret99")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ")
	}
}
