package services

import (
	"strings"
	"testing"

	"autazul-backend-go/internal/models"
)

func TestTokenPairRoundTrip(t *testing.T) {
	user := models.User{ID: "u1", Email: "u@x.com", Role: models.RoleProfessional, IsAdmin: true, TokenVersion: 3}
	pair, err := testTokens.IssuePair(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := testTokens.Verify(pair.AccessToken, "access")
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != models.RoleProfessional || !claims.IsAdmin || claims.TokenVersion != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refresh, err := testTokens.Verify(pair.RefreshToken, "refresh")
	if err != nil || refresh.TokenVersion != 3 {
		t.Fatalf("verify refresh: %+v, %v", refresh, err)
	}

	_, err = testTokens.Verify(pair.RefreshToken, "access")
	expectCode(t, err, CodeUnauthorized)

	other := testTokens
	other.Secret = []byte("another-secret")
	_, err = other.Verify(pair.AccessToken, "access")
	expectCode(t, err, CodeUnauthorized)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := testTokens.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", hash)
	}
	if !testTokens.VerifyPassword("secret123", hash) {
		t.Fatal("password should verify")
	}
	if testTokens.VerifyPassword("secret124", hash) {
		t.Fatal("wrong password verified")
	}
	if testTokens.VerifyPassword("secret123", "not-a-hash") {
		t.Fatal("garbage hash verified")
	}
}
