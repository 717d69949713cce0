package services

import (
	"context"
	"testing"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/testfixtures"
)

var testTokens = TokenService{
	Secret:     []byte("test-secret"),
	Issuer:     "autazul-test",
	AccessTTL:  time.Hour,
	RefreshTTL: 24 * time.Hour,
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	return testfixtures.OpenSQLite(t)
}

func mustSignup(t *testing.T, database *db.DB, email, name string, role models.Role) models.User {
	t.Helper()
	user, err := Signup(context.Background(), database, testTokens, nil, SignupInput{
		Email:    email,
		Password: "secret123",
		Name:     name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return user
}

func mustCreateChild(t *testing.T, database *db.DB, owner models.User, name, birthDate string) models.Child {
	t.Helper()
	child, err := CreateChild(context.Background(), database, owner, ChildInput{Name: name, BirthDate: birthDate})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

// freezeClock pins nowFunc for the duration of the test.
func freezeClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	current := at
	previous := nowFunc
	nowFunc = func() time.Time { return current }
	t.Cleanup(func() { nowFunc = previous })
	return &current
}

func expectCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
