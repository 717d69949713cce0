package services

import (
	"context"
	"testing"

	"autazul-backend-go/internal/models"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	first := mustSignup(t, database, " First@X.com ", "First", models.RoleParent)
	if first.Email != "first@x.com" || !first.IsAdmin || first.Version != 1 {
		t.Fatalf("unexpected first user: %+v", first)
	}

	listed, err := Signup(ctx, database, testTokens, []string{"boss@x.com"}, SignupInput{
		Email: "BOSS@x.com", Password: "secret123", Name: "Boss", Role: models.RoleProfessional,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !listed.IsAdmin {
		t.Fatal("listed admin email should become admin")
	}

	tests := []struct {
		name string
		in   SignupInput
		code Code
	}{
		{"duplicate", SignupInput{Email: "first@x.com", Password: "secret123", Name: "Dup", Role: models.RoleParent}, CodeConflict},
		{"bad email", SignupInput{Email: "nope", Password: "secret123", Name: "X", Role: models.RoleParent}, CodeValidation},
		{"short password", SignupInput{Email: "x@x.com", Password: "123", Name: "X", Role: models.RoleParent}, CodeValidation},
		{"no name", SignupInput{Email: "x@x.com", Password: "secret123", Role: models.RoleParent}, CodeValidation},
		{"bad role", SignupInput{Email: "x@x.com", Password: "secret123", Name: "X", Role: "admin"}, CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Signup(ctx, database, testTokens, nil, tt.in)
			expectCode(t, err, tt.code)
		})
	}
}

func TestAuthenticateAndVersions(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	user := mustSignup(t, database, "u@x.com", "User", models.RoleParent)

	if _, err := Authenticate(ctx, database, testTokens, "U@X.COM", "secret123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	_, err := Authenticate(ctx, database, testTokens, "u@x.com", "wrong")
	expectCode(t, err, CodeUnauthorized)
	_, err = Authenticate(ctx, database, testTokens, "ghost@x.com", "secret123")
	expectCode(t, err, CodeUnauthorized)

	secured, err := UpdateSecurity(ctx, database, user.ID, true)
	if err != nil {
		t.Fatalf("security: %v", err)
	}
	if !secured.TwoFactorEnabled || secured.Version != user.Version+1 || secured.TokenVersion != user.TokenVersion {
		t.Fatalf("unexpected user after security update: %+v", secured)
	}

	_, err = ChangePassword(ctx, database, testTokens, user.ID, "wrong", "newsecret")
	expectCode(t, err, CodeValidation)
	changed, err := ChangePassword(ctx, database, testTokens, user.ID, "secret123", "newsecret")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if changed.Version != secured.Version+1 || changed.TokenVersion != secured.TokenVersion+1 {
		t.Fatalf("versions not bumped: %+v", changed)
	}
	if _, err := Authenticate(ctx, database, testTokens, "u@x.com", "newsecret"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}

	if err := RevokeSessions(ctx, database, user.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := GetUser(ctx, database, user.ID)
	if err != nil || revoked.TokenVersion != changed.TokenVersion+1 {
		t.Fatalf("token version = %d, %v", revoked.TokenVersion, err)
	}
}

func TestGrantAdmin(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	admin := mustSignup(t, database, "admin@x.com", "Admin", models.RoleParent)
	mustSignup(t, database, "u@x.com", "User", models.RoleParent)

	granted, err := GrantAdmin(ctx, database, admin.ID, "  U@x.com")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !granted.IsAdmin {
		t.Fatal("user should be admin")
	}
	_, err = GrantAdmin(ctx, database, admin.ID, "ghost@x.com")
	expectCode(t, err, CodeUserNotFound)

	logs, err := ListAuditLogs(ctx, database, 10)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	found := false
	for _, entry := range logs {
		if entry.Action == "admin.grant" && entry.TargetID == granted.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("grant not audited: %+v", logs)
	}
}
