package services

import (
	"context"
	"strings"
	"time"

	"autazul-backend-go/internal/config"
	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, name, role, is_admin, two_factor_enabled, version, token_version, created_at, updated_at, last_login_at`

const minPasswordLength = 6

var nowFunc = func() time.Time { return time.Now().UTC() }

type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

func (in SignupInput) validate() (SignupInput, error) {
	in.Email = config.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return in, ErrBadRequest("A valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return in, ErrBadRequest("Password must have at least 6 characters")
	}
	if in.Name == "" {
		return in, ErrBadRequest("Name is required")
	}
	if !in.Role.Valid() {
		return in, ErrBadRequest("Role must be parent or professional")
	}
	return in, nil
}

// Signup creates an account. The very first account, and any account whose
// email is listed in adminEmails, is created as an administrator.
func Signup(ctx context.Context, database *db.DB, tokens TokenService, adminEmails []string, in SignupInput) (models.User, error) {
	in, err := in.validate()
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	err = database.WithTx(ctx, func(tx *db.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
			return err
		}
		isAdmin := count == 0 || containsString(adminEmails, in.Email)
		created, err := createUser(ctx, tx, tokens, in, isAdmin)
		if err != nil {
			return err
		}
		user = created
		return RecordAudit(ctx, tx, &created.ID, "user.signup", "user", created.ID, string(created.Role))
	})
	return user, err
}

// createUser inserts a validated account. Callers own the transaction.
func createUser(ctx context.Context, q db.Querier, tokens TokenService, in SignupInput, isAdmin bool) (models.User, error) {
	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, in.Email); err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrConflict(CodeConflict, "An account with this email already exists")
	}
	hash, err := tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	now := nowFunc()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
		IsAdmin:      isAdmin,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, name, role, is_admin, two_factor_enabled, version, token_version, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
`, user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.IsAdmin, false, user.Version, 0, now, now)
	if err != nil {
		return models.User{}, WrapError(err, "insert user")
	}
	return user, nil
}

func Authenticate(ctx context.Context, q db.Querier, tokens TokenService, email, password string) (models.User, error) {
	email = config.NormalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, ErrUnauthorized("Authentication failed")
	}
	user, err := GetUserByEmail(ctx, q, email)
	if err != nil {
		if HasCode(err, CodeUserNotFound) {
			return models.User{}, ErrUnauthorized("Authentication failed")
		}
		return models.User{}, err
	}
	if !tokens.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrUnauthorized("Authentication failed")
	}
	_ = SetLastLogin(ctx, q, user.ID)
	return user, nil
}

func GetUser(ctx context.Context, q db.Querier, userID string) (models.User, error) {
	var user models.User
	err := q.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	if db.IsNoRows(err) {
		return models.User{}, errWithCode(404, CodeUserNotFound, "User not found")
	}
	return user, err
}

func GetUserByEmail(ctx context.Context, q db.Querier, email string) (models.User, error) {
	var user models.User
	err := q.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, config.NormalizeEmail(email))
	if db.IsNoRows(err) {
		return models.User{}, errWithCode(404, CodeUserNotFound, "No account is registered with this email")
	}
	return user, err
}

func SetLastLogin(ctx context.Context, q db.Querier, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, nowFunc(), userID)
	return err
}

// RevokeSessions invalidates every token issued to the user so far.
func RevokeSessions(ctx context.Context, q db.Querier, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET token_version = token_version + 1, updated_at = ? WHERE id = ?`, nowFunc(), userID)
	return err
}

// UpdateSecurity changes the account's security settings and bumps the
// user version so clients drop their cached copy.
func UpdateSecurity(ctx context.Context, q db.Querier, userID string, twoFactorEnabled bool) (models.User, error) {
	res, err := q.ExecContext(ctx, `
UPDATE users SET two_factor_enabled = ?, version = version + 1, updated_at = ? WHERE id = ?
`, twoFactorEnabled, nowFunc(), userID)
	if err != nil {
		return models.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.User{}, errWithCode(404, CodeUserNotFound, "User not found")
	}
	return GetUser(ctx, q, userID)
}

func ChangePassword(ctx context.Context, q db.Querier, tokens TokenService, userID, current, next string) (models.User, error) {
	user, err := GetUser(ctx, q, userID)
	if err != nil {
		return models.User{}, err
	}
	if !tokens.VerifyPassword(current, user.PasswordHash) {
		return models.User{}, ErrBadRequest("Current password is incorrect")
	}
	if len(next) < minPasswordLength {
		return models.User{}, ErrBadRequest("Password must have at least 6 characters")
	}
	hash, err := tokens.HashPassword(next)
	if err != nil {
		return models.User{}, err
	}
	_, err = q.ExecContext(ctx, `
UPDATE users
SET password_hash = ?, version = version + 1, token_version = token_version + 1, updated_at = ?
WHERE id = ?
`, hash, nowFunc(), userID)
	if err != nil {
		return models.User{}, err
	}
	return GetUser(ctx, q, userID)
}

// GrantAdmin promotes the account registered under email.
func GrantAdmin(ctx context.Context, q db.Querier, actorID, email string) (models.User, error) {
	user, err := GetUserByEmail(ctx, q, email)
	if err != nil {
		return models.User{}, err
	}
	if user.IsAdmin {
		return user, nil
	}
	if _, err := q.ExecContext(ctx, `UPDATE users SET is_admin = ?, version = version + 1, updated_at = ? WHERE id = ?`, true, nowFunc(), user.ID); err != nil {
		return models.User{}, err
	}
	if err := RecordAudit(ctx, q, &actorID, "admin.grant", "user", user.ID, user.Email); err != nil {
		return models.User{}, err
	}
	return GetUser(ctx, q, user.ID)
}

func containsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
