package httpapi

import (
	"net/http"
	"testing"
	"time"

	"autazul-backend-go/internal/cache"
	"autazul-backend-go/internal/services"
)

func TestSignupMeAndLogout(t *testing.T) {
	api := newTestAPI(t, nil)

	token, user := api.signup(t, " Ana@Example.com ", "Ana", "parent")
	if user["email"] != "ana@example.com" {
		t.Fatalf("email = %v", user["email"])
	}
	if user["isAdmin"] != true {
		t.Fatalf("first account should be admin: %v", user)
	}

	status, body := api.call(t, http.MethodGet, "/api/me", token, nil)
	expectStatus(t, status, http.StatusOK, body)
	me := body["user"].(map[string]interface{})
	if me["role"] != "parent" || me["twoFactorEnabled"] != false {
		t.Fatalf("me = %v", me)
	}

	status, body = api.call(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "ana@example.com", "password": "secret123", "name": "Other", "role": "parent",
	})
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeConflict)

	status, body = api.call(t, http.MethodPost, "/api/auth/logout", token, nil)
	expectStatus(t, status, http.StatusOK, body)

	status, body = api.call(t, http.MethodGet, "/api/me", token, nil)
	expectStatus(t, status, http.StatusUnauthorized, body)
	expectErrorCode(t, body, services.CodeUnauthorized)
}

func TestLoginAndRefresh(t *testing.T) {
	api := newTestAPI(t, nil)
	api.signup(t, "bia@example.com", "Bia", "professional")

	status, body := api.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "BIA@example.com", "password": "wrong-pass",
	})
	expectStatus(t, status, http.StatusUnauthorized, body)

	status, body = api.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "BIA@example.com", "password": "secret123",
	})
	expectStatus(t, status, http.StatusOK, body)
	refresh := body["refreshToken"].(string)
	access := body["accessToken"].(string)

	status, body = api.call(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": access})
	expectStatus(t, status, http.StatusUnauthorized, body)

	status, body = api.call(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh})
	expectStatus(t, status, http.StatusOK, body)
	if body["accessToken"] == "" {
		t.Fatalf("missing access token: %v", body)
	}

	status, body = api.call(t, http.MethodPost, "/api/auth/logout", access, nil)
	expectStatus(t, status, http.StatusOK, body)
	status, body = api.call(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh})
	expectStatus(t, status, http.StatusUnauthorized, body)
}

func TestAnonKeyIsTreatedAsAnonymous(t *testing.T) {
	api := newTestAPI(t, nil)

	status, body := api.call(t, http.MethodGet, "/api/me", testAnonKey, nil)
	expectStatus(t, status, http.StatusUnauthorized, body)

	status, body = api.call(t, http.MethodGet, "/api/settings", testAnonKey, nil)
	expectStatus(t, status, http.StatusOK, body)
	settings := body["settings"].(map[string]interface{})
	if settings["rotationSeconds"] != float64(5) {
		t.Fatalf("settings = %v", settings)
	}

	status, body = api.call(t, http.MethodGet, "/api/me", "not-a-jwt", nil)
	expectStatus(t, status, http.StatusUnauthorized, body)
}

func TestSecurityAndPasswordBumpVersion(t *testing.T) {
	api := newTestAPI(t, nil)
	token, user := api.signup(t, "ana@example.com", "Ana", "parent")
	version := user["version"].(float64)

	status, body := api.call(t, http.MethodPut, "/api/me/security", token, map[string]bool{"twoFactorEnabled": true})
	expectStatus(t, status, http.StatusOK, body)
	updated := body["user"].(map[string]interface{})
	if updated["twoFactorEnabled"] != true || updated["version"].(float64) <= version {
		t.Fatalf("security update = %v", updated)
	}

	status, body = api.call(t, http.MethodPut, "/api/me/password", token, map[string]string{
		"currentPassword": "secret123", "newPassword": "another123",
	})
	expectStatus(t, status, http.StatusOK, body)
	fresh := body["accessToken"].(string)

	status, body = api.call(t, http.MethodGet, "/api/me", token, nil)
	expectStatus(t, status, http.StatusUnauthorized, body)
	status, body = api.call(t, http.MethodGet, "/api/me", fresh, nil)
	expectStatus(t, status, http.StatusOK, body)
}

func TestInvalidPayload(t *testing.T) {
	api := newTestAPI(t, nil)
	req, _ := http.NewRequest(http.MethodPost, api.http.URL+"/api/auth/login", nil)
	status, body := api.do(t, req)
	expectStatus(t, status, http.StatusBadRequest, body)
	expectErrorCode(t, body, services.CodeValidation)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	api := newTestAPI(t, cache.NewMemoryLimiter(2, time.Minute))
	creds := map[string]string{"email": "nobody@example.com", "password": "secret123"}

	for i := 0; i < 2; i++ {
		status, body := api.call(t, http.MethodPost, "/api/auth/login", "", creds)
		expectStatus(t, status, http.StatusUnauthorized, body)
	}
	status, body := api.call(t, http.MethodPost, "/api/auth/login", "", creds)
	expectStatus(t, status, http.StatusTooManyRequests, body)
	expectErrorCode(t, body, services.CodeRateLimited)

	status, body = api.call(t, http.MethodGet, "/api/settings", "", nil)
	expectStatus(t, status, http.StatusOK, body)
}
