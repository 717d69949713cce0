package httpapi

import (
	"net/http"
	"testing"

	"autazul-backend-go/internal/services"
)

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	adminToken, _ := api.signup(t, "root@example.com", "Root", "parent")
	userToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")

	status, body := api.call(t, http.MethodGet, "/api/admin/audit-logs", userToken, nil)
	expectStatus(t, status, http.StatusForbidden, body)
	expectErrorCode(t, body, services.CodeForbidden)

	status, body = api.call(t, http.MethodPut, "/api/admin/settings", adminToken, map[string]interface{}{
		"banners":         []map[string]string{{"imageUrl": " https://cdn.example.com/a.png "}, {"imageUrl": ""}},
		"rotationSeconds": 0,
		"privacyPolicy":   "Policy",
	})
	expectStatus(t, status, http.StatusOK, body)
	settings := body["settings"].(map[string]interface{})
	banners := settings["banners"].([]interface{})
	if len(banners) != 1 || settings["rotationSeconds"] != float64(5) {
		t.Fatalf("settings = %v", settings)
	}

	status, body = api.call(t, http.MethodGet, "/api/admin/audit-logs?limit=10", adminToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["logs"].([]interface{})) == 0 {
		t.Fatalf("expected audit rows: %v", body)
	}

	status, body = api.call(t, http.MethodPost, "/api/admin/admins", adminToken, map[string]string{"email": " ANA@example.com "})
	expectStatus(t, status, http.StatusOK, body)
	if body["user"].(map[string]interface{})["isAdmin"] != true {
		t.Fatalf("grant = %v", body)
	}
	status, body = api.call(t, http.MethodGet, "/api/admin/system/backup", userToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	tables := body["tables"].(map[string]interface{})
	users := tables["users"].([]interface{})
	if _, leaked := users[0].(map[string]interface{})["password_hash"]; leaked {
		t.Fatalf("backup leaked password hashes")
	}

	status, body = api.call(t, http.MethodGet, "/api/admin/system/metrics/history", adminToken, nil)
	expectStatus(t, status, http.StatusOK, body)
}

func TestLGPDDeletionFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	adminToken, _ := api.signup(t, "root@example.com", "Root", "parent")
	userToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	api.createChild(t, userToken, "Leo")

	status, body := api.call(t, http.MethodGet, "/api/lgpd/export", userToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["children"].([]interface{})) != 1 {
		t.Fatalf("export = %v", body)
	}

	status, body = api.call(t, http.MethodPost, "/api/lgpd/deletion-requests", userToken, map[string]string{"reason": "leaving"})
	expectStatus(t, status, http.StatusCreated, body)
	requestID := body["request"].(map[string]interface{})["id"].(string)

	status, body = api.call(t, http.MethodPost, "/api/lgpd/deletion-requests", userToken, map[string]string{"reason": "again"})
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeAlreadyPending)

	status, body = api.call(t, http.MethodGet, "/api/admin/lgpd/deletion-requests?status=pending", adminToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["requests"].([]interface{})) != 1 {
		t.Fatalf("requests = %v", body)
	}

	status, body = api.call(t, http.MethodPost, "/api/admin/lgpd/deletion-requests/"+requestID+"/approve", adminToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if body["request"].(map[string]interface{})["status"] != "executed" {
		t.Fatalf("approve = %v", body)
	}

	status, body = api.call(t, http.MethodGet, "/api/me", userToken, nil)
	expectStatus(t, status, http.StatusUnauthorized, body)
}
