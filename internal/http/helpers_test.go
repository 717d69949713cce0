package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"autazul-backend-go/internal/cache"
	"autazul-backend-go/internal/config"
	"autazul-backend-go/internal/services"
	"autazul-backend-go/internal/storage"
	"autazul-backend-go/internal/testfixtures"
)

const testAnonKey = "public-anon-key"

type testAPI struct {
	server *Server
	http   *httptest.Server
}

func testConfig() config.Config {
	return config.Config{
		DatabaseDriver:    "sqlite3",
		JWTSecret:         "test-secret",
		JWTIssuer:         "autazul-test",
		AccessTTLSeconds:  3600,
		RefreshTTLSeconds: 86400,
		AnonKey:           testAnonKey,
		InviteTTLHours:    72,
		AppBaseURL:        "https://app.example.com",
		MetricsDiskPath:   "/",
	}
}

func newTestAPI(t *testing.T, limiter cache.Limiter) *testAPI {
	t.Helper()
	database := testfixtures.OpenSQLite(t)
	driver := storage.NewLocal(t.TempDir())
	server := NewServer(database, testConfig(), services.NewMetricsHub(), driver, nil, limiter)
	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(server.Router(ctx))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testAPI{server: server, http: ts}
}

// call sends a JSON request and decodes the JSON response into a map.
func (a *testAPI) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, a.http.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testAPI) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := a.http.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	payload := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, payload
}

func (a *testAPI) signup(t *testing.T, email, name, role string) (string, map[string]interface{}) {
	t.Helper()
	status, body := a.call(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     name,
		"role":     role,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %v", email, status, body)
	}
	return body["accessToken"].(string), body["user"].(map[string]interface{})
}

func (a *testAPI) createChild(t *testing.T, token, name string) string {
	t.Helper()
	status, body := a.call(t, http.MethodPost, "/api/children", token, map[string]string{
		"name":      name,
		"birthDate": "2018-05-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("create child: status %d body %v", status, body)
	}
	return body["child"].(map[string]interface{})["id"].(string)
}

func expectStatus(t *testing.T, got, want int, body map[string]interface{}) {
	t.Helper()
	if got != want {
		t.Fatalf("status = %d, want %d (body %v)", got, want, body)
	}
}

func expectErrorCode(t *testing.T, body map[string]interface{}, code services.Code) {
	t.Helper()
	if body["code"] != string(code) {
		t.Fatalf("code = %v, want %s (body %v)", body["code"], code, body)
	}
}
