package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autazul-backend-go/internal/cache"
	"autazul-backend-go/internal/services"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"peer address", "", "", false, "10.0.0.7"},
		{"forwarded ignored without proxy", "203.0.113.9", "", false, "10.0.0.7"},
		{"real ip ignored without proxy", "", "203.0.113.9", false, "10.0.0.7"},
		{"first forwarded hop behind proxy", "203.0.113.9, 10.0.0.1", "", true, "203.0.113.9"},
		{"real ip behind proxy", "", " 198.51.100.4 ", true, "198.51.100.4"},
		{"no headers behind proxy", "", "", true, "10.0.0.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.7:52311"
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req, tt.trustProxy); got != tt.want {
				t.Fatalf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRotatingForwardedForDoesNotResetLimit(t *testing.T) {
	api := newTestAPI(t, cache.NewMemoryLimiter(2, time.Minute))
	payload := []byte(`{"email":"nobody@example.com","password":"secret123"}`)

	var status int
	var body map[string]interface{}
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodPost, api.http.URL+"/api/auth/login", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		status, body = api.do(t, req)
	}
	expectStatus(t, status, http.StatusTooManyRequests, body)
	expectErrorCode(t, body, services.CodeRateLimited)
}
