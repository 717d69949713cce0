package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"autazul-backend-go/internal/services"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestProfessionalInviteByToken(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	status, body := api.call(t, http.MethodPost, "/api/professionals/invite", parentToken, map[string]string{
		"childId": childID, "name": "Dr. Bia", "email": "Bia@Clinic.com", "type": "speech therapist",
	})
	expectStatus(t, status, http.StatusCreated, body)
	token := body["token"].(string)
	if body["url"] != "https://app.example.com/invite/"+token {
		t.Fatalf("url = %v", body["url"])
	}

	status, body = api.call(t, http.MethodGet, "/api/invites/"+token, "", nil)
	expectStatus(t, status, http.StatusOK, body)
	invite := body["invite"].(map[string]interface{})
	if invite["childName"] != "Leo" || invite["inviterName"] != "Ana" || invite["inviteeEmail"] != "bia@clinic.com" {
		t.Fatalf("invite = %v", invite)
	}

	status, body = api.call(t, http.MethodPost, "/api/professionals/invite/"+token+"/accept", testAnonKey, map[string]string{
		"name": "Dr. Bia", "password": "secret123",
	})
	expectStatus(t, status, http.StatusOK, body)
	proToken := body["accessToken"].(string)
	if body["user"].(map[string]interface{})["role"] != "professional" {
		t.Fatalf("accepted user = %v", body["user"])
	}

	status, body = api.call(t, http.MethodGet, "/api/professional/children", proToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	children := body["children"].([]interface{})
	if len(children) != 1 || children[0].(map[string]interface{})["professionalType"] != "speech therapist" {
		t.Fatalf("professional children = %v", children)
	}

	status, body = api.call(t, http.MethodGet, "/api/invites/"+token, "", nil)
	expectStatus(t, status, http.StatusNotFound, body)
	expectErrorCode(t, body, services.CodeInviteUsed)

	status, body = api.call(t, http.MethodPost, "/api/invites/"+token+"/accept", "", map[string]string{
		"name": "Someone", "password": "secret123",
	})
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeInviteUsed)

	status, body = api.call(t, http.MethodGet, "/api/professionals/invite/unknown-token", "", nil)
	expectStatus(t, status, http.StatusNotFound, body)
	expectErrorCode(t, body, services.CodeInviteNotFound)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID+"/professionals", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["professionals"].([]interface{})) != 1 {
		t.Fatalf("professionals = %v", body)
	}

	status, body = api.call(t, http.MethodGet, "/api/notifications/unread-count", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if body["count"] != float64(1) {
		t.Fatalf("unread = %v", body)
	}
}

func TestInviteLinkIgnoresStaleBearer(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	staleToken, _ := api.signup(t, "old@example.com", "Old Session", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	status, body := api.call(t, http.MethodPost, "/api/auth/logout", staleToken, nil)
	expectStatus(t, status, http.StatusOK, body)

	status, body = api.call(t, http.MethodPost, "/api/children/"+childID+"/coparents/invite", parentToken, map[string]string{
		"name": "Bruno", "email": "bruno@example.com",
	})
	expectStatus(t, status, http.StatusCreated, body)
	token := body["token"].(string)

	for _, bearer := range []string{"not-a-jwt-stale-token", staleToken} {
		status, body = api.call(t, http.MethodGet, "/api/invites/"+token, bearer, nil)
		expectStatus(t, status, http.StatusOK, body)
	}

	status, body = api.call(t, http.MethodPost, "/api/invites/"+token+"/accept", staleToken, map[string]string{
		"name": "Bruno", "password": "secret123",
	})
	expectStatus(t, status, http.StatusOK, body)
	if body["user"].(map[string]interface{})["email"] != "bruno@example.com" || body["accessToken"] == nil {
		t.Fatalf("accepted = %v", body)
	}

	status, body = api.call(t, http.MethodGet, "/api/me", staleToken, nil)
	expectStatus(t, status, http.StatusUnauthorized, body)
}

func TestTokenInviteRejectsAccountWithOtherRole(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	api.signup(t, "caio@example.com", "Caio", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	for i := 0; i < 2; i++ {
		status, body := api.call(t, http.MethodPost, "/api/professionals/invite", parentToken, map[string]string{
			"childId": childID, "name": "Caio", "email": "caio@example.com", "type": "psychologist",
		})
		expectStatus(t, status, http.StatusConflict, body)
		expectErrorCode(t, body, services.CodeRoleMismatch)
	}
}

func TestShareByEmailAndRespond(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	viewerToken, _ := api.signup(t, "caio@example.com", "Caio", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	status, body := api.call(t, http.MethodPost, "/api/children/"+childID+"/shares", parentToken, map[string]string{"email": "ghost@example.com"})
	expectStatus(t, status, http.StatusNotFound, body)
	expectErrorCode(t, body, services.CodeUserNotFound)

	status, body = api.call(t, http.MethodPost, "/api/children/"+childID+"/shares", parentToken, map[string]string{"email": "ana@example.com"})
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeSelfInvite)

	status, body = api.call(t, http.MethodPost, "/api/children/"+childID+"/shares", parentToken, map[string]string{"email": "caio@example.com"})
	expectStatus(t, status, http.StatusCreated, body)
	inviteID := body["invite"].(map[string]interface{})["id"].(string)

	status, body = api.call(t, http.MethodPost, "/api/children/"+childID+"/shares", parentToken, map[string]string{"email": "caio@example.com"})
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeAlreadyPending)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID, viewerToken, nil)
	expectStatus(t, status, http.StatusForbidden, body)

	status, body = api.call(t, http.MethodGet, "/api/invitations/pending", viewerToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["invitations"].([]interface{})) != 1 {
		t.Fatalf("pending = %v", body)
	}

	status, body = api.call(t, http.MethodPost, "/api/invitations/"+inviteID+"/accept", viewerToken, nil)
	expectStatus(t, status, http.StatusOK, body)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID, viewerToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if body["child"].(map[string]interface{})["access"] != "shared-view" {
		t.Fatalf("child = %v", body)
	}

	status, body = api.call(t, http.MethodPut, "/api/children/"+childID, viewerToken, map[string]string{"name": "Leonardo"})
	expectStatus(t, status, http.StatusForbidden, body)
	expectErrorCode(t, body, services.CodeForbidden)

	status, body = api.call(t, http.MethodPost, "/api/professionals/invite", viewerToken, map[string]string{
		"childId": childID, "name": "Dr. Bia", "email": "bia@clinic.com", "type": "psychologist",
	})
	expectStatus(t, status, http.StatusForbidden, body)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID+"/access", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if len(body["shares"].([]interface{})) != 1 {
		t.Fatalf("access = %v", body)
	}

	status, _ = api.call(t, http.MethodDelete, "/api/children/"+childID+"/shares/"+body["shares"].([]interface{})[0].(map[string]interface{})["userId"].(string), parentToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("remove share status = %d", status)
	}
	status, body = api.call(t, http.MethodGet, "/api/children/"+childID, viewerToken, nil)
	expectStatus(t, status, http.StatusForbidden, body)
}

func TestEventsReportCurrentSeverity(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	events := []map[string]string{
		{"childId": childID, "type": "crisis", "date": "2024-03-10", "time": "14:00", "severity": "high", "description": "Meltdown at the mall"},
		{"childId": childID, "type": "sleep", "date": "2024-03-02", "time": "21:30", "severity": "mild", "description": "Slept early"},
		{"childId": childID, "type": "school", "date": "2024-04-01", "time": "09:00", "severity": "critical", "description": "Other month"},
	}
	for _, event := range events {
		status, body := api.call(t, http.MethodPost, "/api/events", parentToken, event)
		expectStatus(t, status, http.StatusCreated, body)
	}

	status, body := api.call(t, http.MethodGet, "/api/children/"+childID+"/events?month=2024-03", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	listed := body["events"].([]interface{})
	if len(listed) != 2 {
		t.Fatalf("events = %v", listed)
	}
	first := listed[0].(map[string]interface{})
	second := listed[1].(map[string]interface{})
	if first["date"] != "2024-03-02" || second["severity"] != "severe" || second["recordedSeverity"] != "high" {
		t.Fatalf("events = %v", listed)
	}
	if first["legacySeverity"] != "low" || second["legacySeverity"] != "high" {
		t.Fatalf("legacy severities = %v", listed)
	}

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID+"/events?month=2024-04", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	april := body["events"].([]interface{})
	if len(april) != 1 || april[0].(map[string]interface{})["legacySeverity"] != "high" {
		t.Fatalf("april events = %v", april)
	}

	status, body = api.call(t, http.MethodGet, "/api/events/"+second["id"].(string), parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID+"/events?month=March", parentToken, nil)
	expectStatus(t, status, http.StatusBadRequest, body)
	expectErrorCode(t, body, services.CodeValidation)

	status, body = api.call(t, http.MethodGet, "/api/children/"+childID+"/reports?from=2024-03&to=2024-04", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	if body["total"] != float64(3) {
		t.Fatalf("report = %v", body)
	}
	bySeverity := body["bySeverity"].(map[string]interface{})
	if bySeverity["severe"] != float64(1) || bySeverity["critical"] != float64(1) {
		t.Fatalf("bySeverity = %v", bySeverity)
	}
}

func TestChildPhotoUpload(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	childID := api.createChild(t, parentToken, "Leo")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "leo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(pngHeader)
	_ = form.Close()

	req, _ := http.NewRequest(http.MethodPost, api.http.URL+"/api/children/"+childID+"/photo", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+parentToken)
	status, body := api.do(t, req)
	expectStatus(t, status, http.StatusOK, body)
	photo, _ := body["child"].(map[string]interface{})["photo"].(string)
	if !strings.HasPrefix(photo, "/uploads/children/"+childID+"/") {
		t.Fatalf("photo = %q", photo)
	}

	resp, err := api.http.Client().Get(api.http.URL + photo)
	if err != nil {
		t.Fatalf("fetch photo: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("served photo status = %d", resp.StatusCode)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	parentToken, _ := api.signup(t, "ana@example.com", "Ana", "parent")
	childID := api.createChild(t, parentToken, "Leo")
	_, body := api.call(t, http.MethodPost, "/api/professionals/invite", parentToken, map[string]string{
		"childId": childID, "name": "Dr. Bia", "email": "bia@clinic.com", "type": "psychologist",
	})
	_, body = api.call(t, http.MethodPost, "/api/invites/"+body["token"].(string)+"/accept", "", map[string]string{"password": "secret123"})
	proToken := body["accessToken"].(string)
	proID := body["user"].(map[string]interface{})["id"].(string)

	status, body := api.call(t, http.MethodPost, "/api/appointments", parentToken, map[string]string{
		"childId": childID, "professionalId": proID, "date": "2024-05-02", "time": "10:30",
	})
	expectStatus(t, status, http.StatusCreated, body)
	apptID := body["appointment"].(map[string]interface{})["id"].(string)

	status, body = api.call(t, http.MethodPost, "/api/appointments/"+apptID+"/confirm", parentToken, nil)
	expectStatus(t, status, http.StatusForbidden, body)

	status, body = api.call(t, http.MethodPost, "/api/appointments/"+apptID+"/confirm", proToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	status, body = api.call(t, http.MethodPost, "/api/appointments/"+apptID+"/complete", proToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	status, body = api.call(t, http.MethodPost, "/api/appointments/"+apptID+"/cancel", proToken, nil)
	expectStatus(t, status, http.StatusConflict, body)
	expectErrorCode(t, body, services.CodeInvalidTransition)

	status, body = api.call(t, http.MethodGet, "/api/appointments", parentToken, nil)
	expectStatus(t, status, http.StatusOK, body)
	listed := body["appointments"].([]interface{})
	if len(listed) != 1 || listed[0].(map[string]interface{})["status"] != "completed" {
		t.Fatalf("appointments = %v", listed)
	}
}
