package httpapi

import (
	"net/http"
	"time"

	"autazul-backend-go/internal/services"
)

type GrantAdminRequest struct {
	Email string `json:"email"`
}

type AuditLogDTO struct {
	ID         string    `json:"id"`
	ActorID    *string   `json:"actorId,omitempty"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SettingsResponse struct {
	Settings services.Settings `json:"settings"`
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := services.GetSettings(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, SettingsResponse{Settings: settings})
}

func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req services.Settings
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := services.UpdateSettings(r.Context(), s.DB, CurrentUser(r).ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, SettingsResponse{Settings: settings})
}

func (s *Server) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	var req GrantAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.GrantAdmin(r.Context(), s.DB, CurrentUser(r).ID, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, UserResponse{User: toUserDTO(user)})
}

func (s *Server) AuditLogs(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListAuditLogs(r.Context(), s.DB, parseInt(r.URL.Query().Get("limit"), 100))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]AuditLogDTO, 0, len(items))
	for _, item := range items {
		out = append(out, AuditLogDTO{
			ID:         item.ID,
			ActorID:    item.ActorID,
			Action:     item.Action,
			TargetType: item.TargetType,
			TargetID:   item.TargetID,
			Details:    item.Details,
			CreatedAt:  item.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string][]AuditLogDTO{"logs": out})
}

func (s *Server) SystemHealth(w http.ResponseWriter, r *http.Request) {
	health := services.CheckHealth(r.Context(), s.DB, s.Config.MetricsDiskPath)
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]services.SystemHealth{"health": health})
}

func (s *Server) Backup(w http.ResponseWriter, r *http.Request) {
	backup, err := services.DumpTables(r.Context(), s.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	name := "autazul-backup-" + backup.GeneratedAt.Format("20060102-150405") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	WriteJSON(w, http.StatusOK, backup)
}
