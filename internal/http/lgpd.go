package httpapi

import (
	"net/http"
	"time"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type DeletionRequest struct {
	Reason string `json:"reason"`
}

type OppositionRequest struct {
	DataType string `json:"dataType"`
	Reason   string `json:"reason"`
}

type LGPDRequestResponse struct {
	Request LGPDRequestDTO `json:"request"`
}

type LGPDRequestsResponse struct {
	Requests []LGPDRequestDTO `json:"requests"`
}

type DataExportResponse struct {
	GeneratedAt   time.Time         `json:"generatedAt"`
	User          UserDTO           `json:"user"`
	Children      []ChildDTO        `json:"children"`
	Events        []EventDTO        `json:"events"`
	Notifications []NotificationDTO `json:"notifications"`
	Appointments  []AppointmentDTO  `json:"appointments"`
	Requests      []LGPDRequestDTO  `json:"requests"`
}

func (s *Server) ExportData(w http.ResponseWriter, r *http.Request) {
	export, err := services.ExportUserData(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := DataExportResponse{
		GeneratedAt:   export.GeneratedAt,
		User:          toUserDTO(export.User),
		Children:      make([]ChildDTO, 0, len(export.Children)),
		Events:        toEventDTOs(export.Events),
		Notifications: make([]NotificationDTO, 0, len(export.Notifications)),
		Appointments:  make([]AppointmentDTO, 0, len(export.Appointments)),
		Requests:      toLGPDRequestDTOs(export.Requests),
	}
	for _, child := range export.Children {
		resp.Children = append(resp.Children, toChildDTO(child))
	}
	for _, item := range export.Notifications {
		resp.Notifications = append(resp.Notifications, toNotificationDTO(item))
	}
	for _, item := range export.Appointments {
		resp.Appointments = append(resp.Appointments, toAppointmentDTO(item))
	}
	w.Header().Set("Content-Disposition", `attachment; filename="autazul-export.json"`)
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	var req DeletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := services.RequestDeletion(r.Context(), s.DB, *CurrentUser(r), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, LGPDRequestResponse{Request: toLGPDRequestDTO(item)})
}

func (s *Server) RequestOpposition(w http.ResponseWriter, r *http.Request) {
	var req OppositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := services.RequestOpposition(r.Context(), s.DB, *CurrentUser(r), req.DataType, req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, LGPDRequestResponse{Request: toLGPDRequestDTO(item)})
}

func (s *Server) ListMyLGPDRequests(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListUserLGPDRequests(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, LGPDRequestsResponse{Requests: toLGPDRequestDTOs(items)})
}

func (s *Server) listLGPDRequests(kind models.LGPDRequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.LGPDRequestStatus(r.URL.Query().Get("status"))
		items, err := services.ListLGPDRequests(r.Context(), s.DB, kind, status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, LGPDRequestsResponse{Requests: toLGPDRequestDTOs(items)})
	}
}

func (s *Server) AdminDeletionRequests(w http.ResponseWriter, r *http.Request) {
	s.listLGPDRequests(models.LGPDDeletion)(w, r)
}

func (s *Server) AdminOppositionRequests(w http.ResponseWriter, r *http.Request) {
	s.listLGPDRequests(models.LGPDOpposition)(w, r)
}

func (s *Server) ApproveDeletion(w http.ResponseWriter, r *http.Request) {
	item, err := services.ApproveDeletion(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "requestId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, LGPDRequestResponse{Request: toLGPDRequestDTO(item)})
}

func (s *Server) ResolveOpposition(w http.ResponseWriter, r *http.Request) {
	item, err := services.ResolveOpposition(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "requestId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, LGPDRequestResponse{Request: toLGPDRequestDTO(item)})
}
