package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type NotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListNotifications(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]NotificationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toNotificationDTO(item))
	}
	WriteJSON(w, http.StatusOK, NotificationsResponse{Notifications: out})
}

func (s *Server) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := services.UnreadNotificationCount(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) MarkRead(w http.ResponseWriter, r *http.Request) {
	item, err := services.MarkNotificationRead(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "notificationId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]NotificationDTO{"notification": toNotificationDTO(item)})
}

func (s *Server) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := services.MarkAllNotificationsRead(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
