package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

type MetricsHistoryResponse struct {
	Items []services.MetricSample `json:"items"`
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 120)
	items, err := services.LatestMetrics(r.Context(), s.DB, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MetricsHistoryResponse{Items: items})
}

// HealthSocket streams metric samples to an administrator. Browsers cannot
// set headers on a websocket handshake, so the access token rides in the
// query string.
func (s *Server) HealthSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, services.CodeUnauthorized, "Authentication failed")
		return
	}
	user, err := s.userFromToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !user.IsAdmin {
		WriteError(w, http.StatusForbidden, services.CodeForbidden, "Not allowed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
