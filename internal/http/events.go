package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type EventRequest struct {
	ChildID     string   `json:"childId"`
	Type        string   `json:"type"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Evaluation  *string  `json:"evaluation"`
	Photos      []string `json:"photos"`
}

type EventResponse struct {
	Event EventDTO `json:"event"`
}

type EventsResponse struct {
	Events []EventDTO `json:"events"`
}

type PhotoResponse struct {
	URL string `json:"url"`
}

type ReportResponse struct {
	ChildID    string                   `json:"childId"`
	From       string                   `json:"from"`
	To         string                   `json:"to"`
	Total      int                      `json:"total"`
	ByType     map[models.EventType]int `json:"byType"`
	BySeverity map[models.Severity]int  `json:"bySeverity"`
	ByMonth    []services.MonthCount    `json:"byMonth"`
	Events     []EventDTO               `json:"events"`
}

func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	event, err := services.CreateEvent(r.Context(), s.DB, *CurrentUser(r), services.EventInput{
		ChildID:     req.ChildID,
		Type:        req.Type,
		Date:        req.Date,
		Time:        req.Time,
		Severity:    req.Severity,
		Description: req.Description,
		Evaluation:  req.Evaluation,
		Photos:      req.Photos,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, EventResponse{Event: toEventDTO(event)})
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	items, err := services.ListEventsByMonth(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, EventsResponse{Events: toEventDTOs(items)})
}

func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := services.GetEvent(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "eventId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, EventResponse{Event: toEventDTO(event)})
}

func (s *Server) UploadEventPhoto(w http.ResponseWriter, r *http.Request) {
	file, ok := formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()
	url, err := services.UploadEventPhoto(r.Context(), s.DB, s.Storage, CurrentUser(r).ID, chi.URLParam(r, "childId"), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, PhotoResponse{URL: url})
}

func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	report, err := services.BuildReport(r.Context(), s.DB, CurrentUser(r).ID, chi.URLParam(r, "childId"), query.Get("from"), query.Get("to"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ReportResponse{
		ChildID:    report.ChildID,
		From:       report.From,
		To:         report.To,
		Total:      report.Total,
		ByType:     report.ByType,
		BySeverity: report.BySeverity,
		ByMonth:    report.ByMonth,
		Events:     toEventDTOs(report.Events),
	})
}
