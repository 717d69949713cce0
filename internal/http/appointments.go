package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type AppointmentRequest struct {
	ChildID        string `json:"childId"`
	ProfessionalID string `json:"professionalId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Notes          string `json:"notes"`
}

type AppointmentResponse struct {
	Appointment AppointmentDTO `json:"appointment"`
}

type AppointmentsResponse struct {
	Appointments []AppointmentDTO `json:"appointments"`
}

func (s *Server) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := services.CreateAppointment(r.Context(), s.DB, *CurrentUser(r), services.AppointmentInput{
		ChildID:        req.ChildID,
		ProfessionalID: req.ProfessionalID,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, AppointmentResponse{Appointment: toAppointmentDTO(appt)})
}

func (s *Server) ListAppointments(w http.ResponseWriter, r *http.Request) {
	items, err := services.ListAppointments(r.Context(), s.DB, *CurrentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]AppointmentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toAppointmentDTO(item))
	}
	WriteJSON(w, http.StatusOK, AppointmentsResponse{Appointments: out})
}

func (s *Server) transitionAppointment(next models.AppointmentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := services.TransitionAppointment(r.Context(), s.DB, *CurrentUser(r), chi.URLParam(r, "appointmentId"), next)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, AppointmentResponse{Appointment: toAppointmentDTO(appt)})
	}
}
