package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const appointmentSelect = `
SELECT a.id, a.child_id, c.name AS child_name, a.professional_id, a.requester_id, a.requester_name,
       a.appointment_date, a.appointment_time, a.notes, a.status, a.created_at, a.updated_at
FROM appointments a
JOIN children c ON c.id = a.child_id
`

type AppointmentInput struct {
	ChildID        string
	ProfessionalID string
	Date           string
	Time           string
	Notes          string
}

func CreateAppointment(ctx context.Context, database *db.DB, user models.User, in AppointmentInput) (models.Appointment, error) {
	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return models.Appointment{}, ErrBadRequest("date must use the YYYY-MM-DD format")
	}
	clock := strings.TrimSpace(in.Time)
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return models.Appointment{}, ErrBadRequest("time must use the HH:MM format")
	}
	now := nowFunc()
	appt := models.Appointment{
		ID:             uuid.NewString(),
		ChildID:        in.ChildID,
		ProfessionalID: in.ProfessionalID,
		RequesterID:    user.ID,
		RequesterName:  user.Name,
		Date:           date,
		Time:           clock,
		Notes:          strings.TrimSpace(in.Notes),
		Status:         models.AppointmentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		child, _, err := RequireCapability(ctx, tx, user.ID, in.ChildID, models.Capability.CanEditChild)
		if err != nil {
			return err
		}
		appt.ChildName = child.Name
		var linked bool
		if err := tx.GetContext(ctx, &linked, `
SELECT EXISTS(SELECT 1 FROM child_professionals WHERE child_id = ? AND professional_id = ?)
`, child.ID, in.ProfessionalID); err != nil {
			return err
		}
		if !linked {
			return ErrBadRequest("The professional is not linked to this child")
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO appointments (id, child_id, professional_id, requester_id, requester_name, appointment_date, appointment_time, notes, status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
`, appt.ID, appt.ChildID, appt.ProfessionalID, appt.RequesterID, appt.RequesterName, appt.Date, appt.Time, appt.Notes, appt.Status, now, now)
		if err != nil {
			return WrapError(err, "insert appointment")
		}
		message := fmt.Sprintf("%s requested an appointment for %s on %s at %s.", user.Name, child.Name, appt.Date, appt.Time)
		return createNotification(ctx, tx, appt.ProfessionalID, models.NotificationAppointment, "Appointment requested", message, &appt.ID)
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return appt, nil
}

// ListAppointments returns a professional's own appointments, or for a
// parent the appointments of every child they can read.
func ListAppointments(ctx context.Context, q db.Querier, user models.User) ([]models.Appointment, error) {
	items := []models.Appointment{}
	if user.Role == models.RoleProfessional {
		err := q.SelectContext(ctx, &items, appointmentSelect+`
WHERE a.professional_id = ?
ORDER BY a.appointment_date, a.appointment_time
`, user.ID)
		return items, err
	}
	err := q.SelectContext(ctx, &items, appointmentSelect+`
WHERE c.parent_id = ?
   OR a.child_id IN (SELECT child_id FROM child_coparents WHERE user_id = ?)
   OR a.child_id IN (SELECT child_id FROM child_shares WHERE user_id = ?)
ORDER BY a.appointment_date, a.appointment_time
`, user.ID, user.ID, user.ID)
	return items, err
}

// TransitionAppointment applies a professional-driven status change.
func TransitionAppointment(ctx context.Context, database *db.DB, user models.User, appointmentID string, next models.AppointmentStatus) (models.Appointment, error) {
	var appt models.Appointment
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		err := tx.GetContext(ctx, &appt, appointmentSelect+`WHERE a.id = ?`, appointmentID)
		if db.IsNoRows(err) {
			return ErrNotFound("Appointment not found")
		}
		if err != nil {
			return err
		}
		if appt.ProfessionalID != user.ID {
			return ErrForbidden("Only the appointment's professional can change its status")
		}
		if !appt.Status.CanTransition(next) {
			return ErrConflict(CodeInvalidTransition, fmt.Sprintf("Cannot move an appointment from %s to %s", appt.Status, next))
		}
		now := nowFunc()
		res, err := tx.ExecContext(ctx, `
UPDATE appointments SET status = ?, updated_at = ? WHERE id = ? AND status = ?
`, next, now, appt.ID, appt.Status)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrConflict(CodeInvalidTransition, "Appointment status changed concurrently")
		}
		appt.Status = next
		appt.UpdatedAt = now
		message := fmt.Sprintf("%s marked the appointment for %s on %s as %s.", user.Name, appt.ChildName, appt.Date, next)
		return createNotification(ctx, tx, appt.RequesterID, models.NotificationAppointment, "Appointment "+string(next), message, &appt.ID)
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return appt, nil
}
