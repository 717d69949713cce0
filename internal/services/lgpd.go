package services

import (
	"context"
	"strings"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const lgpdColumns = `id, user_id, user_email, kind, reason, data_type, status, created_at, resolved_at, resolved_by`

// DataExport is everything stored about one account.
type DataExport struct {
	GeneratedAt   time.Time
	User          models.User
	Children      []models.Child
	Events        []models.Event
	Notifications []models.Notification
	Appointments  []models.Appointment
	Requests      []models.LGPDRequest
}

func ExportUserData(ctx context.Context, q db.Querier, userID string) (DataExport, error) {
	user, err := GetUser(ctx, q, userID)
	if err != nil {
		return DataExport{}, err
	}
	export := DataExport{
		GeneratedAt:   nowFunc(),
		User:          user,
		Children:      []models.Child{},
		Events:        []models.Event{},
		Notifications: []models.Notification{},
		Appointments:  []models.Appointment{},
		Requests:      []models.LGPDRequest{},
	}
	if err := q.SelectContext(ctx, &export.Children, `SELECT `+childColumns+` FROM children WHERE parent_id = ? ORDER BY created_at`, userID); err != nil {
		return DataExport{}, err
	}
	if err := q.SelectContext(ctx, &export.Events, `
SELECT `+eventColumns+` FROM events
WHERE creator_id = ? OR child_id IN (SELECT id FROM children WHERE parent_id = ?)
ORDER BY event_date, event_time
`, userID, userID); err != nil {
		return DataExport{}, err
	}
	if err := q.SelectContext(ctx, &export.Notifications, `SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? ORDER BY created_at`, userID); err != nil {
		return DataExport{}, err
	}
	if err := q.SelectContext(ctx, &export.Appointments, appointmentSelect+`
WHERE a.requester_id = ? OR a.professional_id = ?
ORDER BY a.appointment_date, a.appointment_time
`, userID, userID); err != nil {
		return DataExport{}, err
	}
	if err := q.SelectContext(ctx, &export.Requests, `SELECT `+lgpdColumns+` FROM lgpd_requests WHERE user_id = ? ORDER BY created_at`, userID); err != nil {
		return DataExport{}, err
	}
	return export, nil
}

func createLGPDRequest(ctx context.Context, database *db.DB, user models.User, kind models.LGPDRequestKind, reason string, dataType *string) (models.LGPDRequest, error) {
	req := models.LGPDRequest{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserEmail: user.Email,
		Kind:      kind,
		Reason:    strings.TrimSpace(reason),
		DataType:  dataType,
		Status:    models.LGPDPending,
		CreatedAt: nowFunc(),
	}
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		var pending bool
		if err := tx.GetContext(ctx, &pending, `
SELECT EXISTS(SELECT 1 FROM lgpd_requests WHERE user_id = ? AND kind = ? AND status = ?)
`, user.ID, kind, models.LGPDPending); err != nil {
			return err
		}
		if pending {
			return ErrConflict(CodeAlreadyPending, "A request of this kind is already pending")
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO lgpd_requests (id, user_id, user_email, kind, reason, data_type, status, created_at)
VALUES (?,?,?,?,?,?,?,?)
`, req.ID, req.UserID, req.UserEmail, req.Kind, req.Reason, req.DataType, req.Status, req.CreatedAt)
		if err != nil {
			return WrapError(err, "insert lgpd request")
		}
		return RecordAudit(ctx, tx, &user.ID, "lgpd."+string(kind)+".request", "lgpd_request", req.ID, "")
	})
	if err != nil {
		return models.LGPDRequest{}, err
	}
	return req, nil
}

func RequestDeletion(ctx context.Context, database *db.DB, user models.User, reason string) (models.LGPDRequest, error) {
	return createLGPDRequest(ctx, database, user, models.LGPDDeletion, reason, nil)
}

func RequestOpposition(ctx context.Context, database *db.DB, user models.User, dataType, reason string) (models.LGPDRequest, error) {
	dataType = strings.TrimSpace(dataType)
	if dataType == "" {
		return models.LGPDRequest{}, ErrBadRequest("dataType is required")
	}
	return createLGPDRequest(ctx, database, user, models.LGPDOpposition, reason, &dataType)
}

func ListUserLGPDRequests(ctx context.Context, q db.Querier, userID string) ([]models.LGPDRequest, error) {
	items := []models.LGPDRequest{}
	err := q.SelectContext(ctx, &items, `SELECT `+lgpdColumns+` FROM lgpd_requests WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return items, err
}

// ListLGPDRequests lists requests of one kind for administrators. An empty
// status lists every status.
func ListLGPDRequests(ctx context.Context, q db.Querier, kind models.LGPDRequestKind, status models.LGPDRequestStatus) ([]models.LGPDRequest, error) {
	items := []models.LGPDRequest{}
	if status == "" {
		err := q.SelectContext(ctx, &items, `SELECT `+lgpdColumns+` FROM lgpd_requests WHERE kind = ? ORDER BY created_at DESC`, kind)
		return items, err
	}
	err := q.SelectContext(ctx, &items, `SELECT `+lgpdColumns+` FROM lgpd_requests WHERE kind = ? AND status = ? ORDER BY created_at DESC`, kind, status)
	return items, err
}

func loadLGPDRequest(ctx context.Context, q db.Querier, requestID string, kind models.LGPDRequestKind) (models.LGPDRequest, error) {
	var req models.LGPDRequest
	err := q.GetContext(ctx, &req, `SELECT `+lgpdColumns+` FROM lgpd_requests WHERE id = ? AND kind = ?`, requestID, kind)
	if db.IsNoRows(err) {
		return models.LGPDRequest{}, ErrNotFound("Request not found")
	}
	return req, err
}

func closeLGPDRequest(ctx context.Context, q db.Querier, req models.LGPDRequest, next models.LGPDRequestStatus, adminID string, now time.Time) error {
	res, err := q.ExecContext(ctx, `
UPDATE lgpd_requests SET status = ?, resolved_at = ?, resolved_by = ? WHERE id = ? AND status = ?
`, next, now, adminID, req.ID, models.LGPDPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict(CodeInvalidTransition, "This request is no longer pending")
	}
	return nil
}

// ApproveDeletion executes a pending deletion request: the user's account
// and everything hanging off it is removed in one transaction. It cannot
// be undone.
func ApproveDeletion(ctx context.Context, database *db.DB, adminID, requestID string) (models.LGPDRequest, error) {
	var req models.LGPDRequest
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		var err error
		req, err = loadLGPDRequest(ctx, tx, requestID, models.LGPDDeletion)
		if err != nil {
			return err
		}
		if req.Status != models.LGPDPending {
			return ErrConflict(CodeInvalidTransition, "This request is no longer pending")
		}
		now := nowFunc()
		if err := closeLGPDRequest(ctx, tx, req, models.LGPDExecuted, adminID, now); err != nil {
			return err
		}
		if err := deleteUserCascade(ctx, tx, req.UserID); err != nil {
			return err
		}
		req.Status = models.LGPDExecuted
		req.ResolvedAt = &now
		req.ResolvedBy = &adminID
		return RecordAudit(ctx, tx, &adminID, "lgpd.deletion.approve", "user", req.UserID, req.UserEmail)
	})
	if err != nil {
		return models.LGPDRequest{}, err
	}
	return req, nil
}

// ResolveOpposition closes a pending opposition request. It records the
// administrator's decision and notifies the requester; it changes no
// other data.
func ResolveOpposition(ctx context.Context, database *db.DB, adminID, requestID string) (models.LGPDRequest, error) {
	var req models.LGPDRequest
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		var err error
		req, err = loadLGPDRequest(ctx, tx, requestID, models.LGPDOpposition)
		if err != nil {
			return err
		}
		now := nowFunc()
		if err := closeLGPDRequest(ctx, tx, req, models.LGPDResolved, adminID, now); err != nil {
			return err
		}
		req.Status = models.LGPDResolved
		req.ResolvedAt = &now
		req.ResolvedBy = &adminID
		if err := createNotification(ctx, tx, req.UserID, models.NotificationLGPD, "Opposition request resolved",
			"Your data processing opposition request was reviewed.", &req.ID); err != nil {
			return err
		}
		return RecordAudit(ctx, tx, &adminID, "lgpd.opposition.resolve", "lgpd_request", req.ID, "")
	})
	if err != nil {
		return models.LGPDRequest{}, err
	}
	return req, nil
}

// deleteUserCascade removes a user, the children they own and every row
// that references either.
func deleteUserCascade(ctx context.Context, tx *db.Tx, userID string) error {
	const owned = `(SELECT id FROM children WHERE parent_id = ?)`
	statements := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM events WHERE creator_id = ? OR child_id IN ` + owned, []interface{}{userID, userID}},
		{`DELETE FROM appointments WHERE professional_id = ? OR requester_id = ? OR child_id IN ` + owned, []interface{}{userID, userID, userID}},
		{`DELETE FROM invites WHERE inviter_id = ? OR invitee_user_id = ? OR child_id IN ` + owned, []interface{}{userID, userID, userID}},
		{`DELETE FROM child_professionals WHERE professional_id = ? OR child_id IN ` + owned, []interface{}{userID, userID}},
		{`DELETE FROM child_coparents WHERE user_id = ? OR child_id IN ` + owned, []interface{}{userID, userID}},
		{`DELETE FROM child_shares WHERE user_id = ? OR child_id IN ` + owned, []interface{}{userID, userID}},
		{`DELETE FROM children WHERE parent_id = ?`, []interface{}{userID}},
		{`DELETE FROM notifications WHERE user_id = ?`, []interface{}{userID}},
		{`DELETE FROM users WHERE id = ?`, []interface{}{userID}},
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return WrapError(err, "delete user data")
		}
	}
	return nil
}
