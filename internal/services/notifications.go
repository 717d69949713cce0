package services

import (
	"context"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const notificationColumns = `id, user_id, type, title, message, related_id, is_read, created_at, read_at`

const notificationListLimit = 100

func createNotification(ctx context.Context, q db.Querier, userID string, kind models.NotificationType, title, message string, relatedID *string) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, type, title, message, related_id, is_read, created_at)
VALUES (?,?,?,?,?,?,?,?)
`, uuid.NewString(), userID, kind, title, message, relatedID, false, nowFunc())
	return WrapError(err, "insert notification")
}

func ListNotifications(ctx context.Context, q db.Querier, userID string) ([]models.Notification, error) {
	items := []models.Notification{}
	err := q.SelectContext(ctx, &items, `
SELECT `+notificationColumns+`
FROM notifications
WHERE user_id = ?
ORDER BY created_at DESC
LIMIT ?
`, userID, notificationListLimit)
	return items, err
}

func UnreadNotificationCount(ctx context.Context, q db.Querier, userID string) (int, error) {
	var count int
	err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`, userID, false)
	return count, err
}

// MarkNotificationRead moves an unread notification to read. A notification
// that is already read keeps its original read timestamp.
func MarkNotificationRead(ctx context.Context, q db.Querier, userID, notificationID string) (models.Notification, error) {
	if _, err := q.ExecContext(ctx, `
UPDATE notifications SET is_read = ?, read_at = ?
WHERE id = ? AND user_id = ? AND is_read = ?
`, true, nowFunc(), notificationID, userID, false); err != nil {
		return models.Notification{}, err
	}
	var item models.Notification
	err := q.GetContext(ctx, &item, `SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`, notificationID, userID)
	if db.IsNoRows(err) {
		return models.Notification{}, ErrNotFound("Notification not found")
	}
	return item, err
}

func MarkAllNotificationsRead(ctx context.Context, q db.Querier, userID string) (int64, error) {
	res, err := q.ExecContext(ctx, `
UPDATE notifications SET is_read = ?, read_at = ? WHERE user_id = ? AND is_read = ?
`, true, nowFunc(), userID, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func markRelatedNotificationsRead(ctx context.Context, q db.Querier, userID, relatedID string) error {
	_, err := q.ExecContext(ctx, `
UPDATE notifications SET is_read = ?, read_at = ? WHERE user_id = ? AND related_id = ? AND is_read = ?
`, true, nowFunc(), userID, relatedID, false)
	return err
}
