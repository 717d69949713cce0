package services

import (
	"context"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

func RecordAudit(ctx context.Context, q db.Querier, actorID *string, action, targetType, targetID, details string) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO audit_logs (id, actor_id, action, target_type, target_id, details, created_at)
VALUES (?,?,?,?,?,?,?)
`, uuid.NewString(), actorID, action, targetType, targetID, details, nowFunc())
	return WrapError(err, "insert audit log")
}

func ListAuditLogs(ctx context.Context, q db.Querier, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	items := []models.AuditLog{}
	err := q.SelectContext(ctx, &items, `
SELECT id, actor_id, action, target_type, target_id, details, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT ?
`, limit)
	return items, err
}
