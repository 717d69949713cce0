package services

import (
	"context"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
)

func ListProfessionals(ctx context.Context, q db.Querier, userID, childID string) ([]models.ProfessionalLink, error) {
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanRead); err != nil {
		return nil, err
	}
	items := []models.ProfessionalLink{}
	err := q.SelectContext(ctx, &items, `
SELECT cp.child_id, cp.professional_id, cp.professional_type, u.name, u.email, cp.created_at
FROM child_professionals cp
JOIN users u ON u.id = cp.professional_id
WHERE cp.child_id = ?
ORDER BY u.name
`, childID)
	return items, err
}

func RemoveProfessional(ctx context.Context, q db.Querier, userID, childID, professionalID string) error {
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanManageProfessionals); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `DELETE FROM child_professionals WHERE child_id = ? AND professional_id = ?`, childID, professionalID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound("Professional is not linked to this child")
	}
	return RecordAudit(ctx, q, &userID, "professional.remove", "child", childID, professionalID)
}

// ListProfessionalChildren returns the children linked to a professional.
func ListProfessionalChildren(ctx context.Context, q db.Querier, user models.User) ([]ChildAccess, error) {
	if user.Role != models.RoleProfessional {
		return nil, ErrForbidden("Only professional accounts have linked children")
	}
	rows := []struct {
		models.Child
		ProfessionalType string `db:"professional_type"`
	}{}
	if err := q.SelectContext(ctx, &rows, `
SELECT c.id, c.parent_id, c.name, c.birth_date, c.school, c.photo_url, c.created_at, c.updated_at, cp.professional_type
FROM children c
JOIN child_professionals cp ON cp.child_id = c.id
WHERE cp.professional_id = ?
ORDER BY c.name
`, user.ID); err != nil {
		return nil, err
	}
	items := make([]ChildAccess, 0, len(rows))
	for _, row := range rows {
		items = append(items, ChildAccess{Child: row.Child, Access: models.CapabilityProfessional, ProfessionalType: row.ProfessionalType})
	}
	return items, nil
}
