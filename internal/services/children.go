package services

import (
	"context"
	"strings"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ChildInput struct {
	Name      string
	BirthDate string
	School    *string
	Photo     *string
}

type ChildUpdate struct {
	Name      *string
	BirthDate *string
	School    *string
	Photo     *string
}

// ChildAccess pairs a child with the caller's capability on it.
type ChildAccess struct {
	Child            models.Child
	Access           models.Capability
	ProfessionalType string
}

type ChildMembers struct {
	Owner     models.Member
	CoParents []models.Member
	Shares    []models.Member
}

func validateBirthDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", ErrBadRequest("birthDate must use the YYYY-MM-DD format")
	}
	if parsed.After(nowFunc()) {
		return "", ErrBadRequest("birthDate cannot be in the future")
	}
	return value, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func CreateChild(ctx context.Context, q db.Querier, user models.User, in ChildInput) (models.Child, error) {
	if user.Role != models.RoleParent {
		return models.Child{}, ErrForbidden("Only parent accounts can register children")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Child{}, ErrBadRequest("Name is required")
	}
	birthDate, err := validateBirthDate(in.BirthDate)
	if err != nil {
		return models.Child{}, err
	}
	now := nowFunc()
	child := models.Child{
		ID:        uuid.NewString(),
		ParentID:  user.ID,
		Name:      name,
		BirthDate: birthDate,
		School:    trimOptional(in.School),
		PhotoURL:  trimOptional(in.Photo),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO children (id, parent_id, name, birth_date, school, photo_url, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?)
`, child.ID, child.ParentID, child.Name, child.BirthDate, child.School, child.PhotoURL, now, now)
	if err != nil {
		return models.Child{}, WrapError(err, "insert child")
	}
	return child, nil
}

// ListChildren returns every child the user can read, each once, tagged
// with the strongest capability the user holds on it.
func ListChildren(ctx context.Context, q db.Querier, userID string) ([]ChildAccess, error) {
	sources := []struct {
		query      string
		capability models.Capability
	}{
		{`SELECT ` + childColumns + ` FROM children WHERE parent_id = ? ORDER BY name`, models.CapabilityOwner},
		{`SELECT c.id, c.parent_id, c.name, c.birth_date, c.school, c.photo_url, c.created_at, c.updated_at
FROM children c JOIN child_coparents cp ON cp.child_id = c.id WHERE cp.user_id = ? ORDER BY c.name`, models.CapabilityCoParent},
		{`SELECT c.id, c.parent_id, c.name, c.birth_date, c.school, c.photo_url, c.created_at, c.updated_at
FROM children c JOIN child_professionals cp ON cp.child_id = c.id WHERE cp.professional_id = ? ORDER BY c.name`, models.CapabilityProfessional},
		{`SELECT c.id, c.parent_id, c.name, c.birth_date, c.school, c.photo_url, c.created_at, c.updated_at
FROM children c JOIN child_shares cs ON cs.child_id = c.id WHERE cs.user_id = ? ORDER BY c.name`, models.CapabilitySharedView},
	}
	seen := map[string]bool{}
	items := []ChildAccess{}
	for _, source := range sources {
		rows := []models.Child{}
		if err := q.SelectContext(ctx, &rows, source.query, userID); err != nil {
			return nil, err
		}
		for _, child := range rows {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			items = append(items, ChildAccess{Child: child, Access: source.capability})
		}
	}
	return items, nil
}

func GetChild(ctx context.Context, q db.Querier, userID, childID string) (ChildAccess, error) {
	child, capability, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanRead)
	if err != nil {
		return ChildAccess{}, err
	}
	return ChildAccess{Child: child, Access: capability}, nil
}

func UpdateChild(ctx context.Context, q db.Querier, userID, childID string, in ChildUpdate) (models.Child, error) {
	child, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanEditChild)
	if err != nil {
		return models.Child{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Child{}, ErrBadRequest("Name is required")
		}
		child.Name = name
	}
	if in.BirthDate != nil {
		birthDate, err := validateBirthDate(*in.BirthDate)
		if err != nil {
			return models.Child{}, err
		}
		child.BirthDate = birthDate
	}
	if in.School != nil {
		child.School = trimOptional(in.School)
	}
	if in.Photo != nil {
		child.PhotoURL = trimOptional(in.Photo)
	}
	child.UpdatedAt = nowFunc()
	_, err = q.ExecContext(ctx, `
UPDATE children SET name = ?, birth_date = ?, school = ?, photo_url = ?, updated_at = ? WHERE id = ?
`, child.Name, child.BirthDate, child.School, child.PhotoURL, child.UpdatedAt, child.ID)
	if err != nil {
		return models.Child{}, err
	}
	return child, nil
}

func ListChildMembers(ctx context.Context, q db.Querier, userID, childID string) (ChildMembers, error) {
	child, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanRead)
	if err != nil {
		return ChildMembers{}, err
	}
	var members ChildMembers
	if err := q.GetContext(ctx, &members.Owner, `
SELECT id AS user_id, name, email, created_at FROM users WHERE id = ?
`, child.ParentID); err != nil {
		return ChildMembers{}, err
	}
	members.CoParents = []models.Member{}
	if err := q.SelectContext(ctx, &members.CoParents, `
SELECT u.id AS user_id, u.name, u.email, cp.created_at
FROM child_coparents cp JOIN users u ON u.id = cp.user_id
WHERE cp.child_id = ?
ORDER BY cp.created_at
`, child.ID); err != nil {
		return ChildMembers{}, err
	}
	members.Shares = []models.Member{}
	if err := q.SelectContext(ctx, &members.Shares, `
SELECT u.id AS user_id, u.name, u.email, cs.created_at
FROM child_shares cs JOIN users u ON u.id = cs.user_id
WHERE cs.child_id = ?
ORDER BY cs.created_at
`, child.ID); err != nil {
		return ChildMembers{}, err
	}
	return members, nil
}

func RemoveCoParent(ctx context.Context, q db.Querier, actorID, childID, userID string) error {
	return removeMember(ctx, q, actorID, childID, userID, `DELETE FROM child_coparents WHERE child_id = ? AND user_id = ?`, "coparent.remove")
}

func RemoveShare(ctx context.Context, q db.Querier, actorID, childID, userID string) error {
	return removeMember(ctx, q, actorID, childID, userID, `DELETE FROM child_shares WHERE child_id = ? AND user_id = ?`, "share.remove")
}

func removeMember(ctx context.Context, q db.Querier, actorID, childID, userID, query, action string) error {
	if _, _, err := RequireCapability(ctx, q, actorID, childID, models.Capability.CanManageSharing); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, childID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound("Relation not found")
	}
	return RecordAudit(ctx, q, &actorID, action, "child", childID, userID)
}
