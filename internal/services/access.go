package services

import (
	"context"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
)

const childColumns = `id, parent_id, name, birth_date, school, photo_url, created_at, updated_at`

func GetChildRecord(ctx context.Context, q db.Querier, childID string) (models.Child, error) {
	var child models.Child
	err := q.GetContext(ctx, &child, `SELECT `+childColumns+` FROM children WHERE id = ?`, childID)
	if db.IsNoRows(err) {
		return models.Child{}, ErrNotFound("Child not found")
	}
	return child, err
}

// ResolveCapability derives what userID may do with the child from direct
// ownership and the co-parent, professional and share relations, in that
// order of precedence.
func ResolveCapability(ctx context.Context, q db.Querier, userID, childID string) (models.Capability, models.Child, error) {
	child, err := GetChildRecord(ctx, q, childID)
	if err != nil {
		return models.CapabilityNone, models.Child{}, err
	}
	capability, err := capabilityFor(ctx, q, userID, child)
	return capability, child, err
}

func capabilityFor(ctx context.Context, q db.Querier, userID string, child models.Child) (models.Capability, error) {
	if child.ParentID == userID {
		return models.CapabilityOwner, nil
	}
	checks := []struct {
		query      string
		capability models.Capability
	}{
		{`SELECT EXISTS(SELECT 1 FROM child_coparents WHERE child_id = ? AND user_id = ?)`, models.CapabilityCoParent},
		{`SELECT EXISTS(SELECT 1 FROM child_professionals WHERE child_id = ? AND professional_id = ?)`, models.CapabilityProfessional},
		{`SELECT EXISTS(SELECT 1 FROM child_shares WHERE child_id = ? AND user_id = ?)`, models.CapabilitySharedView},
	}
	for _, check := range checks {
		var linked bool
		if err := q.GetContext(ctx, &linked, check.query, child.ID, userID); err != nil {
			return models.CapabilityNone, err
		}
		if linked {
			return check.capability, nil
		}
	}
	return models.CapabilityNone, nil
}

// RequireCapability resolves the caller's capability and rejects with
// Forbidden when allowed returns false.
func RequireCapability(ctx context.Context, q db.Querier, userID, childID string, allowed func(models.Capability) bool) (models.Child, models.Capability, error) {
	capability, child, err := ResolveCapability(ctx, q, userID, childID)
	if err != nil {
		return models.Child{}, capability, err
	}
	if !allowed(capability) {
		return models.Child{}, capability, ErrForbidden("You do not have permission for this child")
	}
	return child, capability, nil
}
