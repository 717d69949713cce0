package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"autazul-backend-go/internal/config"
	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const inviteColumns = `id, token, kind, child_id, inviter_id, invitee_name, invitee_email, invitee_user_id, professional_type, status, created_at, expires_at, responded_at, accepted_by`

const inviteTokenBytes = 32

// TokenInviteInput describes an invite for a party that may not have an
// account yet. The invitee redeems it through the returned token.
type TokenInviteInput struct {
	Kind             models.InviteKind
	ChildID          string
	Name             string
	Email            string
	ProfessionalType string
}

// InviteView is an invite together with the names shown to the invitee.
type InviteView struct {
	Invite      models.Invite
	ChildName   string
	InviterName string
}

// InviteSignup carries the account to create when an anonymous invitee
// redeems a token.
type InviteSignup struct {
	Name     string
	Password string
}

type InviteAcceptance struct {
	Invite  models.Invite
	User    models.User
	Created bool
}

func generateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func requireInvitePermission(ctx context.Context, q db.Querier, inviterID, childID string, kind models.InviteKind) (models.Child, error) {
	allowed := models.Capability.CanManageSharing
	if kind == models.InviteProfessional {
		allowed = models.Capability.CanManageProfessionals
	}
	child, _, err := RequireCapability(ctx, q, inviterID, childID, allowed)
	return child, err
}

// relationExists reports whether userID already holds the relation an
// invite of this kind would create, or owns the child outright.
func relationExists(ctx context.Context, q db.Querier, kind models.InviteKind, child models.Child, userID string) (bool, error) {
	if child.ParentID == userID {
		return true, nil
	}
	var query string
	switch kind {
	case models.InviteProfessional:
		query = `SELECT EXISTS(SELECT 1 FROM child_professionals WHERE child_id = ? AND professional_id = ?)`
	case models.InviteCoParent:
		query = `SELECT EXISTS(SELECT 1 FROM child_coparents WHERE child_id = ? AND user_id = ?)`
	case models.InviteChildShare:
		query = `SELECT EXISTS(
  SELECT 1 FROM child_shares WHERE child_id = ? AND user_id = ?
  UNION ALL
  SELECT 1 FROM child_coparents WHERE child_id = ? AND user_id = ?
)`
		var linked bool
		err := q.GetContext(ctx, &linked, query, child.ID, userID, child.ID, userID)
		return linked, err
	default:
		return false, ErrBadRequest("Unknown invite kind")
	}
	var linked bool
	err := q.GetContext(ctx, &linked, query, child.ID, userID)
	return linked, err
}

func pendingInviteExists(ctx context.Context, q db.Querier, kind models.InviteKind, childID, email string) (bool, error) {
	var exists bool
	err := q.GetContext(ctx, &exists, `
SELECT EXISTS(
  SELECT 1 FROM invites
  WHERE child_id = ? AND kind = ? AND invitee_email = ? AND status = ?
    AND (expires_at IS NULL OR expires_at > ?)
)
`, childID, kind, email, models.InvitePending, nowFunc())
	return exists, err
}

// checkInviteTarget applies the policies shared by both invite paths. An
// existing account must hold the role the invite kind grants, must not be
// the inviter and must not already be related to the child. At most one
// pending invite per child, kind and email.
func checkInviteTarget(ctx context.Context, q db.Querier, inviter models.User, child models.Child, kind models.InviteKind, email string) (*models.User, error) {
	if email == inviter.Email {
		return nil, ErrConflict(CodeSelfInvite, "You cannot invite yourself")
	}
	var target *models.User
	existing, err := GetUserByEmail(ctx, q, email)
	switch {
	case err == nil:
		target = &existing
		if existing.Role != kind.InviteeRole() {
			return nil, ErrConflict(CodeRoleMismatch, "This email belongs to an account that cannot receive this invitation")
		}
		linked, err := relationExists(ctx, q, kind, child, existing.ID)
		if err != nil {
			return nil, err
		}
		if linked {
			return nil, ErrConflict(CodeAlreadyLinked, "This person already has access to the child")
		}
	case !HasCode(err, CodeUserNotFound):
		return nil, err
	}
	pending, err := pendingInviteExists(ctx, q, kind, child.ID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrConflict(CodeAlreadyPending, "An invitation for this person is already pending")
	}
	return target, nil
}

// CreateTokenInvite mints a single-use invite token for the invitee.
func CreateTokenInvite(ctx context.Context, database *db.DB, inviter models.User, in TokenInviteInput, ttl time.Duration) (models.Invite, error) {
	if !in.Kind.Valid() {
		return models.Invite{}, ErrBadRequest("Unknown invite kind")
	}
	name := strings.TrimSpace(in.Name)
	email := config.NormalizeEmail(in.Email)
	professionalType := strings.TrimSpace(in.ProfessionalType)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return models.Invite{}, ErrBadRequest("Name and a valid email are required")
	}
	if in.Kind == models.InviteProfessional && professionalType == "" {
		return models.Invite{}, ErrBadRequest("Professional type is required")
	}
	token, err := generateInviteToken()
	if err != nil {
		return models.Invite{}, err
	}
	now := nowFunc()
	invite := models.Invite{
		ID:           uuid.NewString(),
		Token:        &token,
		Kind:         in.Kind,
		ChildID:      in.ChildID,
		InviterID:    inviter.ID,
		InviteeName:  name,
		InviteeEmail: email,
		Status:       models.InvitePending,
		CreatedAt:    now,
	}
	if in.Kind == models.InviteProfessional {
		invite.ProfessionalType = &professionalType
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		invite.ExpiresAt = &expires
	}
	err = database.WithTx(ctx, func(tx *db.Tx) error {
		child, err := requireInvitePermission(ctx, tx, inviter.ID, in.ChildID, in.Kind)
		if err != nil {
			return err
		}
		if _, err := checkInviteTarget(ctx, tx, inviter, child, in.Kind, email); err != nil {
			return err
		}
		if err := insertInvite(ctx, tx, invite); err != nil {
			return err
		}
		return RecordAudit(ctx, tx, &inviter.ID, "invite.create", "invite", invite.ID, string(invite.Kind))
	})
	if err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}

func insertInvite(ctx context.Context, q db.Querier, invite models.Invite) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO invites (id, token, kind, child_id, inviter_id, invitee_name, invitee_email, invitee_user_id,
                     professional_type, status, created_at, expires_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
`, invite.ID, invite.Token, invite.Kind, invite.ChildID, invite.InviterID, invite.InviteeName, invite.InviteeEmail,
		invite.InviteeUserID, invite.ProfessionalType, invite.Status, invite.CreatedAt, invite.ExpiresAt)
	return WrapError(err, "insert invite")
}

func loadInviteByToken(ctx context.Context, q db.Querier, token string) (models.Invite, error) {
	var invite models.Invite
	err := q.GetContext(ctx, &invite, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)
	if db.IsNoRows(err) {
		return models.Invite{}, errWithCode(404, CodeInviteNotFound, "Invite not found")
	}
	return invite, err
}

func describeInvite(ctx context.Context, q db.Querier, invite models.Invite) (InviteView, error) {
	view := InviteView{Invite: invite}
	row := struct {
		ChildName   string `db:"child_name"`
		InviterName string `db:"inviter_name"`
	}{}
	err := q.GetContext(ctx, &row, `
SELECT c.name AS child_name, u.name AS inviter_name
FROM children c, users u
WHERE c.id = ? AND u.id = ?
`, invite.ChildID, invite.InviterID)
	if err != nil && !db.IsNoRows(err) {
		return InviteView{}, err
	}
	view.ChildName = row.ChildName
	view.InviterName = row.InviterName
	return view, nil
}

// GetInviteByToken returns a redeemable invite. Unknown and already used
// tokens are reported as not found, expired ones as gone.
func GetInviteByToken(ctx context.Context, q db.Querier, token string) (InviteView, error) {
	invite, err := loadInviteByToken(ctx, q, strings.TrimSpace(token))
	if err != nil {
		return InviteView{}, err
	}
	if invite.Status != models.InvitePending {
		return InviteView{}, errWithCode(404, CodeInviteUsed, "This invite has already been used")
	}
	if invite.Expired(nowFunc()) {
		return InviteView{}, ErrGone(CodeInviteExpired, "This invite has expired")
	}
	return describeInvite(ctx, q, invite)
}

// AcceptTokenInvite redeems token. Either acceptor is the signed-in invitee
// or signup describes the account to create for an anonymous invitee.
//
// The invite row is claimed with a conditional update on its status inside
// the same transaction that creates the account, the relation and the
// inviter's notification, so a token is redeemed at most once and never
// left accepted without its relation.
func AcceptTokenInvite(ctx context.Context, database *db.DB, tokens TokenService, token string, acceptor *models.User, signup *InviteSignup) (InviteAcceptance, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return InviteAcceptance{}, errWithCode(404, CodeInviteNotFound, "Invite not found")
	}
	var result InviteAcceptance
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		invite, err := loadInviteByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if invite.Status != models.InvitePending {
			return ErrConflict(CodeInviteUsed, "This invite has already been used")
		}
		now := nowFunc()
		if invite.Expired(now) {
			return ErrGone(CodeInviteExpired, "This invite has expired")
		}
		if acceptor != nil {
			if acceptor.ID == invite.InviterID {
				return ErrConflict(CodeSelfInvite, "You cannot accept your own invite")
			}
			if acceptor.Email != invite.InviteeEmail {
				return ErrForbidden("This invite was sent to a different email")
			}
			if acceptor.Role != invite.Kind.InviteeRole() {
				return ErrForbidden("This invite requires a " + string(invite.Kind.InviteeRole()) + " account")
			}
		} else if signup == nil {
			return ErrUnauthorized("Sign in or provide account details to accept this invite")
		}

		if err := claimInvite(ctx, tx, invite.ID, models.InviteAccepted, now, acceptor); err != nil {
			return err
		}

		user := models.User{}
		if acceptor != nil {
			user = *acceptor
		} else {
			name := strings.TrimSpace(signup.Name)
			if name == "" {
				name = invite.InviteeName
			}
			in, err := SignupInput{Email: invite.InviteeEmail, Password: signup.Password, Name: name, Role: invite.Kind.InviteeRole()}.validate()
			if err != nil {
				return err
			}
			user, err = createUser(ctx, tx, tokens, in, false)
			if err != nil {
				if HasCode(err, CodeConflict) {
					return ErrConflict(CodeConflict, "An account with this email already exists; sign in to accept")
				}
				return err
			}
			result.Created = true
			if _, err := tx.ExecContext(ctx, `UPDATE invites SET accepted_by = ? WHERE id = ?`, user.ID, invite.ID); err != nil {
				return err
			}
		}

		if err := linkRelation(ctx, tx, invite, user.ID); err != nil {
			return err
		}
		if err := notifyInviteOutcome(ctx, tx, invite, user, true); err != nil {
			return err
		}
		if err := RecordAudit(ctx, tx, &user.ID, "invite.accept", "invite", invite.ID, string(invite.Kind)); err != nil {
			return err
		}
		invite.Status = models.InviteAccepted
		invite.RespondedAt = &now
		invite.AcceptedBy = &user.ID
		result.Invite = invite
		result.User = user
		return nil
	})
	if err != nil {
		return InviteAcceptance{}, err
	}
	return result, nil
}

// claimInvite performs the pending -> next transition as a compare-and-set.
// Losing the race reports the invite as used.
func claimInvite(ctx context.Context, tx *db.Tx, inviteID string, next models.InviteStatus, now time.Time, acceptor *models.User) error {
	var acceptedBy *string
	if acceptor != nil && next == models.InviteAccepted {
		acceptedBy = &acceptor.ID
	}
	res, err := tx.ExecContext(ctx, `
UPDATE invites SET status = ?, responded_at = ?, accepted_by = ?
WHERE id = ? AND status = ?
`, next, now, acceptedBy, inviteID, models.InvitePending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict(CodeInviteUsed, "This invite has already been used")
	}
	return nil
}

func linkRelation(ctx context.Context, tx *db.Tx, invite models.Invite, userID string) error {
	child, err := GetChildRecord(ctx, tx, invite.ChildID)
	if err != nil {
		return err
	}
	linked, err := relationExists(ctx, tx, invite.Kind, child, userID)
	if err != nil {
		return err
	}
	if linked {
		return ErrConflict(CodeAlreadyLinked, "This person already has access to the child")
	}
	now := nowFunc()
	switch invite.Kind {
	case models.InviteProfessional:
		professionalType := ""
		if invite.ProfessionalType != nil {
			professionalType = *invite.ProfessionalType
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO child_professionals (child_id, professional_id, professional_type, created_at) VALUES (?,?,?,?)
`, child.ID, userID, professionalType, now)
	case models.InviteCoParent:
		if _, err = tx.ExecContext(ctx, `DELETE FROM child_shares WHERE child_id = ? AND user_id = ?`, child.ID, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO child_coparents (child_id, user_id, created_at) VALUES (?,?,?)`, child.ID, userID, now)
	case models.InviteChildShare:
		_, err = tx.ExecContext(ctx, `INSERT INTO child_shares (child_id, user_id, created_at) VALUES (?,?,?)`, child.ID, userID, now)
	default:
		return ErrBadRequest("Unknown invite kind")
	}
	return WrapError(err, "link relation")
}

func notifyInviteOutcome(ctx context.Context, q db.Querier, invite models.Invite, invitee models.User, accepted bool) error {
	child, err := GetChildRecord(ctx, q, invite.ChildID)
	if err != nil {
		return err
	}
	kind := models.NotificationInviteAccepted
	verb := "accepted"
	if !accepted {
		kind = models.NotificationInviteRejected
		verb = "declined"
	}
	message := fmt.Sprintf("%s %s your invitation for %s.", invitee.Name, verb, child.Name)
	return createNotification(ctx, q, invite.InviterID, kind, "Invitation "+verb, message, &invite.ID)
}

// InviteByEmail creates a pending invitation for an existing account and
// notifies it. The relation is created when the invitee accepts through
// RespondInvitation.
func InviteByEmail(ctx context.Context, database *db.DB, inviter models.User, kind models.InviteKind, childID, email string) (models.Invite, error) {
	if kind != models.InviteCoParent && kind != models.InviteChildShare {
		return models.Invite{}, ErrBadRequest("Only co-parent and share invitations can be sent by email")
	}
	email = config.NormalizeEmail(email)
	if email == "" {
		return models.Invite{}, ErrBadRequest("Email is required")
	}
	var invite models.Invite
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		child, err := requireInvitePermission(ctx, tx, inviter.ID, childID, kind)
		if err != nil {
			return err
		}
		target, err := checkInviteTarget(ctx, tx, inviter, child, kind, email)
		if err != nil {
			return err
		}
		if target == nil {
			return errWithCode(404, CodeUserNotFound, "No account is registered with this email")
		}
		invite = models.Invite{
			ID:            uuid.NewString(),
			Kind:          kind,
			ChildID:       child.ID,
			InviterID:     inviter.ID,
			InviteeName:   target.Name,
			InviteeEmail:  target.Email,
			InviteeUserID: &target.ID,
			Status:        models.InvitePending,
			CreatedAt:     nowFunc(),
		}
		if err := insertInvite(ctx, tx, invite); err != nil {
			return err
		}
		title := "Co-parent invitation"
		message := fmt.Sprintf("%s invited you to co-parent %s.", inviter.Name, child.Name)
		if kind == models.InviteChildShare {
			title = "Child shared with you"
			message = fmt.Sprintf("%s wants to share %s's records with you.", inviter.Name, child.Name)
		}
		if err := createNotification(ctx, tx, target.ID, kind.NotificationType(), title, message, &invite.ID); err != nil {
			return err
		}
		return RecordAudit(ctx, tx, &inviter.ID, "invite.email", "invite", invite.ID, string(kind))
	})
	if err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}

func ListPendingInvitations(ctx context.Context, q db.Querier, userID string) ([]InviteView, error) {
	invites := []models.Invite{}
	if err := q.SelectContext(ctx, &invites, `
SELECT `+inviteColumns+`
FROM invites
WHERE invitee_user_id = ? AND status = ?
ORDER BY created_at DESC
`, userID, models.InvitePending); err != nil {
		return nil, err
	}
	items := make([]InviteView, 0, len(invites))
	for _, invite := range invites {
		view, err := describeInvite(ctx, q, invite)
		if err != nil {
			return nil, err
		}
		items = append(items, view)
	}
	return items, nil
}

// RespondInvitation accepts or rejects a pending direct-email invitation
// addressed to user.
func RespondInvitation(ctx context.Context, database *db.DB, user models.User, inviteID string, accept bool) (models.Invite, error) {
	var invite models.Invite
	err := database.WithTx(ctx, func(tx *db.Tx) error {
		err := tx.GetContext(ctx, &invite, `SELECT `+inviteColumns+` FROM invites WHERE id = ? AND invitee_user_id = ?`, inviteID, user.ID)
		if db.IsNoRows(err) {
			return errWithCode(404, CodeInviteNotFound, "Invitation not found")
		}
		if err != nil {
			return err
		}
		if invite.Status != models.InvitePending {
			return ErrConflict(CodeInviteUsed, "This invitation has already been answered")
		}
		next := models.InviteRejected
		if accept {
			next = models.InviteAccepted
		}
		now := nowFunc()
		if err := claimInvite(ctx, tx, invite.ID, next, now, &user); err != nil {
			return err
		}
		if accept {
			if err := linkRelation(ctx, tx, invite, user.ID); err != nil {
				return err
			}
			invite.AcceptedBy = &user.ID
		}
		if err := markRelatedNotificationsRead(ctx, tx, user.ID, invite.ID); err != nil {
			return err
		}
		if err := notifyInviteOutcome(ctx, tx, invite, user, accept); err != nil {
			return err
		}
		invite.Status = next
		invite.RespondedAt = &now
		return RecordAudit(ctx, tx, &user.ID, "invite."+string(next), "invite", invite.ID, string(invite.Kind))
	})
	if err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}
