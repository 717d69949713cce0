package models

import "time"

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Name             string     `db:"name"`
	Role             Role       `db:"role"`
	IsAdmin          bool       `db:"is_admin"`
	TwoFactorEnabled bool       `db:"two_factor_enabled"`
	Version          int        `db:"version"`
	TokenVersion     int        `db:"token_version"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	LastLoginAt      *time.Time `db:"last_login_at"`
}

type Child struct {
	ID        string    `db:"id"`
	ParentID  string    `db:"parent_id"`
	Name      string    `db:"name"`
	BirthDate string    `db:"birth_date"`
	School    *string   `db:"school"`
	PhotoURL  *string   `db:"photo_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ProfessionalLink struct {
	ChildID          string    `db:"child_id"`
	ProfessionalID   string    `db:"professional_id"`
	ProfessionalType string    `db:"professional_type"`
	Name             string    `db:"name"`
	Email            string    `db:"email"`
	CreatedAt        time.Time `db:"created_at"`
}

// Member is a user attached to a child through a co-parent or share relation.
type Member struct {
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

type Invite struct {
	ID               string       `db:"id"`
	Token            *string      `db:"token"`
	Kind             InviteKind   `db:"kind"`
	ChildID          string       `db:"child_id"`
	InviterID        string       `db:"inviter_id"`
	InviteeName      string       `db:"invitee_name"`
	InviteeEmail     string       `db:"invitee_email"`
	InviteeUserID    *string      `db:"invitee_user_id"`
	ProfessionalType *string      `db:"professional_type"`
	Status           InviteStatus `db:"status"`
	CreatedAt        time.Time    `db:"created_at"`
	ExpiresAt        *time.Time   `db:"expires_at"`
	RespondedAt      *time.Time   `db:"responded_at"`
	AcceptedBy       *string      `db:"accepted_by"`
}

// Expired reports whether a token invite is past its expiry at now.
func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

type Event struct {
	ID          string    `db:"id"`
	ChildID     string    `db:"child_id"`
	CreatorID   string    `db:"creator_id"`
	CreatorRole Role      `db:"creator_role"`
	Type        EventType `db:"type"`
	Date        string    `db:"event_date"`
	Time        string    `db:"event_time"`
	YearMonth   string    `db:"year_month"`
	Severity    Severity  `db:"severity"`
	Description string    `db:"description"`
	Evaluation  *string   `db:"evaluation"`
	Photos      string    `db:"photos"`
	CreatedAt   time.Time `db:"created_at"`
}

type Notification struct {
	ID        string           `db:"id"`
	UserID    string           `db:"user_id"`
	Type      NotificationType `db:"type"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	RelatedID *string          `db:"related_id"`
	Read      bool             `db:"is_read"`
	CreatedAt time.Time        `db:"created_at"`
	ReadAt    *time.Time       `db:"read_at"`
}

type Appointment struct {
	ID             string            `db:"id"`
	ChildID        string            `db:"child_id"`
	ChildName      string            `db:"child_name"`
	ProfessionalID string            `db:"professional_id"`
	RequesterID    string            `db:"requester_id"`
	RequesterName  string            `db:"requester_name"`
	Date           string            `db:"appointment_date"`
	Time           string            `db:"appointment_time"`
	Notes          string            `db:"notes"`
	Status         AppointmentStatus `db:"status"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

type LGPDRequest struct {
	ID         string            `db:"id"`
	UserID     string            `db:"user_id"`
	UserEmail  string            `db:"user_email"`
	Kind       LGPDRequestKind   `db:"kind"`
	Reason     string            `db:"reason"`
	DataType   *string           `db:"data_type"`
	Status     LGPDRequestStatus `db:"status"`
	CreatedAt  time.Time         `db:"created_at"`
	ResolvedAt *time.Time        `db:"resolved_at"`
	ResolvedBy *string           `db:"resolved_by"`
}

type AdminSettings struct {
	ID              int        `db:"id"`
	BannerURL       *string    `db:"banner_url"`
	BannerLink      *string    `db:"banner_link"`
	Banners         string     `db:"banners"`
	RotationSeconds int        `db:"rotation_seconds"`
	AdsSnippet      string     `db:"ads_snippet"`
	PrivacyPolicy   string     `db:"privacy_policy"`
	TermsOfService  string     `db:"terms_of_service"`
	UpdatedAt       *time.Time `db:"updated_at"`
	UpdatedBy       *string    `db:"updated_by"`
}

type AuditLog struct {
	ID         string    `db:"id"`
	ActorID    *string   `db:"actor_id"`
	Action     string    `db:"action"`
	TargetType string    `db:"target_type"`
	TargetID   string    `db:"target_id"`
	Details    string    `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}
