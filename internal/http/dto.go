package httpapi

import (
	"time"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"
)

type UserDTO struct {
	ID               string      `json:"id"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	Role             models.Role `json:"role"`
	IsAdmin          bool        `json:"isAdmin"`
	TwoFactorEnabled bool        `json:"twoFactorEnabled"`
	Version          int         `json:"version"`
	LastLoginAt      *time.Time  `json:"lastLoginAt,omitempty"`
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		IsAdmin:          user.IsAdmin,
		TwoFactorEnabled: user.TwoFactorEnabled,
		Version:          user.Version,
		LastLoginAt:      user.LastLoginAt,
	}
}

type ChildDTO struct {
	ID               string            `json:"id"`
	ParentID         string            `json:"parentId"`
	Name             string            `json:"name"`
	BirthDate        string            `json:"birthDate"`
	School           *string           `json:"school,omitempty"`
	Photo            *string           `json:"photo,omitempty"`
	Access           models.Capability `json:"access,omitempty"`
	ProfessionalType string            `json:"professionalType,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func toChildDTO(child models.Child) ChildDTO {
	return ChildDTO{
		ID:        child.ID,
		ParentID:  child.ParentID,
		Name:      child.Name,
		BirthDate: child.BirthDate,
		School:    child.School,
		Photo:     child.PhotoURL,
		CreatedAt: child.CreatedAt,
		UpdatedAt: child.UpdatedAt,
	}
}

func toChildAccessDTOs(items []services.ChildAccess) []ChildDTO {
	out := make([]ChildDTO, 0, len(items))
	for _, item := range items {
		dto := toChildDTO(item.Child)
		dto.Access = item.Access
		dto.ProfessionalType = item.ProfessionalType
		out = append(out, dto)
	}
	return out
}

type MemberDTO struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func toMemberDTOs(items []models.Member) []MemberDTO {
	out := make([]MemberDTO, 0, len(items))
	for _, item := range items {
		out = append(out, MemberDTO{UserID: item.UserID, Name: item.Name, Email: item.Email})
	}
	return out
}

type ProfessionalDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Type     string    `json:"type"`
	ChildID  string    `json:"childId"`
	LinkedAt time.Time `json:"linkedAt"`
}

func toProfessionalDTOs(items []models.ProfessionalLink) []ProfessionalDTO {
	out := make([]ProfessionalDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ProfessionalDTO{
			ID:       item.ProfessionalID,
			Name:     item.Name,
			Email:    item.Email,
			Type:     item.ProfessionalType,
			ChildID:  item.ChildID,
			LinkedAt: item.CreatedAt,
		})
	}
	return out
}

type InviteDTO struct {
	ID               string              `json:"id"`
	Kind             models.InviteKind   `json:"kind"`
	ChildID          string              `json:"childId"`
	ChildName        string              `json:"childName,omitempty"`
	InviterID        string              `json:"inviterId"`
	InviterName      string              `json:"inviterName,omitempty"`
	InviteeName      string              `json:"inviteeName"`
	InviteeEmail     string              `json:"inviteeEmail"`
	ProfessionalType *string             `json:"professionalType,omitempty"`
	Status           models.InviteStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	ExpiresAt        *time.Time          `json:"expiresAt,omitempty"`
}

func toInviteDTO(invite models.Invite) InviteDTO {
	return InviteDTO{
		ID:               invite.ID,
		Kind:             invite.Kind,
		ChildID:          invite.ChildID,
		InviterID:        invite.InviterID,
		InviteeName:      invite.InviteeName,
		InviteeEmail:     invite.InviteeEmail,
		ProfessionalType: invite.ProfessionalType,
		Status:           invite.Status,
		CreatedAt:        invite.CreatedAt,
		ExpiresAt:        invite.ExpiresAt,
	}
}

func toInviteViewDTO(view services.InviteView) InviteDTO {
	dto := toInviteDTO(view.Invite)
	dto.ChildName = view.ChildName
	dto.InviterName = view.InviterName
	return dto
}

// EventDTO reports severity on the current four-level scale. The value as
// it was recorded is kept in recordedSeverity and legacySeverity carries
// the three-level value older clients render.
type EventDTO struct {
	ID               string           `json:"id"`
	ChildID          string           `json:"childId"`
	CreatorID        string           `json:"creatorId"`
	CreatorRole      models.Role      `json:"creatorRole"`
	Type             models.EventType `json:"type"`
	Date             string           `json:"date"`
	Time             string           `json:"time"`
	Severity         models.Severity  `json:"severity"`
	RecordedSeverity models.Severity  `json:"recordedSeverity"`
	LegacySeverity   models.Severity  `json:"legacySeverity"`
	Description      string           `json:"description"`
	Evaluation       *string          `json:"evaluation,omitempty"`
	Photos           []string         `json:"photos"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func toEventDTO(event models.Event) EventDTO {
	return EventDTO{
		ID:               event.ID,
		ChildID:          event.ChildID,
		CreatorID:        event.CreatorID,
		CreatorRole:      event.CreatorRole,
		Type:             event.Type,
		Date:             event.Date,
		Time:             event.Time,
		Severity:         event.Severity.Current(),
		RecordedSeverity: event.Severity,
		LegacySeverity:   event.Severity.Legacy(),
		Description:      event.Description,
		Evaluation:       event.Evaluation,
		Photos:           services.EventPhotos(event),
		CreatedAt:        event.CreatedAt,
	}
}

func toEventDTOs(items []models.Event) []EventDTO {
	out := make([]EventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toEventDTO(item))
	}
	return out
}

type NotificationDTO struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	RelatedID *string                 `json:"relatedId,omitempty"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
	ReadAt    *time.Time              `json:"readAt,omitempty"`
}

func toNotificationDTO(item models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        item.ID,
		Type:      item.Type,
		Title:     item.Title,
		Message:   item.Message,
		RelatedID: item.RelatedID,
		Read:      item.Read,
		CreatedAt: item.CreatedAt,
		ReadAt:    item.ReadAt,
	}
}

type AppointmentDTO struct {
	ID             string                   `json:"id"`
	ChildID        string                   `json:"childId"`
	ChildName      string                   `json:"childName"`
	ProfessionalID string                   `json:"professionalId"`
	RequesterName  string                   `json:"requesterName"`
	Date           string                   `json:"date"`
	Time           string                   `json:"time"`
	Notes          string                   `json:"notes"`
	Status         models.AppointmentStatus `json:"status"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

func toAppointmentDTO(item models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:             item.ID,
		ChildID:        item.ChildID,
		ChildName:      item.ChildName,
		ProfessionalID: item.ProfessionalID,
		RequesterName:  item.RequesterName,
		Date:           item.Date,
		Time:           item.Time,
		Notes:          item.Notes,
		Status:         item.Status,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

type LGPDRequestDTO struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"userId"`
	UserEmail  string                   `json:"userEmail"`
	Kind       models.LGPDRequestKind   `json:"kind"`
	Reason     string                   `json:"reason"`
	DataType   *string                  `json:"dataType,omitempty"`
	Status     models.LGPDRequestStatus `json:"status"`
	CreatedAt  time.Time                `json:"createdAt"`
	ResolvedAt *time.Time               `json:"resolvedAt,omitempty"`
}

func toLGPDRequestDTO(item models.LGPDRequest) LGPDRequestDTO {
	return LGPDRequestDTO{
		ID:         item.ID,
		UserID:     item.UserID,
		UserEmail:  item.UserEmail,
		Kind:       item.Kind,
		Reason:     item.Reason,
		DataType:   item.DataType,
		Status:     item.Status,
		CreatedAt:  item.CreatedAt,
		ResolvedAt: item.ResolvedAt,
	}
}

func toLGPDRequestDTOs(items []models.LGPDRequest) []LGPDRequestDTO {
	out := make([]LGPDRequestDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toLGPDRequestDTO(item))
	}
	return out
}
