package models

type Role string

const (
	RoleParent       Role = "parent"
	RoleProfessional Role = "professional"
)

func (r Role) Valid() bool {
	return r == RoleParent || r == RoleProfessional
}

// Capability is what a user may do with one child, derived from ownership
// and the co-parent, share and professional relations.
type Capability string

const (
	CapabilityOwner        Capability = "owner"
	CapabilityCoParent     Capability = "co-parent"
	CapabilityProfessional Capability = "professional"
	CapabilitySharedView   Capability = "shared-view"
	CapabilityNone         Capability = "none"
)

func (c Capability) CanRead() bool {
	return c != CapabilityNone && c != ""
}

func (c Capability) CanWriteEvents() bool {
	return c == CapabilityOwner || c == CapabilityCoParent || c == CapabilityProfessional
}

func (c Capability) CanEditChild() bool {
	return c == CapabilityOwner || c == CapabilityCoParent
}

func (c Capability) CanManageProfessionals() bool {
	return c == CapabilityOwner || c == CapabilityCoParent
}

func (c Capability) CanManageSharing() bool {
	return c == CapabilityOwner || c == CapabilityCoParent
}

type InviteKind string

const (
	InviteProfessional InviteKind = "professional"
	InviteCoParent     InviteKind = "coparent"
	InviteChildShare   InviteKind = "child_share"
)

func (k InviteKind) Valid() bool {
	switch k {
	case InviteProfessional, InviteCoParent, InviteChildShare:
		return true
	}
	return false
}

// InviteeRole is the account role an invitee must hold to redeem the invite.
func (k InviteKind) InviteeRole() Role {
	if k == InviteProfessional {
		return RoleProfessional
	}
	return RoleParent
}

// NotificationType is the notification raised for the invitee of a
// direct-email invitation of this kind.
func (k InviteKind) NotificationType() NotificationType {
	switch k {
	case InviteCoParent:
		return NotificationCoParentInvite
	case InviteChildShare:
		return NotificationChildShareInvite
	default:
		return NotificationProfessionalInvite
	}
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRejected InviteStatus = "rejected"
)

type EventType string

const (
	EventBehavior      EventType = "behavior"
	EventCrisis        EventType = "crisis"
	EventSleep         EventType = "sleep"
	EventFeeding       EventType = "feeding"
	EventSocial        EventType = "social"
	EventCommunication EventType = "communication"
	EventTherapy       EventType = "therapy"
	EventSchool        EventType = "school"
	EventMedication    EventType = "medication"
	EventHealth        EventType = "health"
	EventAchievement   EventType = "achievement"
	EventOther         EventType = "other"
)

var EventTypes = []EventType{
	EventBehavior, EventCrisis, EventSleep, EventFeeding, EventSocial, EventCommunication,
	EventTherapy, EventSchool, EventMedication, EventHealth, EventAchievement, EventOther,
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationProfessionalInvite NotificationType = "professional_invite"
	NotificationCoParentInvite     NotificationType = "coparent_invite"
	NotificationChildShareInvite   NotificationType = "child_share_invite"
	NotificationInviteAccepted     NotificationType = "invite_accepted"
	NotificationInviteRejected     NotificationType = "invite_rejected"
	NotificationNewEvent           NotificationType = "new_event"
	NotificationAppointment        NotificationType = "appointment"
	NotificationLGPD               NotificationType = "lgpd"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

// CanTransition reports whether an appointment may move from s to next.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type LGPDRequestKind string

const (
	LGPDDeletion   LGPDRequestKind = "deletion"
	LGPDOpposition LGPDRequestKind = "opposition"
)

type LGPDRequestStatus string

const (
	LGPDPending  LGPDRequestStatus = "pending"
	LGPDExecuted LGPDRequestStatus = "executed"
	LGPDResolved LGPDRequestStatus = "resolved"
)
