package client

import "time"

type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	IsAdmin          bool   `json:"isAdmin"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	Version          int    `json:"version"`
}

// AuthResult is returned by signup, login and anonymous invite acceptance.
// Token fields are empty when a signed-in user accepted an invite.
type AuthResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	User         User   `json:"user"`
}

type Child struct {
	ID               string  `json:"id"`
	ParentID         string  `json:"parentId"`
	Name             string  `json:"name"`
	BirthDate        string  `json:"birthDate"`
	School           *string `json:"school"`
	Photo            *string `json:"photo"`
	Access           string  `json:"access"`
	ProfessionalType string  `json:"professionalType"`
}

type Invitation struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	ChildID      string     `json:"childId"`
	ChildName    string     `json:"childName"`
	InviterName  string     `json:"inviterName"`
	InviteeName  string     `json:"inviteeName"`
	InviteeEmail string     `json:"inviteeEmail"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

type TokenInvite struct {
	Invite Invitation `json:"invite"`
	Token  string     `json:"token"`
	URL    string     `json:"url"`
}

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	RelatedID *string    `json:"relatedId"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}

type Banner struct {
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
	Alt      string `json:"alt"`
}

type Settings struct {
	Banners         []Banner `json:"banners"`
	RotationSeconds int      `json:"rotationSeconds"`
	AdsSnippet      string   `json:"adsSnippet"`
	PrivacyPolicy   string   `json:"privacyPolicy"`
	TermsOfService  string   `json:"termsOfService"`
}
