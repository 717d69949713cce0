package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type ProfessionalInviteRequest struct {
	ChildID string `json:"childId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Type    string `json:"type"`
}

type CoParentInviteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailInviteRequest struct {
	Email string `json:"email"`
}

type AcceptInviteRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type TokenInviteResponse struct {
	Invite InviteDTO `json:"invite"`
	Token  string    `json:"token"`
	URL    string    `json:"url"`
}

type InviteResponse struct {
	Invite InviteDTO `json:"invite"`
}

type AcceptInviteResponse struct {
	Invite       InviteDTO `json:"invite"`
	User         UserDTO   `json:"user"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    int64     `json:"expiresAt,omitempty"`
}

type InvitationsResponse struct {
	Invitations []InviteDTO `json:"invitations"`
}

func (s *Server) inviteTTL() time.Duration {
	return time.Duration(s.Config.InviteTTLHours) * time.Hour
}

func (s *Server) inviteURL(token string) string {
	return s.Config.AppBaseURL + "/invite/" + token
}

func (s *Server) createTokenInvite(w http.ResponseWriter, r *http.Request, in services.TokenInviteInput) {
	inviter := CurrentUser(r)
	invite, err := services.CreateTokenInvite(r.Context(), s.DB, *inviter, in, s.inviteTTL())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token := *invite.Token
	url := s.inviteURL(token)
	dto := toInviteDTO(invite)
	if view, err := services.GetInviteByToken(r.Context(), s.DB, token); err == nil {
		dto = toInviteViewDTO(view)
	}
	s.mailInvite(r, dto, url)
	WriteJSON(w, http.StatusCreated, TokenInviteResponse{Invite: dto, Token: token, URL: url})
}

// mailInvite runs after the invite is committed. Delivery failures are
// logged; the caller still gets the link to share by hand.
func (s *Server) mailInvite(r *http.Request, invite InviteDTO, url string) {
	if !s.Mailer.Enabled() {
		return
	}
	err := s.Mailer.SendInvite(r.Context(), services.InviteMail{
		ToEmail:     invite.InviteeEmail,
		ToName:      invite.InviteeName,
		InviterName: invite.InviterName,
		ChildName:   invite.ChildName,
		Kind:        invite.Kind,
		URL:         url,
	})
	if err != nil {
		log.Printf("invite %s: mail delivery failed: %v", invite.ID, err)
	}
}

func (s *Server) InviteProfessional(w http.ResponseWriter, r *http.Request) {
	var req ProfessionalInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.createTokenInvite(w, r, services.TokenInviteInput{
		Kind:             models.InviteProfessional,
		ChildID:          req.ChildID,
		Name:             req.Name,
		Email:            req.Email,
		ProfessionalType: req.Type,
	})
}

func (s *Server) InviteCoParent(w http.ResponseWriter, r *http.Request) {
	var req CoParentInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.createTokenInvite(w, r, services.TokenInviteInput{
		Kind:    models.InviteCoParent,
		ChildID: chi.URLParam(r, "childId"),
		Name:    req.Name,
		Email:   req.Email,
	})
}

func (s *Server) GetInvite(w http.ResponseWriter, r *http.Request) {
	view, err := services.GetInviteByToken(r.Context(), s.DB, chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, InviteResponse{Invite: toInviteViewDTO(view)})
}

// AcceptInvite redeems a token. A signed-in caller accepts as themselves;
// an anonymous caller gets an account created from the invite and is
// signed in by the response.
func (s *Server) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, services.CodeValidation, "Invalid payload")
		return
	}
	acceptor := CurrentUser(r)
	var signup *services.InviteSignup
	if acceptor == nil && strings.TrimSpace(req.Password) != "" {
		signup = &services.InviteSignup{Name: req.Name, Password: req.Password}
	}
	result, err := services.AcceptTokenInvite(r.Context(), s.DB, s.Tokens, chi.URLParam(r, "token"), acceptor, signup)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := AcceptInviteResponse{Invite: toInviteDTO(result.Invite), User: toUserDTO(result.User)}
	if result.Created {
		pair, err := s.Tokens.IssuePair(result.User)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp.AccessToken = pair.AccessToken
		resp.RefreshToken = pair.RefreshToken
		resp.ExpiresAt = pair.ExpiresAt
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) inviteByEmail(w http.ResponseWriter, r *http.Request, kind models.InviteKind) {
	var req EmailInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	invite, err := services.InviteByEmail(r.Context(), s.DB, *CurrentUser(r), kind, chi.URLParam(r, "childId"), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, InviteResponse{Invite: toInviteDTO(invite)})
}

func (s *Server) AddCoParent(w http.ResponseWriter, r *http.Request) {
	s.inviteByEmail(w, r, models.InviteCoParent)
}

func (s *Server) ShareChild(w http.ResponseWriter, r *http.Request) {
	s.inviteByEmail(w, r, models.InviteChildShare)
}

func (s *Server) PendingInvitations(w http.ResponseWriter, r *http.Request) {
	views, err := services.ListPendingInvitations(r.Context(), s.DB, CurrentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]InviteDTO, 0, len(views))
	for _, view := range views {
		items = append(items, toInviteViewDTO(view))
	}
	WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: items})
}

func (s *Server) respondInvitation(w http.ResponseWriter, r *http.Request, accept bool) {
	invite, err := services.RespondInvitation(r.Context(), s.DB, *CurrentUser(r), chi.URLParam(r, "inviteId"), accept)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, InviteResponse{Invite: toInviteDTO(invite)})
}

func (s *Server) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	s.respondInvitation(w, r, true)
}

func (s *Server) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	s.respondInvitation(w, r, false)
}
