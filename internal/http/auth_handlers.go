package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"
)

type SignupRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresAt    int64   `json:"expiresAt"`
	User         UserDTO `json:"user"`
}

func (s *Server) writeTokens(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, status, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         toUserDTO(user),
	})
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.Signup(r.Context(), s.DB, s.Tokens, s.Config.AdminEmails, services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeTokens(w, r, http.StatusCreated, user)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.Authenticate(r.Context(), s.DB, s.Tokens, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeTokens(w, r, http.StatusOK, user)
}

// Refresh exchanges a refresh token for a new pair. Tokens minted before the
// last logout or password change are rejected.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	claims, err := s.Tokens.Verify(req.RefreshToken, "refresh")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := services.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user.TokenVersion != claims.TokenVersion {
		WriteError(w, http.StatusUnauthorized, services.CodeUnauthorized, "Authentication failed")
		return
	}
	s.writeTokens(w, r, http.StatusOK, user)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if err := services.RevokeSessions(r.Context(), s.DB, user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
