package httpapi

import (
	"net/http"

	"autazul-backend-go/internal/services"
)

type SecurityRequest struct {
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UserResponse struct {
	User UserDTO `json:"user"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, UserResponse{User: toUserDTO(*CurrentUser(r))})
}

func (s *Server) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var req SecurityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := services.UpdateSecurity(r.Context(), s.DB, CurrentUser(r).ID, req.TwoFactorEnabled)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, UserResponse{User: toUserDTO(user)})
}

// ChangePassword rotates the password and signs out every other session;
// the response carries a fresh token pair for the caller.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		WriteError(w, http.StatusBadRequest, services.CodeValidation, "Password confirmation does not match")
		return
	}
	user, err := services.ChangePassword(r.Context(), s.DB, s.Tokens, CurrentUser(r).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.writeTokens(w, r, http.StatusOK, user)
}
