package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"autazul-backend-go/internal/services"
)

type ErrorResponse struct {
	Error string        `json:"error"`
	Code  services.Code `json:"code"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code services.Code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps err onto the error envelope. Anything that is not
// a ServiceError is logged and reported as an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if serr, ok := services.AsServiceError(err); ok {
		WriteError(w, serr.Status, serr.Code, serr.Message)
		return
	}
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, services.CodeInternal, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		WriteError(w, http.StatusBadRequest, services.CodeValidation, "Invalid payload")
		return false
	}
	return true
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
