package httpapi

import (
	"context"
	"net/http"
	"strings"

	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"
)

type contextKey string

const ctxUser contextKey = "user"

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// authenticate resolves the bearer token to a live account. It returns a
// nil user for requests without a token or carrying the public anon key.
func (s *Server) authenticate(r *http.Request) (*models.User, error) {
	token := bearerToken(r)
	if token == "" || (s.Config.AnonKey != "" && token == s.Config.AnonKey) {
		return nil, nil
	}
	return s.userFromToken(r.Context(), token)
}

func (s *Server) userFromToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.Tokens.Verify(token, "access")
	if err != nil {
		return nil, err
	}
	user, err := services.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		if services.HasCode(err, services.CodeUserNotFound) {
			return nil, services.ErrUnauthorized("Authentication failed")
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, services.ErrUnauthorized("Session expired")
	}
	return &user, nil
}

// WithAuth requires a valid access token of an existing account.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if user == nil {
			WriteError(w, http.StatusUnauthorized, services.CodeUnauthorized, "Authentication failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

// OptionalAuth attaches the caller when a live user token is present. A
// token that fails verification or belongs to a revoked session is treated
// as no token at all.
func (s *Server) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil && !services.HasCode(err, services.CodeUnauthorized) {
			writeServiceError(w, r, err)
			return
		}
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUser, user))
		}
		next.ServeHTTP(w, r)
	})
}

func CurrentUser(r *http.Request) *models.User {
	if user, ok := r.Context().Value(ctxUser).(*models.User); ok {
		return user
	}
	return nil
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil || !user.IsAdmin {
			WriteError(w, http.StatusForbidden, services.CodeForbidden, "Not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil || user.Role != role {
				WriteError(w, http.StatusForbidden, services.CodeForbidden, "Not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
