package client

import (
	"context"
	"sync"
)

// Session is the single owner of the signed-in user. Screens read the
// mirrored user from it instead of keeping their own copies; Refresh
// replaces the mirror only when the server reports a newer version.
type Session struct {
	client *Client

	mu   sync.RWMutex
	user *User
}

func NewSession(c *Client) *Session {
	return &Session{client: c}
}

func (s *Session) Client() *Client {
	return s.client
}

func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Adopt installs the tokens and user from an auth response.
func (s *Session) Adopt(auth AuthResult) {
	if auth.AccessToken != "" {
		s.client.SetToken(auth.AccessToken)
	}
	user := auth.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

func (s *Session) SignIn(ctx context.Context, email, password string) (User, error) {
	auth, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	s.Adopt(auth)
	return auth.User, nil
}

func (s *Session) SignUp(ctx context.Context, email, password, name, role string) (User, error) {
	auth, err := s.client.Signup(ctx, email, password, name, role)
	if err != nil {
		return User{}, err
	}
	s.Adopt(auth)
	return auth.User, nil
}

// Refresh re-fetches the user and reports whether the mirror changed. A
// rejected token ends the session.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	fresh, err := s.client.Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			s.clear()
		}
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ID == fresh.ID && s.user.Version == fresh.Version {
		return false, nil
	}
	s.user = &fresh
	return true, nil
}

// SignOut revokes every token of the account server-side and forgets the
// local mirror even when the request fails.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.clear()
	return err
}

func (s *Session) clear() {
	s.client.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
