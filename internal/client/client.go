// Package client is a Go client for the Autazul HTTP API. It keeps the
// session mirror, polls notifications and drives the banner carousel the
// way the web frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const requestTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func IsUnauthorized(err error) bool { return HasCode(err, "unauthorized") }

func IsForbidden(err error) bool { return HasCode(err, "forbidden") }

func IsInviteUsed(err error) bool { return HasCode(err, "invite_used") }

func IsInviteExpired(err error) bool { return HasCode(err, "invite_expired") }

func IsRoleMismatch(err error) bool { return HasCode(err, "role_mismatch") }

// IsNotFound matches every not-found flavour the API reports.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// bearer is the user token, or the anon key when nobody is signed in.
func (c *Client) bearer() string {
	if token := c.Token(); token != "" {
		return token
	}
	return c.AnonKey
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/api"+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer := c.bearer(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			if envelope.Error != "" {
				apiErr.Message = envelope.Error
			}
			apiErr.Code = envelope.Code
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Signup(ctx context.Context, email, password, name, role string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": password, "name": name, "role": role,
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/me", nil, &out)
	return out.User, err
}

func (c *Client) UpdateSecurity(ctx context.Context, twoFactorEnabled bool) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodPut, "/me/security", map[string]bool{"twoFactorEnabled": twoFactorEnabled}, &out)
	return out.User, err
}

func (c *Client) CreateChild(ctx context.Context, name, birthDate string) (Child, error) {
	var out struct {
		Child Child `json:"child"`
	}
	err := c.do(ctx, http.MethodPost, "/children", map[string]string{"name": name, "birthDate": birthDate}, &out)
	return out.Child, err
}

func (c *Client) ListChildren(ctx context.Context) ([]Child, error) {
	var out struct {
		Children []Child `json:"children"`
	}
	err := c.do(ctx, http.MethodGet, "/children", nil, &out)
	return out.Children, err
}

func (c *Client) ShareChild(ctx context.Context, childID, email string) (Invitation, error) {
	var out struct {
		Invite Invitation `json:"invite"`
	}
	err := c.do(ctx, http.MethodPost, "/children/"+url.PathEscape(childID)+"/shares", map[string]string{"email": email}, &out)
	return out.Invite, err
}

func (c *Client) InviteProfessional(ctx context.Context, childID, name, email, professionalType string) (TokenInvite, error) {
	var out TokenInvite
	err := c.do(ctx, http.MethodPost, "/professionals/invite", map[string]string{
		"childId": childID, "name": name, "email": email, "type": professionalType,
	}, &out)
	return out, err
}

func (c *Client) GetInvite(ctx context.Context, token string) (Invitation, error) {
	var out struct {
		Invite Invitation `json:"invite"`
	}
	err := c.do(ctx, http.MethodGet, "/invites/"+url.PathEscape(token), nil, &out)
	return out.Invite, err
}

// AcceptInvite redeems an invite token. Without a signed-in user the name
// and password create the invitee's account.
func (c *Client) AcceptInvite(ctx context.Context, token, name, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/invites/"+url.PathEscape(token)+"/accept", map[string]string{
		"name": name, "password": password,
	}, &out)
	return out, err
}

func (c *Client) PendingInvitations(ctx context.Context) ([]Invitation, error) {
	var out struct {
		Invitations []Invitation `json:"invitations"`
	}
	err := c.do(ctx, http.MethodGet, "/invitations/pending", nil, &out)
	return out.Invitations, err
}

func (c *Client) RespondInvitation(ctx context.Context, id string, accept bool) (Invitation, error) {
	action := "reject"
	if accept {
		action = "accept"
	}
	var out struct {
		Invite Invitation `json:"invite"`
	}
	err := c.do(ctx, http.MethodPost, "/invitations/"+url.PathEscape(id)+"/"+action, nil, &out)
	return out.Invite, err
}

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	err := c.do(ctx, http.MethodGet, "/notifications", nil, &out)
	return out.Notifications, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (Notification, error) {
	var out struct {
		Notification Notification `json:"notification"`
	}
	err := c.do(ctx, http.MethodPost, "/notifications/"+url.PathEscape(id)+"/read", nil, &out)
	return out.Notification, err
}

func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var out struct {
		Settings Settings `json:"settings"`
	}
	err := c.do(ctx, http.MethodGet, "/settings", nil, &out)
	return out.Settings, err
}
