package connection

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
)

// Backend endpoints.
const (
	PathLogin          = "/api/v1/auth/login"
	PathRegister       = "/api/v1/auth/register"
	PathLogout         = "/api/v1/auth/logout"
	PathRefresh        = "/api/v1/refresh-token"
	PathProfile        = "/api/v1/profile"
	PathChangePassword = "/api/v1/change-password"
	PathServers        = "/api/v1/servers"
	PathAdminUsers     = "/api/v1/admin/users"
)

// isPublicPath reports whether path is an auth endpoint that must not
// carry the access credential or trigger renewal.
func isPublicPath(path string) bool {
	switch path {
	case PathLogin, PathRegister, PathRefresh:
		return true
	}
	return false
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type grantResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refresh_token"`
	User         *domain.Identity `json:"user"`
	ExpiresAt    int64            `json:"expires_at"`
}

type renewRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type renewResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type updateProfileRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Pagination is the backend's list paging block.
type Pagination struct {
	Page  int   `json:"page" yaml:"page"`
	Limit int   `json:"limit" yaml:"limit"`
	Total int64 `json:"total" yaml:"total"`
}

// Server is one managed machine as listed by the backend.
type Server struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Host        string    `json:"host" yaml:"host"`
	Port        int       `json:"port" yaml:"port"`
	Username    string    `json:"username" yaml:"username" table:",wide"`
	Description string    `json:"description" yaml:"description,omitempty" table:",wide"`
	OS          string    `json:"os" yaml:"os,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	GroupID     *int64    `json:"group_id" yaml:"group_id,omitempty" table:",wide"`
	Tags        string    `json:"tags" yaml:"tags,omitempty" table:",wide"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" table:",wide"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" table:",wide"`
}

// ServerPage is one page of servers.
type ServerPage struct {
	Servers    []Server   `json:"servers" yaml:"servers"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// UserPage is one page of accounts from the admin listing.
type UserPage struct {
	Users      []domain.Identity `json:"users" yaml:"users"`
	Pagination Pagination        `json:"pagination" yaml:"pagination"`
}

// ListOptions selects a page of a listing.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

func (o ListOptions) query() string {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// AuthAPI is the typed backend API over the gateway.
type AuthAPI struct {
	http *HTTPClient
}

// NewAuthAPI creates an API bound to the gateway.
func NewAuthAPI(c *HTTPClient) *AuthAPI {
	return &AuthAPI{http: c}
}

// Login exchanges a username and transformed secret for a session grant.
func (a *AuthAPI) Login(ctx context.Context, username, transformed string) (*domain.SessionGrant, error) {
	return a.grant(ctx, PathLogin, loginRequest{Username: username, Password: transformed})
}

// Register creates an account and returns its session grant.
func (a *AuthAPI) Register(ctx context.Context, username, email, transformed string) (*domain.SessionGrant, error) {
	return a.grant(ctx, PathRegister, registerRequest{Username: username, Email: email, Password: transformed})
}

func (a *AuthAPI) grant(ctx context.Context, path string, body any) (*domain.SessionGrant, error) {
	resp, err := a.http.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var out grantResponse
	if err := ParseEnvelope(resp, &out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.RefreshToken == "" || out.User == nil {
		return nil, domain.ErrBadResponse.WithDetails("grant without token, refresh token or user")
	}

	return &domain.SessionGrant{
		Identity: out.User,
		Credentials: domain.CredentialPair{
			Access:    out.Token,
			Renewal:   out.RefreshToken,
			ExpiresAt: unixTime(out.ExpiresAt),
		},
	}, nil
}

// unixTime converts a backend epoch, zero or missing meaning unknown.
func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// Logout notifies the backend that the session ends.
func (a *AuthAPI) Logout(ctx context.Context) error {
	resp, err := a.http.Post(ctx, PathLogout, nil)
	if err != nil {
		return err
	}
	return ParseEnvelope(resp, nil)
}

// Profile fetches the current identity.
func (a *AuthAPI) Profile(ctx context.Context) (*domain.Identity, error) {
	resp, err := a.http.Get(ctx, PathProfile)
	if err != nil {
		return nil, err
	}

	var id domain.Identity
	if err := ParseEnvelope(resp, &id); err != nil {
		return nil, err
	}
	if id.Username == "" {
		return nil, domain.ErrBadResponse.WithDetails("profile without username")
	}
	return &id, nil
}

// UpdateProfile changes the email of the current identity.
func (a *AuthAPI) UpdateProfile(ctx context.Context, email string) (*domain.Identity, error) {
	resp, err := a.http.Put(ctx, PathProfile, updateProfileRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var id domain.Identity
	if err := ParseEnvelope(resp, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ChangePassword replaces the secret. Both values are already transformed.
func (a *AuthAPI) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := a.http.Post(ctx, PathChangePassword, changePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return ParseEnvelope(resp, nil)
}

// ListServers fetches a page of managed servers.
func (a *AuthAPI) ListServers(ctx context.Context, opts ListOptions) (*ServerPage, error) {
	resp, err := a.http.Get(ctx, PathServers+opts.query())
	if err != nil {
		return nil, err
	}

	var page ServerPage
	if err := ParseEnvelope(resp, &page); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return &page, nil
}

// ListUsers fetches a page of accounts. Admin only.
func (a *AuthAPI) ListUsers(ctx context.Context, opts ListOptions) (*UserPage, error) {
	opts.Search = ""
	resp, err := a.http.Get(ctx, PathAdminUsers+opts.query())
	if err != nil {
		return nil, err
	}

	var page UserPage
	if err := ParseEnvelope(resp, &page); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &page, nil
}
