package service

import (
	"context"
	"strings"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/core/session"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
	"github.com/yndnr/hostdeck-go/internal/telemetry/metric"
	"github.com/yndnr/hostdeck-go/pkg/credential"
)

// Fallback messages used when the backend gives no message.
const (
	MsgSignInFailed         = "login failed, please try again later"
	MsgSignUpFailed         = "registration failed, please try again later"
	MsgUpdateProfileFailed  = "profile update failed, please try again later"
	MsgChangePasswordFailed = "password change failed, please try again later"
	MsgWeakPassword         = "password does not meet requirements"
	MsgNotSignedIn          = "not signed in"
)

// AuthAPI is the backend surface the facade needs. Secrets passed to it
// are already transformed.
type AuthAPI interface {
	Login(ctx context.Context, username, transformed string) (*domain.SessionGrant, error)
	Register(ctx context.Context, username, email, transformed string) (*domain.SessionGrant, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, email string) (*domain.Identity, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// Result is the outcome of a facade operation.
type Result struct {
	Success    bool              `json:"success"`
	Identity   *domain.Identity  `json:"identity,omitempty"`
	Error      string            `json:"error,omitempty"`
	Violations []credential.Rule `json:"violations,omitempty"`
}

// AuthServiceConfig holds optional collaborators for AuthService.
type AuthServiceConfig struct {
	Logger  logger.Logger
	Metrics *metric.Registry
}

// AuthService is the session facade.
type AuthService struct {
	store   *session.Store
	api     AuthAPI
	logger  logger.Logger
	metrics *metric.Registry
}

// NewAuthService creates a facade over store and api.
func NewAuthService(store *session.Store, api AuthAPI, config *AuthServiceConfig) *AuthService {
	if config == nil {
		config = &AuthServiceConfig{}
	}
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	return &AuthService{
		store:   store,
		api:     api,
		logger:  log.With("component", "auth"),
		metrics: config.Metrics,
	}
}

// SignIn authenticates with username and secret and commits the session.
func (s *AuthService) SignIn(ctx context.Context, username, secret string) Result {
	s.store.BeginLoading()
	defer s.store.EndLoading()
	s.store.ClearError()

	grant, err := s.api.Login(ctx, username, credential.Transform(secret))
	return s.commit(ctx, "login", username, grant, err, MsgSignInFailed)
}

// SignUp validates secret strength, registers the account and commits
// the resulting session. A weak secret fails without a network call.
func (s *AuthService) SignUp(ctx context.Context, username, email, secret string) Result {
	s.store.BeginLoading()
	defer s.store.EndLoading()
	s.store.ClearError()

	if res, weak := s.checkStrength(secret); weak {
		return res
	}

	grant, err := s.api.Register(ctx, username, email, credential.Transform(secret))
	return s.commit(ctx, "register", username, grant, err, MsgSignUpFailed)
}

func (s *AuthService) commit(ctx context.Context, op, username string, grant *domain.SessionGrant, err error, fallback string) Result {
	if err == nil {
		err = s.store.CommitSession(ctx, grant.Identity, grant.Credentials)
	}
	if s.metrics != nil {
		s.metrics.IncSignIn(op, err == nil)
	}
	if err != nil {
		msg := normalize(err, fallback)
		s.store.SetError(msg)
		s.logger.Info(op+" failed", "username", username, "error", err)
		return Result{Error: msg}
	}

	s.logger.Info(op+" succeeded", "username", username, "role", grant.Identity.Role)
	return Result{Success: true, Identity: grant.Identity.Clone()}
}

// SignOut notifies the backend on a best-effort basis and always clears
// the session.
func (s *AuthService) SignOut(ctx context.Context) {
	if s.store.Snapshot().IsAuthenticated {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("logout notification failed", "error", err)
		}
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session", "error", err)
	}
}

// RefreshProfile re-fetches the identity and replaces only the identity
// in the store. Failures are logged and leave the session as it was.
func (s *AuthService) RefreshProfile(ctx context.Context) (*domain.Identity, bool) {
	id, err := s.api.Profile(ctx)
	if err != nil {
		s.logger.Warn("profile refresh failed", "error", err)
		return nil, false
	}
	if err := s.store.SetIdentity(ctx, id); err != nil {
		s.logger.Warn("failed to store refreshed profile", "error", err)
		return nil, false
	}
	return id.Clone(), true
}

// UpdateProfile changes the email of the signed-in identity.
func (s *AuthService) UpdateProfile(ctx context.Context, email string) Result {
	if !s.store.Snapshot().IsAuthenticated {
		return Result{Error: MsgNotSignedIn}
	}

	s.store.BeginLoading()
	defer s.store.EndLoading()
	s.store.ClearError()

	id, err := s.api.UpdateProfile(ctx, strings.TrimSpace(email))
	if err == nil {
		err = s.store.SetIdentity(ctx, id)
	}
	if err != nil {
		msg := normalize(err, MsgUpdateProfileFailed)
		s.store.SetError(msg)
		s.logger.Info("profile update failed", "error", err)
		return Result{Error: msg}
	}
	return Result{Success: true, Identity: id.Clone()}
}

// ChangePassword replaces the secret of the signed-in identity. The new
// secret must pass the strength check; both secrets are transformed.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) Result {
	if !s.store.Snapshot().IsAuthenticated {
		return Result{Error: MsgNotSignedIn}
	}

	s.store.BeginLoading()
	defer s.store.EndLoading()
	s.store.ClearError()

	if res, weak := s.checkStrength(next); weak {
		return res
	}

	err := s.api.ChangePassword(ctx, credential.Transform(current), credential.Transform(next))
	if err != nil {
		msg := normalize(err, MsgChangePasswordFailed)
		s.store.SetError(msg)
		s.logger.Info("password change failed", "error", err)
		return Result{Error: msg}
	}
	s.logger.Info("password changed")
	return Result{Success: true, Identity: s.store.Snapshot().Identity}
}

// checkStrength reports a failure Result when secret is weak.
func (s *AuthService) checkStrength(secret string) (Result, bool) {
	strength := credential.CheckStrength(secret)
	if strength.OK {
		return Result{}, false
	}
	s.store.SetError(MsgWeakPassword + ": " + strings.Join(strength.Messages(), ", "))
	return Result{Error: MsgWeakPassword, Violations: strength.Violations}, true
}

// normalize picks the user-facing message for err: the backend message
// when there is one, otherwise fallback.
func normalize(err error, fallback string) string {
	if domain.IsDomainError(err, domain.ErrBackend.Code) {
		if msg := domain.Details(err); msg != "" {
			return msg
		}
	}
	return fallback
}
