package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	repo "github.com/olehvasylenko/contacts-api/internal/domain/repository"
	"github.com/olehvasylenko/contacts-api/pkg/helpers"
	"github.com/olehvasylenko/contacts-api/pkg/mailer"
	tpl "github.com/olehvasylenko/contacts-api/pkg/mailer/templates"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailTaken         = errors.New("account already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const gravatarSize = 250

// EmailPublisher enqueues outbound email jobs. Satisfied by
// helpers.RabbitPublisher; faked in tests.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService drives the account lifecycle:
// Unregistered -> PendingConfirmation -> Confirmed, plus token issuance,
// refresh rotation, and logout.
type AuthService struct {
	Repo            repo.UserRepository
	JWT             *helpers.JWTManager
	Pub             EmailPublisher
	Logger          *logrus.Logger
	BaseURL         string
	MailSendEnabled bool
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, pub EmailPublisher, logger *logrus.Logger, baseURL string, mailEnabled bool) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Pub: pub, Logger: logger, BaseURL: baseURL, MailSendEnabled: mailEnabled}
}

// Signup creates a PendingConfirmation account and triggers the confirmation
// email. The email send is fire-and-forget and never blocks signup.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// Best-effort avatar; a gravatar URL always resolves to an identicon at
	// worst, so account creation is never blocked on it.
	avatar := helpers.GravatarURL(email, gravatarSize)

	u := &entity.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   &avatar,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.sendConfirmation(ctx, u)
	return u, nil
}

// RequestConfirmation re-sends the confirmation email for an unconfirmed
// account. Returns whether the account is already confirmed; unknown emails
// surface ErrUserNotFound so the handler can reply neutrally.
func (s *AuthService) RequestConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if u.Confirmed {
		return true, nil
	}
	s.sendConfirmation(ctx, u)
	return false, nil
}

// ConfirmEmail validates a confirmation token and flips the account to
// Confirmed. Idempotent: confirming twice reports alreadyConfirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.JWT.ParseEmailToken(token)
	if err != nil {
		return false, ErrInvalidToken
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if u.Confirmed {
		return true, nil
	}
	return false, s.Repo.ConfirmEmail(ctx, email)
}

// Login verifies credentials for a Confirmed account and issues a fresh
// access/refresh pair, persisting the refresh token. The not-confirmed
// failure is reported regardless of password correctness and is distinct
// from bad credentials; a missing account is indistinguishable from a wrong
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.Confirmed {
		return nil, TokenPair{}, ErrEmailNotConfirmed
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh validates a presented refresh token against the one stored for the
// user and rotates the pair. A stale (already rotated) token invalidates the
// session entirely: the stored token is cleared and the user must log in
// again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		if err := s.Repo.UpdateRefreshToken(ctx, u.ID, nil); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to revoke refresh token")
		}
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, u)
}

// Logout revokes refresh capability; the account stays Confirmed.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Repo.UpdateRefreshToken(ctx, userID, nil)
}

// CurrentUser resolves the account behind a validated access-token subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	if err := s.Repo.UpdateRefreshToken(ctx, u.ID, &refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailSendEnabled {
		return
	}
	token, exp, err := s.JWT.GenerateEmailToken(u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("confirmation token generation failed")
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.TemplateConfirmEmail,
		Data: map[string]any{
			"Username":   u.Username,
			"ConfirmURL": s.BaseURL + "/api/auth/confirmed_email/" + token,
			"ExpiresAt":  exp.UTC().Format(time.RFC1123),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("failed to enqueue confirmation email")
	}
}
