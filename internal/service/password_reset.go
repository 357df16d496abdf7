package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/mail"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

// Password reset failures.  Handlers map each one to a fixed message.
var (
	ErrEmailRequired    = errors.New("email required")
	ErrUserNotFound     = errors.New("no user with that email")
	ErrInvalidResetLink = errors.New("invalid reset uid")
	ErrInvalidToken     = errors.New("invalid or expired reset token")
	ErrPasswordRequired = errors.New("new password required")
)

const (
	resetSubject  = "Restablece tu contraseña"
	resetBodyText = "Hacé clic en el siguiente link para restablecer tu contraseña: %s"
)

// ResetUsers is the part of the user store the reset flow needs.
type ResetUsers interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// TokenRevoker ends the refresh sessions of a user.
type TokenRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// PasswordResetConfig holds the signing and link parameters.
type PasswordResetConfig struct {
	Secret     string
	TTL        time.Duration
	BaseURL    string // optional; the request origin is used when empty
	BcryptCost int
}

// PasswordResetService issues and redeems reset links.  Tokens are bound to
// the current password hash, so they stop working once the password changes.
type PasswordResetService struct {
	users  ResetUsers
	tokens TokenRevoker
	mailer mail.Mailer
	cfg    PasswordResetConfig
	log    *zap.Logger
}

func NewPasswordResetService(users ResetUsers, tokens TokenRevoker, mailer mail.Mailer, cfg PasswordResetConfig, log *zap.Logger) *PasswordResetService {
	return &PasswordResetService{users: users, tokens: tokens, mailer: mailer, cfg: cfg, log: log}
}

// Request emails a reset link to the account registered with email.
// origin (scheme://host of the incoming request) is used when no base URL
// is configured.
func (s *PasswordResetService) Request(ctx context.Context, email, origin string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	token, err := utils.NewResetToken(s.cfg.Secret, u.ID, u.PasswordHash, s.cfg.TTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	link := s.ResetURL(origin, utils.EncodeUID(u.ID), token)

	msg := mail.Message{To: u.Email, Subject: resetSubject, Body: fmt.Sprintf(resetBodyText, link)}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	s.log.Info("password reset requested", zap.Uint64("user_id", u.ID))
	return nil
}

// ResetURL builds <base>/reset-password/<uidb64>/<token>/.
func (s *PasswordResetService) ResetURL(origin, uid, token string) string {
	base := s.cfg.BaseURL
	if base == "" {
		base = origin
	}
	return strings.TrimRight(base, "/") + "/reset-password/" + uid + "/" + token + "/"
}

// Confirm sets a new password when uid and token are valid.  Every refresh
// token of the user is revoked afterwards.
func (s *PasswordResetService) Confirm(ctx context.Context, uid, token, newPassword string) error {
	id, err := utils.DecodeUID(uid)
	if err != nil {
		return ErrInvalidResetLink
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidResetLink
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if err := utils.VerifyResetToken(s.cfg.Secret, token, u.ID, u.PasswordHash); err != nil {
		return ErrInvalidToken
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		s.log.Warn("revoke refresh tokens after reset failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
	s.log.Info("password reset completed", zap.Uint64("user_id", u.ID))
	return nil
}
