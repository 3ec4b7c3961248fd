package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskhub-io/ms-go-taskhub/app/dto"
	"github.com/taskhub-io/ms-go-taskhub/app/entity"
	"github.com/taskhub-io/ms-go-taskhub/app/repository"
	"github.com/taskhub-io/ms-go-taskhub/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns registration, login/logout, password management and the
// ephemeral-token flows (email verification, password reset). Ephemeral
// tokens live on the user row: issuing overwrites the previous value, so
// each user has at most one outstanding token per kind, and consuming
// clears the slot so the value is single-use.
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *TokenService
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, tokens *TokenService, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, fullname, password string) (*entity.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	existing, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if err := s.cfg.PasswordPolicy.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifyToken, tokenExpiresAt, err := s.tokens.NewEphemeralToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Username: username,
		Email:    email,
		FullName: fullname,
		// The avatar column rejects NULL; new accounts start with an empty one.
		Avatar:                 sql.NullString{String: "", Valid: true},
		PasswordHash:           string(hashedPassword),
		IsEmailVerified:        false,
		EmailVerificationToken: sql.NullString{String: verifyToken, Valid: true},
		EmailVerificationExpiresAt: sql.NullTime{
			Time:  tokenExpiresAt,
			Valid: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two registrations can race past the read checks; the unique keys
		// on email and username settle it.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.sendVerificationMail(ctx, user, verifyToken)

	return user, nil
}

// Login authenticates with email/password and starts a fresh session by
// issuing a token pair and overwriting the stored refresh token. Unverified
// accounts are rejected before any token is issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, accessExpiresAt, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExpiresAt, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	next := sql.NullString{String: refresh, Valid: true}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, next); err != nil {
		return nil, err
	}
	user.RefreshToken = next

	return &dto.Session{
		User:             user,
		AccessToken:      access,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Logout invalidates the caller's session by clearing the stored refresh
// token. The outstanding access token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.userRepo.SetRefreshToken(ctx, userID, sql.NullString{})
}

// VerifyEmail consumes a verification token. A token that was never issued
// and one that has expired fail identically.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	user, err := s.userRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.EmailVerificationExpiresAt.Valid || user.EmailVerificationExpiresAt.Time.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = sql.NullString{}
	user.EmailVerificationExpiresAt = sql.NullTime{}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendEmailVerification issues a fresh verification token for an
// unverified account, superseding any previous one.
func (s *AuthService) ResendEmailVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	verifyToken, tokenExpiresAt, err := s.tokens.NewEphemeralToken()
	if err != nil {
		return err
	}

	user.EmailVerificationToken = sql.NullString{String: verifyToken, Valid: true}
	user.EmailVerificationExpiresAt = sql.NullTime{Time: tokenExpiresAt, Valid: true}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.sendVerificationMail(ctx, user, verifyToken)
	return nil
}

// ForgotPassword issues a reset token and mails the reset URL. Issuing
// overwrites any previous reset token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	resetToken, tokenExpiresAt, err := s.tokens.NewEphemeralToken()
	if err != nil {
		return err
	}

	user.ForgotPasswordToken = sql.NullString{String: resetToken, Valid: true}
	user.ForgotPasswordExpiresAt = sql.NullTime{Time: tokenExpiresAt, Valid: true}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/user/reset-password/%s", s.cfg.PublicBaseURL, resetToken)
	if err := s.mailer.SendPasswordResetMail(ctx, user.Email, user.Username, resetURL); err != nil {
		// Mail delivery is best effort; the token is already persisted.
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to send password reset mail")
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the password hash and
// clears the stored refresh token so existing sessions die with the old
// password. Expired and unknown tokens fail identically.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*entity.User, error) {
	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.ForgotPasswordExpiresAt.Valid || user.ForgotPasswordExpiresAt.Time.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = string(hashedPassword)
	user.ForgotPasswordToken = sql.NullString{}
	user.ForgotPasswordExpiresAt = sql.NullTime{}
	user.RefreshToken = sql.NullString{}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrPasswordMismatch
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	user.RefreshToken = sql.NullString{}
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *entity.User, token string) {
	verificationURL := fmt.Sprintf("%s/api/v1/user/verify/%s", s.cfg.PublicBaseURL, token)
	if err := s.mailer.SendVerificationMail(ctx, user.Email, user.Username, verificationURL); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to send verification mail")
	}
}
