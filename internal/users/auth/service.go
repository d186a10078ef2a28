// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// ProfileInitializer creates the reader profile that every account owns.
type ProfileInitializer interface {
	Create(context context.Context, userID string) error
}

var (
	errInvalidCredentials = apperr.Unauthorized("Invalid login credentials")
	errInvalidRefresh     = apperr.Unauthorized("Invalid or expired refresh token")
	errWrongPassword      = apperr.Unauthorized("Current password is incorrect")
	errTooManyFailures    = apperr.RateLimited(int(LoginFailureWindow.Seconds()))
)

// Service implements user authentication use cases.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	failures          LoginFailureCounter
	tokenProvider     TokenProvider
	profiles          ProfileInitializer
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	failures LoginFailureCounter,
	tokenProv TokenProvider,
	profiles ProfileInitializer,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		failures:          failures,
		tokenProvider:     tokenProv,
		profiles:          profiles,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new member account.

Description: The reader profile is created right after the account. When the
profile cannot be created the account is removed again, so the caller can
simply retry the registration.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	// 1. Shape validation
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, MinUsernameLength).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Username(FieldUsername, input.Username)
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Identity uniqueness
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	// 3. Persist
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleMember,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// 4. Reader profile
	if err := service.profiles.Create(context, user.ID); err != nil {
		service.logger.Error("profile_init_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		if deleteErr := service.userRepository.Delete(context, user.ID); deleteErr != nil {
			service.logger.Error("registration_rollback_failed",
				slog.String("user_id", user.ID),
				slog.Any("error", deleteErr),
			)
		}
		return nil, apperr.InternalMessage("Failed to set up the reader profile", err)
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Authentication Flow

// LoginInput contains the credentials and client metadata of a login attempt.
type LoginInput struct {
	Login     string // Can be Username or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is the pair of tokens handed to the client.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Repeated wrong passwords for the same login are locked out for
LoginFailureWindow. The counter is best effort: when Redis is unavailable
the attempt proceeds.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: Unauthorized, RateLimited or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	input.Login = strings.TrimSpace(input.Login)
	if input.Login == "" || input.Password == "" {
		return nil, errInvalidCredentials
	}

	// 1. Lockout
	if failures, err := service.failures.Count(context, input.Login); err != nil {
		service.logger.Warn("login_failure_count_unavailable", slog.Any("error", err))
	} else if failures >= MaxLoginFailures {
		return nil, errTooManyFailures
	}

	// 2. Identity resolution
	user, err := service.resolveLogin(context, input.Login)
	if err != nil {
		return nil, err
	}

	// 3. Password check
	if user == nil || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.recordFailure(context, input.Login)
		return nil, errInvalidCredentials
	}

	if err := service.failures.Reset(context, input.Login); err != nil {
		service.logger.Warn("login_failure_reset_failed", slog.Any("error", err))
	}

	if err := service.userRepository.TouchLogin(context, user.ID); err != nil {
		service.logger.Warn("login_touch_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	// 4. Issue tokens
	session, err := service.issueSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

// resolveLogin treats a login containing "@" as an email, otherwise a username.
// A nil user with a nil error means no account matched.
func (service *Service) resolveLogin(context context.Context, login string) (*User, error) {
	lookup := service.userRepository.FindByUsername
	if strings.Contains(login, "@") {
		lookup = service.userRepository.FindByEmail
	}

	user, err := lookup(context, login)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (service *Service) recordFailure(context context.Context, login string) {
	count, err := service.failures.Increment(context, login, LoginFailureWindow)
	if err != nil {
		service.logger.Warn("login_failure_record_failed", slog.Any("error", err))
		return
	}
	if count == MaxLoginFailures {
		service.logger.Warn("login_locked_out", slog.String("login", login))
	}
}

func (service *Service) issueSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the session behind a refresh token.

Description: Unknown or already revoked tokens are a silent no-op.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
RefreshSession rotates a refresh token.

Description: The presented session is revoked before the new pair is issued,
so a replayed token is rejected.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	if refreshToken == "" {
		return nil, errInvalidRefresh
	}

	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errInvalidRefresh
		}
		return nil, err
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Picks up a role promoted since the last login
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("User not found or suspended")
		}
		return nil, err
	}

	return service.issueSession(context, user, userAgent, ipAddress)
}

// # Account Maintenance

// ChangePasswordInput carries a password change for the authenticated user.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
	RefreshToken    string // the caller's session survives the change
}

/*
ChangePassword replaces the password and revokes every other session.

Parameters:
  - context: context.Context
  - input: ChangePasswordInput

Returns:
  - error: Validation, Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword)
	validator.Required(FieldNewPassword, input.NewPassword).MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)
	validator.Custom(FieldNewPassword, input.NewPassword != "" && input.NewPassword == input.CurrentPassword,
		"must differ from the current password")
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, input.UserID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return errWrongPassword
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return err
	}

	// Keep the current session when the caller presented one
	currentSessionID := ""
	if input.RefreshToken != "" {
		session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(input.RefreshToken))
		if err == nil && session.UserID == user.ID {
			currentSessionID = session.ID
		}
	}

	if err := service.sessionRepository.RevokeOthers(context, user.ID, currentSessionID); err != nil {
		return fmt.Errorf("auth_service_revoke_sessions_failed: %w", err)
	}

	service.logger.Info("password_changed", slog.String("user_id", user.ID))
	return nil
}

/*
PromoteToAuthor raises a member account to the author role.

Description: Existing access tokens keep the old role until the client
refreshes its session.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) PromoteToAuthor(context context.Context, userID string) error {
	if err := service.userRepository.PromoteToAuthor(context, userID); err != nil {
		return err
	}

	service.logger.Info("user_promoted", slog.String("user_id", userID), slog.String("role", string(sec.RoleAuthor)))
	return nil
}

// sessionRetention keeps revoked and expired rows for a short audit window.
const sessionRetention = 24 * time.Hour

/*
PurgeExpiredSessions deletes sessions that expired or were revoked more than
a day ago.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of deleted sessions
  - error: Storage failures
*/
func (service *Service) PurgeExpiredSessions(context context.Context) (int64, error) {
	deleted, err := service.sessionRepository.DeleteExpired(context, time.Now().Add(-sessionRetention))
	if err != nil {
		return 0, err
	}

	service.logger.Info("sessions_purged", slog.Int64("deleted", deleted))
	return deleted, nil
}
