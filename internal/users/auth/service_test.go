// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/users/auth"
)

type fixture struct {
	service  *auth.Service
	users    *memoryUsers
	sessions *memorySessions
	failures *memoryFailures
	profiles *profileRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    newMemoryUsers(),
		sessions: newMemorySessions(),
		failures: newMemoryFailures(),
		profiles: &profileRecorder{},
	}
	f.service = auth.NewService(f.users, f.sessions, f.failures, stubTokens{}, f.profiles,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func (f *fixture) register(t *testing.T, username, email, password string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username, Email: email, Password: password,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) login(login, password string) (*auth.LoginSession, error) {
	return f.service.Login(context.Background(), auth.LoginInput{Login: login, Password: password})
}

/*
TestService_Register creates a member with a profile and rejects duplicates.
*/
func TestService_Register(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "reader", "reader@bookgod.app", "correct horse")
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.Equal(t, []string{user.ID}, f.profiles.created)

	tests := []struct {
		name  string
		input auth.RegisterInput
		code  string
	}{
		{"email_taken_case_insensitive", auth.RegisterInput{Username: "other", Email: "READER@bookgod.app", Password: "password1"}, apperr.CodeConflict},
		{"username_taken", auth.RegisterInput{Username: "Reader", Email: "other@bookgod.app", Password: "password1"}, apperr.CodeConflict},
		{"short_password", auth.RegisterInput{Username: "other", Email: "other@bookgod.app", Password: "short"}, apperr.CodeValidation},
		{"bad_email", auth.RegisterInput{Username: "other", Email: "nope", Password: "password1"}, apperr.CodeValidation},
		{"bad_username", auth.RegisterInput{Username: "a b", Email: "other@bookgod.app", Password: "password1"}, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

/*
TestService_Register_ProfileFailure removes the account when the profile
cannot be created, so a retry with the same identity succeeds.
*/
func TestService_Register_ProfileFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := auth.RegisterInput{Username: "reader", Email: "reader@bookgod.app", Password: "correct horse"}

	f.profiles.err = errors.New("db down")
	_, err := f.service.Register(ctx, input)
	require.True(t, apperr.HasCode(err, apperr.CodeInternal), "got %v", err)
	assert.Empty(t, f.users.rows)

	f.profiles.err = nil
	user, err := f.service.Register(ctx, input)
	require.NoError(t, err)
	assert.Contains(t, f.profiles.created, user.ID)
}

/*
TestService_Login accepts username or email and rejects bad credentials uniformly.
*/
func TestService_Login(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "reader", "reader@bookgod.app", "correct horse")

	tests := []struct {
		name     string
		login    string
		password string
		ok       bool
	}{
		{"username", "reader", "correct horse", true},
		{"email", "Reader@BookGod.app", "correct horse", true},
		{"wrong_password", "reader", "wrong horse", false},
		{"unknown_user", "ghost", "correct horse", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.login(tt.login, tt.password)
			if !tt.ok {
				assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "access:"+user.ID+":member", session.AccessToken)
			assert.NotEmpty(t, session.RefreshToken)
			assert.WithinDuration(t, time.Now().Add(auth.RefreshTokenTTL), session.RefreshTokenExpiresAt, time.Minute)
		})
	}

	stored, err := f.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

/*
TestService_Login_LockOut blocks a login after repeated failures and a
success clears the counter.
*/
func TestService_Login_LockOut(t *testing.T) {
	f := newFixture(t)
	f.register(t, "reader", "reader@bookgod.app", "correct horse")

	for range auth.MaxLoginFailures - 1 {
		_, err := f.login("reader", "wrong")
		require.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	}

	_, err := f.login("reader", "correct horse")
	require.NoError(t, err)
	assert.Zero(t, f.failures.counts["reader"])

	for range auth.MaxLoginFailures {
		_, _ = f.login("reader", "wrong")
	}

	_, err = f.login("reader", "correct horse")
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))
}

/*
TestService_Login_CounterUnavailable lets logins through when the counter fails.
*/
func TestService_Login_CounterUnavailable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "reader", "reader@bookgod.app", "correct horse")
	f.failures.broken = true

	_, err := f.login("reader", "wrong")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.login("reader", "correct horse")
	assert.NoError(t, err)
}

/*
TestService_RefreshSession rotates the token and rejects replays.
*/
func TestService_RefreshSession(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "reader", "reader@bookgod.app", "correct horse")
	ctx := context.Background()

	first, err := f.login("reader", "correct horse")
	require.NoError(t, err)

	// A promotion shows up in the refreshed access token
	require.NoError(t, f.service.PromoteToAuthor(ctx, user.ID))

	second, err := f.service.RefreshSession(ctx, first.RefreshToken, "agent", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "access:"+user.ID+":author", second.AccessToken)
	assert.Equal(t, 1, f.sessions.active(user.ID))

	_, err = f.service.RefreshSession(ctx, first.RefreshToken, "agent", "10.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.service.RefreshSession(ctx, "", "agent", "10.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestService_Logout revokes the session and ignores unknown tokens.
*/
func TestService_Logout(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "reader", "reader@bookgod.app", "correct horse")
	ctx := context.Background()

	session, err := f.login("reader", "correct horse")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, session.RefreshToken))
	assert.Zero(t, f.sessions.active(user.ID))

	assert.NoError(t, f.service.Logout(ctx, session.RefreshToken))
	assert.NoError(t, f.service.Logout(ctx, "unknown"))
}

/*
TestService_ChangePassword keeps the caller's session and revokes the rest.
*/
func TestService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "reader", "reader@bookgod.app", "correct horse")
	ctx := context.Background()

	current, err := f.login("reader", "correct horse")
	require.NoError(t, err)
	_, err = f.login("reader", "correct horse")
	require.NoError(t, err)
	require.Equal(t, 2, f.sessions.active(user.ID))

	tests := []struct {
		name  string
		input auth.ChangePasswordInput
		code  string
	}{
		{"wrong_current", auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: "nope", NewPassword: "battery staple"}, apperr.CodeUnauthorized},
		{"too_short", auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: "correct horse", NewPassword: "short"}, apperr.CodeValidation},
		{"unchanged", auth.ChangePasswordInput{UserID: user.ID, CurrentPassword: "correct horse", NewPassword: "correct horse"}, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.ChangePassword(ctx, tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}

	err = f.service.ChangePassword(ctx, auth.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: "correct horse",
		NewPassword:     "battery staple",
		RefreshToken:    current.RefreshToken,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.sessions.active(user.ID))

	_, err = f.service.RefreshSession(ctx, current.RefreshToken, "", "")
	assert.NoError(t, err)

	_, err = f.login("reader", "correct horse")
	assert.Error(t, err)
	_, err = f.login("reader", "battery staple")
	assert.NoError(t, err)
}

/*
TestService_PurgeExpiredSessions drops sessions past the retention cutoff.
*/
func TestService_PurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	f.sessions.rows["old"] = &auth.Session{ID: "old", ExpiresAt: time.Now().Add(-48 * time.Hour)}
	f.sessions.rows["live"] = &auth.Session{ID: "live", ExpiresAt: time.Now().Add(time.Hour)}

	deleted, err := f.service.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Contains(t, f.sessions.rows, "live")
}
