// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/users/auth"
)

type memoryUsers struct {
	rows map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: map[string]*auth.User{}}
}

func (store *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	for _, user := range store.rows {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFoundMessage("User not found")
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return user.ID == id })
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return strings.EqualFold(user.Email, email) })
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return strings.EqualFold(user.Username, username) })
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	store.rows[user.ID] = &copied
	return nil
}

func (store *memoryUsers) Delete(_ context.Context, id string) error {
	delete(store.rows, id)
	return nil
}

func (store *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := store.rows[userID]
	if !ok {
		return apperr.NotFoundMessage("User not found")
	}
	user.PasswordHash = newHash
	return nil
}

func (store *memoryUsers) PromoteToAuthor(_ context.Context, userID string) error {
	user, ok := store.rows[userID]
	if !ok {
		return apperr.NotFoundMessage("User not found")
	}
	if user.Role == sec.RoleMember {
		user.Role = sec.RoleAuthor
	}
	return nil
}

func (store *memoryUsers) TouchLogin(_ context.Context, userID string) error {
	if user, ok := store.rows[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

type memorySessions struct {
	rows map[string]*auth.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{rows: map[string]*auth.Session{}}
}

func (store *memorySessions) Create(_ context.Context, session *auth.Session) error {
	copied := *session
	store.rows[session.ID] = &copied
	return nil
}

func (store *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range store.rows {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (store *memorySessions) Revoke(_ context.Context, sessionID string) error {
	if session, ok := store.rows[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (store *memorySessions) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, session := range store.rows {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (store *memorySessions) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, session := range store.rows {
		if session.ExpiresAt.Before(cutoff) {
			delete(store.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func (store *memorySessions) active(userID string) int {
	count := 0
	for _, session := range store.rows {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

type memoryFailures struct {
	counts map[string]int64
	broken bool
}

func newMemoryFailures() *memoryFailures {
	return &memoryFailures{counts: map[string]int64{}}
}

var errRedisDown = errors.New("redis down")

func (counter *memoryFailures) Increment(_ context.Context, login string, _ time.Duration) (int64, error) {
	if counter.broken {
		return 0, errRedisDown
	}
	counter.counts[strings.ToLower(login)]++
	return counter.counts[strings.ToLower(login)], nil
}

func (counter *memoryFailures) Count(_ context.Context, login string) (int64, error) {
	if counter.broken {
		return 0, errRedisDown
	}
	return counter.counts[strings.ToLower(login)], nil
}

func (counter *memoryFailures) Reset(_ context.Context, login string) error {
	if counter.broken {
		return errRedisDown
	}
	delete(counter.counts, strings.ToLower(login))
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, _, role string, _ time.Duration) (string, error) {
	return "access:" + userID + ":" + role, nil
}

type profileRecorder struct {
	created []string
	err     error
}

func (recorder *profileRecorder) Create(_ context.Context, userID string) error {
	if recorder.err != nil {
		return recorder.err
	}
	recorder.created = append(recorder.created, userID)
	return nil
}
