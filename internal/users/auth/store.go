// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername matches case-insensitively.
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict when the username or email is taken
	*/
	Create(context context.Context, user *User) error

	// Delete hard-deletes an account that never finished registering.
	Delete(context context.Context, id string) error

	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		PromoteToAuthor raises a member account to the author role.

		Description: Accounts already at author or above are left unchanged, so
		the call is idempotent.

		Returns:
		  - error: apperr.NotFound when the account does not exist
	*/
	PromoteToAuthor(context context.Context, userID string) error

	// TouchLogin stamps lastloginat with the current time.
	TouchLogin(context context.Context, userID string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Description: Revoked and expired sessions are reported as not found.
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	Revoke(context context.Context, sessionID string) error

	// RevokeOthers revokes every active session of userID except currentSessionID.
	RevokeOthers(context context.Context, userID, currentSessionID string) error

	/*
		DeleteExpired physically removes sessions that expired or were revoked
		before the cutoff.

		Returns:
		  - int64: Number of removed rows
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context, cutoff time.Time) (int64, error)
}

// # Volatile Data Access

// LoginFailureCounter tracks failed password attempts per login identifier.
type LoginFailureCounter interface {

	/*
		Increment records one failure and returns the running count.

		Description: The window starts at the first failure and is not extended
		by later ones.
	*/
	Increment(context context.Context, login string, window time.Duration) (int64, error)

	// Count returns the failures recorded within the current window.
	Count(context context.Context, login string) (int64, error)

	Reset(context context.Context, login string) error
}
