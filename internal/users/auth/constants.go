// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// MaxLoginFailures is how many wrong passwords a login may submit
	// within LoginFailureWindow before it is locked out.
	MaxLoginFailures = 5

	// LoginFailureWindow is the lockout window, counted from the first failure.
	LoginFailureWindow = 15 * time.Minute

	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
)
