// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var errUserNotFound = apperr.NotFoundMessage("User not found")

func userTargets(user *User) []any {
	return []any{
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	}
}

// findOne runs a single-account lookup on the given column, excluding soft-deleted rows.
func (repository *PostgresUserRepository) findOne(context context.Context, predicate string, arg any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s AND %s IS NULL`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		predicate,
		schema.UserAccount.DeletedAt,
	)

	user := &User{}
	if err := repository.pool.QueryRow(context, query, arg).Scan(userTargets(user)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("postgres: failed to find user: %w", err)
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on a taken username/email, or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "User", "create_user")
}

// Delete removes the account row outright. Registration uses it to undo an
// account whose profile could not be created.
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres: failed to delete user: %w", err)
	}
	return nil
}

// FindByID retrieves a user record by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.ID+" = $1", id)
}

// FindByEmail retrieves a user by email, ignoring case.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, fmt.Sprintf("lower(%s) = lower($1)", schema.UserAccount.Email), email)
}

// FindByUsername retrieves a user by username, ignoring case.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, fmt.Sprintf("lower(%s) = lower($1)", schema.UserAccount.Username), username)
}

/*
UpdatePassword replaces the stored bcrypt hash.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.Password, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("postgres: failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}

/*
PromoteToAuthor raises the role of a member to author.

Description: The role guard in the WHERE clause keeps moderators and admins
untouched. A zero-row update is only an error when the account is missing.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) PromoteToAuthor(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = 'author', %s = now()
		WHERE %s = $1 AND %s = 'member' AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.Role, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.Role, schema.UserAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to promote user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		_, err := repository.FindByID(context, userID)
		return err
	}
	return nil
}

// TouchLogin records the time of the latest successful login.
func (repository *PostgresUserRepository) TouchLogin(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = now() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt, schema.UserAccount.ID,
	)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return fmt.Errorf("postgres: failed to touch login: %w", err)
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new refresh-token session.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Database errors
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		schema.UserSession.Table,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.IPAddress, schema.UserSession.UserAgent, schema.UserSession.ExpiresAt,
		schema.UserSession.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		session.ID, session.UserID, session.TokenHash,
		session.IPAddress, session.UserAgent, session.ExpiresAt,
	).Scan(&session.CreatedAt)

	return dberr.Wrap(err, "Session", "create_session")
}

/*
FindByTokenHash returns a live session for the given refresh-token hash.

Parameters:
  - context: context.Context
  - tokenHash: string (sha256 hex)

Returns:
  - *Session: Active session
  - error: apperr.NotFound when missing, revoked or expired
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND NOT %s AND %s > now()`,
		strings.Join(schema.UserSession.Columns(), ", "),
		schema.UserSession.Table,
		schema.UserSession.TokenHash, schema.UserSession.IsRevoked, schema.UserSession.ExpiresAt,
	)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.IPAddress,
		&session.UserAgent, &session.IsRevoked, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Session", "find_session")
	}

	return session, nil
}

// Revoke marks a single session as revoked.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = true, %s = now() WHERE %s = $1 AND NOT %s`,
		schema.UserSession.Table,
		schema.UserSession.IsRevoked, schema.UserSession.RevokedAt,
		schema.UserSession.ID, schema.UserSession.IsRevoked,
	)

	if _, err := repository.pool.Exec(context, query, sessionID); err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
	}
	return nil
}

// RevokeOthers revokes every active session of the user except the current one.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, currentSessionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = true, %s = now()
		WHERE %s = $1 AND %s::text <> $2 AND NOT %s`,
		schema.UserSession.Table,
		schema.UserSession.IsRevoked, schema.UserSession.RevokedAt,
		schema.UserSession.UserID, schema.UserSession.ID, schema.UserSession.IsRevoked,
	)

	if _, err := repository.pool.Exec(context, query, userID, currentSessionID); err != nil {
		return fmt.Errorf("postgres: failed to revoke other sessions: %w", err)
	}
	return nil
}

/*
DeleteExpired removes sessions that expired, or were revoked, before cutoff.

Parameters:
  - context: context.Context
  - cutoff: time.Time

Returns:
  - int64: Deleted row count
  - error: Database errors
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1 OR (%s AND %s < $1)`,
		schema.UserSession.Table,
		schema.UserSession.ExpiresAt,
		schema.UserSession.IsRevoked, schema.UserSession.RevokedAt,
	)

	tag, err := repository.pool.Exec(context, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
