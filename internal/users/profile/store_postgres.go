// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

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
	"github.com/taibuivan/bookgod/pkg/uuid"
)

var errProfileNotFound = apperr.NotFoundMessage("User not found")

// PostgresRepository implements [Repository] over users.profile and users.readinghistory.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the profile Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func profileTargets(profile *Profile) []any {
	return []any{
		&profile.UserID, &profile.Preferences.Theme, &profile.Preferences.Language,
		&profile.CreatedAt, &profile.UpdatedAt,
	}
}

/*
Create inserts the profile row.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: apperr.Conflict on a duplicate, or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s`,
		schema.UserProfile.Table,
		schema.UserProfile.UserID, schema.UserProfile.Theme, schema.UserProfile.Language,
		schema.UserProfile.CreatedAt, schema.UserProfile.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		profile.UserID, profile.Preferences.Theme, profile.Preferences.Language,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	return dberr.Wrap(err, "Profile", "create_profile")
}

// FindByUserID loads the preferences row.
func (repository *PostgresRepository) FindByUserID(context context.Context, userID string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.UserProfile.Columns(), ", "),
		schema.UserProfile.Table,
		schema.UserProfile.UserID,
	)

	profile := &Profile{}
	if err := repository.pool.QueryRow(context, query, userID).Scan(profileTargets(profile)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errProfileNotFound
		}
		return nil, fmt.Errorf("postgres: failed to get profile: %w", err)
	}
	return profile, nil
}

/*
UpdatePreferences stores the merged preferences.

Parameters:
  - context: context.Context
  - userID: string
  - prefs: Preferences

Returns:
  - *Profile: Updated row
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) UpdatePreferences(context context.Context, userID string, prefs Preferences) (*Profile, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		schema.UserProfile.Table,
		schema.UserProfile.Theme, schema.UserProfile.Language, schema.UserProfile.UpdatedAt,
		schema.UserProfile.UserID,
		strings.Join(schema.UserProfile.Columns(), ", "),
	)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, userID, prefs.Theme, prefs.Language).Scan(profileTargets(profile)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errProfileNotFound
		}
		return nil, dberr.Wrap(err, "Profile", "update_preferences")
	}
	return profile, nil
}

/*
AppendHistory inserts a history row only when the profile exists.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string
  - at: time.Time

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) AppendHistory(context context.Context, userID, bookID string, at time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, p.%s, $3, $4 FROM %s p WHERE p.%s = $2`,
		schema.UserReadingHistory.Table,
		schema.UserReadingHistory.ID, schema.UserReadingHistory.UserID,
		schema.UserReadingHistory.BookID, schema.UserReadingHistory.LastRead,
		schema.UserProfile.UserID, schema.UserProfile.Table, schema.UserProfile.UserID,
	)

	tag, err := repository.pool.Exec(context, query, uuid.New(), userID, bookID, at)
	if err != nil {
		return dberr.Wrap(err, "Reading history", "append_history")
	}
	if tag.RowsAffected() == 0 {
		return errProfileNotFound
	}
	return nil
}

// ListHistory returns at most limit entries, newest first.
func (repository *PostgresRepository) ListHistory(context context.Context, userID string, limit int) ([]HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2`,
		schema.UserReadingHistory.BookID, schema.UserReadingHistory.LastRead,
		schema.UserReadingHistory.Table,
		schema.UserReadingHistory.UserID,
		schema.UserReadingHistory.LastRead,
	)

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list reading history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.BookID, &entry.LastRead); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan reading history: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
