// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

// ratingRepository implements the [RatingRepository] interface using pgx.
type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository constructs a PostgreSQL backed rating store.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

// errRateFailed is returned when a rating write touched no rows.
func errRateFailed(cause error) error {
	return apperr.InternalMessage("Failed to rate the book", cause)
}

/*
Rate records, updates or withdraws a user's rating and adjusts the book aggregate.

Description: The book row is locked first so concurrent ratings of the same
book serialise. The aggregate is only ever moved by relative deltas, so the
invariant Stars == SUM(ratedbook.stars) holds across concurrent writers.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - bookID: string (UUID)
  - stars: int (1..5)

Returns:
  - *RateResult: The action taken and the new aggregate
  - error: NOT_FOUND for unpublished books, INTERNAL_ERROR on a failed write
*/
func (repository *ratingRepository) Rate(context context.Context, userID, bookID string, stars int) (*RateResult, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin rating transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// 1. Lock the book row
	lockQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s IS NULL FOR UPDATE`,
		schema.CoreBook.Title, schema.CoreBook.Status,
		schema.CoreBook.Table, schema.CoreBook.ID, schema.CoreBook.DeletedAt,
	)

	var title string
	var status Status
	if err := transaction.QueryRow(context, lockQuery, bookID).Scan(&title, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBookNotFound
		}
		return nil, fmt.Errorf("postgres: failed to lock book: %w", err)
	}
	if status != StatusPublished {
		return nil, errBookNotFound
	}

	// 2. Load the caller's current rating
	existing, err := findUserRating(context, transaction, userID, bookID)
	if err != nil {
		return nil, err
	}

	// 3. Apply the reconciled write to the rating row
	adjustment := Reconcile(existing, stars)

	var result pgconn.CommandTag
	switch adjustment.Action {
	case ActionRate:
		query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
			schema.CoreRatedBook.Table,
			schema.CoreRatedBook.ID, schema.CoreRatedBook.BookID, schema.CoreRatedBook.UserID,
			schema.CoreRatedBook.BookTitle, schema.CoreRatedBook.Stars,
		)
		result, err = transaction.Exec(context, query, uuid.New(), bookID, userID, title, stars)

	case ActionUpdate:
		query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
			schema.CoreRatedBook.Table, schema.CoreRatedBook.Stars, schema.CoreRatedBook.UpdatedAt, schema.CoreRatedBook.ID,
		)
		result, err = transaction.Exec(context, query, existing.ID, stars)

	case ActionDelete:
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreRatedBook.Table, schema.CoreRatedBook.ID)
		result, err = transaction.Exec(context, query, existing.ID)
	}

	if err != nil {
		return nil, errRateFailed(fmt.Errorf("postgres: failed to %s rating: %w", adjustment.Action, err))
	}
	if result.RowsAffected() == 0 {
		return nil, errRateFailed(fmt.Errorf("postgres: %s rating affected no rows", adjustment.Action))
	}

	// 4. Move the aggregate by the same deltas
	aggregateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = %s + $2, %s = %s + $3
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.CoreBook.Table,
		schema.CoreBook.Stars, schema.CoreBook.Stars,
		schema.CoreBook.RatedBy, schema.CoreBook.RatedBy,
		schema.CoreBook.ID,
		schema.CoreBook.Stars, schema.CoreBook.RatedBy,
	)

	rateResult := &RateResult{Message: adjustment.Action.Message(), Action: adjustment.Action}
	if err := transaction.QueryRow(context, aggregateQuery, bookID, adjustment.StarsDelta, adjustment.RatersDelta).
		Scan(&rateResult.Stars, &rateResult.RatedBy); err != nil {
		return nil, errRateFailed(fmt.Errorf("postgres: failed to update book aggregate: %w", err))
	}

	if err := transaction.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit rating: %w", err)
	}

	if rateResult.RatedBy > 0 {
		rateResult.AverageRating = float64(rateResult.Stars) / float64(rateResult.RatedBy)
	}
	return rateResult, nil
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func findUserRating(context context.Context, db querier, userID, bookID string) (*RatedBook, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		joinColumns(schema.CoreRatedBook.Columns()), schema.CoreRatedBook.Table,
		schema.CoreRatedBook.UserID, schema.CoreRatedBook.BookID,
	)

	rated := &RatedBook{}
	err := db.QueryRow(context, query, userID, bookID).Scan(ratedTargets(rated)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find rating: %w", err)
	}
	return rated, nil
}

// FindUserRating returns nil, nil when the user has not rated the book.
func (repository *ratingRepository) FindUserRating(context context.Context, userID, bookID string) (*RatedBook, error) {
	return findUserRating(context, repository.pool, userID, bookID)
}

/*
ListByUser returns every rating the user has given, most recently changed first.
*/
func (repository *ratingRepository) ListByUser(context context.Context, userID string) ([]*RatedBook, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		joinColumns(schema.CoreRatedBook.Columns()), schema.CoreRatedBook.Table,
		schema.CoreRatedBook.UserID, schema.CoreRatedBook.UpdatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]*RatedBook, 0)
	for rows.Next() {
		rated := &RatedBook{}
		if err := rows.Scan(ratedTargets(rated)...); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan rating: %w", err)
		}
		ratings = append(ratings, rated)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate ratings: %w", err)
	}
	return ratings, nil
}

func ratedTargets(rated *RatedBook) []any {
	return []any{&rated.ID, &rated.BookID, &rated.UserID, &rated.BookTitle, &rated.Stars, &rated.CreatedAt, &rated.UpdatedAt}
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
