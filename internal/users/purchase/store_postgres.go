// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over users.purchase.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the purchase Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Record inserts the purchase, ignoring a repeat for the same user and book.

Parameters:
  - context: context.Context
  - purchase: *Purchase

Returns:
  - bool: Whether a new row was written
  - error: Database errors
*/
func (repository *PostgresRepository) Record(context context.Context, purchase *Purchase) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%s, %s) DO NOTHING
		RETURNING %s`,
		schema.UserPurchase.Table,
		schema.UserPurchase.ID, schema.UserPurchase.UserID, schema.UserPurchase.BookID,
		schema.UserPurchase.SessionID, schema.UserPurchase.Amount, schema.UserPurchase.Currency,
		schema.UserPurchase.UserID, schema.UserPurchase.BookID,
		schema.UserPurchase.PurchasedAt,
	)

	err := repository.pool.QueryRow(context, query,
		purchase.ID, purchase.UserID, purchase.BookID,
		purchase.SessionID, purchase.Amount, purchase.Currency,
	).Scan(&purchase.PurchasedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dberr.Wrap(err, "Purchase", "record_purchase")
	}
	return true, nil
}

// HasPurchased reports whether a purchase row exists for the pair.
func (repository *PostgresRepository) HasPurchased(context context.Context, userID, bookID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.UserPurchase.Table, schema.UserPurchase.UserID, schema.UserPurchase.BookID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check purchase: %w", err)
	}
	return exists, nil
}

var errPurchaseNotFound = apperr.NotFoundMessage("Purchase not found")

// FindByUserAndBook loads the stored purchase for the pair.
func (repository *PostgresRepository) FindByUserAndBook(context context.Context, userID, bookID string) (*Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		strings.Join(schema.UserPurchase.Columns(), ", "),
		schema.UserPurchase.Table,
		schema.UserPurchase.UserID, schema.UserPurchase.BookID,
	)

	purchase := &Purchase{}
	err := repository.pool.QueryRow(context, query, userID, bookID).Scan(
		&purchase.ID, &purchase.UserID, &purchase.BookID, &purchase.SessionID,
		&purchase.Amount, &purchase.Currency, &purchase.PurchasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errPurchaseNotFound
		}
		return nil, fmt.Errorf("postgres: failed to find purchase: %w", err)
	}
	return purchase, nil
}

// ListByUser returns the user's purchases, newest first.
func (repository *PostgresRepository) ListByUser(context context.Context, userID string) ([]*Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		strings.Join(schema.UserPurchase.Columns(), ", "),
		schema.UserPurchase.Table,
		schema.UserPurchase.UserID,
		schema.UserPurchase.PurchasedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]*Purchase, 0)
	for rows.Next() {
		purchase := &Purchase{}
		if err := rows.Scan(
			&purchase.ID, &purchase.UserID, &purchase.BookID, &purchase.SessionID,
			&purchase.Amount, &purchase.Currency, &purchase.PurchasedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	return purchases, rows.Err()
}
