// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package purchase sells paid books.

A purchase starts as a checkout session held in Redis with a TTL. Confirming
the session records a permanent purchase row in Postgres and discards the
session. Purchases unlock the reader for paid books.
*/
package purchase

import (
	"context"
	"time"

	"github.com/taibuivan/bookgod/internal/core/book"
)

// # Domain Entities

// Purchase grants a user lifetime read access to a book.
type Purchase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BookID      string    `json:"book_id"`
	SessionID   string    `json:"session_id"`
	Amount      int64     `json:"amount"` // minor units
	Currency    string    `json:"currency"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// CheckoutSession is a pending purchase awaiting confirmation.
type CheckoutSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	BookTitle string    `json:"book_title"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckoutResult is what the client needs to continue a checkout.
type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// Status tells whether the user owns a book.
type Status struct {
	BookID    string `json:"book_id"`
	Purchased bool   `json:"purchased"`
}

// Options holds the pricing and checkout settings.
type Options struct {
	SessionTTL   time.Duration
	Currency     string
	ExchangeRate float64
	BaseURL      string
}

const (
	FieldBookID    = "book_id"
	StageStarted   = "started"
	StageConfirmed = "confirmed"
)

// # Repository Contracts

// Repository persists completed purchases.
type Repository interface {

	/*
		Record inserts the purchase unless the user already owns the book.

		Returns:
		  - bool: false when an earlier purchase already exists
		  - error: Storage failures
	*/
	Record(context context.Context, purchase *Purchase) (bool, error)

	HasPurchased(context context.Context, userID, bookID string) (bool, error)

	// FindByUserAndBook returns apperr.NotFound when the pair has no purchase.
	FindByUserAndBook(context context.Context, userID, bookID string) (*Purchase, error)

	// ListByUser returns purchases newest first.
	ListByUser(context context.Context, userID string) ([]*Purchase, error)
}

// SessionStore holds checkout sessions until they are confirmed or expire.
type SessionStore interface {
	Save(context context.Context, session *CheckoutSession, ttl time.Duration) error

	// Find returns apperr.NotFound for missing or expired sessions.
	Find(context context.Context, id string) (*CheckoutSession, error)

	Delete(context context.Context, id string) error
}

// BookFinder loads the book being bought.
type BookFinder interface {
	FindByID(context context.Context, id string) (*book.Book, error)
}
