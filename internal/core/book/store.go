// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
)

// # Book Data Access

// BookRepository defines the data access contract for books.
type BookRepository interface {

	/*
		Create persists a new draft.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: CONFLICT when the normalised title is taken
	*/
	Create(context context.Context, book *Book) error

	/*
		FindByID returns a non-deleted book in any status, content included.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Book: The hydrated entity
		  - error: NOT_FOUND if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		ExistsByNormalisedTitle reports whether another non-deleted book uses the title.

		Parameters:
		  - context: context.Context
		  - normalisedTitle: string
		  - excludeID: string (the book being renamed, or "" on create)

		Returns:
		  - bool: True when taken
		  - error: Database failures
	*/
	ExistsByNormalisedTitle(context context.Context, normalisedTitle, excludeID string) (bool, error)

	/*
		Update persists the editable fields, status and publication date.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: NOT_FOUND, CONFLICT on title collision
	*/
	Update(context context.Context, book *Book) error

	/*
		SoftDelete marks the book deleted, freeing its title.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: NOT_FOUND if already gone
	*/
	SoftDelete(context context.Context, id string) error

	/*
		UpdateArtwork stores the object key of a cover side.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - side: ArtworkSide
		  - key: string

		Returns:
		  - string: The key that was replaced, read under the row lock
		  - error: NOT_FOUND, database failures
	*/
	UpdateArtwork(context context.Context, id string, side ArtworkSide, key string) (string, error)

	/*
		FindInfo returns a published book joined with its author.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Info: Book and author name
		  - error: NOT_FOUND for drafts, deleted books and author-less books
	*/
	FindInfo(context context.Context, id string) (*Info, error)

	/*
		Search returns up to fetch published books matching filter, id ascending,
		starting at cursor (inclusive).

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - cursor: string ("" for the first page)
		  - fetch: int (page size plus the look-ahead row)

		Returns:
		  - []*Info: Matching books
		  - error: Database failures
	*/
	Search(context context.Context, filter Filter, cursor string, fetch int) ([]*Info, error)

	/*
		ListPublished returns up to fetch published books, id descending,
		starting at cursor (inclusive).

		Parameters:
		  - context: context.Context
		  - cursor: string
		  - fetch: int

		Returns:
		  - []*Info: Books, newest first
		  - error: Database failures
	*/
	ListPublished(context context.Context, cursor string, fetch int) ([]*Info, error)

	/*
		ListByAuthor returns the author's non-deleted books, newest first.

		Parameters:
		  - context: context.Context
		  - authorID: string
		  - includeDrafts: bool

		Returns:
		  - []*Book: Books without content
		  - error: Database failures
	*/
	ListByAuthor(context context.Context, authorID string, includeDrafts bool) ([]*Book, error)

	/*
		RepairRatings recomputes Stars and RatedBy from the rating rows for every
		book whose aggregate drifted.

		Returns:
		  - int64: Number of books corrected
		  - error: Database failures
	*/
	RepairRatings(context context.Context) (int64, error)
}

// # Rating Data Access

// RatingRepository defines the data access contract for per-user ratings.
type RatingRepository interface {

	/*
		Rate applies [Reconcile] to the user's existing rating inside one
		transaction, with the book row locked.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - bookID: string
		  - stars: int (1..5)

		Returns:
		  - *RateResult: Action taken and the new aggregate
		  - error: NOT_FOUND for unpublished books, INTERNAL_ERROR "Failed to rate the book"
	*/
	Rate(context context.Context, userID, bookID string, stars int) (*RateResult, error)

	/*
		FindUserRating returns the user's rating of a book.

		Returns:
		  - *RatedBook: nil when the user has not rated the book
		  - error: Database failures
	*/
	FindUserRating(context context.Context, userID, bookID string) (*RatedBook, error)

	/*
		ListByUser returns every rating the user has given, newest first.
	*/
	ListByUser(context context.Context, userID string) ([]*RatedBook, error)
}

// # Cache

// InfoCache is a read-through cache of [Info] keyed by book id.
type InfoCache interface {
	// Get returns nil, nil on a miss.
	Get(context context.Context, id string) (*Info, error)
	Set(context context.Context, info *Info) error
	Invalidate(context context.Context, id string) error
}

// # Collaborators

// PurchaseChecker answers whether a user owns a paid book.
type PurchaseChecker interface {
	HasPurchased(context context.Context, userID, bookID string) (bool, error)
}

// HistoryRecorder appends to a reader's reading history.
type HistoryRecorder interface {
	AddReadingHistory(context context.Context, userID, bookID string) error
}
