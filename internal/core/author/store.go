// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"

	"github.com/taibuivan/bookgod/internal/core/book"
)

type Repository interface {
	// Create returns CONFLICT when the account already has an author row.
	Create(context context.Context, author *Author) error
	FindByID(context context.Context, id string) (*Author, error)
	Update(context context.Context, author *Author) error
	// TopByStars ranks authors by the summed stars of their published books.
	TopByStars(context context.Context, limit int) ([]*Ranked, error)
}

// RolePromoter grants the author role to an account.
type RolePromoter interface {
	PromoteToAuthor(context context.Context, userID string) error
}

// BookLister lists an author's published books.
type BookLister interface {
	ListByAuthor(context context.Context, authorID string) ([]*book.Book, error)
}
