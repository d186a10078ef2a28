// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"time"

	"github.com/taibuivan/bookgod/internal/core/book"
)

// Author is the public profile of an account that publishes books.
// ID is the owning account's id.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Bio       string    `json:"bio"`
	Twitter   string    `json:"twitter"`
	Instagram string    `json:"instagram"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WithBooks is an author with their published books.
type WithBooks struct {
	Author
	Books []*book.Book `json:"books"`
}

// Ranked is one row of the top authors listing.
type Ranked struct {
	ID          string `json:"id"`
	AuthorName  string `json:"author_name"`
	AuthorImage string `json:"author_image"`
	Stars       int    `json:"stars"`
}

// Profile is the editable part of an author.
type Profile struct {
	Name      string `json:"name"`
	Image     string `json:"image"`
	Bio       string `json:"bio"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

const (
	FieldName      = "name"
	FieldImage     = "image"
	FieldBio       = "bio"
	FieldTwitter   = "twitter"
	FieldInstagram = "instagram"
)

const (
	MaxNameLength = 100
	MaxBioLength  = 2000
	DefaultTop    = 10
)
