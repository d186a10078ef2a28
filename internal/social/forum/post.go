// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package forum implements the community discussion board.

Posts carry sanitised HTML content and a set of likes. Listing is public and
cursor-paginated newest first; writing requires an account.
*/
package forum

import (
	"context"
	"time"

	"github.com/taibuivan/bookgod/pkg/pagination"
)

// # Domain Entities

// Post is a forum thread opener.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	LikeCount  int       `json:"like_count"`
	Likes      []string  `json:"likes,omitempty"` // user ids, filled on single-post reads
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
	Message   string `json:"msg"`
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

const (
	MinTitleLength = 3
	MaxTitleLength = 200

	FieldTitle   = "title"
	FieldContent = "content"
)

// # Repository Contracts

// Repository defines the persistence contract for posts and likes.
type Repository interface {
	Create(context context.Context, post *Post) error

	// FindByID returns a non-deleted post without its likes.
	FindByID(context context.Context, id string) (*Post, error)

	// ListLikes returns the ids of users who like the post.
	ListLikes(context context.Context, postID string) ([]string, error)

	/*
		List returns up to page.Fetch() posts in descending id order, starting
		at page.Cursor inclusive.
	*/
	List(context context.Context, page pagination.CursorParams) ([]*Post, error)

	Update(context context.Context, post *Post) error

	SoftDelete(context context.Context, id string) error

	/*
		ToggleLike adds or removes the user's like in one transaction and keeps
		likecount in step.

		Returns:
		  - bool: Whether the post is now liked by the user
		  - int: The new like count
		  - error: apperr.NotFound for missing posts
	*/
	ToggleLike(context context.Context, postID, userID string) (bool, int, error)
}
