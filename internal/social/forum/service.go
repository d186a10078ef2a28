// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package forum

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/sanitize"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/pagination"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

var (
	errNotPostAuthor = apperr.Forbidden("You are not the author of this post")
	errBadCursor     = validate.RequiredError("cursor", "must be a valid id")
)

// Service implements the forum use cases.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new forum [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// clean trims and sanitises the input, then validates what is left.
func clean(input PostInput) (PostInput, error) {
	input.Title = sanitize.Text(input.Title)
	input.Content = sanitize.HTML(input.Content)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MinLen(FieldTitle, input.Title, MinTitleLength).
		MaxLen(FieldTitle, input.Title, MaxTitleLength)
	validator.Required(FieldContent, input.Content)

	return input, validator.Err()
}

/*
Create publishes a new post.

Parameters:
  - context: context.Context
  - authorID: string
  - input: PostInput

Returns:
  - *Post: Stored post
  - error: Validation or storage failures
*/
func (service *Service) Create(context context.Context, authorID string, input PostInput) (*Post, error) {
	input, err := clean(input)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    input.Title,
		Content:  input.Content,
	}

	if err := service.repository.Create(context, post); err != nil {
		return nil, err
	}

	service.logger.Info("forum_post_created", slog.String("post_id", post.ID), slog.String("author_id", authorID))
	return post, nil
}

// List returns one page of posts, newest first.
func (service *Service) List(context context.Context, page pagination.CursorParams) ([]*Post, pagination.CursorMeta, error) {
	if page.Cursor != "" && !validate.IsUUID(strings.ToLower(page.Cursor)) {
		return nil, pagination.CursorMeta{}, errBadCursor
	}

	rows, err := service.repository.List(context, page)
	if err != nil {
		return nil, pagination.CursorMeta{}, err
	}

	posts, meta := pagination.Trim(rows, page.Limit, func(post *Post) string { return post.ID })
	return posts, meta, nil
}

// Get returns a post with its like set.
func (service *Service) Get(context context.Context, postID string) (*Post, error) {
	post, err := service.repository.FindByID(context, postID)
	if err != nil {
		return nil, err
	}

	likes, err := service.repository.ListLikes(context, postID)
	if err != nil {
		return nil, err
	}
	post.Likes = likes

	return post, nil
}

/*
Update rewrites a post. Only its author may edit it.

Parameters:
  - context: context.Context
  - userID: string
  - postID: string
  - input: PostInput

Returns:
  - *Post: Updated post
  - error: NotFound, Forbidden, Validation or storage failures
*/
func (service *Service) Update(context context.Context, userID, postID string, input PostInput) (*Post, error) {
	post, err := service.repository.FindByID(context, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, errNotPostAuthor
	}

	input, err = clean(input)
	if err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	if err := service.repository.Update(context, post); err != nil {
		return nil, err
	}

	service.logger.Info("forum_post_updated", slog.String("post_id", postID))
	return post, nil
}

/*
Delete removes a post. Its author and moderators may delete it.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.UserRole
  - postID: string

Returns:
  - error: NotFound, Forbidden or storage failures
*/
func (service *Service) Delete(context context.Context, userID string, role sec.UserRole, postID string) error {
	post, err := service.repository.FindByID(context, postID)
	if err != nil {
		return err
	}

	moderated := post.AuthorID != userID
	if moderated && !role.AtLeast(sec.RoleModerator) {
		return errNotPostAuthor
	}

	if err := service.repository.SoftDelete(context, postID); err != nil {
		return err
	}

	service.logger.Info("forum_post_deleted",
		slog.String("post_id", postID),
		slog.String("deleted_by", userID),
		slog.Bool("moderated", moderated),
	)
	return nil
}

/*
ToggleLike likes the post, or removes an existing like.

Parameters:
  - context: context.Context
  - userID: string
  - postID: string

Returns:
  - *LikeResult: New state and count
  - error: NotFound or storage failures
*/
func (service *Service) ToggleLike(context context.Context, userID, postID string) (*LikeResult, error) {
	liked, count, err := service.repository.ToggleLike(context, postID, userID)
	if err != nil {
		return nil, err
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}

	return &LikeResult{Liked: liked, LikeCount: count, Message: message}, nil
}
