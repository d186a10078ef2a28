// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/internal/platform/dberr"
	"github.com/taibuivan/bookgod/pkg/pagination"
)

var errPostNotFound = apperr.NotFoundMessage("No post found with this id")

// PostgresRepository implements [Repository] over social.forumpost and social.forumpostlike.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the forum Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// postSelect joins the author's username onto live posts.
func postSelect() string {
	return fmt.Sprintf(`
		SELECT p.%s, p.%s, a.%s, p.%s, p.%s, p.%s, p.%s, p.%s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		WHERE p.%s IS NULL`,
		schema.SocialForumPost.ID, schema.SocialForumPost.AuthorID, schema.UserAccount.Username,
		schema.SocialForumPost.Title, schema.SocialForumPost.Content, schema.SocialForumPost.LikeCount,
		schema.SocialForumPost.CreatedAt, schema.SocialForumPost.UpdatedAt,
		schema.SocialForumPost.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.SocialForumPost.AuthorID,
		schema.SocialForumPost.DeletedAt,
	)
}

func postTargets(post *Post) []any {
	return []any{
		&post.ID, &post.AuthorID, &post.AuthorName, &post.Title, &post.Content,
		&post.LikeCount, &post.CreatedAt, &post.UpdatedAt,
	}
}

// Create inserts a post with zero likes.
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.SocialForumPost.Table,
		schema.SocialForumPost.ID, schema.SocialForumPost.AuthorID,
		schema.SocialForumPost.Title, schema.SocialForumPost.Content,
		schema.SocialForumPost.CreatedAt, schema.SocialForumPost.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		post.ID, post.AuthorID, post.Title, post.Content,
	).Scan(&post.CreatedAt, &post.UpdatedAt)

	return dberr.Wrap(err, "Post", "create_post")
}

// FindByID loads one live post.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	query := postSelect() + fmt.Sprintf(" AND p.%s = $1", schema.SocialForumPost.ID)

	post := &Post{}
	if err := repository.pool.QueryRow(context, query, id).Scan(postTargets(post)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("postgres: failed to get post: %w", err)
	}
	return post, nil
}

// ListLikes returns likers in the order they liked.
func (repository *PostgresRepository) ListLikes(context context.Context, postID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s = $1 ORDER BY %s`,
		schema.SocialForumPostLike.UserID, schema.SocialForumPostLike.Table,
		schema.SocialForumPostLike.PostID, schema.SocialForumPostLike.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, postID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list likes: %w", err)
	}

	likes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan likes: %w", err)
	}
	return likes, nil
}

/*
List returns one page of posts, newest first.

Parameters:
  - context: context.Context
  - page: pagination.CursorParams

Returns:
  - []*Post: Up to page.Fetch() posts
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, page pagination.CursorParams) ([]*Post, error) {
	args := []any{page.Fetch()}
	query := postSelect()

	if page.Cursor != "" {
		args = append(args, page.Cursor)
		query += fmt.Sprintf(" AND p.%s <= $2", schema.SocialForumPost.ID)
	}
	query += fmt.Sprintf(" ORDER BY p.%s DESC LIMIT $1", schema.SocialForumPost.ID)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*Post, 0, page.Fetch())
	for rows.Next() {
		post := &Post{}
		if err := rows.Scan(postTargets(post)...); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Update rewrites title and content.
func (repository *PostgresRepository) Update(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = now()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s`,
		schema.SocialForumPost.Table,
		schema.SocialForumPost.Title, schema.SocialForumPost.Content, schema.SocialForumPost.UpdatedAt,
		schema.SocialForumPost.ID, schema.SocialForumPost.DeletedAt,
		schema.SocialForumPost.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, post.ID, post.Title, post.Content).Scan(&post.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errPostNotFound
	}
	return dberr.Wrap(err, "Post", "update_post")
}

// SoftDelete hides the post.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = now() WHERE %s = $1 AND %s IS NULL`,
		schema.SocialForumPost.Table, schema.SocialForumPost.DeletedAt,
		schema.SocialForumPost.ID, schema.SocialForumPost.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errPostNotFound
	}
	return nil
}

/*
ToggleLike flips the user's membership in the post's like set.

Description: The post row is locked so concurrent toggles serialise and
likecount always equals the size of the set.

Parameters:
  - context: context.Context
  - postID: string
  - userID: string

Returns:
  - bool: Liked after the toggle
  - int: New like count
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) ToggleLike(context context.Context, postID, userID string) (bool, int, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return false, 0, fmt.Errorf("postgres: failed to begin like transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// 1. Lock the post
	lockQuery := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL FOR UPDATE`,
		schema.SocialForumPost.Table, schema.SocialForumPost.ID, schema.SocialForumPost.DeletedAt,
	)
	var one int
	if err := transaction.QueryRow(context, lockQuery, postID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, errPostNotFound
		}
		return false, 0, fmt.Errorf("postgres: failed to lock post: %w", err)
	}

	// 2. Remove an existing like, or add one
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialForumPostLike.Table, schema.SocialForumPostLike.PostID, schema.SocialForumPostLike.UserID,
	)
	tag, err := transaction.Exec(context, deleteQuery, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("postgres: failed to remove like: %w", err)
	}

	liked, delta := false, -1
	if tag.RowsAffected() == 0 {
		insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
			schema.SocialForumPostLike.Table, schema.SocialForumPostLike.PostID, schema.SocialForumPostLike.UserID,
		)
		if _, err := transaction.Exec(context, insertQuery, postID, userID); err != nil {
			return false, 0, dberr.Wrap(err, "Like", "add_like")
		}
		liked, delta = true, 1
	}

	// 3. Keep the counter in step
	countQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + $2 WHERE %s = $1 RETURNING %s`,
		schema.SocialForumPost.Table,
		schema.SocialForumPost.LikeCount, schema.SocialForumPost.LikeCount,
		schema.SocialForumPost.ID,
		schema.SocialForumPost.LikeCount,
	)
	var count int
	if err := transaction.QueryRow(context, countQuery, postID, delta).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("postgres: failed to update like count: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return false, 0, fmt.Errorf("postgres: failed to commit like: %w", err)
	}

	return liked, count, nil
}
