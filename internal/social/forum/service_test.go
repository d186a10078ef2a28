// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package forum_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/social/forum"
	"github.com/taibuivan/bookgod/pkg/pagination"
)

const (
	authorID    = "01900000-0000-7000-8000-00000000a001"
	readerID    = "01900000-0000-7000-8000-00000000a002"
	moderatorID = "01900000-0000-7000-8000-00000000a003"
)

type memoryPosts struct {
	rows  map[string]*forum.Post
	likes map[string][]string
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{rows: map[string]*forum.Post{}, likes: map[string][]string{}}
}

func (store *memoryPosts) Create(_ context.Context, post *forum.Post) error {
	copied := *post
	store.rows[post.ID] = &copied
	return nil
}

func (store *memoryPosts) FindByID(_ context.Context, id string) (*forum.Post, error) {
	post, ok := store.rows[id]
	if !ok {
		return nil, apperr.NotFoundMessage("No post found with this id")
	}
	copied := *post
	return &copied, nil
}

func (store *memoryPosts) ListLikes(_ context.Context, postID string) ([]string, error) {
	return append([]string(nil), store.likes[postID]...), nil
}

func (store *memoryPosts) List(_ context.Context, page pagination.CursorParams) ([]*forum.Post, error) {
	ids := make([]string, 0, len(store.rows))
	for id := range store.rows {
		if page.Cursor == "" || id <= page.Cursor {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if len(ids) > page.Fetch() {
		ids = ids[:page.Fetch()]
	}

	posts := make([]*forum.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, store.rows[id])
	}
	return posts, nil
}

func (store *memoryPosts) Update(_ context.Context, post *forum.Post) error {
	copied := *post
	store.rows[post.ID] = &copied
	return nil
}

func (store *memoryPosts) SoftDelete(_ context.Context, id string) error {
	delete(store.rows, id)
	return nil
}

func (store *memoryPosts) ToggleLike(_ context.Context, postID, userID string) (bool, int, error) {
	post, ok := store.rows[postID]
	if !ok {
		return false, 0, apperr.NotFoundMessage("No post found with this id")
	}

	likes := store.likes[postID]
	for i, id := range likes {
		if id == userID {
			store.likes[postID] = append(likes[:i], likes[i+1:]...)
			post.LikeCount--
			return false, post.LikeCount, nil
		}
	}

	store.likes[postID] = append(likes, userID)
	post.LikeCount++
	return true, post.LikeCount, nil
}

func newService() (*forum.Service, *memoryPosts) {
	store := newMemoryPosts()
	return forum.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func mustCreate(t *testing.T, service *forum.Service, title string) *forum.Post {
	t.Helper()
	post, err := service.Create(context.Background(), authorID, forum.PostInput{Title: title, Content: "<p>Hello</p>"})
	require.NoError(t, err)
	return post
}

/*
TestService_Create sanitises content and validates the title length in runes.
*/
func TestService_Create(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	post, err := service.Create(ctx, authorID, forum.PostInput{
		Title:   "  Favourite <b>reads</b>  ",
		Content: `<p>Try <a href="https://bookgod.app">this</a></p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Favourite reads", post.Title)
	assert.NotContains(t, post.Content, "<script>")
	assert.Contains(t, post.Content, "nofollow")

	tests := []struct {
		name  string
		input forum.PostInput
	}{
		{"short_title", forum.PostInput{Title: "Hi", Content: "body"}},
		{"long_title", forum.PostInput{Title: strings.Repeat("é", forum.MaxTitleLength+1), Content: "body"}},
		{"empty_content", forum.PostInput{Title: "Valid title", Content: "   "}},
		{"script_only_content", forum.PostInput{Title: "Valid title", Content: "<script>x</script>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, authorID, tt.input)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	_, err = service.Create(ctx, authorID, forum.PostInput{Title: strings.Repeat("é", forum.MaxTitleLength), Content: "body"})
	assert.NoError(t, err)
}

/*
TestService_List pages newest first with an inclusive cursor.
*/
func TestService_List(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created := make([]string, 0, 3)
	for _, title := range []string{"First post", "Second post", "Third post"} {
		created = append(created, mustCreate(t, service, title).ID)
	}

	page, meta, err := service.List(ctx, pagination.CursorParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[2], page[0].ID)
	assert.True(t, meta.HasNextPage)
	assert.Equal(t, created[0], meta.NextCursor)

	page, meta, err = service.List(ctx, pagination.CursorParams{Cursor: meta.NextCursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created[0], page[0].ID)
	assert.False(t, meta.HasNextPage)

	_, _, err = service.List(ctx, pagination.CursorParams{Cursor: "bogus", Limit: 2})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestService_UpdateDelete enforces ownership, letting moderators delete.
*/
func TestService_UpdateDelete(t *testing.T) {
	service, store := newService()
	ctx := context.Background()
	post := mustCreate(t, service, "Original title")

	_, err := service.Update(ctx, readerID, post.ID, forum.PostInput{Title: "Hijacked", Content: "x"})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	updated, err := service.Update(ctx, authorID, post.ID, forum.PostInput{Title: "Edited title", Content: "<em>new</em>"})
	require.NoError(t, err)
	assert.Equal(t, "Edited title", updated.Title)

	tests := []struct {
		name   string
		userID string
		role   sec.UserRole
		code   string
	}{
		{"stranger", readerID, sec.RoleMember, apperr.CodeForbidden},
		{"author_role_is_not_enough", readerID, sec.RoleAuthor, apperr.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Delete(ctx, tt.userID, tt.role, post.ID)
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}

	require.NoError(t, service.Delete(ctx, moderatorID, sec.RoleModerator, post.ID))
	assert.NotContains(t, store.rows, post.ID)

	own := mustCreate(t, service, "Another post")
	require.NoError(t, service.Delete(ctx, authorID, sec.RoleMember, own.ID))

	err = service.Delete(ctx, authorID, sec.RoleMember, own.ID)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_ToggleLike alternates between liked and unliked and keeps the
count equal to the like set.
*/
func TestService_ToggleLike(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	post := mustCreate(t, service, "Likeable post")

	steps := []struct {
		userID  string
		liked   bool
		count   int
		message string
	}{
		{readerID, true, 1, "Post liked"},
		{authorID, true, 2, "Post liked"},
		{readerID, false, 1, "Post unliked"},
		{readerID, true, 2, "Post liked"},
	}

	for _, step := range steps {
		result, err := service.ToggleLike(ctx, step.userID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, step.liked, result.Liked)
		assert.Equal(t, step.count, result.LikeCount)
		assert.Equal(t, step.message, result.Message)
	}

	loaded, err := service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{authorID, readerID}, loaded.Likes)
	assert.Equal(t, len(loaded.Likes), loaded.LikeCount)

	_, err = service.ToggleLike(ctx, readerID, "01900000-0000-7000-8000-0000000000ff")
	assert.True(t, apperr.IsNotFound(err))
}
