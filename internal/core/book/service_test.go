// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/core/book"
	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/pkg/pagination"
)

const (
	authorID = "01900000-0000-7000-8000-00000000a001"
	otherID  = "01900000-0000-7000-8000-00000000a002"
	readerID = "01900000-0000-7000-8000-00000000a003"

	bookOne   = "01900000-0000-7000-8000-000000000b01"
	bookTwo   = "01900000-0000-7000-8000-000000000b02"
	bookThree = "01900000-0000-7000-8000-000000000b03"
)

type fixture struct {
	service   *book.Service
	books     *memoryBooks
	ratings   *memoryRatings
	cache     *memoryCache
	purchases purchaseSet
	history   *historyLog
	objects   *memoryObjects
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		books:     newMemoryBooks(),
		cache:     newMemoryCache(),
		purchases: purchaseSet{},
		history:   &historyLog{},
		objects:   newMemoryObjects(),
	}
	f.ratings = newMemoryRatings(f.books)

	f.service = book.NewService(book.Dependencies{
		Books:     f.books,
		Ratings:   f.ratings,
		Cache:     f.cache,
		Purchases: f.purchases,
		History:   f.history,
		Artwork:   f.objects,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

// seedPublished stores a readable published book by authorID.
func (f *fixture) seedPublished(id, title string, availability book.Availability) {
	f.books.put(&book.Book{
		ID:              id,
		AuthorID:        authorID,
		Title:           title,
		NormalisedTitle: strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Status:          book.StatusPublished,
		Availability:    availability,
		Pricing:         4.99,
		Language:        "English",
		Genres:          []string{"fantasy"},
		FrontArtwork:    "books/" + id + "/front-old.png",
		Content:         json.RawMessage(`{"blocks":[{"type":"header","data":{"text":"One","level":2}},{"type":"paragraph","data":{"text":"Hi"}}]}`),
	})
	f.books.authors[id] = "Ursula"
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, code), "want %s, got %v", code, err)
}

/*
TestService_Create normalises titles and rejects collisions.
*/
func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.Create(ctx, authorID, book.CreateInput{Title: "  Crème Brûlée  ", Language: "French"})
	require.NoError(t, err)

	created := f.books.get(id)
	require.NotNil(t, created)
	assert.Equal(t, "Crème Brûlée", created.Title)
	assert.Equal(t, "creme-brulee", created.NormalisedTitle)
	assert.Equal(t, book.StatusDraft, created.Status)

	tests := []struct {
		name  string
		title string
		code  string
	}{
		{"same_title_different_accents", "creme brulee!", apperr.CodeConflict},
		{"empty", "   ", apperr.CodeValidation},
		{"punctuation_only", "!!!", apperr.CodeValidation},
		{"too_long", strings.Repeat("a", book.MaxTitleLength+1), apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, authorID, book.CreateInput{Title: tt.title})
			assertCode(t, err, tt.code)
		})
	}
}

func publishInput(title string) book.PublishInput {
	return book.PublishInput{
		Status:       book.StatusPublished,
		Title:        title,
		Language:     "English",
		Availability: book.AvailabilityPaid,
		Pricing:      9.5,
		Genres:       []string{" fantasy ", "fantasy", "epic"},
		Synopsis:     `<p>A tale</p><script>alert(1)</script>`,
		Content:      json.RawMessage(`{"blocks":[{"type":"paragraph","data":{"text":"Hello"}}]}`),
	}
}

/*
TestService_Publish walks the draft to published lifecycle and its guards.
*/
func TestService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes_and_stamps_date_once", func(t *testing.T) {
		f := newFixture(t)
		id, err := f.service.Create(ctx, authorID, book.CreateInput{Title: "Earthsea"})
		require.NoError(t, err)
		_, err = f.service.UploadArtwork(ctx, authorID, id, book.ArtworkUpload{
			Side: book.ArtworkFront, ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png")),
		})
		require.NoError(t, err)

		published, err := f.service.Publish(ctx, authorID, id, publishInput("Earthsea"))
		require.NoError(t, err)
		require.NotNil(t, published.PublicationDate)
		assert.Equal(t, book.StatusPublished, published.Status)
		assert.Equal(t, []string{"fantasy", "epic"}, published.Genres)
		assert.NotContains(t, published.Synopsis, "script")
		assert.Contains(t, f.cache.invalidated, id)

		firstDate := *published.PublicationDate
		again, err := f.service.Publish(ctx, authorID, id, publishInput("Earthsea"))
		require.NoError(t, err)
		assert.Equal(t, firstDate, *again.PublicationDate)
	})

	t.Run("free_books_drop_price", func(t *testing.T) {
		f := newFixture(t)
		f.seedPublished(bookOne, "Free Book", book.AvailabilityFree)

		input := publishInput("Free Book")
		input.Availability = book.AvailabilityFree
		saved, err := f.service.Publish(ctx, authorID, bookOne, input)
		require.NoError(t, err)
		assert.Zero(t, saved.Pricing)
	})

	tests := []struct {
		name   string
		caller string
		bookID string
		mutate func(*book.PublishInput)
		code   string
	}{
		{"missing_book", authorID, bookThree, nil, apperr.CodeNotFound},
		{"not_owner", otherID, bookOne, nil, apperr.CodeForbidden},
		{"back_to_draft", authorID, bookOne, func(input *book.PublishInput) { input.Status = book.StatusDraft }, apperr.CodeUnprocessable},
		{"paid_without_price", authorID, bookOne, func(input *book.PublishInput) { input.Pricing = 0 }, apperr.CodeValidation},
		{"price_beyond_column", authorID, bookOne, func(input *book.PublishInput) { input.Pricing = 1e9 }, apperr.CodeValidation},
		{"draft_price_beyond_column", authorID, bookTwo, func(input *book.PublishInput) {
			input.Status = book.StatusDraft
			input.Pricing = book.MaxPricing + 1
		}, apperr.CodeValidation},
		{"no_genres", authorID, bookOne, func(input *book.PublishInput) { input.Genres = nil }, apperr.CodeValidation},
		{"empty_content", authorID, bookOne, func(input *book.PublishInput) { input.Content = json.RawMessage(`{"blocks":[]}`) }, apperr.CodeValidation},
		{"malformed_content", authorID, bookOne, func(input *book.PublishInput) { input.Content = json.RawMessage(`[1]`) }, apperr.CodeValidation},
		{"rename_to_taken_title", authorID, bookOne, func(input *book.PublishInput) { input.Title = "Second Book" }, apperr.CodeConflict},
		{"draft_needs_no_artwork_but_publish_does", authorID, bookTwo, nil, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedPublished(bookOne, "First Book", book.AvailabilityPaid)
			f.books.put(&book.Book{ID: bookTwo, AuthorID: authorID, Title: "Second Book", NormalisedTitle: "second-book", Status: book.StatusDraft, Availability: book.AvailabilityFree})

			input := publishInput("First Book")
			if tt.bookID == bookTwo {
				input.Title = "Second Book"
			}
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			_, err := f.service.Publish(ctx, tt.caller, tt.bookID, input)
			assertCode(t, err, tt.code)
		})
	}

	t.Run("draft_save_is_lenient", func(t *testing.T) {
		f := newFixture(t)
		f.books.put(&book.Book{ID: bookTwo, AuthorID: authorID, Title: "Second Book", NormalisedTitle: "second-book", Status: book.StatusDraft, Availability: book.AvailabilityFree})

		saved, err := f.service.Publish(ctx, authorID, bookTwo, book.PublishInput{Status: book.StatusDraft, Title: "Second Book, Revised"})
		require.NoError(t, err)
		assert.Equal(t, "second-book-revised", saved.NormalisedTitle)
		assert.Nil(t, saved.PublicationDate)
	})
}

/*
TestService_Delete frees the title for a new book.
*/
func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Gone Girl", book.AvailabilityFree)

	assertCode(t, f.service.Delete(ctx, otherID, bookOne), apperr.CodeForbidden)
	require.NoError(t, f.service.Delete(ctx, authorID, bookOne))
	assertCode(t, f.service.Delete(ctx, authorID, bookOne), apperr.CodeNotFound)

	_, err := f.service.Create(ctx, authorID, book.CreateInput{Title: "Gone Girl"})
	assert.NoError(t, err)
}

/*
TestService_Filter requires a criterion, paginates with a look-ahead row and
rejects malformed cursors.
*/
func TestService_Filter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "One", book.AvailabilityFree)
	f.seedPublished(bookTwo, "Two", book.AvailabilityFree)
	f.seedPublished(bookThree, "Three", book.AvailabilityFree)

	_, _, err := f.service.Filter(ctx, book.Filter{Genres: []string{"  "}}, pagination.CursorParams{Limit: 2})
	assertCode(t, err, apperr.CodeValidation)

	filter := book.Filter{Language: "English"}

	page, meta, err := f.service.Filter(ctx, filter, pagination.CursorParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, bookOne, page[0].ID)
	assert.True(t, meta.HasNextPage)
	assert.Equal(t, bookThree, meta.NextCursor)

	page, meta, err = f.service.Filter(ctx, filter, pagination.CursorParams{Cursor: meta.NextCursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, bookThree, page[0].ID)
	assert.False(t, meta.HasNextPage)

	_, _, err = f.service.Filter(ctx, filter, pagination.CursorParams{Cursor: "not-a-uuid", Limit: 2})
	assertCode(t, err, apperr.CodeValidation)
}

/*
TestService_ListPublished pages newest first and rejects malformed cursors.
*/
func TestService_ListPublished(t *testing.T) {
	f := newFixture(t)
	f.seedPublished(bookOne, "One", book.AvailabilityFree)
	f.seedPublished(bookTwo, "Two", book.AvailabilityFree)

	page, meta, err := f.service.ListPublished(context.Background(), pagination.CursorParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, bookTwo, page[0].ID)
	assert.Equal(t, bookOne, meta.NextCursor)

	for _, cursor := range []string{"abc", "01900000-0000-7000-8000", "'; DROP TABLE core.book; --"} {
		_, _, err := f.service.ListPublished(context.Background(), pagination.CursorParams{Cursor: cursor, Limit: 1})
		assertCode(t, err, apperr.CodeValidation)
	}
}

/*
TestService_GetInfo reads through the cache and survives cache failures.
*/
func TestService_GetInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Cached", book.AvailabilityFree)

	info, err := f.service.GetInfo(ctx, bookOne)
	require.NoError(t, err)
	assert.Equal(t, "Ursula", info.AuthorName)
	assert.Contains(t, f.cache.entries, bookOne)

	f.cache.fail = true
	info, err = f.service.GetInfo(ctx, bookOne)
	require.NoError(t, err)
	assert.Equal(t, bookOne, info.ID)

	f.books.put(&book.Book{ID: bookTwo, AuthorID: authorID, Status: book.StatusDraft})
	_, err = f.service.GetInfo(ctx, bookTwo)
	assertCode(t, err, apperr.CodeNotFound)
}

/*
TestService_GetDetail merges the viewer's rating and purchase.
*/
func TestService_GetDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Detailed", book.AvailabilityPaid)
	f.purchases[readerID+"/"+bookOne] = true

	_, err := f.service.Rate(ctx, readerID, bookOne, 4)
	require.NoError(t, err)

	detail, err := f.service.GetDetail(ctx, readerID, bookOne)
	require.NoError(t, err)
	assert.Equal(t, 4, detail.ViewerRating)
	assert.True(t, detail.Purchased)
	assert.False(t, detail.IsOwner)

	anonymous, err := f.service.GetDetail(ctx, "", bookOne)
	require.NoError(t, err)
	assert.Zero(t, anonymous.ViewerRating)

	_, err = f.service.GetDetail(ctx, readerID, bookThree)
	assertCode(t, err, apperr.CodeNotFound)
}

/*
TestService_Rate validates stars, toggles repeats and invalidates the cache.
*/
func TestService_Rate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Rated", book.AvailabilityFree)
	f.books.put(&book.Book{ID: bookTwo, AuthorID: authorID, Status: book.StatusDraft})

	for _, stars := range []int{0, 6} {
		_, err := f.service.Rate(ctx, readerID, bookOne, stars)
		assertCode(t, err, apperr.CodeValidation)
	}

	_, err := f.service.Rate(ctx, readerID, bookTwo, 3)
	assertCode(t, err, apperr.CodeNotFound)

	steps := []struct {
		user    string
		stars   int
		message string
		total   int
		raters  int
	}{
		{readerID, 4, "Rated", 4, 1},
		{otherID, 2, "Rated", 6, 2},
		{readerID, 5, "Updated Rating", 7, 2},
		{readerID, 5, "Removed Rating", 2, 1},
	}

	for _, step := range steps {
		result, err := f.service.Rate(ctx, step.user, bookOne, step.stars)
		require.NoError(t, err)
		assert.Equal(t, step.message, result.Message)
		assert.Equal(t, step.total, result.Stars)
		assert.Equal(t, step.raters, result.RatedBy)
	}

	assert.Contains(t, f.cache.invalidated, bookOne)

	f.ratings.err = apperr.InternalMessage("Failed to rate the book", errors.New("no rows"))
	_, err = f.service.Rate(ctx, readerID, bookOne, 1)
	assertCode(t, err, apperr.CodeInternal)
}

/*
TestService_Read enforces entitlement and records history.
*/
func TestService_Read(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		availability book.Availability
		reader       string
		purchased    bool
		code         string
	}{
		{"free_book_anyone", book.AvailabilityFree, readerID, false, ""},
		{"paid_book_purchaser", book.AvailabilityPaid, readerID, true, ""},
		{"paid_book_owner", book.AvailabilityPaid, authorID, false, ""},
		{"paid_book_stranger", book.AvailabilityPaid, readerID, false, apperr.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedPublished(bookOne, "Readable", tt.availability)
			if tt.purchased {
				f.purchases[tt.reader+"/"+bookOne] = true
			}

			reading, err := f.service.Read(ctx, tt.reader, bookOne)
			if tt.code != "" {
				assertCode(t, err, tt.code)
				assert.Empty(t, f.history.entries)
				return
			}

			require.NoError(t, err)
			require.Len(t, reading.Chapters, 1)
			assert.Equal(t, "One", reading.TableOfContents[0].Title)
			assert.Equal(t, []string{tt.reader + "/" + bookOne}, f.history.entries)
		})
	}

	t.Run("history_failure_does_not_fail_read", func(t *testing.T) {
		f := newFixture(t)
		f.seedPublished(bookOne, "Readable", book.AvailabilityFree)
		f.history.err = apperr.NotFoundMessage("User not found")

		_, err := f.service.Read(ctx, readerID, bookOne)
		assert.NoError(t, err)
	})

	t.Run("no_chapters", func(t *testing.T) {
		f := newFixture(t)
		f.seedPublished(bookOne, "Empty", book.AvailabilityFree)
		b := f.books.get(bookOne)
		b.Content = json.RawMessage(`{"blocks":[]}`)
		f.books.put(b)

		_, err := f.service.Read(ctx, readerID, bookOne)
		assertCode(t, err, apperr.CodeNotFound)
	})

	t.Run("draft_is_not_found", func(t *testing.T) {
		f := newFixture(t)
		f.books.put(&book.Book{ID: bookTwo, AuthorID: authorID, Status: book.StatusDraft, Availability: book.AvailabilityFree})

		_, err := f.service.Read(ctx, authorID, bookTwo)
		assertCode(t, err, apperr.CodeNotFound)
	})
}

/*
TestService_UploadArtwork validates the image and replaces the previous object.
*/
func TestService_UploadArtwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Covered", book.AvailabilityFree)
	previous := f.books.get(bookOne).FrontArtwork
	f.objects.objects[previous] = []byte("old")

	upload := func(side book.ArtworkSide, contentType string, size int64) book.ArtworkUpload {
		return book.ArtworkUpload{Side: side, ContentType: contentType, Size: size, Body: bytes.NewReader([]byte("png"))}
	}

	_, err := f.service.UploadArtwork(ctx, authorID, bookOne, upload(book.ArtworkFront, "application/pdf", 3))
	assertCode(t, err, apperr.CodeValidation)

	_, err = f.service.UploadArtwork(ctx, authorID, bookOne, upload("spine", "image/png", 3))
	assertCode(t, err, apperr.CodeValidation)

	_, err = f.service.UploadArtwork(ctx, authorID, bookOne, upload(book.ArtworkFront, "image/png", 6<<20))
	assertCode(t, err, apperr.CodeValidation)

	_, err = f.service.UploadArtwork(ctx, otherID, bookOne, upload(book.ArtworkFront, "image/png", 3))
	assertCode(t, err, apperr.CodeForbidden)

	key, err := f.service.UploadArtwork(ctx, authorID, bookOne, upload(book.ArtworkFront, "image/png", 3))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "books/"+bookOne+"/front-"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, key, f.books.get(bookOne).FrontArtwork)
	assert.Equal(t, []string{key}, f.objects.keys())

	url, err := f.service.ArtworkURL(ctx, bookOne, book.ArtworkFront)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	_, err = f.service.ArtworkURL(ctx, bookOne, book.ArtworkBack)
	assertCode(t, err, apperr.CodeNotFound)
}

/*
TestService_UploadArtwork_Interleaved deletes the key each upload actually
replaced, so two uploads to the same side leave exactly one object behind.
*/
func TestService_UploadArtwork_Interleaved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPublished(bookOne, "Covered", book.AvailabilityFree)
	original := f.books.get(bookOne).FrontArtwork
	f.objects.objects[original] = []byte("old")

	png := func() book.ArtworkUpload {
		return book.ArtworkUpload{Side: book.ArtworkFront, ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png"))}
	}

	// The second upload runs to completion between the first upload's Put
	// and its database update.
	var inner string
	f.objects.onPut = func() {
		key, err := f.service.UploadArtwork(ctx, authorID, bookOne, png())
		require.NoError(t, err)
		inner = key
	}

	outer, err := f.service.UploadArtwork(ctx, authorID, bookOne, png())
	require.NoError(t, err)
	require.NotEmpty(t, inner)

	assert.Equal(t, outer, f.books.get(bookOne).FrontArtwork)
	assert.Equal(t, []string{outer}, f.objects.keys())
}
