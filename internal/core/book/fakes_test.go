// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/bookgod/internal/core/book"
	"github.com/taibuivan/bookgod/internal/platform/apperr"
)

// memoryBooks is an in-memory BookRepository.
type memoryBooks struct {
	mu      sync.Mutex
	books   map[string]*book.Book
	authors map[string]string
}

func newMemoryBooks() *memoryBooks {
	return &memoryBooks{books: map[string]*book.Book{}, authors: map[string]string{}}
}

func (store *memoryBooks) put(b *book.Book) {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *b
	store.books[b.ID] = &copied
}

func (store *memoryBooks) get(id string) *book.Book {
	store.mu.Lock()
	defer store.mu.Unlock()
	if b, ok := store.books[id]; ok {
		copied := *b
		return &copied
	}
	return nil
}

func (store *memoryBooks) Create(_ context.Context, b *book.Book) error {
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	store.put(b)
	return nil
}

func (store *memoryBooks) FindByID(_ context.Context, id string) (*book.Book, error) {
	if b := store.get(id); b != nil && b.DeletedAt == nil {
		return b, nil
	}
	return nil, apperr.NotFoundMessage("No book found with this id")
}

func (store *memoryBooks) ExistsByNormalisedTitle(_ context.Context, normalised, excludeID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, b := range store.books {
		if b.DeletedAt == nil && b.NormalisedTitle == normalised && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryBooks) Update(_ context.Context, b *book.Book) error {
	if store.get(b.ID) == nil {
		return apperr.NotFoundMessage("No book found with this id")
	}
	b.UpdatedAt = time.Now()
	store.put(b)
	return nil
}

func (store *memoryBooks) SoftDelete(_ context.Context, id string) error {
	b := store.get(id)
	if b == nil || b.DeletedAt != nil {
		return apperr.NotFoundMessage("No book found with this id")
	}
	now := time.Now()
	b.DeletedAt = &now
	store.put(b)
	return nil
}

func (store *memoryBooks) UpdateArtwork(_ context.Context, id string, side book.ArtworkSide, key string) (string, error) {
	b := store.get(id)
	if b == nil {
		return "", apperr.NotFoundMessage("No book found with this id")
	}
	previous := b.ArtworkKey(side)
	if side == book.ArtworkBack {
		b.BackArtwork = key
	} else {
		b.FrontArtwork = key
	}
	store.put(b)
	return previous, nil
}

func (store *memoryBooks) FindInfo(_ context.Context, id string) (*book.Info, error) {
	b := store.get(id)
	author, hasAuthor := store.authors[id]
	if b == nil || b.DeletedAt != nil || !b.IsPublished() || !hasAuthor {
		return nil, apperr.NotFoundMessage("No book found with this id")
	}
	return &book.Info{Book: *b, AuthorName: author, AverageRating: b.AverageRating()}, nil
}

func (store *memoryBooks) published(descending bool) []*book.Info {
	store.mu.Lock()
	ids := make([]string, 0, len(store.books))
	for id, b := range store.books {
		if b.IsPublished() && b.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	store.mu.Unlock()

	sort.Strings(ids)
	if descending {
		sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	}

	infos := make([]*book.Info, 0, len(ids))
	for _, id := range ids {
		info, err := store.FindInfo(context.Background(), id)
		if err == nil {
			infos = append(infos, info)
		}
	}
	return infos
}

func (store *memoryBooks) Search(_ context.Context, filter book.Filter, cursor string, fetch int) ([]*book.Info, error) {
	result := make([]*book.Info, 0)
	for _, info := range store.published(false) {
		if filter.Language != "" && info.Language != filter.Language {
			continue
		}
		if cursor != "" && info.ID < cursor {
			continue
		}
		result = append(result, info)
		if len(result) == fetch {
			break
		}
	}
	return result, nil
}

func (store *memoryBooks) ListPublished(_ context.Context, cursor string, fetch int) ([]*book.Info, error) {
	result := make([]*book.Info, 0)
	for _, info := range store.published(true) {
		if cursor != "" && info.ID > cursor {
			continue
		}
		result = append(result, info)
		if len(result) == fetch {
			break
		}
	}
	return result, nil
}

func (store *memoryBooks) ListByAuthor(_ context.Context, authorID string, includeDrafts bool) ([]*book.Book, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	books := make([]*book.Book, 0)
	for _, b := range store.books {
		if b.AuthorID == authorID && b.DeletedAt == nil && (includeDrafts || b.IsPublished()) {
			books = append(books, b)
		}
	}
	return books, nil
}

func (store *memoryBooks) RepairRatings(context.Context) (int64, error) { return 0, nil }

// memoryRatings applies Reconcile against an in-memory table.
type memoryRatings struct {
	books *memoryBooks
	mu    sync.Mutex
	rows  map[string]*book.RatedBook
	err   error
}

func newMemoryRatings(books *memoryBooks) *memoryRatings {
	return &memoryRatings{books: books, rows: map[string]*book.RatedBook{}}
}

func ratingKey(userID, bookID string) string { return userID + "/" + bookID }

func (store *memoryRatings) Rate(_ context.Context, userID, bookID string, stars int) (*book.RateResult, error) {
	if store.err != nil {
		return nil, store.err
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	b := store.books.get(bookID)
	if b == nil || !b.IsPublished() {
		return nil, apperr.NotFoundMessage("No book found with this id")
	}

	key := ratingKey(userID, bookID)
	adjustment := book.Reconcile(store.rows[key], stars)
	switch adjustment.Action {
	case book.ActionDelete:
		delete(store.rows, key)
	default:
		store.rows[key] = &book.RatedBook{UserID: userID, BookID: bookID, BookTitle: b.Title, Stars: stars}
	}

	b.Stars += adjustment.StarsDelta
	b.RatedBy += adjustment.RatersDelta
	store.books.put(b)

	return &book.RateResult{
		Message: adjustment.Action.Message(), Action: adjustment.Action,
		Stars: b.Stars, RatedBy: b.RatedBy, AverageRating: b.AverageRating(),
	}, nil
}

func (store *memoryRatings) FindUserRating(_ context.Context, userID, bookID string) (*book.RatedBook, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.rows[ratingKey(userID, bookID)], nil
}

func (store *memoryRatings) ListByUser(_ context.Context, userID string) ([]*book.RatedBook, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	ratings := make([]*book.RatedBook, 0)
	for _, row := range store.rows {
		if row.UserID == userID {
			ratings = append(ratings, row)
		}
	}
	return ratings, nil
}

// memoryCache records invalidations and can be told to fail.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]*book.Info
	invalidated []string
	fail        bool
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string]*book.Info{}} }

var errCacheDown = errors.New("cache down")

func (cache *memoryCache) Get(_ context.Context, id string) (*book.Info, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.fail {
		return nil, errCacheDown
	}
	return cache.entries[id], nil
}

func (cache *memoryCache) Set(_ context.Context, info *book.Info) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.fail {
		return errCacheDown
	}
	cache.entries[info.ID] = info
	return nil
}

func (cache *memoryCache) Invalidate(_ context.Context, id string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.invalidated = append(cache.invalidated, id)
	delete(cache.entries, id)
	return nil
}

// purchaseSet is a PurchaseChecker over a fixed set of user/book pairs.
type purchaseSet map[string]bool

func (set purchaseSet) HasPurchased(_ context.Context, userID, bookID string) (bool, error) {
	return set[ratingKey(userID, bookID)], nil
}

// historyLog records reading history appends and can be told to fail.
type historyLog struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (log *historyLog) AddReadingHistory(_ context.Context, userID, bookID string) error {
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.err != nil {
		return log.err
	}
	log.entries = append(log.entries, ratingKey(userID, bookID))
	return nil
}

// memoryObjects is an in-memory ObjectStore.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte

	// onPut runs once, after the next Put stores its object.
	onPut func()
}

func newMemoryObjects() *memoryObjects { return &memoryObjects{objects: map[string][]byte{}} }

func (store *memoryObjects) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	store.mu.Lock()
	store.objects[key] = payload
	hook := store.onPut
	store.onPut = nil
	store.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (store *memoryObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key + "?signature=x", nil
}

func (store *memoryObjects) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.objects, key)
	return nil
}

func (store *memoryObjects) keys() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	keys := make([]string, 0, len(store.objects))
	for key := range store.objects {
		keys = append(keys, key)
	}
	return keys
}
