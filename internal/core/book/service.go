// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/metrics"
	"github.com/taibuivan/bookgod/internal/platform/sanitize"
	"github.com/taibuivan/bookgod/internal/platform/storage"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/pagination"
	"github.com/taibuivan/bookgod/pkg/slice"
	"github.com/taibuivan/bookgod/pkg/slug"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

// # Service Layer

// Dependencies groups the collaborators of [Service].
type Dependencies struct {
	Books         BookRepository
	Ratings       RatingRepository
	Cache         InfoCache
	Purchases     PurchaseChecker
	History       HistoryRecorder
	Artwork       storage.ObjectStore
	ArtworkURLTTL time.Duration
	Logger        *slog.Logger
}

// Service orchestrates the book lifecycle, ratings and reading.
type Service struct {
	books         BookRepository
	ratings       RatingRepository
	cache         InfoCache
	purchases     PurchaseChecker
	history       HistoryRecorder
	artwork       storage.ObjectStore
	artworkURLTTL time.Duration
	logger        *slog.Logger
}

// NewService constructs a new [Service].
func NewService(deps Dependencies) *Service {
	return &Service{
		books:         deps.Books,
		ratings:       deps.Ratings,
		cache:         deps.Cache,
		purchases:     deps.Purchases,
		history:       deps.History,
		artwork:       deps.Artwork,
		artworkURLTTL: deps.ArtworkURLTTL,
		logger:        deps.Logger,
	}
}

var (
	errNotOwner       = apperr.Forbidden("You are not the author of this book")
	errTitleTaken     = apperr.Conflict("Book with the same title already exists")
	errEmptyFilter    = apperr.ValidationError("At least one filter is required")
	errBadCursor      = validate.RequiredError("cursor", "must be a valid id")
	errNotEntitled    = apperr.Forbidden("Purchase this book to read it")
	errNoChapters     = apperr.NotFoundMessage("This book has no chapters yet")
	errBackToDraft    = apperr.Unprocessable("A published book cannot be moved back to draft")
	errTitleUnusable  = validate.RequiredError(FieldTitle, "Title must contain letters or digits")
	errMalformedBlock = validate.RequiredError(FieldContent, "Content is not a valid block document")
)

// # Inputs

// CreateInput is the payload of [Service.Create].
type CreateInput struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// PublishInput is the full editable state of a book. Status selects the
// validation rules: draft saves are lenient, publishing is strict.
type PublishInput struct {
	Status         Status          `json:"status"`
	Title          string          `json:"title"`
	Language       string          `json:"language"`
	Availability   Availability    `json:"availability"`
	Pricing        float64         `json:"pricing"`
	Genres         []string        `json:"genres"`
	Collaborations []string        `json:"collaborations"`
	Synopsis       string          `json:"synopsis"`
	Series         string          `json:"series"`
	Content        json.RawMessage `json:"content"`
}

// # Book Management

/*
Create starts a new draft for the author.

Parameters:
  - context: context.Context
  - authorID: string (UUID)
  - input: CreateInput

Returns:
  - string: The new book id
  - error: VALIDATION_ERROR, CONFLICT "Book with the same title already exists"
*/
func (service *Service) Create(context context.Context, authorID string, input CreateInput) (string, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Language = strings.TrimSpace(input.Language)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLength)
	validator.MaxLen(FieldLanguage, input.Language, MaxLanguageLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	normalised := slug.From(input.Title)
	if normalised == "" {
		return "", errTitleUnusable
	}

	if err := service.ensureTitleFree(context, normalised, ""); err != nil {
		return "", err
	}

	book := &Book{
		ID:              uuid.New(),
		AuthorID:        authorID,
		Title:           input.Title,
		NormalisedTitle: normalised,
		Status:          StatusDraft,
		Availability:    AvailabilityFree,
		Language:        input.Language,
	}

	if err := service.books.Create(context, book); err != nil {
		return "", err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("author_id", authorID),
	)
	return book.ID, nil
}

/*
Publish saves the full state of a book and optionally publishes it.

Description: A draft save only requires a title. Publishing additionally
requires everything a reader needs: language, availability, synopsis, at
least one genre, front artwork and non-empty content, plus a positive price
for Paid books. Published books cannot return to draft.

Parameters:
  - context: context.Context
  - authorID: string (UUID of the caller)
  - bookID: string (UUID)
  - input: PublishInput

Returns:
  - *Book: The saved book
  - error: NOT_FOUND, FORBIDDEN, UNPROCESSABLE, VALIDATION_ERROR, CONFLICT
*/
func (service *Service) Publish(context context.Context, authorID, bookID string, input PublishInput) (*Book, error) {
	book, err := service.ownedBook(context, authorID, bookID)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = StatusDraft
	}
	if book.IsPublished() && input.Status == StatusDraft {
		return nil, errBackToDraft
	}

	// 1. Normalise the raw input
	input.Title = strings.TrimSpace(input.Title)
	input.Language = strings.TrimSpace(input.Language)
	input.Series = strings.TrimSpace(input.Series)
	input.Genres = slice.CleanStrings(input.Genres)
	input.Collaborations = slice.CleanStrings(input.Collaborations)
	input.Synopsis = strings.TrimSpace(sanitize.HTML(input.Synopsis))

	document, err := ParseDocument(input.Content)
	if err != nil {
		return nil, errMalformedBlock
	}

	// 2. Validate against the target status
	validator := &validate.Validator{}
	validateDraft(validator, input)
	if input.Status == StatusPublished {
		validatePublish(validator, input, document, book)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 3. Title uniqueness
	normalised := slug.From(input.Title)
	if normalised == "" {
		return nil, errTitleUnusable
	}
	if normalised != book.NormalisedTitle {
		if err := service.ensureTitleFree(context, normalised, book.ID); err != nil {
			return nil, err
		}
	}

	// 4. Apply
	wasPublished := book.IsPublished()
	applyInput(book, input, normalised)

	if input.Status == StatusPublished && book.PublicationDate == nil {
		now := time.Now().UTC()
		book.PublicationDate = &now
	}

	if err := service.books.Update(context, book); err != nil {
		return nil, err
	}
	service.invalidate(context, book.ID)

	event := "book_saved"
	if !wasPublished && book.IsPublished() {
		event = "book_published"
	}
	service.logger.Info(event,
		slog.String("book_id", book.ID),
		slog.String("author_id", authorID),
		slog.String("status", string(book.Status)),
	)
	return book, nil
}

func validateDraft(validator *validate.Validator, input PublishInput) {
	validator.OneOf(FieldStatus, string(input.Status), string(StatusDraft), string(StatusPublished))
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLength)
	validator.MaxLen(FieldLanguage, input.Language, MaxLanguageLength)
	validator.MaxLen(FieldSeries, input.Series, MaxSeriesLength)
	validator.MaxLen(FieldSynopsis, input.Synopsis, MaxSynopsisLength)
	validator.MaxItems(FieldGenres, len(input.Genres), MaxGenres)
	validator.MaxItems(FieldCollaborations, len(input.Collaborations), MaxCollaborators)
	validator.Custom(FieldPricing, input.Pricing < 0, "Pricing cannot be negative")
	validator.Custom(FieldPricing, input.Pricing > MaxPricing, "Pricing is too large")

	if input.Availability != "" {
		validator.OneOf(FieldAvailability, string(input.Availability), string(AvailabilityFree), string(AvailabilityPaid))
	}
}

func validatePublish(validator *validate.Validator, input PublishInput, document *Document, book *Book) {
	validator.Required(FieldLanguage, input.Language)
	validator.Required(FieldAvailability, string(input.Availability))
	validator.Required(FieldSynopsis, input.Synopsis)
	validator.Custom(FieldGenres, len(input.Genres) == 0, "At least one genre is required")
	validator.Custom(FieldFrontArtwork, book.FrontArtwork == "", "Front artwork is required")
	validator.Custom(FieldContent, document.IsEmpty(), "Content is required")
	validator.Custom(FieldPricing, input.Availability == AvailabilityPaid && input.Pricing <= 0, "Paid books need a price")
}

func applyInput(book *Book, input PublishInput, normalised string) {
	book.Title = input.Title
	book.NormalisedTitle = normalised
	book.Status = input.Status
	book.Language = input.Language
	book.Series = input.Series
	book.Synopsis = input.Synopsis
	book.Genres = input.Genres
	book.Collaborations = input.Collaborations

	if input.Availability != "" {
		book.Availability = input.Availability
	}

	book.Pricing = input.Pricing
	if book.Availability == AvailabilityFree {
		book.Pricing = 0
	}

	if len(input.Content) > 0 {
		book.Content = input.Content
	}
}

/*
Delete soft-deletes the author's book and frees its title.

Parameters:
  - context: context.Context
  - authorID: string (UUID of the caller)
  - bookID: string (UUID)

Returns:
  - error: NOT_FOUND, FORBIDDEN
*/
func (service *Service) Delete(context context.Context, authorID, bookID string) error {
	if _, err := service.ownedBook(context, authorID, bookID); err != nil {
		return err
	}

	if err := service.books.SoftDelete(context, bookID); err != nil {
		return err
	}
	service.invalidate(context, bookID)

	service.logger.Warn("book_deleted",
		slog.String("book_id", bookID),
		slog.String("author_id", authorID),
	)
	return nil
}

// GetOwned returns the author's own book in any status, content included.
func (service *Service) GetOwned(context context.Context, authorID, bookID string) (*Book, error) {
	return service.ownedBook(context, authorID, bookID)
}

// ListOwned returns every non-deleted book of the author, drafts included.
func (service *Service) ListOwned(context context.Context, authorID string) ([]*Book, error) {
	return service.books.ListByAuthor(context, authorID, true)
}

// ListByAuthor returns an author's published books.
func (service *Service) ListByAuthor(context context.Context, authorID string) ([]*Book, error) {
	return service.books.ListByAuthor(context, authorID, false)
}

// # Discovery

/*
Filter searches published books by id ascending.

Parameters:
  - context: context.Context
  - filter: Filter (at least one criterion)
  - page: pagination.CursorParams

Returns:
  - []*Info: The page
  - pagination.CursorMeta: Next cursor metadata
  - error: VALIDATION_ERROR for an empty filter or a malformed cursor
*/
func (service *Service) Filter(context context.Context, filter Filter, page pagination.CursorParams) ([]*Info, pagination.CursorMeta, error) {
	filter.Genres = slice.CleanStrings(filter.Genres)
	if filter.IsEmpty() {
		return nil, pagination.CursorMeta{}, errEmptyFilter
	}

	if filter.Availability != "" && !filter.Availability.IsValid() {
		return nil, pagination.CursorMeta{}, validate.RequiredError(FieldAvailability, "Availability must be Free or Paid")
	}

	if err := checkCursor(page); err != nil {
		return nil, pagination.CursorMeta{}, err
	}

	rows, err := service.books.Search(context, filter, page.Cursor, page.Fetch())
	if err != nil {
		return nil, pagination.CursorMeta{}, err
	}

	books, meta := pagination.Trim(rows, page.Limit, infoID)
	return books, meta, nil
}

// ListPublished returns published books newest first.
func (service *Service) ListPublished(context context.Context, page pagination.CursorParams) ([]*Info, pagination.CursorMeta, error) {
	if err := checkCursor(page); err != nil {
		return nil, pagination.CursorMeta{}, err
	}

	rows, err := service.books.ListPublished(context, page.Cursor, page.Fetch())
	if err != nil {
		return nil, pagination.CursorMeta{}, err
	}

	books, meta := pagination.Trim(rows, page.Limit, infoID)
	return books, meta, nil
}

func infoID(info *Info) string { return info.ID }

// checkCursor rejects cursors that are not book ids before they reach SQL.
func checkCursor(page pagination.CursorParams) error {
	if page.Cursor != "" && !validate.IsUUID(strings.ToLower(page.Cursor)) {
		return errBadCursor
	}
	return nil
}

/*
GetInfo returns a published book with its author name.

Description: Read-through cache. Cache failures are logged and the request
falls back to the database.

Parameters:
  - context: context.Context
  - bookID: string (UUID)

Returns:
  - *Info: The book
  - error: NOT_FOUND for drafts and author-less books
*/
func (service *Service) GetInfo(context context.Context, bookID string) (*Info, error) {
	cached, err := service.cache.Get(context, bookID)
	if err != nil {
		service.logger.Warn("book_cache_read_failed", slog.String("book_id", bookID), slog.Any("error", err))
	}
	if cached != nil {
		metrics.RecordCacheLookup(true)
		return cached, nil
	}
	metrics.RecordCacheLookup(false)

	info, err := service.books.FindInfo(context, bookID)
	if err != nil {
		return nil, err
	}

	if err := service.cache.Set(context, info); err != nil {
		service.logger.Warn("book_cache_write_failed", slog.String("book_id", bookID), slog.Any("error", err))
	}
	return info, nil
}

/*
GetDetail returns the book as seen by viewerID.

Description: The book, the viewer's rating and the viewer's purchase are
fetched concurrently. An anonymous viewer only gets the book.

Parameters:
  - context: context.Context
  - viewerID: string ("" for anonymous)
  - bookID: string (UUID)

Returns:
  - *Detail: The enriched book
  - error: NOT_FOUND
*/
func (service *Service) GetDetail(context context.Context, viewerID, bookID string) (*Detail, error) {
	if viewerID == "" {
		info, err := service.GetInfo(context, bookID)
		if err != nil {
			return nil, err
		}
		return &Detail{Info: *info}, nil
	}

	var (
		info      *Info
		rating    *RatedBook
		purchased bool
	)

	group, groupContext := errgroup.WithContext(context)

	group.Go(func() error {
		var err error
		info, err = service.GetInfo(groupContext, bookID)
		return err
	})

	group.Go(func() error {
		var err error
		rating, err = service.ratings.FindUserRating(groupContext, viewerID, bookID)
		return err
	})

	group.Go(func() error {
		var err error
		purchased, err = service.purchases.HasPurchased(groupContext, viewerID, bookID)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	detail := &Detail{Info: *info, Purchased: purchased, IsOwner: info.AuthorID == viewerID}
	if rating != nil {
		detail.ViewerRating = rating.Stars
	}
	return detail, nil
}

// # Ratings

/*
Rate records the user's rating of a published book.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - bookID: string (UUID)
  - stars: int (1..5)

Returns:
  - *RateResult: Outcome message and the new aggregate
  - error: VALIDATION_ERROR, NOT_FOUND, INTERNAL_ERROR
*/
func (service *Service) Rate(context context.Context, userID, bookID string, stars int) (*RateResult, error) {
	validator := &validate.Validator{}
	validator.Range(FieldStars, stars, MinStars, MaxStars)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	result, err := service.ratings.Rate(context, userID, bookID, stars)
	if err != nil {
		return nil, err
	}
	service.invalidate(context, bookID)
	metrics.RecordRating(string(result.Action))

	service.logger.Info("book_rated",
		slog.String("book_id", bookID),
		slog.String("user_id", userID),
		slog.String("action", string(result.Action)),
		slog.Int("stars", stars),
	)
	return result, nil
}

// ListUserRatings returns every rating the user has given.
func (service *Service) ListUserRatings(context context.Context, userID string) ([]*RatedBook, error) {
	return service.ratings.ListByUser(context, userID)
}

/*
RepairRatings recomputes drifted star aggregates.

Returns:
  - int64: Number of books corrected
  - error: Database failures
*/
func (service *Service) RepairRatings(context context.Context) (int64, error) {
	fixed, err := service.books.RepairRatings(context)
	if err != nil {
		return 0, err
	}

	if fixed > 0 {
		service.logger.Warn("book_ratings_repaired", slog.Int64("books", fixed))
	}
	return fixed, nil
}

// # Reading

/*
Read returns the chapters of a published book the user is entitled to.

Description: The book and the purchase lookup run concurrently. The owner,
a purchaser, or anyone for a Free book may read. A failure to record the
reading history does not fail the read.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - bookID: string (UUID)

Returns:
  - *Reading: Table of contents and chapters
  - error: NOT_FOUND, FORBIDDEN "Purchase this book to read it"
*/
func (service *Service) Read(context context.Context, userID, bookID string) (*Reading, error) {
	var (
		book      *Book
		purchased bool
	)

	group, groupContext := errgroup.WithContext(context)

	group.Go(func() error {
		var err error
		book, err = service.books.FindByID(groupContext, bookID)
		return err
	})

	group.Go(func() error {
		var err error
		purchased, err = service.purchases.HasPurchased(groupContext, userID, bookID)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if !book.IsPublished() {
		return nil, errBookNotFound
	}
	if !book.IsFree() && !purchased && book.AuthorID != userID {
		return nil, errNotEntitled
	}

	document, err := ParseDocument(book.Content)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	chapters := SplitChapters(document)
	if len(chapters) == 0 {
		return nil, errNoChapters
	}

	if err := service.history.AddReadingHistory(context, userID, bookID); err != nil {
		service.logger.Warn("reading_history_append_failed",
			slog.String("book_id", bookID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return &Reading{
		BookID:          book.ID,
		Title:           book.Title,
		TableOfContents: TableOfContents(chapters),
		Chapters:        chapters,
	}, nil
}

// # Helpers

func (service *Service) ownedBook(context context.Context, authorID, bookID string) (*Book, error) {
	book, err := service.books.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}
	if book.AuthorID != authorID {
		return nil, errNotOwner
	}
	return book, nil
}

func (service *Service) ensureTitleFree(context context.Context, normalised, excludeID string) error {
	taken, err := service.books.ExistsByNormalisedTitle(context, normalised, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errTitleTaken
	}
	return nil
}

// invalidate drops the cached info. The database write already succeeded,
// so a cache failure is logged and the entry expires by TTL.
func (service *Service) invalidate(context context.Context, bookID string) {
	if err := service.cache.Invalidate(context, bookID); err != nil {
		service.logger.Warn("book_cache_invalidate_failed", slog.String("book_id", bookID), slog.Any("error", err))
	}
}
