// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the catalogue: authoring, discovery, ratings and reading.

# Routing Strategy

  - Public: discovery, book info and artwork redirects.
  - Authenticated: rating, reading and the caller's rating history.
  - Author role: creating, saving, publishing and deleting one's own books.
*/
package book

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/constants"
	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/convert"
	"github.com/taibuivan/bookgod/pkg/pagination"
	"github.com/taibuivan/bookgod/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer of the catalogue.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the catalogue endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.listPublished)
	router.Get("/search", handler.filter)

	// ## Reader Endpoints
	router.Group(func(reader chi.Router) {
		reader.Use(middleware.RequireAuth)

		reader.Get("/ratings/me", handler.listMyRatings)
		reader.Post("/{bookID}/rating", handler.rate)
		reader.Get("/{bookID}/read", handler.read)
	})

	// ## Authoring (Author Protected)
	router.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))

		author.Get("/manage", handler.listOwned)
		author.Get("/manage/{bookID}", handler.getOwned)
		author.Post("/", handler.create)
		author.Put("/{bookID}", handler.publish)
		author.Delete("/{bookID}", handler.delete)
		author.Post("/{bookID}/artwork/{side}", handler.uploadArtwork)
	})

	// ## Public Book Pages
	router.Get("/{bookID}", handler.getDetail)
	router.Get("/{bookID}/info", handler.getInfo)
	router.Get("/{bookID}/artwork/{side}", handler.artworkRedirect)

	return router
}

// bookIDParam rejects malformed ids before they reach the database.
func bookIDParam(request *http.Request) (string, error) {
	id := requestutil.Param(request, "bookID")
	if !validate.IsUUID(id) {
		return "", errBookNotFound
	}
	return id, nil
}

// # Discovery Endpoints

/*
GET /api/v1/books.

Description: Lists published books, newest first.

Request:
  - cursor: string (book id, inclusive)
  - limit: int (default 10, max 50)

Response:
  - 200: []Info with cursor metadata
*/
func (handler *Handler) listPublished(writer http.ResponseWriter, request *http.Request) {
	books, meta, err := handler.service.ListPublished(request.Context(), pagination.CursorFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Cursor(writer, books, meta)
}

/*
GET /api/v1/books/search.

Description: Filters published books, id ascending. At least one filter is required.

Request:
  - genres: []string (repeated or comma separated, any of)
  - year: int
  - rating: float (minimum average)
  - price: float (exact)
  - language, series, availability, authorName, q: string
  - cursor, limit

Response:
  - 200: []Info with cursor metadata
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) filter(writer http.ResponseWriter, request *http.Request) {
	queryParams := request.URL.Query()

	filter := Filter{
		Genres:       query.Strings(queryParams, "genres"),
		Language:     queryParams.Get("language"),
		Series:       queryParams.Get("series"),
		Availability: Availability(queryParams.Get("availability")),
		AuthorName:   queryParams.Get("authorName"),
		Query:        queryParams.Get("q"),
	}

	validator := &validate.Validator{}

	year, err := convert.OptionalInt(queryParams.Get("year"))
	validator.Custom(FieldYear, err != nil, "Year must be a whole number")
	filter.Year = year

	rating, err := convert.OptionalFloat(queryParams.Get("rating"))
	validator.Custom(FieldRating, err != nil, "Rating must be a number")
	filter.Rating = rating

	price, err := convert.OptionalFloat(queryParams.Get("price"))
	validator.Custom(FieldPrice, err != nil, "Price must be a number")
	filter.Price = price

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, meta, err := handler.service.Filter(request.Context(), filter, pagination.CursorFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Cursor(writer, books, meta)
}

/*
GET /api/v1/books/{bookID}.

Description: A published book with the caller's rating and purchase state.
Anonymous callers receive the book alone.

Response:
  - 200: Detail
  - 404: NOT_FOUND
*/
func (handler *Handler) getDetail(writer http.ResponseWriter, request *http.Request) {
	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetDetail(request.Context(), requestutil.OptionalUserID(request), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
GET /api/v1/books/{bookID}/info.

Response:
  - 200: Info
  - 404: NOT_FOUND
*/
func (handler *Handler) getInfo(writer http.ResponseWriter, request *http.Request) {
	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	info, err := handler.service.GetInfo(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, info)
}

/*
GET /api/v1/books/{bookID}/artwork/{side}.

Response:
  - 302: Redirect to a presigned object URL
  - 404: NOT_FOUND
*/
func (handler *Handler) artworkRedirect(writer http.ResponseWriter, request *http.Request) {
	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	url, err := handler.service.ArtworkURL(request.Context(), bookID, ArtworkSide(requestutil.Param(request, "side")))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, url, http.StatusFound)
}

// # Reader Endpoints

// rateRequest is the inbound JSON of a rating.
type rateRequest struct {
	Stars int `json:"stars"`
}

/*
POST /api/v1/books/{bookID}/rating.

Description: Rates a book. Repeating the same stars withdraws the rating.

Request:
  - stars: int (1..5)

Response:
  - 200: RateResult
  - 404: NOT_FOUND "No book found with this id"
*/
func (handler *Handler) rate(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input rateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Rate(request.Context(), userID, bookID, input.Stars)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/books/ratings/me.

Response:
  - 200: []RatedBook
*/
func (handler *Handler) listMyRatings(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ratings, err := handler.service.ListUserRatings(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ratings)
}

/*
GET /api/v1/books/{bookID}/read.

Response:
  - 200: Reading
  - 403: FORBIDDEN "Purchase this book to read it"
  - 404: NOT_FOUND
*/
func (handler *Handler) read(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reading, err := handler.service.Read(request.Context(), userID, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reading)
}

// # Authoring Endpoints

/*
POST /api/v1/books.

Request:
  - title: string
  - language: string

Response:
  - 201: {book_id}
  - 409: CONFLICT "Book with the same title already exists"
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := handler.service.Create(request.Context(), authorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"book_id": bookID})
}

/*
PUT /api/v1/books/{bookID}.

Description: Saves the full editable state. status=published publishes.

Request:
  - PublishInput

Response:
  - 200: Book
  - 403: FORBIDDEN "You are not the author of this book"
  - 422: UNPROCESSABLE (published back to draft)
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PublishInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Publish(request.Context(), authorID, bookID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
DELETE /api/v1/books/{bookID}.

Response:
  - 204: Deleted
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), authorID, bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// GET /api/v1/books/manage lists the caller's books, drafts included.
func (handler *Handler) listOwned(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := handler.service.ListOwned(request.Context(), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, books)
}

// GET /api/v1/books/manage/{bookID} returns one of the caller's books with content.
func (handler *Handler) getOwned(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetOwned(request.Context(), authorID, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
POST /api/v1/books/{bookID}/artwork/{side}.

Description: Multipart upload of a cover image under the "artwork" field.
The content type is sniffed from the first bytes of the file.

Response:
  - 201: {key}
  - 400: VALIDATION_ERROR (type or size)
*/
func (handler *Handler) uploadArtwork(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := bookIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Allow the multipart envelope on top of the file itself
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxArtworkBytes+(1<<20))
	if err := request.ParseMultipartForm(constants.MaxArtworkBytes); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldArtwork, "Artwork must be a multipart upload of at most 5 MiB"))
		return
	}

	file, header, err := request.FormFile(FieldArtwork)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldArtwork, "Artwork file is required"))
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	read, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respond.Error(writer, request, validate.RequiredError(FieldArtwork, "Artwork could not be read"))
		return
	}
	sniff = sniff[:read]

	key, err := handler.service.UploadArtwork(request.Context(), authorID, bookID, ArtworkUpload{
		Side:        ArtworkSide(requestutil.Param(request, "side")),
		ContentType: http.DetectContentType(sniff),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(sniff), file),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"key": key})
}
