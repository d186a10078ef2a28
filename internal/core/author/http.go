// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/top", handler.topByStars)
	router.Get("/{authorID}", handler.getAuthor)
	router.Get("/{authorID}/books", handler.getWithBooks)

	// Any member may apply
	router.With(middleware.RequireAuth).Post("/", handler.register)

	// Authors edit themselves
	router.With(middleware.RequireRole(sec.RoleAuthor)).Put("/me", handler.updateMe)

	return router
}

func authorIDParam(request *http.Request) (string, error) {
	id := requestutil.Param(request, "authorID")
	if !validate.IsUUID(id) {
		return "", apperr.NotFound("Author")
	}
	return id, nil
}

/*
GET /api/v1/authors/top.

Request:
  - limit: int (default 10, max 50)

Response:
  - 200: []Ranked
*/
func (handler *Handler) topByStars(writer http.ResponseWriter, request *http.Request) {
	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	ranked, err := handler.service.TopByStars(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ranked)
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	authorID, err := authorIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.Get(request.Context(), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, author)
}

func (handler *Handler) getWithBooks(writer http.ResponseWriter, request *http.Request) {
	authorID, err := authorIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.GetWithBooks(request.Context(), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, author)
}

/*
POST /api/v1/authors.

Description: Registers the caller as an author. The access token must be
refreshed afterwards to carry the author role.

Response:
  - 201: Author
  - 409: CONFLICT "Author already exists"
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var profile Profile
	if err := requestutil.DecodeJSON(writer, request, &profile); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.Register(request.Context(), userID, profile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, author)
}

func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var profile Profile
	if err := requestutil.DecodeJSON(writer, request, &profile); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.Update(request.Context(), userID, profile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, author)
}
