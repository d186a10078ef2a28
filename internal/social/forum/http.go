// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package forum

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/pagination"
)

// Handler implements the forum HTTP endpoints.
type Handler struct {
	forumService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{forumService: service}
}

// Routes returns a [chi.Router] for forum posts.
//
// # Endpoints
//   - GET    /               : Lists posts, newest first.
//   - GET    /{postID}       : Returns a post with its likes.
//   - POST   /               : Creates a post.
//   - PUT    /{postID}       : Edits a post (author).
//   - DELETE /{postID}       : Deletes a post (author or moderator).
//   - POST   /{postID}/like  : Toggles the caller's like.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{postID}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Put("/{postID}", handler.update)
		r.Delete("/{postID}", handler.delete)
		r.Post("/{postID}/like", handler.toggleLike)
	})

	return router
}

func postIDParam(request *http.Request) (string, error) {
	postID := requestutil.Param(request, "postID")
	if !validate.IsUUID(postID) {
		return "", validate.RequiredError("postID", "must be a valid id")
	}
	return postID, nil
}

/*
GET /api/v1/forum/posts

Request:
  - Query: cursor, limit

Response:
  - 200: []Post with cursor meta
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	posts, meta, err := handler.forumService.List(request.Context(), pagination.CursorFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Cursor(writer, posts, meta)
}

// GET /api/v1/forum/posts/{postID}
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	postID, err := postIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.forumService.Get(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
POST /api/v1/forum/posts

Request:
  - Body: PostInput

Response:
  - 201: Post
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PostInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.forumService.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
PUT /api/v1/forum/posts/{postID}

Response:
  - 200: Post
  - 403: FORBIDDEN for non-authors
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID, err := postIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PostInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.forumService.Update(request.Context(), userID, postID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
DELETE /api/v1/forum/posts/{postID}

Response:
  - 204: No Content
  - 403: FORBIDDEN unless author or moderator
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID, err := postIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.forumService.Delete(request.Context(), claims.UserID, claims.UserRole(), postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/forum/posts/{postID}/like

Response:
  - 200: LikeResult
  - 404: NOT_FOUND
*/
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID, err := postIDParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.forumService.ToggleLike(request.Context(), userID, postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
