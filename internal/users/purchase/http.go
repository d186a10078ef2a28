// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
	"github.com/taibuivan/bookgod/internal/platform/validate"
)

// Handler implements the purchase HTTP endpoints.
type Handler struct {
	purchaseService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{purchaseService: service}
}

// Routes returns a [chi.Router] for purchases. Every endpoint needs a caller.
//
// # Endpoints
//   - GET  /                              : Lists the caller's purchases.
//   - POST /checkout                      : Opens a checkout session.
//   - GET  /checkout/{sessionID}          : Shows a pending checkout.
//   - POST /checkout/{sessionID}/confirm  : Completes a checkout.
//   - GET  /status/{bookID}               : Reports ownership of a book.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/checkout", handler.checkout)
	router.Get("/checkout/{sessionID}", handler.session)
	router.Post("/checkout/{sessionID}/confirm", handler.confirm)
	router.Get("/status/{bookID}", handler.status)

	return router
}

type checkoutRequest struct {
	BookID string `json:"book_id"`
}

/*
POST /api/v1/purchases/checkout

Request:
  - Body: checkoutRequest

Response:
  - 201: CheckoutResult
  - 403: FORBIDDEN for drafts and free books
  - 404: NOT_FOUND for unknown books
  - 409: CONFLICT when already purchased
*/
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input checkoutRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.purchaseService.Checkout(request.Context(), userID, input.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
GET /api/v1/purchases/checkout/{sessionID}

Response:
  - 200: CheckoutSession
  - 403: FORBIDDEN for another user's session
  - 404: NOT_FOUND when missing or expired
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.purchaseService.Session(request.Context(), userID, requestutil.Param(request, "sessionID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
POST /api/v1/purchases/checkout/{sessionID}/confirm

Response:
  - 200: Purchase
  - 403: FORBIDDEN for another user's session
  - 404: NOT_FOUND when missing or expired
*/
func (handler *Handler) confirm(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	purchase, err := handler.purchaseService.Confirm(request.Context(), userID, requestutil.Param(request, "sessionID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, purchase)
}

/*
GET /api/v1/purchases/status/{bookID}

Response:
  - 200: Status
  - 400: VALIDATION_ERROR for a malformed id
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID := requestutil.Param(request, "bookID")
	if !validate.IsUUID(bookID) {
		respond.Error(writer, request, validate.RequiredError(FieldBookID, "must be a valid id"))
		return
	}

	status, err := handler.purchaseService.Status(request.Context(), userID, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}

// GET /api/v1/purchases
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	purchases, err := handler.purchaseService.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, purchases)
}
