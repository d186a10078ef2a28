// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
)

// Handler implements the profile HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] for the caller's own profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me/preferences", handler.updatePreferences)

	return router
}

/*
GET /api/v1/profiles/me

Description: Returns the caller's preferences and recent reading history.

Response:
  - 200: Profile
  - 401: UNAUTHORIZED
  - 404: NOT_FOUND when the account has no profile
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
PATCH /api/v1/profiles/me/preferences

Description: Partially updates theme and language.

Request:
  - Body: PreferencesPatch

Response:
  - 200: Profile (without history)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updatePreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch PreferencesPatch
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.UpdatePreferences(request.Context(), userID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
