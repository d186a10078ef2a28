// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/constants"
	"github.com/taibuivan/bookgod/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookgod/internal/platform/request"
	"github.com/taibuivan/bookgod/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
	secure      bool
}

// NewHandler constructs a new [Handler]. secureCookies is false only for
// plain-HTTP local development.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{authService: service, secure: secureCookies}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates a new member account.
//   - POST /login           : Authenticates and returns a JWT.
//   - POST /refresh         : Rotates the refresh token cookie.
//   - POST /logout          : Revokes the current session.
//   - POST /change-password : Replaces the password, revoking other sessions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.With(middleware.RequireAuth).Post("/change-password", handler.changePassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
POST /api/v1/auth/register

Description: Creates a member account and its reader profile.

Request:
  - Body: registerRequest

Response:
  - 201: User
  - 400: VALIDATION_ERROR
  - 409: CONFLICT when the username or email is taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
POST /api/v1/auth/login

Description: Verifies credentials, sets the refresh token cookie and returns
an access token.

Request:
  - Body: loginRequest (login is a username or an email)

Response:
  - 200: access_token, token_type, expires_in, user
  - 401: UNAUTHORIZED on bad credentials
  - 429: RATE_LIMITED after repeated failures
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:     input.Login,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

/*
POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie.
Clients call it after an author registration to pick up the new role.

Response:
  - 200: access_token, token_type, expires_in, user
  - 401: UNAUTHORIZED on a missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.RefreshSession(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		middleware.RealIP(request),
	)
	if err != nil {
		handler.clearCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

/*
POST /api/v1/auth/logout

Description: Revokes the session behind the refresh token cookie, if any,
and clears the cookie.

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		if err := handler.authService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	handler.clearCookie(writer)
	respond.NoContent(writer)
}

/*
POST /api/v1/auth/change-password

Description: Replaces the caller's password. Every session except the one
presented in the cookie is revoked.

Request:
  - Body: changePasswordRequest

Response:
  - 204: No Content
  - 400: VALIDATION_ERROR
  - 401: UNAUTHORIZED when the current password is wrong
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	refreshToken := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		refreshToken = cookie.Value
	}

	err = handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
		RefreshToken:    refreshToken,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Cookie Helpers

func (handler *Handler) writeSession(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   handler.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(AccessTokenTTL / time.Second),
		FieldUser:        session.User,
	})
}

func (handler *Handler) clearCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
