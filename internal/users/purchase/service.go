// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package purchase

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/metrics"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

var (
	errBookMissing     = apperr.NotFoundMessage("No book found associated with the id")
	errNotPurchasable  = apperr.Forbidden("You cannot purchase this book")
	errAlreadyBought   = apperr.Conflict("You have already purchased this book")
	errForeignCheckout = apperr.Forbidden("This checkout session belongs to another user")
)

// Service implements the checkout and ownership use cases.
type Service struct {
	purchases Repository
	sessions  SessionStore
	books     BookFinder
	options   Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a new [Service].
func NewService(purchases Repository, sessions SessionStore, books BookFinder, options Options, logger *slog.Logger) *Service {
	return &Service{
		purchases: purchases,
		sessions:  sessions,
		books:     books,
		options:   options,
		logger:    logger,
		now:       time.Now,
	}
}

// amountFor converts a list price into minor units of the checkout currency.
func (service *Service) amountFor(pricing float64) int64 {
	return int64(math.Round(pricing * 100 * service.options.ExchangeRate))
}

/*
Checkout opens a checkout session for a paid, published book.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - *CheckoutResult: Redirect URL and session id
  - error: NotFound, Forbidden, Conflict or storage failures
*/
func (service *Service) Checkout(context context.Context, userID, bookID string) (*CheckoutResult, error) {
	if !validate.IsUUID(bookID) {
		return nil, validate.RequiredError(FieldBookID, "must be a valid id")
	}

	// 1. Eligibility
	target, err := service.books.FindByID(context, bookID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errBookMissing
		}
		return nil, err
	}

	if !target.IsPublished() || target.IsFree() {
		return nil, errNotPurchasable
	}

	owned, err := service.purchases.HasPurchased(context, userID, bookID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, errAlreadyBought
	}

	// 2. Session
	now := service.now()
	session := &CheckoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    target.ID,
		BookTitle: target.Title,
		Amount:    service.amountFor(target.Pricing),
		Currency:  service.options.Currency,
		CreatedAt: now,
		ExpiresAt: now.Add(service.options.SessionTTL),
	}
	session.URL = strings.TrimRight(service.options.BaseURL, "/") + "/checkout/" + session.ID

	if err := service.sessions.Save(context, session, service.options.SessionTTL); err != nil {
		return nil, apperr.InternalMessage("Something went wrong during purchase", err)
	}

	metrics.RecordCheckout(StageStarted)
	service.logger.Info("checkout_started",
		slog.String("user_id", userID),
		slog.String("book_id", bookID),
		slog.String("session_id", session.ID),
		slog.Int64("amount", session.Amount),
	)

	return &CheckoutResult{URL: session.URL, SessionID: session.ID}, nil
}

/*
Session returns a pending checkout owned by the user.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - *CheckoutSession: Pending session
  - error: NotFound or Forbidden
*/
func (service *Service) Session(context context.Context, userID, sessionID string) (*CheckoutSession, error) {
	session, err := service.sessions.Find(context, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, errForeignCheckout
	}
	return session, nil
}

/*
Confirm completes a checkout and records the purchase.

Description: Recording is idempotent per user and book. The session is
discarded once the purchase is stored; a failed discard only logs, since the
TTL reclaims it.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - *Purchase: Recorded purchase, or the earlier one for an owned book
  - error: NotFound, Forbidden or storage failures
*/
func (service *Service) Confirm(context context.Context, userID, sessionID string) (*Purchase, error) {
	session, err := service.Session(context, userID, sessionID)
	if err != nil {
		return nil, err
	}

	purchase := &Purchase{
		ID:        uuid.New(),
		UserID:    session.UserID,
		BookID:    session.BookID,
		SessionID: session.ID,
		Amount:    session.Amount,
		Currency:  session.Currency,
	}

	created, err := service.purchases.Record(context, purchase)
	if err != nil {
		return nil, err
	}

	if err := service.sessions.Delete(context, session.ID); err != nil {
		service.logger.Warn("checkout_session_delete_failed", slog.String("session_id", session.ID), slog.Any("error", err))
	}

	if !created {
		service.logger.Info("checkout_already_recorded", slog.String("session_id", session.ID))
		return service.purchases.FindByUserAndBook(context, session.UserID, session.BookID)
	}

	metrics.RecordCheckout(StageConfirmed)
	service.logger.Info("checkout_confirmed",
		slog.String("user_id", userID),
		slog.String("book_id", purchase.BookID),
		slog.String("purchase_id", purchase.ID),
	)
	return purchase, nil
}

// Status reports whether the user owns the book.
func (service *Service) Status(context context.Context, userID, bookID string) (*Status, error) {
	owned, err := service.purchases.HasPurchased(context, userID, bookID)
	if err != nil {
		return nil, err
	}
	return &Status{BookID: bookID, Purchased: owned}, nil
}

// HasPurchased lets the book reader check entitlement.
func (service *Service) HasPurchased(context context.Context, userID, bookID string) (bool, error) {
	return service.purchases.HasPurchased(context, userID, bookID)
}

// List returns the user's purchases, newest first.
func (service *Service) List(context context.Context, userID string) ([]*Purchase, error) {
	return service.purchases.ListByUser(context, userID)
}
