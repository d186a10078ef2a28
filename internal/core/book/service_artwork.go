// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/constants"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/uuid"
)

// artworkExtensions maps accepted image types to their object key extension.
var artworkExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ArtworkUpload is a cover image received from the client. ContentType is
// the sniffed type, not the client-declared one.
type ArtworkUpload struct {
	Side        ArtworkSide
	ContentType string
	Size        int64
	Body        io.Reader
}

// artworkObjectKey builds books/{id}/{side}-{uuid}{ext}.
func artworkObjectKey(bookID string, side ArtworkSide, ext string) string {
	return fmt.Sprintf("%s%s/%s-%s%s", constants.ArtworkKeyPrefix, bookID, side, uuid.New(), ext)
}

/*
UploadArtwork stores a new cover image and points the book at it.

Description: The object is written first. If the database update then fails
the new object is removed; once the update succeeds the object it replaced
is removed. Neither cleanup failure fails the request.

Parameters:
  - context: context.Context
  - authorID: string (UUID of the caller)
  - bookID: string (UUID)
  - upload: ArtworkUpload

Returns:
  - string: The new object key
  - error: VALIDATION_ERROR, NOT_FOUND, FORBIDDEN
*/
func (service *Service) UploadArtwork(context context.Context, authorID, bookID string, upload ArtworkUpload) (string, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldSide, !upload.Side.IsValid(), "Side must be front or back")
	validator.Custom(FieldArtwork, upload.Size <= 0, "Artwork file is required")
	validator.Custom(FieldArtwork, upload.Size > constants.MaxArtworkBytes, "Artwork must not exceed 5 MiB")

	ext, allowed := artworkExtensions[upload.ContentType]
	validator.Custom(FieldArtwork, !allowed, "Artwork must be a JPEG, PNG or WebP image")

	if err := validator.Err(); err != nil {
		return "", err
	}

	book, err := service.ownedBook(context, authorID, bookID)
	if err != nil {
		return "", err
	}

	// 1. Write the new object
	key := artworkObjectKey(book.ID, upload.Side, ext)
	if err := service.artwork.Put(context, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return "", apperr.InternalMessage("Failed to store artwork", err)
	}

	// 2. Point the book at it
	previous, err := service.books.UpdateArtwork(context, book.ID, upload.Side, key)
	if err != nil {
		service.deleteObject(context, key)
		return "", err
	}
	service.invalidate(context, book.ID)

	// 3. Drop the object the update actually replaced
	if previous != "" && previous != key {
		service.deleteObject(context, previous)
	}

	service.logger.Info("book_artwork_uploaded",
		slog.String("book_id", book.ID),
		slog.String("side", string(upload.Side)),
		slog.String("key", key),
	)
	return key, nil
}

/*
ArtworkURL returns a short-lived presigned URL for a published book's cover.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - side: ArtworkSide

Returns:
  - string: The presigned URL
  - error: VALIDATION_ERROR, NOT_FOUND when the book or the artwork is missing
*/
func (service *Service) ArtworkURL(context context.Context, bookID string, side ArtworkSide) (string, error) {
	if !side.IsValid() {
		return "", validate.RequiredError(FieldSide, "Side must be front or back")
	}

	info, err := service.GetInfo(context, bookID)
	if err != nil {
		return "", err
	}

	key := info.ArtworkKey(side)
	if key == "" {
		return "", apperr.NotFoundMessage(fmt.Sprintf("This book has no %s artwork", side))
	}

	url, err := service.artwork.PresignGet(context, key, service.artworkURLTTL)
	if err != nil {
		return "", apperr.InternalMessage("Failed to sign artwork URL", err)
	}
	return url, nil
}

func (service *Service) deleteObject(context context.Context, key string) {
	if err := service.artwork.Delete(context, key); err != nil {
		service.logger.Warn("book_artwork_cleanup_failed", slog.String("key", key), slog.Any("error", err))
	}
}
