// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book defines the catalogue of the BookGod marketplace.

It manages the lifecycle of a book from draft to published, its denormalised
star aggregate, its rich-text content and its cover artwork.

Core Responsibility:

  - Authoring: Draft creation, publish validation, soft deletion.
  - Discovery: Cursor-paginated listing and multi-filter search.
  - Rating: Per-user ratings reconciled into Book.Stars and Book.RatedBy.
  - Reading: Access control and chapter splitting of block content.
*/
package book

import (
	"encoding/json"
	"time"
)

// # Domain Enums

// Status represents the publication state of a book.
type Status string

const (
	// StatusDraft is visible to its author only.
	StatusDraft Status = "draft"

	// StatusPublished is listed, searchable and purchasable. There is no way back to draft.
	StatusPublished Status = "published"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Availability describes whether a book must be bought before it can be read.
type Availability string

const (
	AvailabilityFree Availability = "Free"
	AvailabilityPaid Availability = "Paid"
)

// IsValid reports whether a is a recognised [Availability] value.
func (a Availability) IsValid() bool {
	return a == AvailabilityFree || a == AvailabilityPaid
}

// ArtworkSide selects the front or back cover.
type ArtworkSide string

const (
	ArtworkFront ArtworkSide = "front"
	ArtworkBack  ArtworkSide = "back"
)

// IsValid reports whether s names a cover side.
func (s ArtworkSide) IsValid() bool {
	return s == ArtworkFront || s == ArtworkBack
}

// # Core Entities

// Book is the central aggregate of the catalogue.
//
// Stars is the sum of every [RatedBook.Stars] for the book and RatedBy is the
// number of those rows. Both are only ever changed by relative updates inside
// the rating transaction (or recomputed by RepairRatings).
type Book struct {
	ID              string          `json:"id"`
	AuthorID        string          `json:"author_id"`
	Title           string          `json:"title"`
	NormalisedTitle string          `json:"normalised_title"`
	Status          Status          `json:"status"`
	Pricing         float64         `json:"pricing"`
	Availability    Availability    `json:"availability"`
	Genres          []string        `json:"genres"`
	FrontArtwork    string          `json:"front_artwork,omitempty"` // object key
	BackArtwork     string          `json:"back_artwork,omitempty"`  // object key
	Collaborations  []string        `json:"collaborations"`
	Synopsis        string          `json:"synopsis"`
	Language        string          `json:"language"`
	Series          string          `json:"series,omitempty"`
	Stars           int             `json:"stars"`
	RatedBy         int             `json:"rated_by"`
	Content         json.RawMessage `json:"content,omitempty"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       *time.Time      `json:"-"`
}

// IsPublished reports whether the book is publicly visible.
func (b *Book) IsPublished() bool {
	return b.Status == StatusPublished
}

// IsFree reports whether the book can be read without a purchase.
func (b *Book) IsFree() bool {
	return b.Availability == AvailabilityFree
}

// AverageRating returns Stars / RatedBy, or 0 for an unrated book.
func (b *Book) AverageRating() float64 {
	if b.RatedBy == 0 {
		return 0
	}
	return float64(b.Stars) / float64(b.RatedBy)
}

// ArtworkKey returns the stored object key for a cover side.
func (b *Book) ArtworkKey(side ArtworkSide) string {
	if side == ArtworkBack {
		return b.BackArtwork
	}
	return b.FrontArtwork
}

// Info is a published book joined with its author's display name.
// It is the shape cached under book:info:{id}.
type Info struct {
	Book
	AuthorName    string  `json:"author_name"`
	AverageRating float64 `json:"average_rating"`
}

// Detail is [Info] enriched with the viewer's relationship to the book.
type Detail struct {
	Info
	ViewerRating int  `json:"viewer_rating"` // 0 when the viewer has not rated
	Purchased    bool `json:"purchased"`
	IsOwner      bool `json:"is_owner"`
}

// # Search

// Filter holds the optional criteria of a book search. At least one must be set.
type Filter struct {
	Genres       []string     // any of
	Year         *int         // publication year
	Rating       *float64     // minimum average rating
	Price        *float64     // exact price
	Language     string       // case-insensitive equality
	Series       string       // substring
	Availability Availability // Free or Paid
	AuthorName   string       // substring
	Query        string       // title substring
}

// IsEmpty reports whether no criterion is set.
func (f Filter) IsEmpty() bool {
	return len(f.Genres) == 0 && f.Year == nil && f.Rating == nil && f.Price == nil &&
		f.Language == "" && f.Series == "" && f.Availability == "" && f.AuthorName == "" && f.Query == ""
}

// # Field Identifiers

const (
	FieldTitle          = "title"
	FieldLanguage       = "language"
	FieldStatus         = "status"
	FieldPricing        = "pricing"
	FieldAvailability   = "availability"
	FieldGenres         = "genres"
	FieldCollaborations = "collaborations"
	FieldSynopsis       = "synopsis"
	FieldSeries         = "series"
	FieldContent        = "content"
	FieldFrontArtwork   = "front_artwork"
	FieldStars          = "stars"
	FieldRating         = "rating"
	FieldPrice          = "price"
	FieldYear           = "year"
	FieldSide           = "side"
	FieldArtwork        = "artwork"
)

// # Limits

const (
	MaxTitleLength    = 200
	MaxLanguageLength = 50
	MaxSeriesLength   = 200
	MaxSynopsisLength = 5000
	MaxGenres         = 10
	MaxCollaborators  = 10

	// MaxPricing fits NUMERIC(10,2).
	MaxPricing = 99_999_999.99
)
