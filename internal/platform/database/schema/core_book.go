// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreBookTable represents the 'core.book' table
type CoreBookTable struct {
	Table           string
	ID              string
	AuthorID        string
	Title           string
	NormalisedTitle string
	Status          string
	Pricing         string
	Availability    string
	Genres          string
	FrontArtwork    string
	BackArtwork     string
	Collaborations  string
	Synopsis        string
	Language        string
	Series          string
	Stars           string
	RatedBy         string
	Content         string
	PublicationDate string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// CoreBook is the schema definition for core.book
var CoreBook = CoreBookTable{
	Table:           "core.book",
	ID:              "id",
	AuthorID:        "authorid",
	Title:           "title",
	NormalisedTitle: "normalisedtitle",
	Status:          "status",
	Pricing:         "pricing",
	Availability:    "availability",
	Genres:          "genres",
	FrontArtwork:    "frontartwork",
	BackArtwork:     "backartwork",
	Collaborations:  "collaborations",
	Synopsis:        "synopsis",
	Language:        "language",
	Series:          "series",
	Stars:           "stars",
	RatedBy:         "ratedby",
	Content:         "content",
	PublicationDate: "publicationdate",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

// Columns returns every column except content, which only the reader and
// the owner's manage view load.
func (t CoreBookTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.Title, t.NormalisedTitle, t.Status, t.Pricing, t.Availability,
		t.Genres, t.FrontArtwork, t.BackArtwork, t.Collaborations, t.Synopsis, t.Language,
		t.Series, t.Stars, t.RatedBy, t.PublicationDate, t.CreatedAt, t.UpdatedAt,
	}
}
