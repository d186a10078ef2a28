// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreRatedBookTable represents the 'core.ratedbook' table
type CoreRatedBookTable struct {
	Table     string
	ID        string
	BookID    string
	UserID    string
	BookTitle string
	Stars     string
	CreatedAt string
	UpdatedAt string
}

// CoreRatedBook is the schema definition for core.ratedbook
var CoreRatedBook = CoreRatedBookTable{
	Table:     "core.ratedbook",
	ID:        "id",
	BookID:    "bookid",
	UserID:    "userid",
	BookTitle: "booktitle",
	Stars:     "stars",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t CoreRatedBookTable) Columns() []string {
	return []string{t.ID, t.BookID, t.UserID, t.BookTitle, t.Stars, t.CreatedAt, t.UpdatedAt}
}
