// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreAuthorTable represents the 'core.author' table.
// The primary key is the owning account's id.
type CoreAuthorTable struct {
	Table     string
	ID        string
	Name      string
	Image     string
	Bio       string
	Twitter   string
	Instagram string
	CreatedAt string
	UpdatedAt string
}

// CoreAuthor is the schema definition for core.author
var CoreAuthor = CoreAuthorTable{
	Table:     "core.author",
	ID:        "id",
	Name:      "name",
	Image:     "image",
	Bio:       "bio",
	Twitter:   "twitter",
	Instagram: "instagram",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.Image, t.Bio, t.Twitter, t.Instagram, t.CreatedAt, t.UpdatedAt}
}
