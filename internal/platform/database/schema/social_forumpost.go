// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SocialForumPostTable represents the 'social.forumpost' table
type SocialForumPostTable struct {
	Table     string
	ID        string
	AuthorID  string
	Title     string
	Content   string
	LikeCount string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// SocialForumPost is the schema definition for social.forumpost
var SocialForumPost = SocialForumPostTable{
	Table:     "social.forumpost",
	ID:        "id",
	AuthorID:  "authorid",
	Title:     "title",
	Content:   "content",
	LikeCount: "likecount",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

// Columns returns all standard column names
func (t SocialForumPostTable) Columns() []string {
	return []string{t.ID, t.AuthorID, t.Title, t.Content, t.LikeCount, t.CreatedAt, t.UpdatedAt}
}
