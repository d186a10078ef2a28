// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SocialForumPostLikeTable represents the 'social.forumpostlike' table.
// (postid, userid) is the primary key, which makes likes a set.
type SocialForumPostLikeTable struct {
	Table     string
	PostID    string
	UserID    string
	CreatedAt string
}

// SocialForumPostLike is the schema definition for social.forumpostlike
var SocialForumPostLike = SocialForumPostLikeTable{
	Table:     "social.forumpostlike",
	PostID:    "postid",
	UserID:    "userid",
	CreatedAt: "createdat",
}
