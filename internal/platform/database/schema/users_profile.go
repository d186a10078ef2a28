// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table     string
	UserID    string
	Theme     string
	Language  string
	CreatedAt string
	UpdatedAt string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:     "users.profile",
	UserID:    "userid",
	Theme:     "theme",
	Language:  "language",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{t.UserID, t.Theme, t.Language, t.CreatedAt, t.UpdatedAt}
}
