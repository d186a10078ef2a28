// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserReadingHistoryTable represents the append-only 'users.readinghistory' table
type UserReadingHistoryTable struct {
	Table    string
	ID       string
	UserID   string
	BookID   string
	LastRead string
}

// UserReadingHistory is the schema definition for users.readinghistory
var UserReadingHistory = UserReadingHistoryTable{
	Table:    "users.readinghistory",
	ID:       "id",
	UserID:   "userid",
	BookID:   "bookid",
	LastRead: "lastread",
}
