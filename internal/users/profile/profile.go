// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages the reader-side state every account owns.

A profile carries UI preferences and an append-only reading history that the
book reader feeds on every successful read.
*/
package profile

import (
	"context"
	"time"
)

// # Domain Entities

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	DefaultTheme    = ThemeLight
	DefaultLanguage = "en"

	// HistoryLimit caps how many of the latest history entries a profile read returns.
	HistoryLimit = 100
)

// Preferences are the customisable UI settings of a reader.
type Preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// HistoryEntry records one successful read of a book.
type HistoryEntry struct {
	BookID   string    `json:"book_id"`
	LastRead time.Time `json:"last_read"`
}

// Profile is the reader state attached to a user account.
type Profile struct {
	UserID         string         `json:"user_id"`
	Preferences    Preferences    `json:"preferences"`
	ReadingHistory []HistoryEntry `json:"reading_history"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// PreferencesPatch is a partial update; nil fields keep their value.
type PreferencesPatch struct {
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
}

const (
	FieldTheme    = "theme"
	FieldLanguage = "language"
)

// # Repository Contracts

// Repository defines the persistence contract for profiles.
type Repository interface {

	/*
		Create persists a profile with default preferences.

		Returns:
		  - error: apperr.Conflict when the user already has one
	*/
	Create(context context.Context, profile *Profile) error

	// FindByUserID loads the profile without its history.
	FindByUserID(context context.Context, userID string) (*Profile, error)

	// UpdatePreferences overwrites both preference fields and bumps updatedat.
	UpdatePreferences(context context.Context, userID string, prefs Preferences) (*Profile, error)

	/*
		AppendHistory adds one history entry.

		Returns:
		  - error: apperr.NotFound when the profile does not exist
	*/
	AppendHistory(context context.Context, userID, bookID string, at time.Time) error

	// ListHistory returns the newest entries first.
	ListHistory(context context.Context, userID string, limit int) ([]HistoryEntry, error)
}
