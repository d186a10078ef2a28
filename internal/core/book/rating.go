// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "time"

// Star bounds for a single rating.
const (
	MinStars = 1
	MaxStars = 5
)

// RatedBook is one user's rating of one book. A user has at most one row per book.
type RatedBook struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	BookTitle string    `json:"book_title"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Action is the write a rating request resolves to.
type Action string

const (
	ActionRate   Action = "rate"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Message is the user-facing outcome of the action.
func (a Action) Message() string {
	switch a {
	case ActionDelete:
		return "Removed Rating"
	case ActionUpdate:
		return "Updated Rating"
	default:
		return "Rated"
	}
}

// Adjustment is the change a rating request applies to the book aggregate.
type Adjustment struct {
	Action      Action
	StarsDelta  int
	RatersDelta int
}

/*
Reconcile decides how a rating request changes the stored state.

  - No existing row: insert it; stars += s, raters += 1.
  - Existing row with the same stars: the request toggles it off; delete the
    row, stars -= s, raters -= 1.
  - Existing row with different stars: update it; stars += new - old.

Parameters:
  - existing: *RatedBook (nil when the user has not rated the book)
  - stars: int (the requested stars, already validated)

Returns:
  - Adjustment: The action and the deltas for Book.Stars and Book.RatedBy
*/
func Reconcile(existing *RatedBook, stars int) Adjustment {
	switch {
	case existing == nil:
		return Adjustment{Action: ActionRate, StarsDelta: stars, RatersDelta: 1}
	case existing.Stars == stars:
		return Adjustment{Action: ActionDelete, StarsDelta: -existing.Stars, RatersDelta: -1}
	default:
		return Adjustment{Action: ActionUpdate, StarsDelta: stars - existing.Stars}
	}
}

// RateResult reports the outcome of a rating request and the new aggregate.
type RateResult struct {
	Message       string  `json:"msg"`
	Action        Action  `json:"action"`
	Stars         int     `json:"stars"`
	RatedBy       int     `json:"rated_by"`
	AverageRating float64 `json:"average_rating"`
}
