// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserPurchaseTable represents the 'users.purchase' table
type UserPurchaseTable struct {
	Table       string
	ID          string
	UserID      string
	BookID      string
	SessionID   string
	Amount      string
	Currency    string
	PurchasedAt string
}

// UserPurchase is the schema definition for users.purchase
var UserPurchase = UserPurchaseTable{
	Table:       "users.purchase",
	ID:          "id",
	UserID:      "userid",
	BookID:      "bookid",
	SessionID:   "sessionid",
	Amount:      "amount",
	Currency:    "currency",
	PurchasedAt: "purchasedat",
}

// Columns returns all standard column names
func (t UserPurchaseTable) Columns() []string {
	return []string{t.ID, t.UserID, t.BookID, t.SessionID, t.Amount, t.Currency, t.PurchasedAt}
}
