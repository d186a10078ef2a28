// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column the repositories touch.
//
// Repositories build SQL with fmt.Sprintf over these definitions instead of
// string literals, so a renamed column is a one-line change here.
package schema
