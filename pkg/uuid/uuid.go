// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

Every primary key is a UUIDv7. Because the leading bits encode the creation
millisecond, ordering rows by id is ordering them by creation time, which is
what cursor pagination relies on.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source fails, which is unrecoverable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as any UUID version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
