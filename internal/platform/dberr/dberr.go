// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
)

// SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Wrap inspects a database error and classifies it into an [apperr.AppError].
//
// resource names the entity for NOT_FOUND messages; action names the failed
// operation in the logged cause.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.Conflict(resource + " already exists").WithCause(err)
		case codeForeignKeyViolation:
			return apperr.Unprocessable("Referenced " + pgErr.TableName + " does not exist").WithCause(err)
		case codeCheckViolation:
			return apperr.ValidationError("Value violates constraint " + pgErr.ConstraintName).WithCause(err)
		}
	}

	return apperr.Internal(fmt.Errorf("postgres: %s: %w", action, err))
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
