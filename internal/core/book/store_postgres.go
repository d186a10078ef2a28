// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the PostgreSQL implementation of the catalogue's data access.

Notable query features:
  - Cursor pagination: id range predicates with a look-ahead row instead of OFFSET.
  - Array operators: genre filtering with '&&' against a GIN-indexed TEXT[] column.
  - Partial unique index: normalised titles are unique among non-deleted books only.
*/
package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/internal/platform/dberr"
)

// # PostgreSQL Repositories

// bookRepository implements the [BookRepository] interface using pgx.
type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository constructs a PostgreSQL backed book store.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

// errBookNotFound is the NOT_FOUND used by every book lookup.
var errBookNotFound = apperr.NotFoundMessage("No book found with this id")

// # Column Helpers

// bookColumns renders the standard book columns prefixed with alias.
func bookColumns(alias string) string {
	columns := schema.CoreBook.Columns()
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

// bookTargets returns scan destinations in [schema.CoreBookTable.Columns] order.
func bookTargets(book *Book) []any {
	return []any{
		&book.ID, &book.AuthorID, &book.Title, &book.NormalisedTitle, &book.Status,
		&book.Pricing, &book.Availability, &book.Genres, &book.FrontArtwork, &book.BackArtwork,
		&book.Collaborations, &book.Synopsis, &book.Language, &book.Series, &book.Stars,
		&book.RatedBy, &book.PublicationDate, &book.CreatedAt, &book.UpdatedAt,
	}
}

// infoSelect is the published-book projection joined with the author name.
func infoSelect() string {
	return fmt.Sprintf(`
		SELECT %s, a.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
		WHERE b.%s = '%s' AND b.%s IS NULL`,
		bookColumns("b"), schema.CoreAuthor.Name,
		schema.CoreBook.Table,
		schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreBook.AuthorID,
		schema.CoreBook.Status, StatusPublished, schema.CoreBook.DeletedAt,
	)
}

// scanInfos drains rows produced by [infoSelect].
func scanInfos(rows pgx.Rows) ([]*Info, error) {
	defer rows.Close()

	infos := make([]*Info, 0)
	for rows.Next() {
		info := &Info{}
		targets := append(bookTargets(&info.Book), &info.AuthorName)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan book: %w", err)
		}
		info.AverageRating = info.Book.AverageRating()
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate books: %w", err)
	}
	return infos, nil
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(s) + "%"
}

// # Book Repository Implementation

/*
Create inserts a new draft.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: CONFLICT on a duplicate normalised title
*/
func (repository *bookRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s`,
		schema.CoreBook.Table,
		schema.CoreBook.ID, schema.CoreBook.AuthorID, schema.CoreBook.Title,
		schema.CoreBook.NormalisedTitle, schema.CoreBook.Status, schema.CoreBook.Language,
		schema.CoreBook.Availability,
		schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		book.ID, book.AuthorID, book.Title, book.NormalisedTitle, book.Status, book.Language, book.Availability,
	).Scan(&book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "Book with the same title", "failed to create book")
	}
	return nil
}

/*
FindByID retrieves a non-deleted book, content included.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Book: The hydrated entity
  - error: NOT_FOUND if missing
*/
func (repository *bookRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s, b.%s
		FROM %s b
		WHERE b.%s = $1 AND b.%s IS NULL`,
		bookColumns("b"), schema.CoreBook.Content,
		schema.CoreBook.Table,
		schema.CoreBook.ID, schema.CoreBook.DeletedAt,
	)

	book := &Book{}
	var content []byte
	targets := append(bookTargets(book), &content)

	if err := repository.pool.QueryRow(context, query, id).Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBookNotFound
		}
		return nil, fmt.Errorf("postgres: failed to find book: %w", err)
	}

	book.Content = content
	return book, nil
}

/*
ExistsByNormalisedTitle checks the partial unique index ahead of a write, so
the common conflict returns a clear message without a failed statement.
*/
func (repository *bookRepository) ExistsByNormalisedTitle(context context.Context, normalisedTitle, excludeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE %s = $1 AND %s IS NULL AND ($2 = '' OR %s::text <> $2)
		)`,
		schema.CoreBook.Table,
		schema.CoreBook.NormalisedTitle, schema.CoreBook.DeletedAt, schema.CoreBook.ID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, normalisedTitle, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check book title: %w", err)
	}
	return exists, nil
}

/*
Update persists every editable field plus status and publication date.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: NOT_FOUND, CONFLICT on a duplicate normalised title
*/
func (repository *bookRepository) Update(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7,
			%s = $8, %s = $9, %s = $10, %s = $11, %s = $12, %s = $13,
			%s = now()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s`,
		schema.CoreBook.Table,
		schema.CoreBook.Title, schema.CoreBook.NormalisedTitle, schema.CoreBook.Status,
		schema.CoreBook.Pricing, schema.CoreBook.Availability, schema.CoreBook.Genres,
		schema.CoreBook.Collaborations, schema.CoreBook.Synopsis, schema.CoreBook.Language,
		schema.CoreBook.Series, schema.CoreBook.Content, schema.CoreBook.PublicationDate,
		schema.CoreBook.UpdatedAt,
		schema.CoreBook.ID, schema.CoreBook.DeletedAt,
		schema.CoreBook.UpdatedAt,
	)

	content := []byte(book.Content)
	if len(content) == 0 {
		content = []byte(`{"blocks":[]}`)
	}

	err := repository.pool.QueryRow(context, query,
		book.ID, book.Title, book.NormalisedTitle, book.Status,
		book.Pricing, book.Availability, book.Genres,
		book.Collaborations, book.Synopsis, book.Language,
		book.Series, content, book.PublicationDate,
	).Scan(&book.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errBookNotFound
		}
		return dberr.Wrap(err, "Book with the same title", "failed to update book")
	}
	return nil
}

/*
SoftDelete marks the book deleted.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: NOT_FOUND if the book is missing or already deleted
*/
func (repository *bookRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = now() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreBook.Table, schema.CoreBook.DeletedAt, schema.CoreBook.ID, schema.CoreBook.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errBookNotFound
	}
	return nil
}

/*
UpdateArtwork stores the object key of one cover side and returns the key it
replaced. The old value is read under FOR UPDATE, so concurrent uploads each
see the key written by the one before them.
*/
func (repository *bookRepository) UpdateArtwork(context context.Context, id string, side ArtworkSide, key string) (string, error) {
	column := schema.CoreBook.FrontArtwork
	if side == ArtworkBack {
		column = schema.CoreBook.BackArtwork
	}

	query := fmt.Sprintf(`
		WITH previous AS (
			SELECT %s, %s FROM %s WHERE %s = $1 AND %s IS NULL FOR UPDATE
		)
		UPDATE %s AS b SET %s = $2, %s = now()
		FROM previous
		WHERE b.%s = previous.%s
		RETURNING COALESCE(previous.%s, '')`,
		schema.CoreBook.ID, column, schema.CoreBook.Table, schema.CoreBook.ID, schema.CoreBook.DeletedAt,
		schema.CoreBook.Table, column, schema.CoreBook.UpdatedAt,
		schema.CoreBook.ID, schema.CoreBook.ID,
		column,
	)

	var previous string
	if err := repository.pool.QueryRow(context, query, id, key).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errBookNotFound
		}
		return "", fmt.Errorf("postgres: failed to update artwork: %w", err)
	}
	return previous, nil
}

/*
FindInfo retrieves a published book joined with its author.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Info: The book and author name
  - error: NOT_FOUND for drafts, deleted or author-less books
*/
func (repository *bookRepository) FindInfo(context context.Context, id string) (*Info, error) {
	query := infoSelect() + fmt.Sprintf(" AND b.%s = $1", schema.CoreBook.ID)

	rows, err := repository.pool.Query(context, query, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find book info: %w", err)
	}

	infos, err := scanInfos(rows)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, errBookNotFound
	}
	return infos[0], nil
}

/*
Search returns published books matching every set criterion of filter.

Description: The WHERE clause is assembled dynamically; only criteria that
are set add a predicate and a positional argument. Results are ordered by
id ascending and start at the cursor row itself.

Parameters:
  - context: context.Context
  - filter: Filter
  - cursor: string ("" for the first page)
  - fetch: int (limit + 1)

Returns:
  - []*Info: Matching books
  - error: Database execution errors
*/
func (repository *bookRepository) Search(context context.Context, filter Filter, cursor string, fetch int) ([]*Info, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(infoSelect())

	// Genre Filtering (any of)
	if len(filter.Genres) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s && $%d::text[]", schema.CoreBook.Genres, argID))
		args = append(args, filter.Genres)
		argID++
	}

	// Publication Year
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND EXTRACT(YEAR FROM b.%s) = $%d", schema.CoreBook.PublicationDate, argID))
		args = append(args, *filter.Year)
		argID++
	}

	// Minimum average rating, kept in integer space: stars / ratedby >= r
	if filter.Rating != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s > 0 AND b.%s >= $%d::numeric * b.%s",
			schema.CoreBook.RatedBy, schema.CoreBook.Stars, argID, schema.CoreBook.RatedBy))
		args = append(args, *filter.Rating)
		argID++
	}

	// Exact price
	if filter.Price != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CoreBook.Pricing, argID))
		args = append(args, *filter.Price)
		argID++
	}

	// Language
	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND lower(b.%s) = lower($%d)", schema.CoreBook.Language, argID))
		args = append(args, filter.Language)
		argID++
	}

	// Series
	if filter.Series != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s ILIKE $%d", schema.CoreBook.Series, argID))
		args = append(args, likePattern(filter.Series))
		argID++
	}

	// Availability
	if filter.Availability != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CoreBook.Availability, argID))
		args = append(args, filter.Availability)
		argID++
	}

	// Author name
	if filter.AuthorName != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND a.%s ILIKE $%d", schema.CoreAuthor.Name, argID))
		args = append(args, likePattern(filter.AuthorName))
		argID++
	}

	// Title search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s ILIKE $%d", schema.CoreBook.Title, argID))
		args = append(args, likePattern(filter.Query))
		argID++
	}

	// Cursor (inclusive)
	if cursor != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s >= $%d", schema.CoreBook.ID, argID))
		args = append(args, cursor)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY b.%s ASC LIMIT $%d", schema.CoreBook.ID, argID))
	args = append(args, fetch)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to search books: %w", err)
	}
	return scanInfos(rows)
}

/*
ListPublished returns published books newest first, starting at the cursor row.
*/
func (repository *bookRepository) ListPublished(context context.Context, cursor string, fetch int) ([]*Info, error) {
	var queryBuilder strings.Builder
	args := []any{}

	queryBuilder.WriteString(infoSelect())

	if cursor != "" {
		args = append(args, cursor)
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s <= $%d", schema.CoreBook.ID, len(args)))
	}

	args = append(args, fetch)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY b.%s DESC LIMIT $%d", schema.CoreBook.ID, len(args)))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list published books: %w", err)
	}
	return scanInfos(rows)
}

/*
ListByAuthor returns an author's books, newest first, without content.
*/
func (repository *bookRepository) ListByAuthor(context context.Context, authorID string, includeDrafts bool) ([]*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s b
		WHERE b.%s = $1 AND b.%s IS NULL AND ($2 OR b.%s = '%s')
		ORDER BY b.%s DESC`,
		bookColumns("b"), schema.CoreBook.Table,
		schema.CoreBook.AuthorID, schema.CoreBook.DeletedAt, schema.CoreBook.Status, StatusPublished,
		schema.CoreBook.ID,
	)

	rows, err := repository.pool.Query(context, query, authorID, includeDrafts)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list author books: %w", err)
	}
	defer rows.Close()

	books := make([]*Book, 0)
	for rows.Next() {
		book := &Book{}
		if err := rows.Scan(bookTargets(book)...); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate author books: %w", err)
	}
	return books, nil
}

/*
RepairRatings recomputes the star aggregate from the rating rows.

Description: Only books whose stored counters disagree with the rating rows
are touched, so a healthy catalogue results in zero updated rows.

Returns:
  - int64: Number of books corrected
  - error: Database execution errors
*/
func (repository *bookRepository) RepairRatings(context context.Context) (int64, error) {
	query := fmt.Sprintf(`
		WITH totals AS (
			SELECT b.%s AS id, COALESCE(SUM(r.%s), 0) AS stars, COUNT(r.%s) AS ratedby
			FROM %s b
			LEFT JOIN %s r ON r.%s = b.%s
			GROUP BY b.%s
		)
		UPDATE %s b SET %s = t.stars, %s = t.ratedby
		FROM totals t
		WHERE b.%s = t.id AND (b.%s <> t.stars OR b.%s <> t.ratedby)`,
		schema.CoreBook.ID, schema.CoreRatedBook.Stars, schema.CoreRatedBook.ID,
		schema.CoreBook.Table,
		schema.CoreRatedBook.Table, schema.CoreRatedBook.BookID, schema.CoreBook.ID,
		schema.CoreBook.ID,
		schema.CoreBook.Table, schema.CoreBook.Stars, schema.CoreBook.RatedBy,
		schema.CoreBook.ID, schema.CoreBook.Stars, schema.CoreBook.RatedBy,
	)

	result, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to repair ratings: %w", err)
	}
	return result.RowsAffected(), nil
}
