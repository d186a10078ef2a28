// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookgod/internal/core/book"
	"github.com/taibuivan/bookgod/internal/platform/database/schema"
	"github.com/taibuivan/bookgod/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func authorTargets(author *Author) []any {
	return []any{
		&author.ID, &author.Name, &author.Image, &author.Bio,
		&author.Twitter, &author.Instagram, &author.CreatedAt, &author.UpdatedAt,
	}
}

func (repository *PostgresRepository) Create(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s`,
		schema.CoreAuthor.Table,
		schema.CoreAuthor.ID, schema.CoreAuthor.Name, schema.CoreAuthor.Image,
		schema.CoreAuthor.Bio, schema.CoreAuthor.Twitter, schema.CoreAuthor.Instagram,
		schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		author.ID, author.Name, author.Image, author.Bio, author.Twitter, author.Instagram,
	).Scan(&author.CreatedAt, &author.UpdatedAt)

	return dberr.Wrap(err, "Author", "create_author")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.CoreAuthor.Columns(), ", "), schema.CoreAuthor.Table, schema.CoreAuthor.ID,
	)

	author := &Author{}
	if err := repository.db.QueryRow(context, query, id).Scan(authorTargets(author)...); err != nil {
		return nil, dberr.Wrap(err, "Author", "get_author")
	}
	return author, nil
}

func (repository *PostgresRepository) Update(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = now()
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreAuthor.Table,
		schema.CoreAuthor.Name, schema.CoreAuthor.Image, schema.CoreAuthor.Bio,
		schema.CoreAuthor.Twitter, schema.CoreAuthor.Instagram, schema.CoreAuthor.UpdatedAt,
		schema.CoreAuthor.ID,
		schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		author.ID, author.Name, author.Image, author.Bio, author.Twitter, author.Instagram,
	).Scan(&author.UpdatedAt)

	return dberr.Wrap(err, "Author", "update_author")
}

func (repository *PostgresRepository) TopByStars(context context.Context, limit int) ([]*Ranked, error) {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, SUM(b.%s) AS total
		FROM %s a
		JOIN %s b ON b.%s = a.%s AND b.%s = '%s' AND b.%s IS NULL
		GROUP BY a.%s
		ORDER BY total DESC, a.%s ASC
		LIMIT $1`,
		schema.CoreAuthor.ID, schema.CoreAuthor.Name, schema.CoreAuthor.Image, schema.CoreBook.Stars,
		schema.CoreAuthor.Table,
		schema.CoreBook.Table, schema.CoreBook.AuthorID, schema.CoreAuthor.ID,
		schema.CoreBook.Status, book.StatusPublished, schema.CoreBook.DeletedAt,
		schema.CoreAuthor.ID,
		schema.CoreAuthor.ID,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "Author", "top_authors")
	}
	defer rows.Close()

	ranked := make([]*Ranked, 0, limit)
	for rows.Next() {
		entry := &Ranked{}
		if err := rows.Scan(&entry.ID, &entry.AuthorName, &entry.AuthorImage, &entry.Stars); err != nil {
			return nil, dberr.Wrap(err, "Author", "scan_top_author")
		}
		ranked = append(ranked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Author", "iterate_top_authors")
	}
	return ranked, nil
}
