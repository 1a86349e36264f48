package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `
	b.id, b.user_id, b.title, b.author, COALESCE(b.isbn, ''), b.rating,
	b.notes, b.date_read, b.cover_url, b.created_at, b.updated_at
`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.ISBN, &b.Rating,
		&b.Notes, &b.DateRead, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) collect(rows pgx.Rows, withUsername bool) ([]Book, error) {
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		dest := []any{
			&b.ID, &b.UserID, &b.Title, &b.Author, &b.ISBN, &b.Rating,
			&b.Notes, &b.DateRead, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt,
		}
		if withUsername {
			dest = append(dest, &b.Username)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books b
	WHERE b.user_id = $1
	ORDER BY b.rating DESC, b.title ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows, false)
}

func (r *PostgresRepo) ListByUsername(ctx context.Context, username string) ([]Book, error) {
	const query = `
	SELECT ` + bookColumns + `, u.username
	FROM books b
	JOIN users u ON u.id = b.user_id
	WHERE u.username = $1
	ORDER BY b.rating DESC, b.title ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, username)
	if err != nil {
		return nil, err
	}
	return r.collect(rows, true)
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Book, error) {
	const query = `
	SELECT ` + bookColumns + `, u.username
	FROM books b
	JOIN users u ON u.id = b.user_id
	ORDER BY b.created_at DESC
	LIMIT $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows, true)
}

func (r *PostgresRepo) Get(ctx context.Context, id, userID string) (Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books b
	WHERE b.id = $1 AND b.user_id = $2
	LIMIT 1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, id, userID))
}

func (r *PostgresRepo) Insert(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (id, user_id, title, author, isbn, rating, notes, date_read, cover_url)
	VALUES (gen_random_uuid(), $1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
	RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		b.UserID,
		b.Title,
		b.Author,
		b.ISBN,
		b.Rating,
		b.Notes,
		b.DateRead,
		b.CoverURL,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// Update folds the ownership check into the statement itself: a row that is
// missing or owned by another user affects zero rows and reports ErrNotFound,
// leaving no window between check and mutation.
func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const query = `
	UPDATE books
	SET title = $3, author = $4, isbn = NULLIF($5, ''), rating = $6,
	    notes = $7, date_read = $8, cover_url = $9, updated_at = now()
	WHERE id = $1 AND user_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query,
		b.ID,
		b.UserID,
		b.Title,
		b.Author,
		b.ISBN,
		b.Rating,
		b.Notes,
		b.DateRead,
		b.CoverURL,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM books WHERE id = $1 AND user_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdateCoverURL(ctx context.Context, id, coverURL string) error {
	const query = `UPDATE books SET cover_url = $2, updated_at = now() WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, id, coverURL)
	return err
}
